package cmdstream

import (
	"context"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/tmemsim/tmem"
	"github.com/sarchlab/tmemsim/tmem/texreg"
	"go.uber.org/mock/gomock"
)

var _ = Describe("Processor", func() {
	var (
		mockCtrl *gomock.Controller
		renderer *MockRenderer
		t        *tmem.Tmem
		p        *Processor
		verdicts []Verdict
	)

	run := func(stream string) (Stats, error) {
		return p.Run(context.Background(), strings.NewReader(stream))
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		renderer = NewMockRenderer(mockCtrl)
		verdicts = nil
		renderer.EXPECT().
			TextureVerdict(gomock.Any()).
			Do(func(v Verdict) { verdicts = append(verdicts, v) }).
			AnyTimes()

		t = tmem.MakeBuilder().Build("TMEM")
		p = NewProcessor(t, renderer)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should report a fitting texture as cached", func() {
		stats, err := run(`
config 0 image1 0xD8000
bind 0 16 16
finalize
`)

		Expect(err).NotTo(HaveOccurred())
		Expect(verdicts).To(Equal([]Verdict{
			{Draw: 1, Unit: 0, Classification: tmem.Cached},
		}))
		Expect(verdicts[0].SkipUpload()).To(BeTrue())
		Expect(stats).To(Equal(Stats{
			Commands: 3, Draws: 1, Binds: 1, CachedVerdicts: 1,
		}))
	})

	It("should report verdicts in ascending unit order", func() {
		_, err := run(`
config 3 image1 0xD8400
config 1 image1 0xD8000
bind 3 16 16
bind 1 64 64
finalize
`)

		Expect(err).NotTo(HaveOccurred())
		Expect(verdicts).To(Equal([]Verdict{
			{Draw: 1, Unit: 1, Classification: tmem.Valid},
			{Draw: 1, Unit: 3, Classification: tmem.Cached},
		}))
	})

	It("should demote overlapping units", func() {
		stats, err := run(`
config 0 image1 0xD8000
config 1 image1 0xD8100
bind 0 16 16
bind 1 16 16
finalize
`)

		Expect(err).NotTo(HaveOccurred())
		Expect(verdicts).To(HaveLen(2))
		for _, v := range verdicts {
			Expect(v.Classification).To(Equal(tmem.Valid))
		}
		Expect(stats.UncachedVerdicts).To(Equal(uint64(2)))
	})

	It("should decode raw BP writes", func() {
		addr, _ := texreg.EncodeAddress(5, texreg.Image1)
		cmd := Command{Op: OpBP, Addr: addr, Value: texreg.MakeTexImage(0x20, 4, 4)}

		Expect(p.Process(cmd)).To(Succeed())

		u := t.Unit(5)
		Expect(u.Even.Width).To(Equal(uint8(4)))
		Expect(u.Even.Base).To(Equal(uint32(0x400)))
	})

	It("should ignore BP writes outside the texture registers", func() {
		Expect(p.Process(Command{Op: OpBP, Addr: 0x20, Value: 1})).To(Succeed())
		Expect(p.Units()).To(Equal([tmem.NumUnits]tmem.UnitState{}))
	})

	It("should treat the invalidate BP register as an invalidate", func() {
		_, err := run(`
config 0 image1 0xD8000
bind 0 16 16
finalize
bp 0x66 0x1
query 0
`)

		Expect(err).NotTo(HaveOccurred())
		Expect(verdicts[1]).To(Equal(Verdict{
			Draw: 1, Unit: 0, Classification: tmem.Invalid, Queried: true,
		}))
		Expect(p.Stats().Invalidations).To(Equal(uint64(1)))
	})

	It("should filter writes that repeat the last value", func() {
		stats, err := run(`
config 0 image1 0xD8000
bind 0 16 16
finalize
config 0 image1 0xD8000
bp 0x8C 0xD8000
query 0
config 0 image1 0x20000
query 0
`)

		Expect(err).NotTo(HaveOccurred())
		Expect(stats.FilteredWrites).To(Equal(uint64(2)))
		Expect(verdicts[1].Classification).To(Equal(tmem.Cached))
		Expect(verdicts[2].Classification).To(Equal(tmem.Invalid))
	})

	It("should forget filtered values on init", func() {
		stats, err := run(`
config 0 image1 0xD8000
init
config 0 image1 0xD8000
`)

		Expect(err).NotTo(HaveOccurred())
		Expect(stats.FilteredWrites).To(BeZero())
		Expect(t.Unit(0).Even.Width).To(Equal(uint8(3)))
	})

	DescribeTable("commands that cannot interrupt a draw",
		func(line string) {
			_, err := run("bind 0 1 1\n" + line + "\n")
			Expect(err).To(MatchError(ErrDrawInProgress))
			Expect(err).To(MatchError(ContainSubstring("line 2")))
		},
		Entry("config", "config 0 image1 1"),
		Entry("bp", "bp 0x8C 1"),
		Entry("invalidate", "invalidate"),
		Entry("init", "init"),
		Entry("query", "query 0"),
	)

	It("should reject finalize without binds", func() {
		_, err := run("finalize\n")

		Expect(err).To(MatchError(ErrNoBinds))
	})

	It("should reject a stream that ends inside a draw", func() {
		_, err := run("bind 0 1 1\n")

		Expect(err).To(MatchError(ErrUnfinishedDraw))
	})

	It("should reject out-of-range units in hand-built commands", func() {
		err := p.Process(Command{Op: OpBind, Unit: 9})

		Expect(err).To(MatchError(ErrUnitOutOfRange))
	})

	It("should stop when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := p.Run(ctx, strings.NewReader("init\n"))

		Expect(err).To(MatchError(context.Canceled))
		Expect(p.Stats().Commands).To(BeZero())
	})

	It("should work without a renderer", func() {
		p = NewProcessor(t, nil)

		_, err := run("bind 0 0 0\nfinalize\n")

		Expect(err).NotTo(HaveOccurred())
		Expect(p.Stats().CachedVerdicts).To(Equal(uint64(1)))
	})
})
