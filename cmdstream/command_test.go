package cmdstream

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/tmemsim/tmem/texreg"
)

var _ = Describe("Parse", func() {
	It("should parse every command", func() {
		stream := `
# setup
init
config 1 image1 0xD8000   # 3x3 at 0
bp 0x8D 0xD8000
invalidate
invalidate 7
bind 1 16 16
bind 2 64 32 mip 32bit
finalize
query 1
`
		cmds, err := Parse(strings.NewReader(stream))

		Expect(err).NotTo(HaveOccurred())
		Expect(cmds).To(Equal([]Command{
			{Op: OpInit, Line: 3},
			{Op: OpConfig, Line: 4, Unit: 1, Register: texreg.Image1, Value: 0xD8000},
			{Op: OpBP, Line: 5, Addr: 0x8D, Value: 0xD8000},
			{Op: OpInvalidate, Line: 6},
			{Op: OpInvalidate, Line: 7, Value: 7},
			{Op: OpBind, Line: 8, Unit: 1, Width: 16, Height: 16},
			{Op: OpBind, Line: 9, Unit: 2, Width: 64, Height: 32,
				Mipmapped: true, Is32Bit: true},
			{Op: OpFinalize, Line: 10},
			{Op: OpQuery, Line: 11, Unit: 1},
		}))
	})

	It("should accept upper-case keywords", func() {
		cmd, ok, err := ParseLine("BIND 0 8 8 MIP", 1)

		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(cmd.Mipmapped).To(BeTrue())
	})

	DescribeTable("malformed lines",
		func(line, msg string) {
			_, _, err := ParseLine(line, 12)
			Expect(err).To(MatchError(ContainSubstring("line 12")))
			Expect(err).To(MatchError(ContainSubstring(msg)))
		},
		Entry("unknown command", "draw 1", "unknown command"),
		Entry("missing argument", "bind 1 16", "missing argument"),
		Entry("bad number", "query x", "bad number"),
		Entry("unit out of range", "query 8", "out of range"),
		Entry("unknown register", "config 0 image9 1", "image9"),
		Entry("extra argument", "finalize now", "unexpected argument"),
		Entry("bad flag", "bind 0 1 1 mip big", "unexpected argument"),
		Entry("address too wide", "bp 0x100 1", "bad number"),
	)

	It("should stop at the first bad line", func() {
		_, err := Parse(strings.NewReader("init\nbogus\ninit\n"))

		Expect(err).To(MatchError(ContainSubstring("line 2")))
	})

	It("should name ops", func() {
		Expect(OpFinalize.String()).To(Equal("finalize"))
		Expect(Op(99).String()).To(Equal("Op(99)"))
	})
})
