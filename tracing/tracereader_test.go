package tracing

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/tmemsim/datarecording"
	"github.com/sarchlab/tmemsim/tmem"
)

var _ = Describe("TraceReader", func() {
	var (
		reader *TraceReader
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()

		dir, err := os.MkdirTemp("", "tmemsim-trace")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)

		path := filepath.Join(dir, "trace")
		recorder := datarecording.New(path)
		tracer := NewDBTracer(recorder)

		t := tmem.MakeBuilder().WithHook(tracer).Build("TMEM")
		overlappingDraw(t)
		t.InvalidateAll()
		Expect(recorder.Close()).To(Succeed())

		reader, err = NewTraceReader(path + ".sqlite3")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(reader.Close)
	})

	It("should read every change in recording order", func() {
		changes, total, err := reader.Changes(ctx, AnyUnit())

		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(6))
		Expect(changes).To(HaveLen(6))
		Expect(changes[0]).To(Equal(ChangeEntry{
			Seq: 1, Draw: 1, Unit: 0, Before: "invalid", After: "cached", Cause: "bind",
		}))
		Expect(changes[5].Cause).To(Equal("invalidate"))
		Expect(changes[5].Draw).To(Equal(uint64(2)))
	})

	It("should filter by unit, draw and cause", func() {
		q := AnyUnit()
		q.Unit = 1
		q.Draw = 1
		q.Cause = "overlap"

		changes, total, err := reader.Changes(ctx, q)

		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(1))
		Expect(changes).To(ConsistOf(ChangeEntry{
			Seq: 4, Draw: 1, Unit: 1, Before: "cached", After: "valid", Cause: "overlap",
		}))
	})

	It("should apply the limit after counting", func() {
		q := AnyUnit()
		q.Limit = 2

		changes, total, err := reader.Changes(ctx, q)

		Expect(err).NotTo(HaveOccurred())
		Expect(total).To(Equal(6))
		Expect(changes).To(HaveLen(2))
		Expect(changes[1].Seq).To(Equal(uint64(2)))
	})

	It("should read the finalized draws", func() {
		draws, err := reader.Draws(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(draws).To(Equal([]FinalizeEntry{
			{Draw: 1, Used: "{0,1}", Valid: 2},
		}))
	})

	It("should fail on a missing file", func() {
		_, err := NewTraceReader("/nonexistent/trace.sqlite3")

		Expect(err).To(HaveOccurred())
	})
})
