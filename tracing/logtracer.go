package tracing

import (
	"log"

	"github.com/sarchlab/tmemsim/hooking"
	"github.com/sarchlab/tmemsim/tmem"
)

// LogTracer writes a line for every classification change and finalized
// draw.
type LogTracer struct {
	*log.Logger

	draw uint64
}

// NewLogTracer creates a LogTracer that writes to logger.
func NewLogTracer(logger *log.Logger) *LogTracer {
	return &LogTracer{Logger: logger, draw: 1}
}

// Func logs the hook item.
func (t *LogTracer) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case tmem.HookPosClassificationChange:
		c := ctx.Item.(tmem.ClassificationChange)
		t.Printf("draw %d: unit %d %s -> %s (%s)",
			t.draw, c.Unit, c.From, c.To, c.Cause)
	case tmem.HookPosFinalize:
		r := ctx.Item.(tmem.FinalizeResult)
		t.Printf("draw %d: finalized units %s", t.draw, r.Used)
		t.draw++
	}
}
