package tracing

import (
	"sync"

	"github.com/sarchlab/tmemsim/hooking"
	"github.com/sarchlab/tmemsim/tmem"
)

// CountTracer counts classification changes by cause and by the resulting
// classification. It is safe to read while the table is being driven.
type CountTracer struct {
	lock    sync.Mutex
	byCause map[string]uint64
	byTo    map[string]uint64
	draws   uint64
}

// NewCountTracer creates a new CountTracer.
func NewCountTracer() *CountTracer {
	return &CountTracer{
		byCause: make(map[string]uint64),
		byTo:    make(map[string]uint64),
	}
}

// Func counts the hook item.
func (t *CountTracer) Func(ctx hooking.HookCtx) {
	t.lock.Lock()
	defer t.lock.Unlock()

	switch ctx.Pos {
	case tmem.HookPosClassificationChange:
		c := ctx.Item.(tmem.ClassificationChange)
		t.byCause[c.Cause.String()]++
		t.byTo[c.To.String()]++
	case tmem.HookPosFinalize:
		t.draws++
	}
}

// CauseCount returns the number of changes with the given cause.
func (t *CountTracer) CauseCount(cause tmem.Cause) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.byCause[cause.String()]
}

// ToCount returns the number of changes that ended in c.
func (t *CountTracer) ToCount(c tmem.Classification) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.byTo[c.String()]
}

// Draws returns the number of finalized draws.
func (t *CountTracer) Draws() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.draws
}

// Summary returns a copy of the counts keyed by cause name.
func (t *CountTracer) Summary() map[string]uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	summary := make(map[string]uint64, len(t.byCause))
	for k, v := range t.byCause {
		summary[k] = v
	}

	return summary
}
