package tracing

import (
	"github.com/sarchlab/tmemsim/datarecording"
	"github.com/sarchlab/tmemsim/hooking"
	"github.com/sarchlab/tmemsim/tmem"
)

// Table names used by DBTracer.
const (
	ChangeTableName   = "classification_change"
	FinalizeTableName = "finalize"
)

// ChangeEntry is the row written for every classification change.
type ChangeEntry struct {
	Seq   uint64
	Draw  uint64
	Unit  int
	Before string
	After  string
	Cause  string
}

// FinalizeEntry is the row written for every finalized draw.
type FinalizeEntry struct {
	Draw    uint64
	Used    string
	Cached  int
	Valid   int
	Invalid int
}

// DBTracer records classification changes and draw results into a
// DataRecorder.
type DBTracer struct {
	recorder datarecording.DataRecorder
	seq      uint64
	draw     uint64
}

// NewDBTracer creates the tracer's tables in recorder.
func NewDBTracer(recorder datarecording.DataRecorder) *DBTracer {
	recorder.CreateTable(ChangeTableName, ChangeEntry{})
	recorder.CreateTable(FinalizeTableName, FinalizeEntry{})

	return &DBTracer{
		recorder: recorder,
		draw:     1,
	}
}

// Func records the hook item.
func (t *DBTracer) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case tmem.HookPosClassificationChange:
		t.recordChange(ctx.Item.(tmem.ClassificationChange))
	case tmem.HookPosFinalize:
		t.recordFinalize(ctx.Item.(tmem.FinalizeResult))
	}
}

func (t *DBTracer) recordChange(c tmem.ClassificationChange) {
	t.seq++

	t.recorder.InsertData(ChangeTableName, ChangeEntry{
		Seq:    t.seq,
		Draw:   t.draw,
		Unit:   c.Unit,
		Before: c.From.String(),
		After:  c.To.String(),
		Cause:  c.Cause.String(),
	})
}

func (t *DBTracer) recordFinalize(r tmem.FinalizeResult) {
	entry := FinalizeEntry{
		Draw: t.draw,
		Used: r.Used.String(),
	}

	r.Used.ForEach(func(unit int) {
		switch r.Units[unit].Classification {
		case tmem.Cached:
			entry.Cached++
		case tmem.Valid:
			entry.Valid++
		default:
			entry.Invalid++
		}
	})

	t.recorder.InsertData(FinalizeTableName, entry)
	t.draw++
}

// Flush forces the recorder to write its buffered rows.
func (t *DBTracer) Flush() {
	t.recorder.Flush()
}
