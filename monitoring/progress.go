package monitoring

import (
	"sync"
	"time"
)

// A ProgressBar tracks how many commands of a stream have been replayed.
// It is advanced by the replay loop and read by the HTTP goroutines.
type ProgressBar struct {
	lock sync.Mutex

	id       string
	stream   string
	start    time.Time
	total    uint64
	inFlight uint64
	replayed uint64
}

// ProgressStatus is a consistent copy of a ProgressBar.
type ProgressStatus struct {
	ID        string    `json:"id"`
	Stream    string    `json:"stream"`
	StartTime time.Time `json:"start_time"`
	Total     uint64    `json:"total"`
	Replayed  uint64    `json:"replayed"`
	InFlight  uint64    `json:"in_flight"`
}

// Begin marks n commands as being processed.
func (b *ProgressBar) Begin(n uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.inFlight += n
}

// Done moves n in-flight commands to replayed.
func (b *ProgressBar) Done(n uint64) {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.inFlight -= n
	b.replayed += n
}

// Status returns a copy of the bar taken under its lock.
func (b *ProgressBar) Status() ProgressStatus {
	b.lock.Lock()
	defer b.lock.Unlock()

	return ProgressStatus{
		ID:        b.id,
		Stream:    b.stream,
		StartTime: b.start,
		Total:     b.total,
		Replayed:  b.replayed,
		InFlight:  b.inFlight,
	}
}
