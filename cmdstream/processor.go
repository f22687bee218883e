package cmdstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sarchlab/tmemsim/tmem"
	"github.com/sarchlab/tmemsim/tmem/texreg"
)

var (
	// ErrDrawInProgress is returned when a command that must come before or
	// after a draw arrives between its binds and its finalize.
	ErrDrawInProgress = errors.New("draw in progress")

	// ErrNoBinds is returned when finalize arrives without any bind.
	ErrNoBinds = errors.New("finalize without binds")

	// ErrUnfinishedDraw is returned when the stream ends between binds and
	// finalize.
	ErrUnfinishedDraw = errors.New("stream ended inside a draw")

	// ErrUnitOutOfRange is returned for texture unit ids above the last unit.
	ErrUnitOutOfRange = errors.New("texture unit out of range")
)

// A Verdict tells the renderer whether a stage's texture is believed to be
// in the cache.
type Verdict struct {
	Draw           uint64
	Unit           int
	Classification tmem.Classification

	// Queried is set for verdicts produced by a query command rather than a
	// finalized draw.
	Queried bool
}

// SkipUpload reports whether the renderer may skip uploading the texture.
func (v Verdict) SkipUpload() bool {
	return v.Classification == tmem.Cached
}

// Renderer receives the verdicts of every finalized draw.
type Renderer interface {
	TextureVerdict(v Verdict)
}

// Stats counts what a Processor has done.
type Stats struct {
	Commands         uint64 `json:"commands"`
	Draws            uint64 `json:"draws"`
	Binds            uint64 `json:"binds"`
	CachedVerdicts   uint64 `json:"cached_verdicts"`
	UncachedVerdicts uint64 `json:"uncached_verdicts"`
	FilteredWrites   uint64 `json:"filtered_writes"`
	Invalidations    uint64 `json:"invalidations"`
}

type regKey struct {
	unit int
	reg  texreg.Register
}

// Processor drives a texture cache table from commands. It is the table's
// only writer. Its read methods may be called from other goroutines.
type Processor struct {
	lock sync.Mutex

	tmem      *tmem.Tmem
	renderer  Renderer
	lastWrite map[regKey]uint32
	pending   tmem.UnitSet
	draw      uint64
	stats     Stats
}

// NewProcessor creates a Processor. The renderer may be nil.
func NewProcessor(t *tmem.Tmem, r Renderer) *Processor {
	return &Processor{
		tmem:      t,
		renderer:  r,
		lastWrite: make(map[regKey]uint32),
	}
}

// Run processes a stream until it ends, a command fails, or ctx is done.
func (p *Processor) Run(ctx context.Context, r io.Reader) (Stats, error) {
	err := scan(r, func(cmd Command) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		return p.Process(cmd)
	})

	if err == nil {
		err = p.Finish()
	}

	return p.Stats(), err
}

// Finish checks that the stream did not stop between a draw's binds and its
// finalize.
func (p *Processor) Finish() error {
	p.lock.Lock()
	defer p.lock.Unlock()

	if p.pending != 0 {
		return ErrUnfinishedDraw
	}

	return nil
}

// Process applies one command.
func (p *Processor) Process(cmd Command) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	err := p.process(cmd)
	if err != nil {
		return fmt.Errorf("line %d: %s: %w", cmd.Line, cmd.Op, err)
	}

	p.stats.Commands++

	return nil
}

func (p *Processor) process(cmd Command) error {
	if cmd.Op != OpBind && cmd.Op != OpFinalize && p.pending != 0 {
		return ErrDrawInProgress
	}

	switch cmd.Op {
	case OpInit:
		p.tmem.Init()
		clear(p.lastWrite)
	case OpConfig:
		if err := checkUnit(cmd.Unit); err != nil {
			return err
		}

		p.write(cmd.Unit, cmd.Register, cmd.Value)
	case OpBP:
		p.writeBP(cmd.Addr, cmd.Value)
	case OpInvalidate:
		p.invalidate(cmd.Value)
	case OpBind:
		if err := checkUnit(cmd.Unit); err != nil {
			return err
		}

		p.tmem.Bind(cmd.Unit, cmd.Width, cmd.Height, cmd.Mipmapped, cmd.Is32Bit)
		p.pending = p.pending.Add(cmd.Unit)
		p.stats.Binds++
	case OpFinalize:
		return p.finalize()
	case OpQuery:
		if err := checkUnit(cmd.Unit); err != nil {
			return err
		}

		p.report(cmd.Unit, true)
	default:
		return fmt.Errorf("unsupported command %s", cmd.Op)
	}

	return nil
}

func checkUnit(unit int) error {
	if unit < 0 || unit >= tmem.NumUnits {
		return fmt.Errorf("%w: %d", ErrUnitOutOfRange, unit)
	}

	return nil
}

// write forwards a register write to the table unless it repeats the value
// last written to the same register.
func (p *Processor) write(unit int, reg texreg.Register, value uint32) {
	key := regKey{unit: unit, reg: reg}
	if last, ok := p.lastWrite[key]; ok && last == value {
		p.stats.FilteredWrites++
		return
	}

	p.lastWrite[key] = value
	p.tmem.ConfigurationChanged(unit, reg, value)
}

func (p *Processor) writeBP(addr uint8, value uint32) {
	if addr == texreg.InvalidateAddress {
		p.invalidate(value)
		return
	}

	unit, reg, ok := texreg.DecodeAddress(addr)
	if !ok {
		return
	}

	p.write(unit, reg, value)
}

func (p *Processor) invalidate(param uint32) {
	p.tmem.Invalidate(param)
	p.stats.Invalidations++
}

func (p *Processor) finalize() error {
	if p.pending == 0 {
		return ErrNoBinds
	}

	used := p.pending
	p.pending = 0
	p.draw++
	p.stats.Draws++

	p.tmem.FinalizeBinds(used)
	used.ForEach(func(unit int) {
		p.report(unit, false)
	})

	return nil
}

func (p *Processor) report(unit int, queried bool) {
	v := Verdict{
		Draw:           p.draw,
		Unit:           unit,
		Classification: p.tmem.Unit(unit).Classification,
		Queried:        queried,
	}

	if !queried {
		if v.SkipUpload() {
			p.stats.CachedVerdicts++
		} else {
			p.stats.UncachedVerdicts++
		}
	}

	if p.renderer != nil {
		p.renderer.TextureVerdict(v)
	}
}

// Stats returns a copy of the counters.
func (p *Processor) Stats() Stats {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.stats
}

// Units returns a copy of the table.
func (p *Processor) Units() [tmem.NumUnits]tmem.UnitState {
	p.lock.Lock()
	defer p.lock.Unlock()

	return p.tmem.Units()
}
