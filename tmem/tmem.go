// Package tmem models the bookkeeping of a console GPU's texture cache
// memory (TMEM).
//
// The model never sees cache contents. It follows the geometry written to
// the texture image registers and the dimensions of each draw's textures,
// and classifies every texture unit as Invalid, Valid or Cached. The
// renderer uses the classification to decide whether a texture upload can be
// skipped.
//
// Calls for a draw must arrive in order: any configuration changes, then one
// Bind per used texture stage, then a single FinalizeBinds. A Tmem is not
// safe for concurrent use.
package tmem

import (
	"github.com/sarchlab/tmemsim/hooking"
	"github.com/sarchlab/tmemsim/tmem/texreg"
)

// UnitState is the cache state of one texture unit.
type UnitState struct {
	Even           Bank
	Odd            Bank
	Classification Classification
}

// Overlaps reports whether any bank of s intersects any bank of other. An
// Invalid unit overlaps nothing.
func (s UnitState) Overlaps(other UnitState) bool {
	if s.Classification == Invalid || other.Classification == Invalid {
		return false
	}

	return s.Even.Overlaps(other.Even) ||
		s.Even.Overlaps(other.Odd) ||
		s.Odd.Overlaps(other.Even) ||
		s.Odd.Overlaps(other.Odd)
}

// Tmem is the cache state table of all texture units.
type Tmem struct {
	*hooking.HookableBase

	name  string
	units [NumUnits]UnitState
}

// Name returns the name of the table.
func (t *Tmem) Name() string {
	return t.name
}

// Init resets every unit to zero geometry and Invalid.
func (t *Tmem) Init() {
	for i := range t.units {
		t.setClassification(i, Invalid, CauseInit)
		t.units[i] = UnitState{}
	}
}

// ConfigurationChanged applies a write to one of a unit's texture
// registers. Any write invalidates the unit, since callers only report
// writes that changed a value. The first image register sets the even bank
// and the second image register sets the odd bank; their sizes are left for
// the next Bind to compute.
func (t *Tmem) ConfigurationChanged(unit int, reg texreg.Register, raw uint32) {
	t.setClassification(unit, Invalid, CauseConfiguration)

	switch reg {
	case texreg.Image1:
		t.units[unit].Even = evenBank(raw)
	case texreg.Image2:
		t.units[unit].Odd = oddBank(raw)
	}
}

// Bind evaluates whether a texture of the given dimensions fits the unit's
// configured banks, and marks the unit Cached if it does and Valid if it
// does not.
//
// All textures use the even bank. Mipmapped and 32-bit textures also use
// the odd bank; for other textures the odd bank is disabled until the next
// Bind. Mip levels are modeled as doubling the even bank, and the odd bank
// as well for 32-bit textures.
func (t *Tmem) Bind(unit int, width, height uint32, isMipmapped, is32Bit bool) {
	s := &t.units[unit]
	texels := uint64(width) * uint64(height)

	s.Even.Size = CalculateUnitSize(s.Even)
	fits := texelsFit(texels, s.Even.Size)

	if isMipmapped || is32Bit {
		s.Odd.Size = CalculateUnitSize(s.Odd)
		fits = fits && texelsFit(texels, s.Odd.Size)
	} else {
		s.Odd.Size = 0
	}

	if isMipmapped {
		s.Even.Size *= 2
		if is32Bit {
			s.Odd.Size *= 2
		}
	}

	if fits {
		t.setClassification(unit, Cached, CauseBind)
	} else {
		t.setClassification(unit, Valid, CauseBind)
	}
}

// texelsFit reports whether texels*bitsPerTexel <= size. The division keeps
// the comparison exact for any uint32 dimensions.
func texelsFit(texels uint64, size uint32) bool {
	return texels <= uint64(size)/bitsPerTexel
}

// FinalizeBinds demotes used units whose cache regions collide. A unit
// whose own banks overlap is demoted. Every used unit is then checked
// against every other unit of the table, used by this draw or not, and both
// sides of an overlap are demoted. Stale geometry left by an earlier draw
// therefore still counts.
func (t *Tmem) FinalizeBinds(used UnitSet) {
	used.ForEach(func(i int) {
		if t.units[i].Even.Overlaps(t.units[i].Odd) {
			t.demote(i, CauseSelfOverlap)
		}

		for j := range t.units {
			if j != i && t.units[i].Overlaps(t.units[j]) {
				t.demote(i, CauseOverlap)
				t.demote(j, CauseOverlap)
			}
		}
	})

	if t.NumHooks() > 0 {
		t.InvokeHook(hooking.HookCtx{
			Domain: t,
			Pos:    HookPosFinalize,
			Item:   FinalizeResult{Used: used, Units: t.units},
		})
	}
}

// Invalidate handles the pipeline's texture-cache invalidate command. What
// param selects is undocumented, so every unit is invalidated.
func (t *Tmem) Invalidate(param uint32) {
	t.InvalidateAll()
}

// InvalidateAll marks every unit Invalid and keeps the bank geometry.
func (t *Tmem) InvalidateAll() {
	for i := range t.units {
		t.setClassification(i, Invalid, CauseInvalidate)
	}
}

// IsCached reports whether the unit's texture is believed resident.
func (t *Tmem) IsCached(unit int) bool {
	return t.units[unit].Classification == Cached
}

// IsValid reports whether the unit's configuration is known. Cached units
// are valid too.
func (t *Tmem) IsValid(unit int) bool {
	return t.units[unit].Classification != Invalid
}

// Unit returns a copy of one unit's state.
func (t *Tmem) Unit(unit int) UnitState {
	return t.units[unit]
}

// Units returns a copy of the whole table.
func (t *Tmem) Units() [NumUnits]UnitState {
	return t.units
}

// demote moves a Cached unit to Valid. Invalid units stay Invalid.
func (t *Tmem) demote(unit int, cause Cause) {
	if t.units[unit].Classification == Cached {
		t.setClassification(unit, Valid, cause)
	}
}

func (t *Tmem) setClassification(unit int, c Classification, cause Cause) {
	from := t.units[unit].Classification
	t.units[unit].Classification = c

	if from == c || t.NumHooks() == 0 {
		return
	}

	t.InvokeHook(hooking.HookCtx{
		Domain: t,
		Pos:    HookPosClassificationChange,
		Item: ClassificationChange{
			Unit:  unit,
			From:  from,
			To:    c,
			Cause: cause,
		},
	})
}
