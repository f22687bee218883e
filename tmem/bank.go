package tmem

import "github.com/sarchlab/tmemsim/tmem/texreg"

const (
	// KB is one kibibyte.
	KB uint32 = 1 << 10

	// baseShift converts a register table offset to a cache address.
	baseShift = 5

	// bitsPerTexel is the fixed factor that turns a texel count into the
	// demand compared against a bank's byte capacity.
	bitsPerTexel = 32

	// maxCacheCode is the largest cache width or height code the 3-bit
	// register fields can hold.
	maxCacheCode = 7
)

// A Bank is the configuration of one physical cache bank (even or odd) of a
// texture unit.
type Bank struct {
	Width  uint8
	Height uint8

	// Base is the start of the bank in the cache's address space.
	Base uint32

	// Size is the capacity in bytes. It stays 0 until a bind computes it. A
	// zero-sized bank contributes nothing.
	Size uint32
}

func bankFromImage(tmemOffset uint32, width, height uint8) Bank {
	return Bank{
		Width:  width,
		Height: height,
		Base:   tmemOffset << baseShift,
	}
}

func evenBank(raw uint32) Bank {
	r := texreg.TexImage1(raw)
	return bankFromImage(r.TmemOffset(), r.CacheWidth(), r.CacheHeight())
}

func oddBank(raw uint32) Bank {
	r := texreg.TexImage2(raw)
	return bankFromImage(r.TmemOffset(), r.CacheWidth(), r.CacheHeight())
}

// End returns the first address past the bank.
func (b Bank) End() uint64 {
	return uint64(b.Base) + uint64(b.Size)
}

// Overlaps reports whether the half-open ranges [Base, Base+Size) of both
// banks intersect. Zero-sized banks never overlap.
func (b Bank) Overlaps(other Bank) bool {
	if b.Size == 0 || other.Size == 0 {
		return false
	}

	return uint64(b.Base) < other.End() && uint64(other.Base) < b.End()
}

// CalculateUnitSize returns the capacity in bytes of a bank with the given
// geometry.
//
// Only the square codes 3, 4 and 5 are hardware-documented. Every other
// geometry uses 512 * 2^width * 2^height, which is an unverified
// extrapolation of undocumented hardware behavior. Keep it as is until
// hardware tests say otherwise.
func CalculateUnitSize(b Bank) uint32 {
	if b.Width == b.Height {
		switch b.Width {
		case 3:
			return 32 * KB
		case 4:
			return 128 * KB
		case 5:
			return 512 * KB
		}
	}

	return 512 << b.Width << b.Height
}
