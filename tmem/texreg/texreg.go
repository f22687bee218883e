// Package texreg decodes the texture-unit registers of the graphics
// pipeline's BP register block into the fields the texture cache model
// needs.
package texreg

import (
	"fmt"
	"strings"
)

// Register identifies one of the per-unit texture registers.
type Register int

// The per-unit texture registers, in BP address order.
const (
	Mode0 Register = iota
	Mode1
	Image0
	Image1
	Image2
	Image3
	TLUT
	Unknown
)

var registerNames = [...]string{
	Mode0:   "mode0",
	Mode1:   "mode1",
	Image0:  "image0",
	Image1:  "image1",
	Image2:  "image2",
	Image3:  "image3",
	TLUT:    "tlut",
	Unknown: "unknown",
}

func (r Register) String() string {
	if r < Mode0 || r > Unknown {
		return fmt.Sprintf("Register(%d)", int(r))
	}

	return registerNames[r]
}

// ParseRegister converts a register name, as printed by String, back to a
// Register. Matching is case-insensitive.
func ParseRegister(name string) (Register, error) {
	lower := strings.ToLower(name)
	for i, n := range registerNames {
		if n == lower {
			return Register(i), nil
		}
	}

	return Unknown, fmt.Errorf("unknown texture register %q", name)
}

// InvalidateAddress is the BP address of the texture cache invalidate
// command.
const InvalidateAddress uint8 = 0x66

const (
	firstBlockBase  = 0x80
	secondBlockBase = 0xA0
	registerStride  = 4
	unitsPerBlock   = 4
	blockLength     = int(TLUT+1) * registerStride
)

// DecodeAddress maps a BP register address to the texture unit and register
// it configures. Units 0-3 live at 0x80-0x9B and units 4-7 at 0xA0-0xBB,
// four consecutive addresses per register kind. Addresses outside both
// blocks return ok == false.
func DecodeAddress(addr uint8) (unit int, reg Register, ok bool) {
	offset := int(addr)
	unitBase := 0

	switch {
	case offset >= secondBlockBase && offset < secondBlockBase+blockLength:
		offset -= secondBlockBase
		unitBase = unitsPerBlock
	case offset >= firstBlockBase && offset < firstBlockBase+blockLength:
		offset -= firstBlockBase
	default:
		return 0, Unknown, false
	}

	return unitBase + offset%registerStride, Register(offset / registerStride), true
}

// EncodeAddress is the inverse of DecodeAddress.
func EncodeAddress(unit int, reg Register) (uint8, error) {
	if unit < 0 || unit >= 2*unitsPerBlock {
		return 0, fmt.Errorf("texture unit %d out of range", unit)
	}

	if reg < Mode0 || reg > TLUT {
		return 0, fmt.Errorf("register %s has no BP address", reg)
	}

	base := firstBlockBase
	if unit >= unitsPerBlock {
		base = secondBlockBase
	}

	return uint8(base + int(reg)*registerStride + unit%unitsPerBlock), nil
}

func field(raw uint32, lo, width uint) uint32 {
	return (raw >> lo) & (1<<width - 1)
}

// TexImage1 is the value of a unit's first image register. It configures
// the even cache bank.
type TexImage1 uint32

// TmemOffset returns bits 0-14, the even bank's base in 32-byte table units.
func (r TexImage1) TmemOffset() uint32 { return field(uint32(r), 0, 15) }

// CacheWidth returns bits 15-17, the even bank's width code.
func (r TexImage1) CacheWidth() uint8 { return uint8(field(uint32(r), 15, 3)) }

// CacheHeight returns bits 18-20, the even bank's height code.
func (r TexImage1) CacheHeight() uint8 { return uint8(field(uint32(r), 18, 3)) }

// ImageType returns bit 21. A set bit marks the texture as preloaded rather
// than cached.
func (r TexImage1) ImageType() bool { return field(uint32(r), 21, 1) != 0 }

// TexImage2 is the value of a unit's second image register. It configures
// the odd cache bank.
type TexImage2 uint32

// TmemOffset returns bits 0-14, the odd bank's base in 32-byte table units.
func (r TexImage2) TmemOffset() uint32 { return field(uint32(r), 0, 15) }

// CacheWidth returns bits 15-17, the odd bank's width code.
func (r TexImage2) CacheWidth() uint8 { return uint8(field(uint32(r), 15, 3)) }

// CacheHeight returns bits 18-20, the odd bank's height code.
func (r TexImage2) CacheHeight() uint8 { return uint8(field(uint32(r), 18, 3)) }

// MakeTexImage packs bank geometry into the common layout of both image
// registers.
func MakeTexImage(tmemOffset uint32, width, height uint8) uint32 {
	return tmemOffset&(1<<15-1) |
		uint32(width&7)<<15 |
		uint32(height&7)<<18
}
