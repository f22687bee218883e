package tmem

import (
	"math/bits"
	"strconv"
	"strings"
)

// NumUnits is the number of hardware texture units.
const NumUnits = 8

// A UnitSet is a set of texture unit ids, one bit per unit.
type UnitSet uint8

// UnitSetFromMask converts a stage bitmask to a UnitSet. Bits above the last
// unit are dropped.
func UnitSetFromMask(mask uint32) UnitSet {
	return UnitSet(mask & (1<<NumUnits - 1))
}

// NewUnitSet returns a set that holds the given units.
func NewUnitSet(units ...int) UnitSet {
	var s UnitSet
	for _, u := range units {
		s = s.Add(u)
	}

	return s
}

// Add returns the set with unit added.
func (s UnitSet) Add(unit int) UnitSet {
	return s | 1<<uint(unit)
}

// Has reports whether unit is in the set.
func (s UnitSet) Has(unit int) bool {
	if unit < 0 || unit >= NumUnits {
		return false
	}

	return s&(1<<uint(unit)) != 0
}

// Len returns the number of units in the set.
func (s UnitSet) Len() int {
	return bits.OnesCount8(uint8(s))
}

// Units lists the members in ascending order.
func (s UnitSet) Units() []int {
	units := make([]int, 0, s.Len())
	s.ForEach(func(unit int) {
		units = append(units, unit)
	})

	return units
}

// ForEach calls f for every member in ascending order.
func (s UnitSet) ForEach(f func(unit int)) {
	for rest := uint8(s); rest != 0; rest &= rest - 1 {
		f(bits.TrailingZeros8(rest))
	}
}

func (s UnitSet) String() string {
	parts := make([]string, 0, s.Len())
	s.ForEach(func(unit int) {
		parts = append(parts, strconv.Itoa(unit))
	})

	return "{" + strings.Join(parts, ",") + "}"
}
