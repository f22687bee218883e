package tmem

import "fmt"

// Classification is the confidence the cache model has in a texture unit's
// cached data.
type Classification uint8

const (
	// Invalid means the unit's configuration is unknown or just changed. No
	// guarantee is made.
	Invalid Classification = iota

	// Valid means the configuration is known, but the texture does not fit
	// or its region collides with another bank.
	Valid

	// Cached means the texture data is believed to be resident.
	Cached
)

func (c Classification) String() string {
	switch c {
	case Invalid:
		return "invalid"
	case Valid:
		return "valid"
	case Cached:
		return "cached"
	default:
		return fmt.Sprintf("Classification(%d)", uint8(c))
	}
}
