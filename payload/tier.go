package payload

import (
	"fmt"
	"strings"
)

// Tier selects pass counts and optimizer trials by input size.
//
// The value is the 3-bit header flag of the compact format; exactly one bit is set.
type Tier uint8

const (
	// Tiny is used for inputs with fewer than TinyThreshold raw elements.
	Tiny Tier = 0b001
	// Default is used for everything between the other tiers.
	Default Tier = 0b010
	// Large is used for inputs with more than LargeThreshold raw elements.
	Large Tier = 0b100
)

const (
	// TinyThreshold is the raw element count below which inputs are Tiny.
	TinyThreshold = 64
	// LargeThreshold is the raw element count above which inputs are Large.
	LargeThreshold = 8192
)

// TierFor selects the tier for an input with size raw elements.
func TierFor(size int) Tier {
	switch {
	case size < TinyThreshold:
		return Tiny
	case size > LargeThreshold:
		return Large
	default:
		return Default
	}
}

// ParseTier parses a tier name ("tiny", "default", "large"), case-insensitively.
func ParseTier(name string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "tiny":
		return Tiny, nil
	case "default":
		return Default, nil
	case "large":
		return Large, nil
	default:
		return 0, fmt.Errorf("unknown tier %q", name)
	}
}

// Valid reports whether t is exactly one of the defined tiers.
func (t Tier) Valid() bool {
	return t == Tiny || t == Default || t == Large
}

// String returns the tier name.
func (t Tier) String() string {
	switch t {
	case Tiny:
		return "tiny"
	case Default:
		return "default"
	case Large:
		return "large"
	default:
		return fmt.Sprintf("tier(%#03b)", uint8(t))
	}
}

// BasePasses returns the symbolic pass count the optimizer starts from.
func (t Tier) BasePasses() int {
	switch t {
	case Tiny:
		return 2
	case Large:
		return 6
	default:
		return 4
	}
}

// Trials returns the default optimizer trial count.
func (t Tier) Trials() int {
	if t == Tiny {
		return 2
	}
	return 5
}
