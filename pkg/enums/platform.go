package enums

import (
	"fmt"
	"strings"
)

// Platform identifies an external marketplace an item can be listed on.
type Platform string

const (
	PlatformX Platform = "x"
	PlatformY Platform = "y"
	PlatformZ Platform = "z"
)

var validPlatforms = []Platform{
	PlatformX,
	PlatformY,
	PlatformZ,
}

// Platforms returns every supported platform in display order.
func Platforms() []Platform {
	out := make([]Platform, len(validPlatforms))
	copy(out, validPlatforms)
	return out
}

// String implements fmt.Stringer.
func (p Platform) String() string {
	return string(p)
}

// Label is the upper-case name shown to the operator.
func (p Platform) Label() string {
	return strings.ToUpper(string(p))
}

// IsValid reports whether the value is a known Platform.
func (p Platform) IsValid() bool {
	for _, candidate := range validPlatforms {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePlatform converts raw input into a Platform. Matching ignores case.
func ParsePlatform(value string) (Platform, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validPlatforms {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid platform %q", value)
}
