package valueobjects

import "fmt"

const (
	MinStrength = 1
	MaxStrength = 5
)

// ValidateStrength checks an optional relationship strength. Nil means unset.
func ValidateStrength(strength *int) error {
	if strength == nil {
		return nil
	}
	if *strength < MinStrength || *strength > MaxStrength {
		return fmt.Errorf("strength must be %d-%d", MinStrength, MaxStrength)
	}
	return nil
}
