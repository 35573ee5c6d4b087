package enums

import "fmt"

// GroceryUnit is the measurement unit attached to a grocery list entry.
// Units are labels only; no conversion is performed between them.
type GroceryUnit string

const (
	GroceryUnitKg     GroceryUnit = "kg"
	GroceryUnitLbs    GroceryUnit = "lbs"
	GroceryUnitPieces GroceryUnit = "pieces"
	GroceryUnitPack   GroceryUnit = "pack"
	GroceryUnitBox    GroceryUnit = "box"
	GroceryUnitBottle GroceryUnit = "bottle"
)

var validGroceryUnits = []GroceryUnit{
	GroceryUnitKg,
	GroceryUnitLbs,
	GroceryUnitPieces,
	GroceryUnitPack,
	GroceryUnitBox,
	GroceryUnitBottle,
}

// String implements fmt.Stringer.
func (g GroceryUnit) String() string {
	return string(g)
}

// IsValid reports whether the value is a known GroceryUnit.
func (g GroceryUnit) IsValid() bool {
	for _, candidate := range validGroceryUnits {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseGroceryUnit converts raw input into a GroceryUnit.
func ParseGroceryUnit(value string) (GroceryUnit, error) {
	for _, candidate := range validGroceryUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid grocery unit %q", value)
}

// GroceryUnits returns the accepted units in declaration order.
func GroceryUnits() []GroceryUnit {
	out := make([]GroceryUnit, len(validGroceryUnits))
	copy(out, validGroceryUnits)
	return out
}
