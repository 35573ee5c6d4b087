package purchases

import (
	"math"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/angelmondragon/groceryshare-backend/pkg/errors"
)

var two = decimal.NewFromInt(2)

// SplitEqual divides a settlement total into two equal shares. The second
// share is computed as the remainder so the pair always sums back to the
// exact total. This is the single source of truth for share math; the live
// preview and the persisted settlement both go through it.
func SplitEqual(total float64) (float64, float64, error) {
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return 0, 0, pkgerrors.New(pkgerrors.CodeValidation, "total price must be a finite number")
	}
	if total < 0 {
		return 0, 0, pkgerrors.New(pkgerrors.CodeValidation, "total price must not be negative")
	}

	totalDec := decimal.NewFromFloat(total)
	half := totalDec.Div(two)
	rest := totalDec.Sub(half)

	lowShare, _ := half.Float64()
	highShare, _ := rest.Float64()
	return lowShare, highShare, nil
}
