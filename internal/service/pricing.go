package service

import (
	"math"

	"github.com/guttosm/quote-configurator/internal/domain/model"
)

// LineTotal computes quantity × (unitPrice − unitPrice × discount/100).
// Quantities below one count as one and a non-finite result is zero.
func LineTotal(line model.Line) float64 {
	quantity := line.Quantity
	if quantity < 1 || math.IsNaN(quantity) {
		quantity = 1
	}
	unitPrice := finiteOrZero(line.UnitPrice)
	discount := finiteOrZero(line.Discount) / 100

	total := quantity * (unitPrice - unitPrice*discount)
	return finiteOrZero(total)
}

// Recalculate returns a deep copy of lines with Total set on every parent and
// child, and the grand total: every parent plus each child that is mandatory
// or selected under its parent's product.
func Recalculate(lines []model.Line, selection Selection) ([]model.Line, float64) {
	result := model.CloneLines(lines)
	grandTotal := 0.0

	for i := range result {
		parent := &result[i]
		parent.Total = LineTotal(*parent)
		grandTotal += parent.Total

		for j := range parent.Children {
			child := &parent.Children[j]
			child.Total = LineTotal(*child)
			if child.Mandatory || selection.Has(parent.ProductID(), child.ProductID()) {
				grandTotal += child.Total
			}
		}
	}

	return result, grandTotal
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
