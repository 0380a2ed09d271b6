// Package calculator computes order totals. It is pure arithmetic over
// cart lines and normalized coupon terms; no I/O happens here.
package calculator

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	couponmodel "storefront-backend/internal/domains/coupon/model"
)

var hundred = decimal.NewFromInt(100)

// Line is one cart position entering the calculation.
type Line struct {
	ProductID  uuid.UUID
	CategoryID *uuid.UUID
	UnitPrice  decimal.Decimal
	Quantity   int
}

func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Rates carries the store-level pricing knobs.
type Rates struct {
	TaxRate               decimal.Decimal
	FreeShippingThreshold decimal.Decimal
	FlatShippingFee       decimal.Decimal
}

// Totals is the calculation outcome. LineDiscounts is index-aligned with
// the input lines.
type Totals struct {
	Subtotal         decimal.Decimal
	EligibleSubtotal decimal.Decimal
	Discount         decimal.Decimal
	Tax              decimal.Decimal
	Shipping         decimal.Decimal
	Total            decimal.Decimal
	LineDiscounts    []decimal.Decimal
}

// Calculate produces the full monetary breakdown for a set of lines and
// optional coupon terms.
//
// The discount applies only to the eligible subtotal: the lines matching
// the coupon's product/category sets, or every line when the coupon is
// unrestricted. A percent coupon takes value percent of each eligible
// line; a fixed coupon is clamped to the eligible subtotal and split
// across eligible lines proportionally to their share of it.
func Calculate(lines []Line, terms *couponmodel.Terms, rates Rates) Totals {
	t := Totals{
		Subtotal:      decimal.Zero,
		Discount:      decimal.Zero,
		LineDiscounts: make([]decimal.Decimal, len(lines)),
	}
	for i := range t.LineDiscounts {
		t.LineDiscounts[i] = decimal.Zero
	}

	for _, line := range lines {
		t.Subtotal = t.Subtotal.Add(line.Subtotal())
	}

	if terms != nil {
		eligible := eligibleMask(lines, terms)

		for i, line := range lines {
			if eligible[i] {
				t.EligibleSubtotal = t.EligibleSubtotal.Add(line.Subtotal())
			}
		}

		switch terms.Type {
		case couponmodel.TypePercent:
			rate := terms.Value.Div(hundred)
			for i, line := range lines {
				if !eligible[i] {
					continue
				}
				t.LineDiscounts[i] = line.Subtotal().Mul(rate)
				t.Discount = t.Discount.Add(t.LineDiscounts[i])
			}

		case couponmodel.TypeFixed:
			t.Discount = decimal.Min(terms.Value, t.EligibleSubtotal)
			if t.EligibleSubtotal.IsPositive() {
				for i, line := range lines {
					if !eligible[i] {
						continue
					}
					share := line.Subtotal().Div(t.EligibleSubtotal)
					t.LineDiscounts[i] = t.Discount.Mul(share)
				}
			}
		}
	}

	taxable := decimal.Max(decimal.Zero, t.Subtotal.Sub(t.Discount))
	t.Tax = taxable.Mul(rates.TaxRate)

	if t.Subtotal.GreaterThanOrEqual(rates.FreeShippingThreshold) {
		t.Shipping = decimal.Zero
	} else {
		t.Shipping = rates.FlatShippingFee
	}

	t.Total = decimal.Max(decimal.Zero, t.Subtotal.Sub(t.Discount).Add(t.Tax).Add(t.Shipping))

	return t
}

// eligibleMask marks the lines a coupon's discount may touch. An
// unrestricted coupon covers everything.
func eligibleMask(lines []Line, terms *couponmodel.Terms) []bool {
	mask := make([]bool, len(lines))

	if len(terms.ProductIDs) == 0 && len(terms.CategoryIDs) == 0 {
		for i := range mask {
			mask[i] = true
		}
		return mask
	}

	products := make(map[uuid.UUID]struct{}, len(terms.ProductIDs))
	for _, id := range terms.ProductIDs {
		products[id] = struct{}{}
	}
	categories := make(map[uuid.UUID]struct{}, len(terms.CategoryIDs))
	for _, id := range terms.CategoryIDs {
		categories[id] = struct{}{}
	}

	for i, line := range lines {
		if _, ok := products[line.ProductID]; ok {
			mask[i] = true
			continue
		}
		if line.CategoryID != nil {
			if _, ok := categories[*line.CategoryID]; ok {
				mask[i] = true
			}
		}
	}
	return mask
}
