package calculator

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	couponmodel "storefront-backend/internal/domains/coupon/model"
)

func defaultRates() Rates {
	return Rates{
		TaxRate:               decimal.Zero,
		FreeShippingThreshold: decimal.NewFromInt(50),
		FlatShippingFee:       decimal.NewFromInt(5),
	}
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestCalculateNoCoupon(t *testing.T) {
	lines := []Line{
		{ProductID: uuid.New(), UnitPrice: dec("20"), Quantity: 2},
		{ProductID: uuid.New(), UnitPrice: dec("10"), Quantity: 1},
	}

	totals := Calculate(lines, nil, defaultRates())

	assert.True(t, totals.Subtotal.Equal(dec("50")))
	assert.True(t, totals.Discount.IsZero())
	assert.True(t, totals.Tax.IsZero())
	assert.True(t, totals.Shipping.IsZero(), "subtotal at threshold ships free")
	assert.True(t, totals.Total.Equal(dec("50")))
}

func TestCalculateFlatShippingBelowThreshold(t *testing.T) {
	lines := []Line{
		{ProductID: uuid.New(), UnitPrice: dec("40"), Quantity: 1},
	}

	totals := Calculate(lines, nil, defaultRates())

	assert.True(t, totals.Shipping.Equal(dec("5")))
	assert.True(t, totals.Total.Equal(dec("45")))
}

func TestCalculatePercentCoupon(t *testing.T) {
	lines := []Line{
		{ProductID: uuid.New(), UnitPrice: dec("50"), Quantity: 2},
		{ProductID: uuid.New(), UnitPrice: dec("100"), Quantity: 1},
	}
	terms := &couponmodel.Terms{
		Type:  couponmodel.TypePercent,
		Value: dec("10"),
	}

	totals := Calculate(lines, terms, defaultRates())

	assert.True(t, totals.Subtotal.Equal(dec("200")))
	assert.True(t, totals.Discount.Equal(dec("20")))
	require.Len(t, totals.LineDiscounts, 2)
	assert.True(t, totals.LineDiscounts[0].Equal(dec("10")))
	assert.True(t, totals.LineDiscounts[1].Equal(dec("10")))
	assert.True(t, totals.Total.Equal(dec("180")))
}

func TestCalculateFixedCouponClampedToEligibleSubtotal(t *testing.T) {
	lines := []Line{
		{ProductID: uuid.New(), UnitPrice: dec("8"), Quantity: 1},
	}
	terms := &couponmodel.Terms{
		Type:  couponmodel.TypeFixed,
		Value: dec("25"),
	}

	totals := Calculate(lines, terms, defaultRates())

	assert.True(t, totals.Discount.Equal(dec("8")), "fixed discount never exceeds what the items cost")
	assert.True(t, totals.Shipping.Equal(dec("5")))
	assert.True(t, totals.Total.Equal(dec("5")), "total is shipping only, never negative")
}

func TestCalculateFixedCouponSplitProportionally(t *testing.T) {
	lines := []Line{
		{ProductID: uuid.New(), UnitPrice: dec("30"), Quantity: 1},
		{ProductID: uuid.New(), UnitPrice: dec("10"), Quantity: 1},
	}
	terms := &couponmodel.Terms{
		Type:  couponmodel.TypeFixed,
		Value: dec("20"),
	}

	totals := Calculate(lines, terms, defaultRates())

	assert.True(t, totals.Discount.Equal(dec("20")))
	require.Len(t, totals.LineDiscounts, 2)
	assert.True(t, totals.LineDiscounts[0].Equal(dec("15")), "30/40 of the discount")
	assert.True(t, totals.LineDiscounts[1].Equal(dec("5")), "10/40 of the discount")
}

func TestCalculateRestrictedCouponSkipsIneligibleLines(t *testing.T) {
	eligibleProduct := uuid.New()
	categoryID := uuid.New()

	lines := []Line{
		{ProductID: eligibleProduct, UnitPrice: dec("40"), Quantity: 1},
		{ProductID: uuid.New(), CategoryID: &categoryID, UnitPrice: dec("60"), Quantity: 1},
		{ProductID: uuid.New(), UnitPrice: dec("100"), Quantity: 1},
	}
	terms := &couponmodel.Terms{
		Type:        couponmodel.TypePercent,
		Value:       dec("50"),
		ProductIDs:  []uuid.UUID{eligibleProduct},
		CategoryIDs: []uuid.UUID{categoryID},
	}

	totals := Calculate(lines, terms, defaultRates())

	assert.True(t, totals.EligibleSubtotal.Equal(dec("100")))
	assert.True(t, totals.Discount.Equal(dec("50")))
	assert.True(t, totals.LineDiscounts[0].Equal(dec("20")))
	assert.True(t, totals.LineDiscounts[1].Equal(dec("30")))
	assert.True(t, totals.LineDiscounts[2].IsZero())
	assert.True(t, totals.Total.Equal(dec("150")))
}

func TestCalculateTaxAppliesAfterDiscount(t *testing.T) {
	rates := Rates{
		TaxRate:               dec("0.1"),
		FreeShippingThreshold: decimal.NewFromInt(50),
		FlatShippingFee:       decimal.NewFromInt(5),
	}
	lines := []Line{
		{ProductID: uuid.New(), UnitPrice: dec("100"), Quantity: 1},
	}
	terms := &couponmodel.Terms{
		Type:  couponmodel.TypeFixed,
		Value: dec("20"),
	}

	totals := Calculate(lines, terms, rates)

	assert.True(t, totals.Tax.Equal(dec("8")), "tax is 10 percent of the discounted 80")
	assert.True(t, totals.Total.Equal(dec("88")))
}

func TestCalculateEmptyLines(t *testing.T) {
	totals := Calculate(nil, nil, defaultRates())

	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Shipping.Equal(dec("5")))
	assert.True(t, totals.Total.Equal(dec("5")))
	assert.Empty(t, totals.LineDiscounts)
}

func TestLineSubtotal(t *testing.T) {
	line := Line{UnitPrice: dec("12.50"), Quantity: 3}
	assert.True(t, line.Subtotal().Equal(dec("37.50")))
}
