package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartDerivedTotals(t *testing.T) {
	cart := &Cart{
		Items: []CartItem{
			{UnitPrice: decimal.NewFromFloat(12.50), Quantity: 2},
			{UnitPrice: decimal.NewFromInt(5), Quantity: 3},
		},
	}

	assert.Equal(t, 5, cart.ItemCount())
	assert.True(t, cart.TotalAmount().Equal(decimal.NewFromInt(40)))
	assert.False(t, cart.IsEmpty())
}

func TestEmptyCart(t *testing.T) {
	cart := &Cart{}

	assert.True(t, cart.IsEmpty())
	assert.Equal(t, 0, cart.ItemCount())
	assert.True(t, cart.TotalAmount().IsZero())
}

func TestCoalesceMergesDuplicateProducts(t *testing.T) {
	p1 := uuid.New()
	p2 := uuid.New()

	req := CreateCartItemsRequest{
		Items: []AddItemRequest{
			{ProductID: p1, Quantity: 2},
			{ProductID: p2, Quantity: 1},
			{ProductID: p1, Quantity: 3},
		},
	}

	merged := req.Coalesce()

	require.Len(t, merged, 2)
	assert.Equal(t, p1, merged[0].ProductID)
	assert.Equal(t, 5, merged[0].Quantity)
	assert.Equal(t, p2, merged[1].ProductID)
	assert.Equal(t, 1, merged[1].Quantity)
}

func TestAddItemRequestValidation(t *testing.T) {
	assert.Error(t, AddItemRequest{Quantity: 1}.Validate(), "product id required")
	assert.Error(t, AddItemRequest{ProductID: uuid.Nil, Quantity: 1}.Validate(), "zero uuid rejected")
	assert.Error(t, AddItemRequest{ProductID: uuid.New(), Quantity: 1000}.Validate())
	assert.NoError(t, AddItemRequest{ProductID: uuid.New(), Quantity: 1}.Validate())
}

func TestCoalesceDefaultsOmittedQuantityToOne(t *testing.T) {
	p1 := uuid.New()
	p2 := uuid.New()

	req := CreateCartItemsRequest{
		Items: []AddItemRequest{
			{ProductID: p1},
			{ProductID: p2, Quantity: 2},
			{ProductID: p2},
		},
	}

	merged := req.Coalesce()

	require.Len(t, merged, 2)
	assert.Equal(t, 1, merged[0].Quantity)
	assert.Equal(t, 3, merged[1].Quantity)
}

func TestUpdateQuantityAllowsZero(t *testing.T) {
	// Zero means remove the line.
	assert.NoError(t, UpdateQuantityRequest{Quantity: 0}.Validate())
	assert.Error(t, UpdateQuantityRequest{Quantity: -1}.Validate())
}

func TestCreateCartItemsRequestRejectsEmpty(t *testing.T) {
	assert.Error(t, CreateCartItemsRequest{}.Validate())
}
