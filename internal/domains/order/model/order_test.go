package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		allowed  bool
	}{
		{StatusCreated, StatusPaid, true},
		{StatusCreated, StatusCanceled, true},
		{StatusCreated, StatusShipped, false},
		{StatusPaid, StatusProcessing, true},
		{StatusPaid, StatusRefunded, true},
		{StatusProcessing, StatusShipped, true},
		{StatusShipped, StatusDelivered, true},
		{StatusShipped, StatusCanceled, false},
		{StatusDelivered, StatusRefunded, true},
		{StatusDelivered, StatusPaid, false},
		{StatusCanceled, StatusPaid, false},
		{StatusRefunded, StatusCreated, false},
		{"bogus", StatusPaid, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestCheckoutRequestValidation(t *testing.T) {
	valid := CheckoutRequest{
		ContactName:     "Jane Doe",
		ContactEmail:    "jane@example.com",
		ShippingAddress: "1 Main St",
		ShippingCity:    "Springfield",
		ShippingCountry: "US",
	}
	assert.NoError(t, valid.Validate())

	bad := valid
	bad.ContactEmail = "not-an-email"
	assert.Error(t, bad.Validate())

	missing := valid
	missing.ShippingAddress = ""
	assert.Error(t, missing.Validate())
}

func TestUpdateStatusRequestValidation(t *testing.T) {
	assert.NoError(t, UpdateStatusRequest{Status: StatusPaid}.Validate())
	assert.Error(t, UpdateStatusRequest{Status: "unknown"}.Validate())
	assert.Error(t, UpdateStatusRequest{}.Validate())
}
