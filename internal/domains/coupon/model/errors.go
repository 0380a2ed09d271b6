package model

import "errors"

// Error codes surfaced in API envelopes.
const (
	ErrCodeCouponNotFound = "CPN001"
	ErrCodeDuplicateCode  = "CPN002"
	ErrCodeCouponInvalid  = "CPN003"
)

var (
	ErrCouponNotFound  = errors.New("coupon not found")
	ErrDuplicateCode   = errors.New("coupon code already exists")
	ErrCouponExhausted = errors.New("coupon usage limit reached")
)

// Rejection reasons shown to customers. These are display strings, matched
// by tests, so wording changes are breaking.
const (
	ReasonNotFound        = "coupon code not found"
	ReasonInactive        = "coupon is not active"
	ReasonNotYetAvailable = "coupon is not yet available"
	ReasonExpired         = "coupon has expired"
	ReasonLimitReached    = "coupon usage limit reached"
	ReasonUserLimit       = "you have already used this coupon the maximum number of times"
	ReasonMinSubtotal     = "cart subtotal does not meet the coupon minimum"
	ReasonNotApplicable   = "coupon does not apply to any item in the cart"
)
