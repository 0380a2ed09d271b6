package service

import (
	"context"
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"storefront-backend/internal/domains/coupon/model"
	"storefront-backend/internal/domains/coupon/repository"
)

type ServiceInterface interface {
	// ValidateForCart runs the full check sequence against cart contents.
	// A rejection is reported in the result, not as an error.
	ValidateForCart(ctx context.Context, code string, userID *uuid.UUID, lines []model.CartLine) (*model.ValidationResult, error)

	// CheckApplicability validates a code without cart contents, for
	// pre-checkout display. Skips the subtotal and item-eligibility checks.
	CheckApplicability(ctx context.Context, code string, userID *uuid.UUID) (*model.ValidationResult, error)

	// ValidateForCheckout re-runs validation inside the checkout
	// transaction with the coupon row locked, closing the window where two
	// checkouts could both pass a usage cap.
	ValidateForCheckout(ctx context.Context, tx pgx.Tx, code string, userID *uuid.UUID, lines []model.CartLine) (*model.ValidationResult, error)

	RecordRedemption(ctx context.Context, tx pgx.Tx, couponID uuid.UUID, userID *uuid.UUID, orderID uuid.UUID, amount decimal.Decimal) error

	Create(ctx context.Context, req *model.CreateCouponRequest) (*model.Coupon, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error)
	List(ctx context.Context, page, limit int) ([]*model.Coupon, int, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateCouponRequest) (*model.Coupon, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ListRedemptions(ctx context.Context, couponID uuid.UUID, page, limit int) ([]*model.Redemption, int, error)
	DeactivateEnded(ctx context.Context, before time.Time) (int64, error)
}

type couponService struct {
	repo repository.CouponRepository
	now  func() time.Time
}

func NewCouponService(repo repository.CouponRepository) ServiceInterface {
	return &couponService{repo: repo, now: time.Now}
}

func (s *couponService) ValidateForCart(ctx context.Context, code string, userID *uuid.UUID, lines []model.CartLine) (*model.ValidationResult, error) {
	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, model.ErrCouponNotFound) {
			return reject(model.ReasonNotFound), nil
		}
		return nil, err
	}

	counts := countFuncs{
		global: func(ctx context.Context) (int, error) { return s.repo.CountRedemptions(ctx, coupon.ID) },
		user: func(ctx context.Context, uid uuid.UUID) (int, error) {
			return s.repo.CountUserRedemptions(ctx, coupon.ID, uid)
		},
	}

	return s.runChecks(ctx, coupon, userID, lines, counts)
}

func (s *couponService) CheckApplicability(ctx context.Context, code string, userID *uuid.UUID) (*model.ValidationResult, error) {
	coupon, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, model.ErrCouponNotFound) {
			return reject(model.ReasonNotFound), nil
		}
		return nil, err
	}

	counts := countFuncs{
		global: func(ctx context.Context) (int, error) { return s.repo.CountRedemptions(ctx, coupon.ID) },
		user: func(ctx context.Context, uid uuid.UUID) (int, error) {
			return s.repo.CountUserRedemptions(ctx, coupon.ID, uid)
		},
	}

	// nil lines skips the cart-dependent checks.
	return s.runChecks(ctx, coupon, userID, nil, counts)
}

func (s *couponService) ValidateForCheckout(ctx context.Context, tx pgx.Tx, code string, userID *uuid.UUID, lines []model.CartLine) (*model.ValidationResult, error) {
	coupon, err := s.repo.FindByCodeForUpdate(ctx, tx, code)
	if err != nil {
		if errors.Is(err, model.ErrCouponNotFound) {
			return reject(model.ReasonNotFound), nil
		}
		return nil, err
	}

	counts := countFuncs{
		global: func(ctx context.Context) (int, error) { return s.repo.CountRedemptionsTx(ctx, tx, coupon.ID) },
		user: func(ctx context.Context, uid uuid.UUID) (int, error) {
			return s.repo.CountUserRedemptionsTx(ctx, tx, coupon.ID, uid)
		},
	}

	return s.runChecks(ctx, coupon, userID, lines, counts)
}

func (s *couponService) RecordRedemption(ctx context.Context, tx pgx.Tx, couponID uuid.UUID, userID *uuid.UUID, orderID uuid.UUID, amount decimal.Decimal) error {
	return s.repo.CreateRedemptionTx(ctx, tx, &model.Redemption{
		ID:       uuid.New(),
		CouponID: couponID,
		UserID:   userID,
		OrderID:  orderID,
		Amount:   amount,
	})
}

type countFuncs struct {
	global func(ctx context.Context) (int, error)
	user   func(ctx context.Context, userID uuid.UUID) (int, error)
}

// runChecks evaluates the fixed check sequence, short-circuiting on the
// first failure. lines == nil limits the run to the cart-independent checks.
func (s *couponService) runChecks(ctx context.Context, coupon *model.Coupon, userID *uuid.UUID, lines []model.CartLine, counts countFuncs) (*model.ValidationResult, error) {
	now := s.now()

	if !coupon.IsActive {
		return reject(model.ReasonInactive), nil
	}

	if coupon.StartsAt != nil && now.Before(*coupon.StartsAt) {
		return reject(model.ReasonNotYetAvailable), nil
	}
	if coupon.EndsAt != nil && now.After(*coupon.EndsAt) {
		return reject(model.ReasonExpired), nil
	}

	if coupon.MaxUses != nil {
		used, err := counts.global(ctx)
		if err != nil {
			return nil, err
		}
		if used >= *coupon.MaxUses {
			return reject(model.ReasonLimitReached), nil
		}
	}

	if coupon.MaxUsesPerUser != nil && userID != nil {
		used, err := counts.user(ctx, *userID)
		if err != nil {
			return nil, err
		}
		if used >= *coupon.MaxUsesPerUser {
			return reject(model.ReasonUserLimit), nil
		}
	}

	if lines != nil {
		if coupon.MinSubtotal != nil {
			subtotal := decimal.Zero
			for _, line := range lines {
				subtotal = subtotal.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
			}
			if subtotal.LessThan(*coupon.MinSubtotal) {
				return reject(model.ReasonMinSubtotal), nil
			}
		}

		if coupon.IsRestricted() && !anyLineEligible(coupon, lines) {
			return reject(model.ReasonNotApplicable), nil
		}
	}

	return &model.ValidationResult{Valid: true, Terms: coupon.Terms()}, nil
}

// anyLineEligible reports whether at least one cart line matches the
// coupon's product or category restriction sets.
func anyLineEligible(coupon *model.Coupon, lines []model.CartLine) bool {
	products := make(map[uuid.UUID]struct{}, len(coupon.ProductIDs))
	for _, id := range coupon.ProductIDs {
		products[id] = struct{}{}
	}
	categories := make(map[uuid.UUID]struct{}, len(coupon.CategoryIDs))
	for _, id := range coupon.CategoryIDs {
		categories[id] = struct{}{}
	}

	for _, line := range lines {
		if _, ok := products[line.ProductID]; ok {
			return true
		}
		if line.CategoryID != nil {
			if _, ok := categories[*line.CategoryID]; ok {
				return true
			}
		}
	}
	return false
}

func reject(reason string) *model.ValidationResult {
	return &model.ValidationResult{Valid: false, Reason: reason}
}

// Admin CRUD.

func (s *couponService) Create(ctx context.Context, req *model.CreateCouponRequest) (*model.Coupon, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	coupon := &model.Coupon{
		ID:             uuid.New(),
		Code:           req.Code,
		Type:           req.Type,
		Value:          decimal.NewFromFloat(req.Value),
		MaxUses:        req.MaxUses,
		MaxUsesPerUser: req.MaxUsesPerUser,
		StartsAt:       req.StartsAt,
		EndsAt:         req.EndsAt,
		IsActive:       isActive,
		ProductIDs:     req.ProductIDs,
		CategoryIDs:    req.CategoryIDs,
	}
	if req.MinSubtotal != nil {
		min := decimal.NewFromFloat(*req.MinSubtotal)
		coupon.MinSubtotal = &min
	}

	if err := s.repo.Create(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

func (s *couponService) GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *couponService) List(ctx context.Context, page, limit int) ([]*model.Coupon, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.List(ctx, page, limit)
}

func (s *couponService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateCouponRequest) (*model.Coupon, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	coupon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Type != nil {
		coupon.Type = *req.Type
	}
	if req.Value != nil {
		coupon.Value = decimal.NewFromFloat(*req.Value)
	}
	if req.MinSubtotal != nil {
		min := decimal.NewFromFloat(*req.MinSubtotal)
		coupon.MinSubtotal = &min
	}
	if req.MaxUses != nil {
		coupon.MaxUses = req.MaxUses
	}
	if req.MaxUsesPerUser != nil {
		coupon.MaxUsesPerUser = req.MaxUsesPerUser
	}
	if req.StartsAt != nil {
		coupon.StartsAt = req.StartsAt
	}
	if req.EndsAt != nil {
		coupon.EndsAt = req.EndsAt
	}
	if req.IsActive != nil {
		coupon.IsActive = *req.IsActive
	}
	if req.ProductIDs != nil {
		coupon.ProductIDs = req.ProductIDs
	}
	if req.CategoryIDs != nil {
		coupon.CategoryIDs = req.CategoryIDs
	}

	// The percent cap holds for the effective type and value, not just
	// the fields present in this request.
	if coupon.Type == model.TypePercent && coupon.Value.GreaterThan(decimal.NewFromInt(100)) {
		return nil, validation.NewError("validation_percent_range", "percent value cannot exceed 100")
	}

	if err := s.repo.Update(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

func (s *couponService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *couponService) ListRedemptions(ctx context.Context, couponID uuid.UUID, page, limit int) ([]*model.Redemption, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if _, err := s.repo.FindByID(ctx, couponID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListRedemptions(ctx, couponID, page, limit)
}

func (s *couponService) DeactivateEnded(ctx context.Context, before time.Time) (int64, error) {
	return s.repo.DeactivateEnded(ctx, before)
}
