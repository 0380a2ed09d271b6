package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/domains/coupon/model"
)

type mockCouponRepo struct {
	mock.Mock
}

func (m *mockCouponRepo) Create(ctx context.Context, coupon *model.Coupon) error {
	return m.Called(ctx, coupon).Error(0)
}

func (m *mockCouponRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	args := m.Called(ctx, id)
	if c := args.Get(0); c != nil {
		return c.(*model.Coupon), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCouponRepo) FindByCode(ctx context.Context, code string) (*model.Coupon, error) {
	args := m.Called(ctx, code)
	if c := args.Get(0); c != nil {
		return c.(*model.Coupon), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCouponRepo) FindByCodeForUpdate(ctx context.Context, tx pgx.Tx, code string) (*model.Coupon, error) {
	args := m.Called(ctx, tx, code)
	if c := args.Get(0); c != nil {
		return c.(*model.Coupon), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCouponRepo) List(ctx context.Context, page, limit int) ([]*model.Coupon, int, error) {
	args := m.Called(ctx, page, limit)
	return args.Get(0).([]*model.Coupon), args.Int(1), args.Error(2)
}

func (m *mockCouponRepo) Update(ctx context.Context, coupon *model.Coupon) error {
	return m.Called(ctx, coupon).Error(0)
}

func (m *mockCouponRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCouponRepo) CountRedemptions(ctx context.Context, couponID uuid.UUID) (int, error) {
	args := m.Called(ctx, couponID)
	return args.Int(0), args.Error(1)
}

func (m *mockCouponRepo) CountUserRedemptions(ctx context.Context, couponID, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, couponID, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockCouponRepo) CountRedemptionsTx(ctx context.Context, tx pgx.Tx, couponID uuid.UUID) (int, error) {
	args := m.Called(ctx, tx, couponID)
	return args.Int(0), args.Error(1)
}

func (m *mockCouponRepo) CountUserRedemptionsTx(ctx context.Context, tx pgx.Tx, couponID, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, tx, couponID, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockCouponRepo) CreateRedemptionTx(ctx context.Context, tx pgx.Tx, redemption *model.Redemption) error {
	return m.Called(ctx, tx, redemption).Error(0)
}

func (m *mockCouponRepo) ListRedemptions(ctx context.Context, couponID uuid.UUID, page, limit int) ([]*model.Redemption, int, error) {
	args := m.Called(ctx, couponID, page, limit)
	return args.Get(0).([]*model.Redemption), args.Int(1), args.Error(2)
}

func (m *mockCouponRepo) DeactivateEnded(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

var fixedNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(repo *mockCouponRepo) *couponService {
	return &couponService{repo: repo, now: func() time.Time { return fixedNow }}
}

func activeCoupon() *model.Coupon {
	return &model.Coupon{
		ID:       uuid.New(),
		Code:     "SAVE10",
		Type:     model.TypePercent,
		Value:    decimal.NewFromInt(10),
		IsActive: true,
	}
}

func someLines() []model.CartLine {
	return []model.CartLine{
		{ProductID: uuid.New(), UnitPrice: decimal.NewFromInt(30), Quantity: 2},
	}
}

func intPtr(v int) *int { return &v }

func TestValidateForCartUnknownCode(t *testing.T) {
	repo := new(mockCouponRepo)
	repo.On("FindByCode", mock.Anything, "NOPE").Return(nil, model.ErrCouponNotFound)

	result, err := newTestService(repo).ValidateForCart(context.Background(), "NOPE", nil, someLines())

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, model.ReasonNotFound, result.Reason)
}

func TestValidateForCartInactive(t *testing.T) {
	coupon := activeCoupon()
	coupon.IsActive = false

	repo := new(mockCouponRepo)
	repo.On("FindByCode", mock.Anything, coupon.Code).Return(coupon, nil)

	result, err := newTestService(repo).ValidateForCart(context.Background(), coupon.Code, nil, someLines())

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, model.ReasonInactive, result.Reason)
}

func TestValidateForCartNotYetAvailable(t *testing.T) {
	starts := fixedNow.Add(24 * time.Hour)
	coupon := activeCoupon()
	coupon.StartsAt = &starts

	repo := new(mockCouponRepo)
	repo.On("FindByCode", mock.Anything, coupon.Code).Return(coupon, nil)

	result, err := newTestService(repo).ValidateForCart(context.Background(), coupon.Code, nil, someLines())

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, model.ReasonNotYetAvailable, result.Reason)
}

func TestValidateForCartExpired(t *testing.T) {
	ends := fixedNow.Add(-time.Hour)
	coupon := activeCoupon()
	coupon.EndsAt = &ends

	repo := new(mockCouponRepo)
	repo.On("FindByCode", mock.Anything, coupon.Code).Return(coupon, nil)

	result, err := newTestService(repo).ValidateForCart(context.Background(), coupon.Code, nil, someLines())

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, model.ReasonExpired, result.Reason)
}

func TestValidateForCartGlobalLimit(t *testing.T) {
	coupon := activeCoupon()
	coupon.MaxUses = intPtr(5)

	repo := new(mockCouponRepo)
	repo.On("FindByCode", mock.Anything, coupon.Code).Return(coupon, nil)
	repo.On("CountRedemptions", mock.Anything, coupon.ID).Return(5, nil)

	result, err := newTestService(repo).ValidateForCart(context.Background(), coupon.Code, nil, someLines())

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, model.ReasonLimitReached, result.Reason)
}

func TestValidateForCartUnderGlobalLimit(t *testing.T) {
	coupon := activeCoupon()
	coupon.MaxUses = intPtr(5)

	repo := new(mockCouponRepo)
	repo.On("FindByCode", mock.Anything, coupon.Code).Return(coupon, nil)
	repo.On("CountRedemptions", mock.Anything, coupon.ID).Return(4, nil)

	result, err := newTestService(repo).ValidateForCart(context.Background(), coupon.Code, nil, someLines())

	require.NoError(t, err)
	assert.True(t, result.Valid)
	require.NotNil(t, result.Terms)
	assert.Equal(t, coupon.ID, result.Terms.CouponID)
}

func TestValidateForCartPerUserLimit(t *testing.T) {
	coupon := activeCoupon()
	coupon.MaxUsesPerUser = intPtr(1)
	userID := uuid.New()

	repo := new(mockCouponRepo)
	repo.On("FindByCode", mock.Anything, coupon.Code).Return(coupon, nil)
	repo.On("CountUserRedemptions", mock.Anything, coupon.ID, userID).Return(1, nil)

	result, err := newTestService(repo).ValidateForCart(context.Background(), coupon.Code, &userID, someLines())

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, model.ReasonUserLimit, result.Reason)
}

func TestValidateForCartPerUserLimitSkippedForGuests(t *testing.T) {
	coupon := activeCoupon()
	coupon.MaxUsesPerUser = intPtr(1)

	repo := new(mockCouponRepo)
	repo.On("FindByCode", mock.Anything, coupon.Code).Return(coupon, nil)

	result, err := newTestService(repo).ValidateForCart(context.Background(), coupon.Code, nil, someLines())

	require.NoError(t, err)
	assert.True(t, result.Valid, "guests have no redemption history to count")
}

func TestValidateForCartMinSubtotal(t *testing.T) {
	min := decimal.NewFromInt(100)
	coupon := activeCoupon()
	coupon.MinSubtotal = &min

	repo := new(mockCouponRepo)
	repo.On("FindByCode", mock.Anything, coupon.Code).Return(coupon, nil)

	// 30 x 2 = 60, below the 100 minimum.
	result, err := newTestService(repo).ValidateForCart(context.Background(), coupon.Code, nil, someLines())

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, model.ReasonMinSubtotal, result.Reason)
}

func TestValidateForCartNoEligibleItems(t *testing.T) {
	coupon := activeCoupon()
	coupon.ProductIDs = []uuid.UUID{uuid.New()}

	repo := new(mockCouponRepo)
	repo.On("FindByCode", mock.Anything, coupon.Code).Return(coupon, nil)

	result, err := newTestService(repo).ValidateForCart(context.Background(), coupon.Code, nil, someLines())

	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, model.ReasonNotApplicable, result.Reason)
}

func TestValidateForCartEligibleByCategory(t *testing.T) {
	categoryID := uuid.New()
	coupon := activeCoupon()
	coupon.CategoryIDs = []uuid.UUID{categoryID}

	lines := []model.CartLine{
		{ProductID: uuid.New(), CategoryID: &categoryID, UnitPrice: decimal.NewFromInt(20), Quantity: 1},
	}

	repo := new(mockCouponRepo)
	repo.On("FindByCode", mock.Anything, coupon.Code).Return(coupon, nil)

	result, err := newTestService(repo).ValidateForCart(context.Background(), coupon.Code, nil, lines)

	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestCheckApplicabilitySkipsCartChecks(t *testing.T) {
	// Minimum subtotal and item restrictions cannot be judged without a
	// cart, so the display check passes on the remaining criteria alone.
	min := decimal.NewFromInt(1000)
	coupon := activeCoupon()
	coupon.MinSubtotal = &min
	coupon.ProductIDs = []uuid.UUID{uuid.New()}

	repo := new(mockCouponRepo)
	repo.On("FindByCode", mock.Anything, coupon.Code).Return(coupon, nil)

	result, err := newTestService(repo).CheckApplicability(context.Background(), coupon.Code, nil)

	require.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestCreateCouponRejectsPercentOver100(t *testing.T) {
	repo := new(mockCouponRepo)

	_, err := newTestService(repo).Create(context.Background(), &model.CreateCouponRequest{
		Code:  "BIG",
		Type:  model.TypePercent,
		Value: 150,
	})

	require.Error(t, err)
	repo.AssertNotCalled(t, "Create")
}

func TestUpdateCouponRejectsValueOver100OnPercentCoupon(t *testing.T) {
	repo := new(mockCouponRepo)
	coupon := activeCoupon()
	repo.On("FindByID", mock.Anything, coupon.ID).Return(coupon, nil)

	// The request resends only the value; the stored type is percent.
	value := 150.0
	_, err := newTestService(repo).Update(context.Background(), coupon.ID, &model.UpdateCouponRequest{
		Value: &value,
	})

	require.Error(t, err)
	repo.AssertNotCalled(t, "Update")
}
