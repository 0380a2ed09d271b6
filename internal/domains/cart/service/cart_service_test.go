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

	"storefront-backend/internal/domains/cart/model"
	couponmodel "storefront-backend/internal/domains/coupon/model"
	productmodel "storefront-backend/internal/domains/product/model"
)

type mockCartRepo struct {
	mock.Mock
}

func (m *mockCartRepo) Create(ctx context.Context, cart *model.Cart) error {
	return m.Called(ctx, cart).Error(0)
}

func (m *mockCartRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Cart, error) {
	args := m.Called(ctx, id)
	if c := args.Get(0); c != nil {
		return c.(*model.Cart), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCartRepo) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	args := m.Called(ctx, userID)
	if c := args.Get(0); c != nil {
		return c.(*model.Cart), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCartRepo) FindActiveBySession(ctx context.Context, sessionID string) (*model.Cart, error) {
	args := m.Called(ctx, sessionID)
	if c := args.Get(0); c != nil {
		return c.(*model.Cart), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCartRepo) List(ctx context.Context, status string, page, limit int) ([]*model.Cart, int, error) {
	args := m.Called(ctx, status, page, limit)
	return args.Get(0).([]*model.Cart), args.Int(1), args.Error(2)
}

func (m *mockCartRepo) UpsertItem(ctx context.Context, cartID, productID uuid.UUID, productName string, unitPrice decimal.Decimal, quantity int) error {
	return m.Called(ctx, cartID, productID, productName, unitPrice, quantity).Error(0)
}

func (m *mockCartRepo) SetItemQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	return m.Called(ctx, cartID, productID, quantity).Error(0)
}

func (m *mockCartRepo) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) error {
	return m.Called(ctx, cartID, productID).Error(0)
}

func (m *mockCartRepo) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	return m.Called(ctx, cartID).Error(0)
}

func (m *mockCartRepo) SetCoupon(ctx context.Context, cartID uuid.UUID, code *string) error {
	return m.Called(ctx, cartID, code).Error(0)
}

func (m *mockCartRepo) SetUser(ctx context.Context, cartID uuid.UUID, userID uuid.UUID) error {
	return m.Called(ctx, cartID, userID).Error(0)
}

func (m *mockCartRepo) SetStatus(ctx context.Context, cartID uuid.UUID, status string) error {
	return m.Called(ctx, cartID, status).Error(0)
}

func (m *mockCartRepo) SetStatusTx(ctx context.Context, tx pgx.Tx, cartID uuid.UUID, status string) error {
	return m.Called(ctx, tx, cartID, status).Error(0)
}

func (m *mockCartRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCartRepo) AbandonExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) Create(ctx context.Context, product *productmodel.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*productmodel.Product, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*productmodel.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepo) FindBySlug(ctx context.Context, slug string) (*productmodel.Product, error) {
	args := m.Called(ctx, slug)
	if p := args.Get(0); p != nil {
		return p.(*productmodel.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*productmodel.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*productmodel.Product), args.Error(1)
}

func (m *mockProductRepo) List(ctx context.Context, filter *productmodel.ListProductsFilter) ([]*productmodel.Product, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*productmodel.Product), args.Int(1), args.Error(2)
}

func (m *mockProductRepo) Update(ctx context.Context, product *productmodel.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockProductRepo) UpdateImages(ctx context.Context, id uuid.UUID, imageURL, thumbnailURL *string) error {
	return m.Called(ctx, id, imageURL, thumbnailURL).Error(0)
}

func (m *mockProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockValidator struct {
	mock.Mock
}

func (m *mockValidator) ValidateForCart(ctx context.Context, code string, userID *uuid.UUID, lines []couponmodel.CartLine) (*couponmodel.ValidationResult, error) {
	args := m.Called(ctx, code, userID, lines)
	if r := args.Get(0); r != nil {
		return r.(*couponmodel.ValidationResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func activeCart(items ...model.CartItem) *model.Cart {
	return &model.Cart{
		ID:     uuid.New(),
		Status: model.StatusActive,
		Items:  items,
	}
}

func newCartService(repo *mockCartRepo, products *mockProductRepo, validator *mockValidator) ServiceInterface {
	return NewCartService(repo, products, validator)
}

func TestAddItemUsesLiveProductPrice(t *testing.T) {
	cart := activeCart()
	product := &productmodel.Product{
		ID:       uuid.New(),
		Name:     "Widget",
		Price:    decimal.NewFromFloat(9.99),
		IsActive: true,
	}

	repo := new(mockCartRepo)
	products := new(mockProductRepo)
	repo.On("FindByID", mock.Anything, cart.ID).Return(cart, nil)
	products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	repo.On("UpsertItem", mock.Anything, cart.ID, product.ID, "Widget", product.Price, 2).Return(nil)

	svc := newCartService(repo, products, new(mockValidator))
	_, err := svc.AddItem(context.Background(), cart.ID, &model.AddItemRequest{ProductID: product.ID, Quantity: 2})

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestAddItemRejectsInactiveProduct(t *testing.T) {
	cart := activeCart()
	product := &productmodel.Product{ID: uuid.New(), Name: "Gone", IsActive: false}

	repo := new(mockCartRepo)
	products := new(mockProductRepo)
	repo.On("FindByID", mock.Anything, cart.ID).Return(cart, nil)
	products.On("FindByID", mock.Anything, product.ID).Return(product, nil)

	svc := newCartService(repo, products, new(mockValidator))
	_, err := svc.AddItem(context.Background(), cart.ID, &model.AddItemRequest{ProductID: product.ID, Quantity: 1})

	assert.ErrorIs(t, err, productmodel.ErrProductInactive)
	repo.AssertNotCalled(t, "UpsertItem")
}

func TestAddItemRejectsConvertedCart(t *testing.T) {
	cart := activeCart()
	cart.Status = model.StatusConverted

	repo := new(mockCartRepo)
	repo.On("FindByID", mock.Anything, cart.ID).Return(cart, nil)

	svc := newCartService(repo, new(mockProductRepo), new(mockValidator))
	_, err := svc.AddItem(context.Background(), cart.ID, &model.AddItemRequest{ProductID: uuid.New(), Quantity: 1})

	assert.ErrorIs(t, err, model.ErrCartNotActive)
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	productID := uuid.New()
	cart := activeCart(model.CartItem{ProductID: productID, Quantity: 2})

	repo := new(mockCartRepo)
	repo.On("FindByID", mock.Anything, cart.ID).Return(cart, nil)
	repo.On("RemoveItem", mock.Anything, cart.ID, productID).Return(nil)

	svc := newCartService(repo, new(mockProductRepo), new(mockValidator))
	_, err := svc.UpdateQuantity(context.Background(), cart.ID, productID, 0)

	require.NoError(t, err)
	repo.AssertCalled(t, "RemoveItem", mock.Anything, cart.ID, productID)
	repo.AssertNotCalled(t, "SetItemQuantity")
}

func TestClearCartDropsCoupon(t *testing.T) {
	code := "SAVE10"
	cart := activeCart(model.CartItem{ProductID: uuid.New(), Quantity: 1})
	cart.CouponCode = &code

	repo := new(mockCartRepo)
	repo.On("FindByID", mock.Anything, cart.ID).Return(cart, nil)
	repo.On("ClearItems", mock.Anything, cart.ID).Return(nil)
	repo.On("SetCoupon", mock.Anything, cart.ID, (*string)(nil)).Return(nil)

	svc := newCartService(repo, new(mockProductRepo), new(mockValidator))
	_, err := svc.ClearCart(context.Background(), cart.ID)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestApplyCouponEmptyCart(t *testing.T) {
	cart := activeCart()

	repo := new(mockCartRepo)
	repo.On("FindByID", mock.Anything, cart.ID).Return(cart, nil)

	svc := newCartService(repo, new(mockProductRepo), new(mockValidator))
	_, err := svc.ApplyCoupon(context.Background(), cart.ID, nil, "SAVE10")

	assert.ErrorIs(t, err, model.ErrCartEmpty)
}

func TestApplyCouponRejectionDoesNotStoreCode(t *testing.T) {
	productID := uuid.New()
	cart := activeCart(model.CartItem{ProductID: productID, UnitPrice: decimal.NewFromInt(10), Quantity: 1})

	repo := new(mockCartRepo)
	products := new(mockProductRepo)
	validator := new(mockValidator)
	repo.On("FindByID", mock.Anything, cart.ID).Return(cart, nil)
	products.On("FindByIDs", mock.Anything, mock.Anything).Return([]*productmodel.Product{{ID: productID}}, nil)
	validator.On("ValidateForCart", mock.Anything, "EXPIRED", (*uuid.UUID)(nil), mock.Anything).
		Return(&couponmodel.ValidationResult{Valid: false, Reason: couponmodel.ReasonExpired}, nil)

	svc := newCartService(repo, products, validator)
	result, err := svc.ApplyCoupon(context.Background(), cart.ID, nil, "EXPIRED")

	require.NoError(t, err)
	assert.False(t, result.Valid)
	repo.AssertNotCalled(t, "SetCoupon")
}

func TestMigrateInvalidStrategy(t *testing.T) {
	svc := newCartService(new(mockCartRepo), new(mockProductRepo), new(mockValidator))

	err := svc.MigrateAnonymousCart(context.Background(), uuid.New(), "sess", "swap")

	assert.ErrorIs(t, err, model.ErrInvalidStrategy)
}

func TestMigrateNoAnonymousCart(t *testing.T) {
	repo := new(mockCartRepo)
	repo.On("FindActiveBySession", mock.Anything, "sess").Return(nil, model.ErrCartNotFound)

	svc := newCartService(repo, new(mockProductRepo), new(mockValidator))
	err := svc.MigrateAnonymousCart(context.Background(), uuid.New(), "sess", model.MigrateMerge)

	assert.NoError(t, err)
}

func TestMigrateClaimsCartWhenUserHasNone(t *testing.T) {
	userID := uuid.New()
	anon := activeCart(model.CartItem{ProductID: uuid.New(), Quantity: 1})

	repo := new(mockCartRepo)
	repo.On("FindActiveBySession", mock.Anything, "sess").Return(anon, nil)
	repo.On("FindActiveByUser", mock.Anything, userID).Return(nil, model.ErrCartNotFound)
	repo.On("SetUser", mock.Anything, anon.ID, userID).Return(nil)

	svc := newCartService(repo, new(mockProductRepo), new(mockValidator))
	err := svc.MigrateAnonymousCart(context.Background(), userID, "sess", model.MigrateMerge)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestMigrateDiscardAbandonsAnonymousCart(t *testing.T) {
	userID := uuid.New()
	anon := activeCart(model.CartItem{ProductID: uuid.New(), Quantity: 1})
	userCart := activeCart(model.CartItem{ProductID: uuid.New(), Quantity: 3})

	repo := new(mockCartRepo)
	repo.On("FindActiveBySession", mock.Anything, "sess").Return(anon, nil)
	repo.On("FindActiveByUser", mock.Anything, userID).Return(userCart, nil)
	repo.On("SetStatus", mock.Anything, anon.ID, model.StatusAbandoned).Return(nil)

	svc := newCartService(repo, new(mockProductRepo), new(mockValidator))
	err := svc.MigrateAnonymousCart(context.Background(), userID, "sess", model.MigrateDiscard)

	require.NoError(t, err)
	repo.AssertNotCalled(t, "UpsertItem")
}

func TestMigrateMergeSumsQuantities(t *testing.T) {
	userID := uuid.New()
	sharedProduct := uuid.New()
	anon := activeCart(model.CartItem{
		ProductID:   sharedProduct,
		ProductName: "Widget",
		UnitPrice:   decimal.NewFromInt(10),
		Quantity:    2,
	})
	userCart := activeCart(model.CartItem{ProductID: sharedProduct, Quantity: 1})

	repo := new(mockCartRepo)
	repo.On("FindActiveBySession", mock.Anything, "sess").Return(anon, nil)
	repo.On("FindActiveByUser", mock.Anything, userID).Return(userCart, nil)
	repo.On("UpsertItem", mock.Anything, userCart.ID, sharedProduct, "Widget", anon.Items[0].UnitPrice, 2).Return(nil)
	repo.On("SetStatus", mock.Anything, anon.ID, model.StatusAbandoned).Return(nil)

	svc := newCartService(repo, new(mockProductRepo), new(mockValidator))
	err := svc.MigrateAnonymousCart(context.Background(), userID, "sess", model.MigrateMerge)

	require.NoError(t, err)
	repo.AssertExpectations(t)
}
