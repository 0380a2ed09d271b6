package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	productmodel "storefront-backend/internal/domains/product/model"
	"storefront-backend/internal/domains/review/model"
)

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) Create(ctx context.Context, review *model.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *mockReviewRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	args := m.Called(ctx, id)
	if r := args.Get(0); r != nil {
		return r.(*model.Review), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockReviewRepo) ListByProduct(ctx context.Context, productID uuid.UUID, approvedOnly bool, page, limit int) ([]*model.Review, int, error) {
	args := m.Called(ctx, productID, approvedOnly, page, limit)
	return args.Get(0).([]*model.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Review, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*model.Review), args.Error(1)
}

func (m *mockReviewRepo) ListByStatus(ctx context.Context, status string, page, limit int) ([]*model.Review, int, error) {
	args := m.Called(ctx, status, page, limit)
	return args.Get(0).([]*model.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepo) Update(ctx context.Context, review *model.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *mockReviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockReviewRepo) RatingSummary(ctx context.Context, productID uuid.UUID) (*model.RatingSummary, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(*model.RatingSummary), args.Error(1)
}

type mockProductFinder struct {
	mock.Mock
}

func (m *mockProductFinder) Create(ctx context.Context, product *productmodel.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockProductFinder) FindByID(ctx context.Context, id uuid.UUID) (*productmodel.Product, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*productmodel.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductFinder) FindBySlug(ctx context.Context, slug string) (*productmodel.Product, error) {
	args := m.Called(ctx, slug)
	if p := args.Get(0); p != nil {
		return p.(*productmodel.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProductFinder) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*productmodel.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*productmodel.Product), args.Error(1)
}

func (m *mockProductFinder) List(ctx context.Context, filter *productmodel.ListProductsFilter) ([]*productmodel.Product, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*productmodel.Product), args.Int(1), args.Error(2)
}

func (m *mockProductFinder) Update(ctx context.Context, product *productmodel.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *mockProductFinder) UpdateImages(ctx context.Context, id uuid.UUID, imageURL, thumbnailURL *string) error {
	return m.Called(ctx, id, imageURL, thumbnailURL).Error(0)
}

func (m *mockProductFinder) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func validCreateRequest(productID uuid.UUID) *model.CreateReviewRequest {
	return &model.CreateReviewRequest{
		ProductID: productID,
		Rating:    5,
		Content:   "Great value for the price.",
	}
}

func TestCreateReviewStartsPending(t *testing.T) {
	product := &productmodel.Product{ID: uuid.New(), Price: decimal.NewFromInt(10), IsActive: true}

	repo := new(mockReviewRepo)
	products := new(mockProductFinder)
	products.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(r *model.Review) bool {
		return r.Status == model.StatusPending
	})).Return(nil)

	svc := NewReviewService(repo, products)
	review, err := svc.Create(context.Background(), uuid.New(), validCreateRequest(product.ID))

	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, review.Status)
}

func TestCreateReviewInactiveProduct(t *testing.T) {
	product := &productmodel.Product{ID: uuid.New(), IsActive: false}

	repo := new(mockReviewRepo)
	products := new(mockProductFinder)
	products.On("FindByID", mock.Anything, product.ID).Return(product, nil)

	svc := NewReviewService(repo, products)
	_, err := svc.Create(context.Background(), uuid.New(), validCreateRequest(product.ID))

	assert.ErrorIs(t, err, productmodel.ErrProductInactive)
	repo.AssertNotCalled(t, "Create")
}

func TestUpdateReviewNotOwner(t *testing.T) {
	review := &model.Review{ID: uuid.New(), UserID: uuid.New(), CreatedAt: time.Now()}

	repo := new(mockReviewRepo)
	repo.On("FindByID", mock.Anything, review.ID).Return(review, nil)

	svc := NewReviewService(repo, new(mockProductFinder))
	_, err := svc.Update(context.Background(), uuid.New(), review.ID, &model.UpdateReviewRequest{})

	assert.ErrorIs(t, err, model.ErrNotReviewOwner)
}

func TestUpdateReviewOutsideEditWindow(t *testing.T) {
	userID := uuid.New()
	review := &model.Review{
		ID:        uuid.New(),
		UserID:    userID,
		CreatedAt: time.Now().Add(-8 * 24 * time.Hour),
	}

	repo := new(mockReviewRepo)
	repo.On("FindByID", mock.Anything, review.ID).Return(review, nil)

	svc := NewReviewService(repo, new(mockProductFinder))
	_, err := svc.Update(context.Background(), userID, review.ID, &model.UpdateReviewRequest{})

	assert.ErrorIs(t, err, model.ErrCannotEdit)
}

func TestUpdateReviewResetsModeration(t *testing.T) {
	userID := uuid.New()
	note := "checked by staff"
	review := &model.Review{
		ID:        uuid.New(),
		UserID:    userID,
		Status:    model.StatusApproved,
		AdminNote: &note,
		CreatedAt: time.Now(),
	}

	newRating := 2
	repo := new(mockReviewRepo)
	repo.On("FindByID", mock.Anything, review.ID).Return(review, nil)
	repo.On("Update", mock.Anything, mock.MatchedBy(func(r *model.Review) bool {
		return r.Status == model.StatusPending && r.AdminNote == nil && r.Rating == 2
	})).Return(nil)

	svc := NewReviewService(repo, new(mockProductFinder))
	updated, err := svc.Update(context.Background(), userID, review.ID, &model.UpdateReviewRequest{Rating: &newRating})

	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, updated.Status)
	repo.AssertExpectations(t)
}

func TestDeleteReviewAdminOverride(t *testing.T) {
	review := &model.Review{ID: uuid.New(), UserID: uuid.New()}

	repo := new(mockReviewRepo)
	repo.On("FindByID", mock.Anything, review.ID).Return(review, nil)
	repo.On("Delete", mock.Anything, review.ID).Return(nil)

	svc := NewReviewService(repo, new(mockProductFinder))

	assert.NoError(t, svc.Delete(context.Background(), uuid.New(), review.ID, true))
	assert.ErrorIs(t, svc.Delete(context.Background(), uuid.New(), review.ID, false), model.ErrNotReviewOwner)
}
