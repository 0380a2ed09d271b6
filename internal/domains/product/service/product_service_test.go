package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/domains/product/model"
	"storefront-backend/internal/shared"
)

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) Create(ctx context.Context, product *model.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *mockProductRepo) FindBySlug(ctx context.Context, slug string) (*model.Product, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *mockProductRepo) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Product), args.Error(1)
}

func (m *mockProductRepo) List(ctx context.Context, filter *model.ListProductsFilter) ([]*model.Product, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*model.Product), args.Int(1), args.Error(2)
}

func (m *mockProductRepo) Update(ctx context.Context, product *model.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *mockProductRepo) UpdateImages(ctx context.Context, id uuid.UUID, imageURL, thumbnailURL *string) error {
	args := m.Called(ctx, id, imageURL, thumbnailURL)
	return args.Error(0)
}

func (m *mockProductRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// stubEnqueuer records enqueued tasks or fails every call.
type stubEnqueuer struct {
	err   error
	tasks []*asynq.Task
}

func (s *stubEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	s.tasks = append(s.tasks, task)
	return &asynq.TaskInfo{}, nil
}

func TestDeleteEnqueuesImageCleanup(t *testing.T) {
	repo := new(mockProductRepo)
	id := uuid.New()
	repo.On("Delete", mock.Anything, id).Return(nil)

	enq := &stubEnqueuer{}
	svc := &productService{repo: repo, asynqClient: enq}

	require.NoError(t, svc.Delete(context.Background(), id))

	require.Len(t, enq.tasks, 1)
	assert.Equal(t, shared.TypeDeleteProductImages, enq.tasks[0].Type())
	repo.AssertExpectations(t)
}

func TestDeleteSucceedsWhenEnqueueFails(t *testing.T) {
	repo := new(mockProductRepo)
	id := uuid.New()
	repo.On("Delete", mock.Anything, id).Return(nil)

	svc := &productService{
		repo:        repo,
		asynqClient: &stubEnqueuer{err: errors.New("connection refused")},
	}

	// Image cleanup is best-effort; the delete itself must not fail.
	assert.NoError(t, svc.Delete(context.Background(), id))
}

func TestDeleteSkipsEnqueueWithoutClient(t *testing.T) {
	repo := new(mockProductRepo)
	id := uuid.New()
	repo.On("Delete", mock.Anything, id).Return(nil)

	svc := &productService{repo: repo}

	assert.NoError(t, svc.Delete(context.Background(), id))
}
