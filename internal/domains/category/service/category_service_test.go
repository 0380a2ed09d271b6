package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/domains/category/model"
)

type mockCategoryRepo struct {
	mock.Mock
}

func (m *mockCategoryRepo) Create(ctx context.Context, category *model.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *mockCategoryRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	args := m.Called(ctx, id)
	if c := args.Get(0); c != nil {
		return c.(*model.Category), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCategoryRepo) FindBySlug(ctx context.Context, slug string) (*model.Category, error) {
	args := m.Called(ctx, slug)
	if c := args.Get(0); c != nil {
		return c.(*model.Category), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCategoryRepo) List(ctx context.Context, includeInactive bool) ([]*model.Category, error) {
	args := m.Called(ctx, includeInactive)
	return args.Get(0).([]*model.Category), args.Error(1)
}

func (m *mockCategoryRepo) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*model.Category, error) {
	args := m.Called(ctx, parentID)
	return args.Get(0).([]*model.Category), args.Error(1)
}

func (m *mockCategoryRepo) Update(ctx context.Context, category *model.Category) error {
	return m.Called(ctx, category).Error(0)
}

func (m *mockCategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCategoryRepo) SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, slug, excludeID)
	return args.Bool(0), args.Error(1)
}

func TestGetTreeBuildsHierarchy(t *testing.T) {
	root := &model.Category{ID: uuid.New(), Name: "Electronics"}
	child := &model.Category{ID: uuid.New(), Name: "Phones", ParentID: &root.ID}
	grandchild := &model.Category{ID: uuid.New(), Name: "Accessories", ParentID: &child.ID}
	other := &model.Category{ID: uuid.New(), Name: "Books"}

	repo := new(mockCategoryRepo)
	repo.On("List", mock.Anything, false).Return([]*model.Category{root, child, grandchild, other}, nil)

	tree, err := NewCategoryService(repo).GetTree(context.Background())

	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, "Electronics", tree[0].Name)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "Phones", tree[0].Children[0].Name)
	require.Len(t, tree[0].Children[0].Children, 1)
	assert.Equal(t, "Accessories", tree[0].Children[0].Children[0].Name)
	assert.Empty(t, tree[1].Children)
}

func TestGetTreeOrphanedChildBecomesRoot(t *testing.T) {
	// Parent inactive and filtered out of the listing.
	missingParent := uuid.New()
	orphan := &model.Category{ID: uuid.New(), Name: "Orphan", ParentID: &missingParent}

	repo := new(mockCategoryRepo)
	repo.On("List", mock.Anything, false).Return([]*model.Category{orphan}, nil)

	tree, err := NewCategoryService(repo).GetTree(context.Background())

	require.NoError(t, err)
	require.Len(t, tree, 1)
	assert.Equal(t, "Orphan", tree[0].Name)
}

func TestGetBreadcrumbRootFirst(t *testing.T) {
	root := &model.Category{ID: uuid.New(), Name: "Electronics"}
	child := &model.Category{ID: uuid.New(), Name: "Phones", ParentID: &root.ID}
	leaf := &model.Category{ID: uuid.New(), Name: "Cases", ParentID: &child.ID}

	repo := new(mockCategoryRepo)
	repo.On("FindByID", mock.Anything, leaf.ID).Return(leaf, nil)
	repo.On("FindByID", mock.Anything, child.ID).Return(child, nil)
	repo.On("FindByID", mock.Anything, root.ID).Return(root, nil)

	crumb, err := NewCategoryService(repo).GetBreadcrumb(context.Background(), leaf.ID)

	require.NoError(t, err)
	require.Len(t, crumb, 3)
	assert.Equal(t, "Electronics", crumb[0].Name)
	assert.Equal(t, "Phones", crumb[1].Name)
	assert.Equal(t, "Cases", crumb[2].Name)
}

func TestGetBreadcrumbDetectsCycle(t *testing.T) {
	a := &model.Category{ID: uuid.New(), Name: "A"}
	b := &model.Category{ID: uuid.New(), Name: "B", ParentID: &a.ID}
	a.ParentID = &b.ID

	repo := new(mockCategoryRepo)
	repo.On("FindByID", mock.Anything, a.ID).Return(a, nil)
	repo.On("FindByID", mock.Anything, b.ID).Return(b, nil)

	_, err := NewCategoryService(repo).GetBreadcrumb(context.Background(), a.ID)

	assert.Error(t, err)
}

func TestUpdateRejectsSelfParent(t *testing.T) {
	id := uuid.New()
	existing := &model.Category{ID: id, Name: "Electronics"}

	repo := new(mockCategoryRepo)
	repo.On("FindByID", mock.Anything, id).Return(existing, nil)

	_, err := NewCategoryService(repo).Update(context.Background(), id, &model.UpdateCategoryRequest{ParentID: &id})

	assert.ErrorIs(t, err, model.ErrCyclicParent)
}

func TestUpdateRejectsDescendantParent(t *testing.T) {
	parent := &model.Category{ID: uuid.New(), Name: "Parent"}
	child := &model.Category{ID: uuid.New(), Name: "Child", ParentID: &parent.ID}

	repo := new(mockCategoryRepo)
	repo.On("FindByID", mock.Anything, parent.ID).Return(parent, nil)
	repo.On("FindByID", mock.Anything, child.ID).Return(child, nil)

	_, err := NewCategoryService(repo).Update(context.Background(), parent.ID, &model.UpdateCategoryRequest{ParentID: &child.ID})

	assert.ErrorIs(t, err, model.ErrCyclicParent)
}

func TestDeleteWithChildren(t *testing.T) {
	id := uuid.New()

	repo := new(mockCategoryRepo)
	repo.On("ListChildren", mock.Anything, id).Return([]*model.Category{{ID: uuid.New()}}, nil)

	err := NewCategoryService(repo).Delete(context.Background(), id)

	assert.ErrorIs(t, err, model.ErrCategoryHasChildren)
	repo.AssertNotCalled(t, "Delete")
}
