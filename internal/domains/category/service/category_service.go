package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"storefront-backend/internal/domains/category/model"
	"storefront-backend/internal/domains/category/repository"
	"storefront-backend/internal/shared/utils"
)

type ServiceInterface interface {
	Create(ctx context.Context, req *model.CreateCategoryRequest) (*model.Category, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	GetBySlug(ctx context.Context, slug string) (*model.Category, error)
	List(ctx context.Context, includeInactive bool) ([]*model.Category, error)
	GetTree(ctx context.Context) ([]*model.CategoryNode, error)
	GetBreadcrumb(ctx context.Context, id uuid.UUID) ([]*model.Category, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateCategoryRequest) (*model.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) ServiceInterface {
	return &categoryService{repo: repo}
}

func (s *categoryService) Create(ctx context.Context, req *model.CreateCategoryRequest) (*model.Category, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.ParentID != nil {
		if _, err := s.repo.FindByID(ctx, *req.ParentID); err != nil {
			return nil, model.ErrParentNotFound
		}
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	category := &model.Category{
		ID:          uuid.New(),
		Name:        req.Name,
		Slug:        utils.GenerateSlug(req.Name),
		Description: req.Description,
		ParentID:    req.ParentID,
		IsActive:    isActive,
	}

	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}

	return category, nil
}

func (s *categoryService) GetByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *categoryService) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	return s.repo.FindBySlug(ctx, slug)
}

func (s *categoryService) List(ctx context.Context, includeInactive bool) ([]*model.Category, error) {
	return s.repo.List(ctx, includeInactive)
}

// GetTree builds the category hierarchy in memory from a single list query.
func (s *categoryService) GetTree(ctx context.Context) ([]*model.CategoryNode, error) {
	categories, err := s.repo.List(ctx, false)
	if err != nil {
		return nil, err
	}

	nodes := make(map[uuid.UUID]*model.CategoryNode, len(categories))
	for _, c := range categories {
		nodes[c.ID] = &model.CategoryNode{Category: *c, Children: []*model.CategoryNode{}}
	}

	var roots []*model.CategoryNode
	for _, c := range categories {
		node := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	return roots, nil
}

// GetBreadcrumb walks parents up to the root, returned root-first.
func (s *categoryService) GetBreadcrumb(ctx context.Context, id uuid.UUID) ([]*model.Category, error) {
	var chain []*model.Category
	seen := map[uuid.UUID]bool{}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	for current != nil {
		if seen[current.ID] {
			return nil, fmt.Errorf("category hierarchy contains a cycle at %s", current.ID)
		}
		seen[current.ID] = true
		chain = append([]*model.Category{current}, chain...)

		if current.ParentID == nil {
			break
		}
		current, err = s.repo.FindByID(ctx, *current.ParentID)
		if err != nil {
			return nil, err
		}
	}

	return chain, nil
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateCategoryRequest) (*model.Category, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		existing.Name = *req.Name
		existing.Slug = utils.GenerateSlug(*req.Name)
	}
	if req.Description != nil {
		existing.Description = req.Description
	}
	if req.ParentID != nil {
		if *req.ParentID == id {
			return nil, model.ErrCyclicParent
		}
		// Reparenting under a descendant would detach the subtree into a cycle
		breadcrumb, err := s.GetBreadcrumb(ctx, *req.ParentID)
		if err != nil {
			return nil, model.ErrParentNotFound
		}
		for _, ancestor := range breadcrumb {
			if ancestor.ID == id {
				return nil, model.ErrCyclicParent
			}
		}
		existing.ParentID = req.ParentID
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	return existing, nil
}

func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	children, err := s.repo.ListChildren(ctx, id)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		return model.ErrCategoryHasChildren
	}

	return s.repo.Delete(ctx, id)
}
