package service

import (
	"context"

	"github.com/google/uuid"

	productmodel "storefront-backend/internal/domains/product/model"
	productrepo "storefront-backend/internal/domains/product/repository"
	"storefront-backend/internal/domains/review/model"
	"storefront-backend/internal/domains/review/repository"
)

type ServiceInterface interface {
	Create(ctx context.Context, userID uuid.UUID, req *model.CreateReviewRequest) (*model.Review, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Review, error)
	ListForProduct(ctx context.Context, productID uuid.UUID, page, limit int) ([]*model.Review, int, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]*model.Review, error)
	ListPending(ctx context.Context, page, limit int) ([]*model.Review, int, error)
	Update(ctx context.Context, userID, reviewID uuid.UUID, req *model.UpdateReviewRequest) (*model.Review, error)
	Delete(ctx context.Context, userID, reviewID uuid.UUID, isAdmin bool) error
	Moderate(ctx context.Context, reviewID uuid.UUID, req *model.ModerateReviewRequest) (*model.Review, error)
	Summary(ctx context.Context, productID uuid.UUID) (*model.RatingSummary, error)
}

type reviewService struct {
	repo        repository.ReviewRepository
	productRepo productrepo.ProductRepository
}

func NewReviewService(repo repository.ReviewRepository, productRepo productrepo.ProductRepository) ServiceInterface {
	return &reviewService{repo: repo, productRepo: productRepo}
}

func (s *reviewService) Create(ctx context.Context, userID uuid.UUID, req *model.CreateReviewRequest) (*model.Review, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, productmodel.ErrProductInactive
	}

	review := &model.Review{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Title:     req.Title,
		Content:   req.Content,
		Status:    model.StatusPending,
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) GetByID(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *reviewService) ListForProduct(ctx context.Context, productID uuid.UUID, page, limit int) ([]*model.Review, int, error) {
	page, limit = normalizePage(page, limit)
	return s.repo.ListByProduct(ctx, productID, true, page, limit)
}

func (s *reviewService) ListMine(ctx context.Context, userID uuid.UUID) ([]*model.Review, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *reviewService) ListPending(ctx context.Context, page, limit int) ([]*model.Review, int, error) {
	page, limit = normalizePage(page, limit)
	return s.repo.ListByStatus(ctx, model.StatusPending, page, limit)
}

// Update edits the caller's own review within the edit window. Any edit
// sends the review back to moderation.
func (s *reviewService) Update(ctx context.Context, userID, reviewID uuid.UUID, req *model.UpdateReviewRequest) (*model.Review, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	review, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.UserID != userID {
		return nil, model.ErrNotReviewOwner
	}
	if !review.CanBeEdited() {
		return nil, model.ErrCannotEdit
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Title != nil {
		review.Title = req.Title
	}
	if req.Content != nil {
		review.Content = *req.Content
	}
	review.Status = model.StatusPending
	review.AdminNote = nil

	if err := s.repo.Update(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) Delete(ctx context.Context, userID, reviewID uuid.UUID, isAdmin bool) error {
	review, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if !isAdmin && review.UserID != userID {
		return model.ErrNotReviewOwner
	}
	return s.repo.Delete(ctx, reviewID)
}

func (s *reviewService) Moderate(ctx context.Context, reviewID uuid.UUID, req *model.ModerateReviewRequest) (*model.Review, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	review, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}

	review.Status = req.Status
	review.AdminNote = req.AdminNote

	if err := s.repo.Update(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) Summary(ctx context.Context, productID uuid.UUID) (*model.RatingSummary, error) {
	return s.repo.RatingSummary(ctx, productID)
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}
