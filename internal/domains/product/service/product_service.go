package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"storefront-backend/internal/domains/product/model"
	"storefront-backend/internal/domains/product/repository"
	"storefront-backend/internal/infrastructure/storage"
	"storefront-backend/internal/shared"
	"storefront-backend/internal/shared/utils"
	"storefront-backend/pkg/logger"
)

type ServiceInterface interface {
	Create(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	GetBySlug(ctx context.Context, slug string) (*model.Product, error)
	List(ctx context.Context, filter *model.ListProductsFilter) ([]*model.Product, int, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateProductRequest) (*model.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UploadImage(ctx context.Context, id uuid.UUID, data []byte) (*model.Product, error)
	ExportToExcel(ctx context.Context, filter *model.ListProductsFilter) (*excelize.File, error)
}

// taskEnqueuer is the slice of asynq.Client the service needs.
type taskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type productService struct {
	repo        repository.ProductRepository
	storage     *storage.MinIOStorage
	processor   *storage.ImageProcessor
	asynqClient taskEnqueuer
}

func NewProductService(
	repo repository.ProductRepository,
	store *storage.MinIOStorage,
	asynqClient *asynq.Client,
) ServiceInterface {
	s := &productService{
		repo:      repo,
		storage:   store,
		processor: storage.NewImageProcessor(),
	}
	if asynqClient != nil {
		s.asynqClient = asynqClient
	}
	return s
}

func (s *productService) Create(ctx context.Context, req *model.CreateProductRequest) (*model.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	product := &model.Product{
		ID:          uuid.New(),
		Name:        req.Name,
		Slug:        utils.GenerateSlug(req.Name),
		Description: req.Description,
		Price:       decimal.NewFromFloat(req.Price),
		CategoryID:  req.CategoryID,
		IsActive:    isActive,
	}

	if err := s.repo.Create(ctx, product); err != nil {
		return nil, err
	}

	return product, nil
}

func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *productService) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return s.repo.FindBySlug(ctx, slug)
}

func (s *productService) List(ctx context.Context, filter *model.ListProductsFilter) ([]*model.Product, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return s.repo.List(ctx, filter)
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateProductRequest) (*model.Product, error) {
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
	if req.Price != nil {
		existing.Price = decimal.NewFromFloat(*req.Price)
	}
	if req.CategoryID != nil {
		existing.CategoryID = req.CategoryID
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}

	return existing, nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	// Image cleanup happens in the worker; enqueue failure is non-critical
	// but must not go unnoticed.
	payload, err := json.Marshal(model.DeleteImagesPayload{ProductID: id})
	if err == nil && s.asynqClient != nil {
		if _, err := s.asynqClient.EnqueueContext(ctx,
			asynq.NewTask(shared.TypeDeleteProductImages, payload),
			asynq.Queue(shared.QueueProduct),
		); err != nil {
			logger.Error("Failed to enqueue product image cleanup", err)
		}
	}

	return nil
}

// UploadImage stores the original synchronously and generates resized
// variants. The medium variant becomes the product image, thumbnail the list
// image.
func (s *productService) UploadImage(ctx context.Context, id uuid.UUID, data []byte) (*model.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.processor.ValidateImage(data); err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidImage, err)
	}

	variants, err := s.processor.ProcessImage(data)
	if err != nil {
		return nil, err
	}

	prefix := fmt.Sprintf("products/%s", product.ID)

	if _, err := s.storage.Upload(ctx, prefix+"/original.jpg", data, "image/jpeg"); err != nil {
		return nil, err
	}

	imageURL, err := s.storage.Upload(ctx, prefix+"/medium.jpg", variants["medium"], "image/jpeg")
	if err != nil {
		return nil, err
	}

	thumbnailURL, err := s.storage.Upload(ctx, prefix+"/thumbnail.jpg", variants["thumbnail"], "image/jpeg")
	if err != nil {
		return nil, err
	}

	if err := s.repo.UpdateImages(ctx, product.ID, &imageURL, &thumbnailURL); err != nil {
		return nil, err
	}

	product.ImageURL = &imageURL
	product.ThumbnailURL = &thumbnailURL

	// The large rendition is generated in the worker; the product is already
	// presentable with the variants uploaded above.
	payload, err := json.Marshal(model.ProcessImagePayload{
		ProductID: product.ID,
		ObjectKey: prefix + "/original.jpg",
	})
	if err == nil && s.asynqClient != nil {
		if _, err := s.asynqClient.EnqueueContext(ctx,
			asynq.NewTask(shared.TypeProcessProductImage, payload),
			asynq.Queue(shared.QueueProduct),
		); err != nil {
			logger.Error("Failed to enqueue large image rendition", err)
		}
	}

	return product, nil
}
