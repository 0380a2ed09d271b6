package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"storefront-backend/internal/domains/cart/model"
	"storefront-backend/internal/domains/cart/repository"
	couponmodel "storefront-backend/internal/domains/coupon/model"
	productmodel "storefront-backend/internal/domains/product/model"
	productrepo "storefront-backend/internal/domains/product/repository"
	"storefront-backend/pkg/logger"
)

// CouponValidator is the slice of the coupon service carts need.
type CouponValidator interface {
	ValidateForCart(ctx context.Context, code string, userID *uuid.UUID, lines []couponmodel.CartLine) (*couponmodel.ValidationResult, error)
}

type ServiceInterface interface {
	GetUserCartID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
	GetOrCreateCartBySession(ctx context.Context, sessionID string) (uuid.UUID, error)
	GetOrCreateUserCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error)
	GetCart(ctx context.Context, cartID uuid.UUID) (*model.Cart, error)

	AddItem(ctx context.Context, cartID uuid.UUID, req *model.AddItemRequest) (*model.Cart, error)
	AddItems(ctx context.Context, cartID uuid.UUID, req *model.CreateCartItemsRequest) (*model.Cart, error)
	UpdateQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) (*model.Cart, error)
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) (*model.Cart, error)
	ClearCart(ctx context.Context, cartID uuid.UUID) (*model.Cart, error)

	ApplyCoupon(ctx context.Context, cartID uuid.UUID, userID *uuid.UUID, code string) (*couponmodel.ValidationResult, error)
	RemoveCoupon(ctx context.Context, cartID uuid.UUID) (*model.Cart, error)

	MigrateAnonymousCart(ctx context.Context, userID uuid.UUID, sessionID, strategy string) error
	CouponLines(ctx context.Context, cart *model.Cart) ([]couponmodel.CartLine, error)

	ListCarts(ctx context.Context, status string, page, limit int) ([]*model.Cart, int, error)
	DeleteCart(ctx context.Context, cartID uuid.UUID) error
	AbandonExpired(ctx context.Context, before time.Time) (int64, error)
}

type cartService struct {
	repo        repository.CartRepository
	productRepo productrepo.ProductRepository
	validator   CouponValidator
}

func NewCartService(
	repo repository.CartRepository,
	productRepo productrepo.ProductRepository,
	validator CouponValidator,
) ServiceInterface {
	return &cartService{
		repo:        repo,
		productRepo: productRepo,
		validator:   validator,
	}
}

// GetUserCartID resolves the user's active cart without creating one.
// uuid.Nil with nil error means no cart yet.
func (s *cartService) GetUserCartID(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	cart, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrCartNotFound) {
			created, err := s.createCart(ctx, &userID, nil)
			if err != nil {
				return uuid.Nil, err
			}
			return created.ID, nil
		}
		return uuid.Nil, err
	}
	return cart.ID, nil
}

func (s *cartService) GetOrCreateCartBySession(ctx context.Context, sessionID string) (uuid.UUID, error) {
	cart, err := s.repo.FindActiveBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, model.ErrCartNotFound) {
			created, err := s.createCart(ctx, nil, &sessionID)
			if err != nil {
				return uuid.Nil, err
			}
			return created.ID, nil
		}
		return uuid.Nil, err
	}
	return cart.ID, nil
}

func (s *cartService) GetOrCreateUserCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrCartNotFound) {
			return s.createCart(ctx, &userID, nil)
		}
		return nil, err
	}
	return cart, nil
}

func (s *cartService) GetCart(ctx context.Context, cartID uuid.UUID) (*model.Cart, error) {
	return s.repo.FindByID(ctx, cartID)
}

func (s *cartService) AddItem(ctx context.Context, cartID uuid.UUID, req *model.AddItemRequest) (*model.Cart, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cart, err := s.activeCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, productmodel.ErrProductInactive
	}

	if err := s.repo.UpsertItem(ctx, cart.ID, product.ID, product.Name, product.Price, req.Quantity); err != nil {
		return nil, err
	}

	return s.repo.FindByID(ctx, cart.ID)
}

// AddItems seeds several lines at once. Duplicate product ids in the request
// collapse into a single line whose quantity is the sum.
func (s *cartService) AddItems(ctx context.Context, cartID uuid.UUID, req *model.CreateCartItemsRequest) (*model.Cart, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cart, err := s.activeCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	for _, item := range req.Coalesce() {
		product, err := s.productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.IsActive {
			return nil, productmodel.ErrProductInactive
		}
		if err := s.repo.UpsertItem(ctx, cart.ID, product.ID, product.Name, product.Price, item.Quantity); err != nil {
			return nil, err
		}
	}

	return s.repo.FindByID(ctx, cart.ID)
}

// UpdateQuantity sets an exact quantity. Zero removes the line entirely.
func (s *cartService) UpdateQuantity(ctx context.Context, cartID, productID uuid.UUID, quantity int) (*model.Cart, error) {
	cart, err := s.activeCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	if quantity <= 0 {
		if err := s.repo.RemoveItem(ctx, cart.ID, productID); err != nil {
			return nil, err
		}
	} else {
		if err := s.repo.SetItemQuantity(ctx, cart.ID, productID, quantity); err != nil {
			return nil, err
		}
	}

	return s.repo.FindByID(ctx, cart.ID)
}

func (s *cartService) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) (*model.Cart, error) {
	cart, err := s.activeCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.RemoveItem(ctx, cart.ID, productID); err != nil {
		return nil, err
	}

	return s.repo.FindByID(ctx, cart.ID)
}

// ClearCart empties the cart and drops any applied coupon with it.
func (s *cartService) ClearCart(ctx context.Context, cartID uuid.UUID) (*model.Cart, error) {
	cart, err := s.activeCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ClearItems(ctx, cart.ID); err != nil {
		return nil, err
	}
	if cart.CouponCode != nil {
		if err := s.repo.SetCoupon(ctx, cart.ID, nil); err != nil {
			return nil, err
		}
	}

	return s.repo.FindByID(ctx, cart.ID)
}

// ApplyCoupon validates the code against current cart contents and stores
// it on success. Validation rejections come back as a verdict, not an error.
func (s *cartService) ApplyCoupon(ctx context.Context, cartID uuid.UUID, userID *uuid.UUID, code string) (*couponmodel.ValidationResult, error) {
	cart, err := s.activeCart(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, model.ErrCartEmpty
	}

	lines, err := s.CouponLines(ctx, cart)
	if err != nil {
		return nil, err
	}

	result, err := s.validator.ValidateForCart(ctx, code, userID, lines)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return result, nil
	}

	if err := s.repo.SetCoupon(ctx, cart.ID, &result.Terms.Code); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *cartService) RemoveCoupon(ctx context.Context, cartID uuid.UUID) (*model.Cart, error) {
	cart, err := s.activeCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetCoupon(ctx, cart.ID, nil); err != nil {
		return nil, err
	}

	return s.repo.FindByID(ctx, cart.ID)
}

// MigrateAnonymousCart resolves the login-time cart conflict. With "merge"
// the session cart's lines are summed into the user's cart; with "discard"
// the session cart is abandoned. A session cart with no user counterpart is
// simply claimed.
func (s *cartService) MigrateAnonymousCart(ctx context.Context, userID uuid.UUID, sessionID, strategy string) error {
	if strategy != model.MigrateMerge && strategy != model.MigrateDiscard {
		return model.ErrInvalidStrategy
	}

	anonCart, err := s.repo.FindActiveBySession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, model.ErrCartNotFound) {
			return nil
		}
		return err
	}
	if anonCart.IsEmpty() {
		return s.repo.SetStatus(ctx, anonCart.ID, model.StatusAbandoned)
	}

	userCart, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrCartNotFound) {
			return s.repo.SetUser(ctx, anonCart.ID, userID)
		}
		return err
	}

	if userCart.IsEmpty() {
		// Nothing to resolve, prefer the cart with items.
		if err := s.repo.SetStatus(ctx, userCart.ID, model.StatusAbandoned); err != nil {
			return err
		}
		return s.repo.SetUser(ctx, anonCart.ID, userID)
	}

	if strategy == model.MigrateDiscard {
		return s.repo.SetStatus(ctx, anonCart.ID, model.StatusAbandoned)
	}

	// Merge: matching product lines sum quantities, the captured price on
	// the user's line wins.
	for _, item := range anonCart.Items {
		if err := s.repo.UpsertItem(ctx, userCart.ID, item.ProductID, item.ProductName, item.UnitPrice, item.Quantity); err != nil {
			return err
		}
	}
	if err := s.repo.SetStatus(ctx, anonCart.ID, model.StatusAbandoned); err != nil {
		return err
	}

	logger.Info("merged anonymous cart into user cart", map[string]interface{}{
		"user_id":   userID.String(),
		"anon_cart": anonCart.ID.String(),
		"user_cart": userCart.ID.String(),
	})
	return nil
}

// CouponLines projects cart items to validator lines, resolving each
// product's current category.
func (s *cartService) CouponLines(ctx context.Context, cart *model.Cart) ([]couponmodel.CartLine, error) {
	ids := make([]uuid.UUID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	categories := make(map[uuid.UUID]*uuid.UUID, len(products))
	for _, p := range products {
		categories[p.ID] = p.CategoryID
	}

	lines := make([]couponmodel.CartLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		lines = append(lines, couponmodel.CartLine{
			ProductID:  item.ProductID,
			CategoryID: categories[item.ProductID],
			UnitPrice:  item.UnitPrice,
			Quantity:   item.Quantity,
		})
	}
	return lines, nil
}

func (s *cartService) ListCarts(ctx context.Context, status string, page, limit int) ([]*model.Cart, int, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.List(ctx, status, page, limit)
}

func (s *cartService) DeleteCart(ctx context.Context, cartID uuid.UUID) error {
	return s.repo.Delete(ctx, cartID)
}

func (s *cartService) AbandonExpired(ctx context.Context, before time.Time) (int64, error) {
	return s.repo.AbandonExpired(ctx, before)
}

func (s *cartService) createCart(ctx context.Context, userID *uuid.UUID, sessionID *string) (*model.Cart, error) {
	cart := &model.Cart{
		ID:        uuid.New(),
		UserID:    userID,
		SessionID: sessionID,
		Status:    model.StatusActive,
		Items:     []model.CartItem{},
	}
	if sessionID != nil {
		expiresAt := time.Now().Add(model.AnonymousCartTTL)
		cart.ExpiresAt = &expiresAt
	}
	if err := s.repo.Create(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

func (s *cartService) activeCart(ctx context.Context, cartID uuid.UUID) (*model.Cart, error) {
	cart, err := s.repo.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart.Status != model.StatusActive {
		return nil, model.ErrCartNotActive
	}
	return cart, nil
}
