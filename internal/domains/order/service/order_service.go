package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	cartmodel "storefront-backend/internal/domains/cart/model"
	cartrepo "storefront-backend/internal/domains/cart/repository"
	couponmodel "storefront-backend/internal/domains/coupon/model"
	couponservice "storefront-backend/internal/domains/coupon/service"
	"storefront-backend/internal/domains/order/calculator"
	"storefront-backend/internal/domains/order/model"
	"storefront-backend/internal/domains/order/repository"
	productmodel "storefront-backend/internal/domains/product/model"
	productrepo "storefront-backend/internal/domains/product/repository"
	"storefront-backend/internal/shared/middleware"
	"storefront-backend/pkg/database"
	"storefront-backend/pkg/logger"
)

// moneyPlaces is the scale monetary fields are frozen at.
const moneyPlaces = 2

type ServiceInterface interface {
	Checkout(ctx context.Context, cartID uuid.UUID, userID *uuid.UUID, req *model.CheckoutRequest) (*model.Order, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	GetByNumber(ctx context.Context, orderNumber string) (*model.Order, error)
	ListMine(ctx context.Context, userID uuid.UUID, page, limit int) ([]*model.Order, int, error)
	List(ctx context.Context, filter *model.ListOrdersFilter) ([]*model.Order, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*model.Order, error)
}

type orderService struct {
	pool        *pgxpool.Pool
	repo        repository.OrderRepository
	cartRepo    cartrepo.CartRepository
	productRepo productrepo.ProductRepository
	coupons     couponservice.ServiceInterface
	rates       calculator.Rates
}

func NewOrderService(
	pool *pgxpool.Pool,
	repo repository.OrderRepository,
	cartRepo cartrepo.CartRepository,
	productRepo productrepo.ProductRepository,
	coupons couponservice.ServiceInterface,
	rates calculator.Rates,
) ServiceInterface {
	return &orderService{
		pool:        pool,
		repo:        repo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		coupons:     coupons,
		rates:       rates,
	}
}

// Checkout converts an active cart into an order. Everything that writes
// runs in one transaction: the coupon row is locked, its caps re-checked
// against committed redemptions, totals are frozen, order and redemption
// rows are written and the cart flips to converted. Any failure rolls the
// whole conversion back.
func (s *orderService) Checkout(ctx context.Context, cartID uuid.UUID, userID *uuid.UUID, req *model.CheckoutRequest) (*model.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cart, err := s.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if cart.Status != cartmodel.StatusActive {
		return nil, cartmodel.ErrCartNotActive
	}
	if cart.IsEmpty() {
		return nil, cartmodel.ErrCartEmpty
	}

	lines, items, err := s.buildLines(ctx, cart)
	if err != nil {
		return nil, err
	}

	order, err := s.checkoutTx(ctx, cart, userID, req, lines, items)
	middleware.RecordCheckout(err == nil)
	if err != nil {
		return nil, err
	}

	logger.Info("order created", map[string]interface{}{
		"order_id":     order.ID.String(),
		"order_number": order.OrderNumber,
		"total":        order.Total.StringFixed(moneyPlaces),
	})
	return order, nil
}

func (s *orderService) checkoutTx(
	ctx context.Context,
	cart *cartmodel.Cart,
	userID *uuid.UUID,
	req *model.CheckoutRequest,
	lines []calculator.Line,
	items []model.OrderItem,
) (*model.Order, error) {
	var order *model.Order

	txErr := database.WithTransaction(ctx, s.pool, func(tx pgx.Tx) error {
		var terms *couponmodel.Terms

		if cart.CouponCode != nil {
			couponLines := make([]couponmodel.CartLine, len(lines))
			for i, line := range lines {
				couponLines[i] = couponmodel.CartLine{
					ProductID:  line.ProductID,
					CategoryID: line.CategoryID,
					UnitPrice:  line.UnitPrice,
					Quantity:   line.Quantity,
				}
			}

			result, err := s.coupons.ValidateForCheckout(ctx, tx, *cart.CouponCode, userID, couponLines)
			if err != nil {
				return err
			}
			if !result.Valid {
				return fmt.Errorf("%w: %s", model.ErrCouponRejected, result.Reason)
			}
			terms = result.Terms
		}

		totals := calculator.Calculate(lines, terms, s.rates)

		for i := range items {
			items[i].Discount = totals.LineDiscounts[i].Round(moneyPlaces)
		}

		order = &model.Order{
			ID:              uuid.New(),
			OrderNumber:     newOrderNumber(),
			UserID:          userID,
			Status:          model.StatusCreated,
			ContactName:     req.ContactName,
			ContactEmail:    req.ContactEmail,
			ContactPhone:    req.ContactPhone,
			ShippingAddress: req.ShippingAddress,
			ShippingCity:    req.ShippingCity,
			ShippingZip:     req.ShippingZip,
			ShippingCountry: req.ShippingCountry,
			Subtotal:        totals.Subtotal.Round(moneyPlaces),
			Discount:        totals.Discount.Round(moneyPlaces),
			Tax:             totals.Tax.Round(moneyPlaces),
			Shipping:        totals.Shipping.Round(moneyPlaces),
			Total:           totals.Total.Round(moneyPlaces),
			CouponCode:      cart.CouponCode,
			Items:           items,
		}

		if err := s.repo.CreateTx(ctx, tx, order); err != nil {
			return err
		}

		if terms != nil {
			if err := s.coupons.RecordRedemption(ctx, tx, terms.CouponID, userID, order.ID, order.Discount); err != nil {
				return err
			}
		}

		return s.cartRepo.SetStatusTx(ctx, tx, cart.ID, cartmodel.StatusConverted)
	})

	if txErr != nil {
		return nil, txErr
	}
	return order, nil
}

// buildLines freezes the order's view of each product: current catalog
// price and name, not the cart's captured ones.
func (s *orderService) buildLines(ctx context.Context, cart *cartmodel.Cart) ([]calculator.Line, []model.OrderItem, error) {
	ids := make([]uuid.UUID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	byID := make(map[uuid.UUID]*productmodel.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	lines := make([]calculator.Line, 0, len(cart.Items))
	items := make([]model.OrderItem, 0, len(cart.Items))
	for _, cartItem := range cart.Items {
		product, ok := byID[cartItem.ProductID]
		if !ok {
			return nil, nil, productmodel.ErrProductNotFound
		}
		if !product.IsActive {
			return nil, nil, productmodel.ErrProductInactive
		}

		lines = append(lines, calculator.Line{
			ProductID:  product.ID,
			CategoryID: product.CategoryID,
			UnitPrice:  product.Price,
			Quantity:   cartItem.Quantity,
		})
		items = append(items, model.OrderItem{
			ID:          uuid.New(),
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    cartItem.Quantity,
		})
	}
	return lines, items, nil
}

func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *orderService) GetByNumber(ctx context.Context, orderNumber string) (*model.Order, error) {
	return s.repo.FindByNumber(ctx, orderNumber)
}

func (s *orderService) ListMine(ctx context.Context, userID uuid.UUID, page, limit int) ([]*model.Order, int, error) {
	filter := &model.ListOrdersFilter{UserID: &userID, Page: page, Limit: limit}
	return s.List(ctx, filter)
}

func (s *orderService) List(ctx context.Context, filter *model.ListOrdersFilter) ([]*model.Order, int, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	return s.repo.List(ctx, filter)
}

func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*model.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !model.CanTransition(order.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", model.ErrInvalidTransition, order.Status, status)
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	order.Status = status
	return order, nil
}

// newOrderNumber yields a public-facing id like ORD-20260829-1A2B3C4D.
func newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), suffix)
}
