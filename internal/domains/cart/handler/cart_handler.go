package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront-backend/internal/domains/cart/model"
	"storefront-backend/internal/domains/cart/service"
	productmodel "storefront-backend/internal/domains/product/model"
	"storefront-backend/internal/shared/middleware"
	"storefront-backend/internal/shared/response"
)

type CartHandler struct {
	service service.ServiceInterface
}

func NewCartHandler(service service.ServiceInterface) *CartHandler {
	return &CartHandler{service: service}
}

// cartView decorates the cart with its derived aggregates so clients never
// recompute them.
type cartView struct {
	*model.Cart
	ItemCount   int    `json:"item_count"`
	TotalAmount string `json:"total_amount"`
}

func newCartView(cart *model.Cart) cartView {
	return cartView{
		Cart:        cart,
		ItemCount:   cart.ItemCount(),
		TotalAmount: cart.TotalAmount().StringFixed(2),
	}
}

func (h *CartHandler) GetCart(c *gin.Context) {
	cartID, err := middleware.GetCartID(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	cart, err := h.service.GetCart(c.Request.Context(), cartID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, newCartView(cart))
}

func (h *CartHandler) AddItem(c *gin.Context) {
	cartID, err := middleware.GetCartID(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var req model.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	cart, err := h.service.AddItem(c.Request.Context(), cartID, &req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, newCartView(cart))
}

func (h *CartHandler) AddItems(c *gin.Context) {
	cartID, err := middleware.GetCartID(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var req model.CreateCartItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	cart, err := h.service.AddItems(c.Request.Context(), cartID, &req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, newCartView(cart))
}

func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	cartID, err := middleware.GetCartID(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		response.BadRequest(c, "invalid product id")
		return
	}

	var req model.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	cart, err := h.service.UpdateQuantity(c.Request.Context(), cartID, productID, req.Quantity)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, newCartView(cart))
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	cartID, err := middleware.GetCartID(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	productID, err := uuid.Parse(c.Param("product_id"))
	if err != nil {
		response.BadRequest(c, "invalid product id")
		return
	}

	cart, err := h.service.RemoveItem(c.Request.Context(), cartID, productID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, newCartView(cart))
}

func (h *CartHandler) ClearCart(c *gin.Context) {
	cartID, err := middleware.GetCartID(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	cart, err := h.service.ClearCart(c.Request.Context(), cartID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, newCartView(cart))
}

// ApplyCoupon returns the verdict with HTTP 200 either way; rejection is a
// business outcome, not a transport error.
func (h *CartHandler) ApplyCoupon(c *gin.Context) {
	cartID, err := middleware.GetCartID(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var req model.ApplyCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID, _ := middleware.GetAuthenticatedUserID(c)

	result, err := h.service.ApplyCoupon(c.Request.Context(), cartID, userID, req.Code)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

func (h *CartHandler) RemoveCoupon(c *gin.Context) {
	cartID, err := middleware.GetCartID(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	cart, err := h.service.RemoveCoupon(c.Request.Context(), cartID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, newCartView(cart))
}

// MigrateCart lets a freshly authenticated client resolve the anonymous
// cart conflict explicitly.
func (h *CartHandler) MigrateCart(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	sessionID, err := c.Cookie(middleware.SessionCookieName)
	if err != nil || sessionID == "" {
		response.BadRequest(c, "no anonymous cart session")
		return
	}

	strategy := c.DefaultQuery("strategy", model.MigrateMerge)

	if err := h.service.MigrateAnonymousCart(c.Request.Context(), *userID, sessionID, strategy); err != nil {
		h.renderError(c, err)
		return
	}

	cart, err := h.service.GetOrCreateUserCart(c.Request.Context(), *userID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, newCartView(cart))
}

// Admin surface.

func (h *CartHandler) ListCarts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	status := c.Query("status")

	carts, total, err := h.service.ListCarts(c.Request.Context(), status, page, limit)
	if err != nil {
		h.renderError(c, err)
		return
	}

	views := make([]cartView, 0, len(carts))
	for _, cart := range carts {
		views = append(views, newCartView(cart))
	}

	response.SuccessWithMeta(c, http.StatusOK, views, &response.Meta{Page: page, Limit: limit, Total: total})
}

func (h *CartHandler) GetCartByID(c *gin.Context) {
	cartID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid cart id")
		return
	}

	cart, err := h.service.GetCart(c.Request.Context(), cartID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, newCartView(cart))
}

func (h *CartHandler) DeleteCart(c *gin.Context) {
	cartID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid cart id")
		return
	}

	if err := h.service.DeleteCart(c.Request.Context(), cartID); err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *CartHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrCartNotFound),
		errors.Is(err, model.ErrCartItemNotFound),
		errors.Is(err, productmodel.ErrProductNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, model.ErrCartNotActive),
		errors.Is(err, model.ErrCartEmpty),
		errors.Is(err, model.ErrInvalidStrategy),
		errors.Is(err, productmodel.ErrProductInactive):
		response.BadRequest(c, err.Error())
	default:
		response.InternalServerError(c, err.Error())
	}
}
