package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	cartmodel "storefront-backend/internal/domains/cart/model"
	ordermodel "storefront-backend/internal/domains/order/model"
	"storefront-backend/internal/domains/order/service"
	productmodel "storefront-backend/internal/domains/product/model"
	"storefront-backend/internal/shared/middleware"
	"storefront-backend/internal/shared/response"
)

type OrderHandler struct {
	service service.ServiceInterface
}

func NewOrderHandler(service service.ServiceInterface) *OrderHandler {
	return &OrderHandler{service: service}
}

// Checkout converts the request's resolved cart into an order. Guests may
// check out too; their orders simply carry no user id.
func (h *OrderHandler) Checkout(c *gin.Context) {
	cartID, err := middleware.GetCartID(c)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var req ordermodel.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID, _ := middleware.GetAuthenticatedUserID(c)

	order, err := h.service.Checkout(c.Request.Context(), cartID, userID, &req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, order)
}

func (h *OrderHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	orders, total, err := h.service.ListMine(c.Request.Context(), *userID, page, limit)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, orders, &response.Meta{Page: page, Limit: limit, Total: total})
}

// GetMine returns one of the caller's own orders.
func (h *OrderHandler) GetMine(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}

	order, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if order.UserID == nil || *order.UserID != *userID {
		response.NotFound(c, ordermodel.ErrOrderNotFound.Error())
		return
	}

	response.Success(c, http.StatusOK, order)
}

// TrackByNumber looks an order up by its public number for guest tracking.
// The email must match what the order was placed with.
func (h *OrderHandler) TrackByNumber(c *gin.Context) {
	orderNumber := c.Param("number")
	email := c.Query("email")
	if email == "" {
		response.BadRequest(c, "email is required")
		return
	}

	order, err := h.service.GetByNumber(c.Request.Context(), orderNumber)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if order.ContactEmail != email {
		response.NotFound(c, ordermodel.ErrOrderNotFound.Error())
		return
	}

	response.Success(c, http.StatusOK, order)
}

// Admin surface.

func (h *OrderHandler) List(c *gin.Context) {
	filter := &ordermodel.ListOrdersFilter{
		Status: c.Query("status"),
	}
	if userID, err := uuid.Parse(c.Query("user_id")); err == nil {
		filter.UserID = &userID
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	orders, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, orders, &response.Meta{Page: filter.Page, Limit: filter.Limit, Total: total})
}

func (h *OrderHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}

	order, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, order)
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid order id")
		return
	}

	var req ordermodel.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	order, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, order)
}

func (h *OrderHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ordermodel.ErrOrderNotFound),
		errors.Is(err, cartmodel.ErrCartNotFound),
		errors.Is(err, productmodel.ErrProductNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, ordermodel.ErrInvalidTransition),
		errors.Is(err, ordermodel.ErrCouponRejected),
		errors.Is(err, cartmodel.ErrCartNotActive),
		errors.Is(err, cartmodel.ErrCartEmpty),
		errors.Is(err, productmodel.ErrProductInactive):
		response.BadRequest(c, err.Error())
	default:
		response.InternalServerError(c, err.Error())
	}
}
