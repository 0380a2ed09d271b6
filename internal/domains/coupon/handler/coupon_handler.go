package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront-backend/internal/domains/coupon/model"
	"storefront-backend/internal/domains/coupon/service"
	"storefront-backend/internal/shared/middleware"
	"storefront-backend/internal/shared/response"
)

type CouponHandler struct {
	service service.ServiceInterface
}

func NewCouponHandler(service service.ServiceInterface) *CouponHandler {
	return &CouponHandler{service: service}
}

// Check reports whether a code is generally usable, for pre-checkout
// display. Cart-dependent checks are skipped here.
func (h *CouponHandler) Check(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		response.BadRequest(c, "coupon code is required")
		return
	}

	userID, _ := middleware.GetAuthenticatedUserID(c)

	result, err := h.service.CheckApplicability(c.Request.Context(), code, userID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

func (h *CouponHandler) Create(c *gin.Context) {
	var req model.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	coupon, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, coupon)
}

func (h *CouponHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	coupons, total, err := h.service.List(c.Request.Context(), page, limit)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, coupons, &response.Meta{Page: page, Limit: limit, Total: total})
}

func (h *CouponHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid coupon id")
		return
	}

	coupon, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, coupon)
}

func (h *CouponHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid coupon id")
		return
	}

	var req model.UpdateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	coupon, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, coupon)
}

func (h *CouponHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid coupon id")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *CouponHandler) ListRedemptions(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid coupon id")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	redemptions, total, err := h.service.ListRedemptions(c.Request.Context(), id, page, limit)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, redemptions, &response.Meta{Page: page, Limit: limit, Total: total})
}

func (h *CouponHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrCouponNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, model.ErrDuplicateCode):
		response.Conflict(c, err.Error())
	default:
		response.InternalServerError(c, err.Error())
	}
}
