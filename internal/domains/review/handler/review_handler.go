package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	productmodel "storefront-backend/internal/domains/product/model"
	"storefront-backend/internal/domains/review/model"
	"storefront-backend/internal/domains/review/service"
	"storefront-backend/internal/shared/middleware"
	"storefront-backend/internal/shared/response"
)

type ReviewHandler struct {
	service service.ServiceInterface
}

func NewReviewHandler(service service.ServiceInterface) *ReviewHandler {
	return &ReviewHandler{service: service}
}

func (h *ReviewHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	review, err := h.service.Create(c.Request.Context(), *userID, &req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, review)
}

func (h *ReviewHandler) ListForProduct(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid product id")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	reviews, total, err := h.service.ListForProduct(c.Request.Context(), productID, page, limit)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, reviews, &response.Meta{Page: page, Limit: limit, Total: total})
}

func (h *ReviewHandler) Summary(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid product id")
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), productID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, summary)
}

func (h *ReviewHandler) ListMine(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	reviews, err := h.service.ListMine(c.Request.Context(), *userID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, reviews)
}

func (h *ReviewHandler) Update(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid review id")
		return
	}

	var req model.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	review, err := h.service.Update(c.Request.Context(), *userID, reviewID, &req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, review)
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid review id")
		return
	}

	isAdmin := c.GetString(middleware.ContextKeyUserRole) == "admin"

	if err := h.service.Delete(c.Request.Context(), *userID, reviewID, isAdmin); err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ListPending is the admin moderation queue.
func (h *ReviewHandler) ListPending(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	reviews, total, err := h.service.ListPending(c.Request.Context(), page, limit)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, reviews, &response.Meta{Page: page, Limit: limit, Total: total})
}

func (h *ReviewHandler) Moderate(c *gin.Context) {
	reviewID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid review id")
		return
	}

	var req model.ModerateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	review, err := h.service.Moderate(c.Request.Context(), reviewID, &req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, review)
}

func (h *ReviewHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrReviewNotFound),
		errors.Is(err, productmodel.ErrProductNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, model.ErrAlreadyReviewed):
		response.Conflict(c, err.Error())
	case errors.Is(err, model.ErrNotReviewOwner):
		response.Forbidden(c, err.Error())
	case errors.Is(err, model.ErrCannotEdit),
		errors.Is(err, productmodel.ErrProductInactive):
		response.BadRequest(c, err.Error())
	default:
		response.InternalServerError(c, err.Error())
	}
}
