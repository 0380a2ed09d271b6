package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront-backend/internal/domains/user/model"
	"storefront-backend/internal/domains/user/service"
	"storefront-backend/internal/shared/middleware"
	"storefront-backend/internal/shared/response"
	"storefront-backend/pkg/logger"
)

// CartMigrator moves an anonymous session cart to the user who just logged
// in. Implemented by the cart service.
type CartMigrator interface {
	MigrateAnonymousCart(ctx context.Context, userID uuid.UUID, sessionID, strategy string) error
}

type UserHandler struct {
	service      service.ServiceInterface
	cartMigrator CartMigrator
}

func NewUserHandler(service service.ServiceInterface, cartMigrator CartMigrator) *UserHandler {
	return &UserHandler{service: service, cartMigrator: cartMigrator}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	u, err := h.service.Register(c.Request.Context(), &req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, u)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Login(c.Request.Context(), &req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	// Pick up the anonymous cart, if any. Failure here must not fail the
	// login itself.
	if sessionID, err := c.Cookie(middleware.SessionCookieName); err == nil && sessionID != "" && h.cartMigrator != nil {
		strategy := c.DefaultQuery("cart_strategy", "merge")
		if err := h.cartMigrator.MigrateAnonymousCart(c.Request.Context(), result.User.ID, sessionID, strategy); err != nil {
			logger.Warn("cart migration on login failed", map[string]interface{}{
				"user_id": result.User.ID.String(),
				"error":   err.Error(),
			})
		}
	}

	response.Success(c, http.StatusOK, result)
}

func (h *UserHandler) Refresh(c *gin.Context) {
	var req model.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Refresh(c.Request.Context(), &req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	u, err := h.service.GetProfile(c.Request.Context(), *userID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, u)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	u, err := h.service.UpdateProfile(c.Request.Context(), *userID, &req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, u)
}

func (h *UserHandler) ChangePassword(c *gin.Context) {
	userID, ok := middleware.GetAuthenticatedUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), *userID, &req); err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"changed": true})
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	users, total, err := h.service.ListUsers(c.Request.Context(), page, limit)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, users, &response.Meta{Page: page, Limit: limit, Total: total})
}

func (h *UserHandler) AdminUpdateUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}

	var req model.AdminUpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	u, err := h.service.AdminUpdateUser(c.Request.Context(), userID, &req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, u)
}

func (h *UserHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrUserNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, model.ErrEmailAlreadyExists):
		response.Conflict(c, err.Error())
	case errors.Is(err, model.ErrInvalidCredentials),
		errors.Is(err, model.ErrUserInactive):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, model.ErrWrongPassword):
		response.BadRequest(c, err.Error())
	default:
		response.InternalServerError(c, err.Error())
	}
}
