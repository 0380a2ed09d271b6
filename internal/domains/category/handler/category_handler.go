package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront-backend/internal/domains/category/model"
	"storefront-backend/internal/domains/category/service"
	"storefront-backend/internal/shared/response"
)

type CategoryHandler struct {
	service service.ServiceInterface
}

func NewCategoryHandler(service service.ServiceInterface) *CategoryHandler {
	return &CategoryHandler{service: service}
}

func (h *CategoryHandler) Create(c *gin.Context) {
	var req model.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	category, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, category)
}

func (h *CategoryHandler) GetAll(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"

	categories, err := h.service.List(c.Request.Context(), includeInactive)
	if err != nil {
		response.InternalServerError(c, err.Error())
		return
	}

	response.Success(c, http.StatusOK, categories)
}

func (h *CategoryHandler) GetTree(c *gin.Context) {
	tree, err := h.service.GetTree(c.Request.Context())
	if err != nil {
		response.InternalServerError(c, err.Error())
		return
	}

	response.Success(c, http.StatusOK, tree)
}

func (h *CategoryHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid category id")
		return
	}

	category, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, category)
}

func (h *CategoryHandler) GetBySlug(c *gin.Context) {
	category, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, category)
}

func (h *CategoryHandler) GetBreadcrumb(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid category id")
		return
	}

	breadcrumb, err := h.service.GetBreadcrumb(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, breadcrumb)
}

func (h *CategoryHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid category id")
		return
	}

	var req model.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	category, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, category)
}

func (h *CategoryHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid category id")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *CategoryHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrCategoryNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, model.ErrDuplicateSlug),
		errors.Is(err, model.ErrCyclicParent),
		errors.Is(err, model.ErrParentNotFound),
		errors.Is(err, model.ErrCategoryHasChildren):
		response.BadRequest(c, err.Error())
	default:
		response.InternalServerError(c, err.Error())
	}
}
