package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront-backend/internal/domains/product/model"
	"storefront-backend/internal/domains/product/service"
	"storefront-backend/internal/shared/response"
)

type ProductHandler struct {
	service service.ServiceInterface
}

func NewProductHandler(service service.ServiceInterface) *ProductHandler {
	return &ProductHandler{service: service}
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req model.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	product, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, product)
}

func (h *ProductHandler) List(c *gin.Context) {
	filter := parseListFilter(c)

	products, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.InternalServerError(c, err.Error())
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, products, &response.Meta{
		Page:  filter.Page,
		Limit: filter.Limit,
		Total: total,
	})
}

func (h *ProductHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid product id")
		return
	}

	product, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, product)
}

func (h *ProductHandler) GetBySlug(c *gin.Context) {
	product, err := h.service.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, product)
}

func (h *ProductHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid product id")
		return
	}

	var req model.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	product, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, product)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid product id")
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *ProductHandler) UploadImage(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid product id")
		return
	}

	file, _, err := c.Request.FormFile("image")
	if err != nil {
		response.BadRequest(c, "image file is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.BadRequest(c, "cannot read image file")
		return
	}

	product, err := h.service.UploadImage(c.Request.Context(), id, data)
	if err != nil {
		h.renderError(c, err)
		return
	}

	response.Success(c, http.StatusOK, product)
}

// Export streams the product catalog as an xlsx attachment.
func (h *ProductHandler) Export(c *gin.Context) {
	filter := parseListFilter(c)

	f, err := h.service.ExportToExcel(c.Request.Context(), filter)
	if err != nil {
		response.InternalServerError(c, err.Error())
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("products_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := f.Write(c.Writer); err != nil {
		response.InternalServerError(c, err.Error())
	}
}

func parseListFilter(c *gin.Context) *model.ListProductsFilter {
	filter := &model.ListProductsFilter{
		Search:          c.Query("search"),
		IncludeInactive: c.Query("include_inactive") == "true",
	}
	if categoryID, err := uuid.Parse(c.Query("category_id")); err == nil {
		filter.CategoryID = &categoryID
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	return filter
}

func (h *ProductHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrProductNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, model.ErrDuplicateSlug):
		response.Conflict(c, err.Error())
	case errors.Is(err, model.ErrInvalidImage):
		response.BadRequest(c, err.Error())
	default:
		response.InternalServerError(c, err.Error())
	}
}
