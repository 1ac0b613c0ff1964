package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gumusqr/backend/internal/model"
	"github.com/gumusqr/backend/internal/service"
)

type ProductHandler struct {
	svc *service.CatalogService
}

func NewProductHandler(svc *service.CatalogService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// List godoc
// @Summary List products
// @Description Returns all products; filter with ?category_id=.
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param category_id query int false "Filter by category"
// @Success 200 {array} model.Product
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	if raw := c.Query("category_id"); raw != "" {
		categoryID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || categoryID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category_id"})
			return
		}
		products, err := h.svc.ListProductsByCategory(c.Request.Context(), categoryID)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
		return
	}

	products, err := h.svc.ListProducts(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// Get godoc
// @Summary Get product
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} model.Product
// @Failure 401 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	product, err := h.svc.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// Create godoc
// @Summary Create product
// @Description Category, name and price are required. An optional base64 image is uploaded before the record is written.
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.ProductRequest true "Product fields"
// @Success 201 {object} model.Product
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req model.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	product, err := h.svc.CreateProduct(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// Update godoc
// @Summary Update product
// @Description Omitted fields keep their values. A new image replaces the stored asset; remove_image clears it.
// @Tags products
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Param request body model.ProductRequest true "Product fields"
// @Success 200 {object} model.Product
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req model.ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	product, err := h.svc.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// Delete godoc
// @Summary Delete product
// @Description Deletes the stored image (best effort) before removing the record.
// @Tags products
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product ID"
// @Success 200 {object} model.MessageResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteProduct(c.Request.Context(), id); err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.MessageResponse{Message: "product deleted"})
}
