package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gumusqr/backend/internal/service"
)

// PublicHandler serves the unauthenticated menu display endpoints.
type PublicHandler struct {
	catalog  *service.CatalogService
	settings *service.SettingsService
}

func NewPublicHandler(catalog *service.CatalogService, settings *service.SettingsService) *PublicHandler {
	return &PublicHandler{catalog: catalog, settings: settings}
}

// Menu godoc
// @Summary Public menu
// @Description Active categories in display order, each with its active products.
// @Tags public
// @Produce json
// @Success 200 {array} model.MenuCategory
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/public/menu [get]
func (h *PublicHandler) Menu(c *gin.Context) {
	menu, err := h.catalog.ListMenu(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, menu)
}

// Settings godoc
// @Summary Public settings
// @Description Restaurant name, description, currency and logo URL for the menu display.
// @Tags public
// @Produce json
// @Success 200 {object} model.Settings
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/public/settings [get]
func (h *PublicHandler) Settings(c *gin.Context) {
	settings, err := h.settings.PublicGet(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}
