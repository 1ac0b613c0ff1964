package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gumusqr/backend/internal/model"
	"github.com/gumusqr/backend/internal/service"
)

type SettingsHandler struct {
	svc *service.SettingsService
}

func NewSettingsHandler(svc *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

// Get godoc
// @Summary Get settings
// @Description Returns all settings as a flat map, seeding defaults on first use.
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.Settings
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/settings [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.svc.Get(c.Request.Context())
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// Update godoc
// @Summary Update settings
// @Description Accepts a flat map of setting keys. "logo" (base64) replaces the stored logo asset, "remove_logo" clears it; other keys are upserted as-is.
// @Tags settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.Settings true "Settings map, optionally with logo / remove_logo"
// @Success 200 {object} model.Settings
// @Failure 400 {object} model.ErrorResponse
// @Failure 401 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /api/v1/settings [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	req, ok := settingsRequest(raw)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "setting values must be strings"})
		return
	}

	settings, err := h.svc.Update(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// settingsRequest turns the loosely shaped JSON body into the typed update
// request: the logo controls are split out, everything else must be a plain
// string value.
func settingsRequest(raw map[string]any) (model.SettingsUpdateRequest, bool) {
	req := model.SettingsUpdateRequest{Values: model.Settings{}}
	for key, value := range raw {
		switch key {
		case "logo":
			s, ok := value.(string)
			if !ok {
				return req, false
			}
			req.Logo = s
		case "remove_logo":
			b, ok := value.(bool)
			if !ok {
				return req, false
			}
			req.RemoveLogo = b
		default:
			s, ok := value.(string)
			if !ok {
				return req, false
			}
			req.Values[key] = s
		}
	}
	return req, true
}
