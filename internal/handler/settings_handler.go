package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hadirku/presensi-api/internal/models"
	"github.com/hadirku/presensi-api/internal/service"
	appErrors "github.com/hadirku/presensi-api/pkg/errors"
	"github.com/hadirku/presensi-api/pkg/response"
)

// SettingsHandler wires global configuration endpoints.
type SettingsHandler struct {
	service *service.SettingsService
}

// NewSettingsHandler creates a new handler.
func NewSettingsHandler(svc *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{service: svc}
}

// Get godoc
// @Summary Get a setting
// @Description Fetch one global configuration value
// @Tags Settings
// @Produce json
// @Param key path string true "Setting key"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /settings/{key} [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	setting, err := h.service.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, setting, nil)
}

// Update godoc
// @Summary Update a setting
// @Description Write one global configuration value
// @Tags Settings
// @Accept json
// @Produce json
// @Param key path string true "Setting key"
// @Param payload body models.UpdateSettingRequest true "Setting payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /settings/{key} [put]
func (h *SettingsHandler) Update(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid setting payload"))
		return
	}

	setting, err := h.service.Set(c.Request.Context(), c.Param("key"), req.Value, claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, setting, nil)
}
