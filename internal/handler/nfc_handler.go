package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hadirku/presensi-api/internal/models"
	"github.com/hadirku/presensi-api/internal/service"
	appErrors "github.com/hadirku/presensi-api/pkg/errors"
	"github.com/hadirku/presensi-api/pkg/response"
)

// NFCHandler wires card and session management endpoints.
type NFCHandler struct {
	service *service.NFCService
}

// NewNFCHandler creates a new handler.
func NewNFCHandler(svc *service.NFCService) *NFCHandler {
	return &NFCHandler{service: svc}
}

// RegisterCard godoc
// @Summary Register an NFC card
// @Description Bind a new physical card to a student, superseding any prior card
// @Tags NFC
// @Accept json
// @Produce json
// @Param payload body models.RegisterCardRequest true "Registration payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /nfc/cards [post]
func (h *NFCHandler) RegisterCard(c *gin.Context) {
	var req models.RegisterCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid registration payload"))
		return
	}

	issue, err := h.service.RegisterCard(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, issue)
}

// DeactivateCard godoc
// @Summary Deactivate an NFC card
// @Description Revoke a card registration
// @Tags NFC
// @Produce json
// @Param id path string true "Card ID"
// @Success 204 {object} response.Envelope
// @Security BearerAuth
// @Router /nfc/cards/{id} [delete]
func (h *NFCHandler) DeactivateCard(c *gin.Context) {
	if err := h.service.DeactivateCard(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// MyCard godoc
// @Summary Get my active card
// @Description Return the authenticated user's active card registration
// @Tags NFC
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /nfc/cards/me [get]
func (h *NFCHandler) MyCard(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	card, err := h.service.ActiveCard(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, card, nil)
}

// ActivateSession godoc
// @Summary Activate an attendance session
// @Description Open a tap-accepting window for a schedule occurrence
// @Tags NFC
// @Accept json
// @Produce json
// @Param payload body models.ActivateSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /nfc/sessions [post]
func (h *NFCHandler) ActivateSession(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.ActivateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session payload"))
		return
	}

	session, err := h.service.ActivateSession(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// DeactivateSession godoc
// @Summary Deactivate an attendance session
// @Description End a session before its expiry
// @Tags NFC
// @Produce json
// @Param id path string true "Session ID"
// @Success 204 {object} response.Envelope
// @Security BearerAuth
// @Router /nfc/sessions/{id} [delete]
func (h *NFCHandler) DeactivateSession(c *gin.Context) {
	if err := h.service.DeactivateSession(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// UsableSessions godoc
// @Summary List usable sessions
// @Description List sessions currently accepting card taps
// @Tags NFC
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /nfc/sessions/usable [get]
func (h *NFCHandler) UsableSessions(c *gin.Context) {
	sessions, err := h.service.ListUsableSessions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}
