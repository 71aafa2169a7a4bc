package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hadirku/presensi-api/internal/models"
	"github.com/hadirku/presensi-api/internal/service"
	appErrors "github.com/hadirku/presensi-api/pkg/errors"
	"github.com/hadirku/presensi-api/pkg/response"
)

// QRHandler wires QR token issuance endpoints.
type QRHandler struct {
	service *service.QRService
}

// NewQRHandler creates a new handler.
func NewQRHandler(svc *service.QRService) *QRHandler {
	return &QRHandler{service: svc}
}

// IssueToken godoc
// @Summary Issue a QR capability token
// @Description Mint a short-lived token for projection during class
// @Tags QR
// @Accept json
// @Produce json
// @Param payload body models.IssueQRTokenRequest true "Token request"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Security BearerAuth
// @Router /qr/tokens [post]
func (h *QRHandler) IssueToken(c *gin.Context) {
	var req models.IssueQRTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid token request"))
		return
	}

	issue, err := h.service.IssueToken(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, issue)
}
