package handler

import (
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hadirku/presensi-api/internal/models"
	"github.com/hadirku/presensi-api/internal/service"
	appErrors "github.com/hadirku/presensi-api/pkg/errors"
	"github.com/hadirku/presensi-api/pkg/evidence"
	"github.com/hadirku/presensi-api/pkg/response"
)

// maxEvidenceBytes caps a single photo upload.
const maxEvidenceBytes = 10 << 20

// AttendanceHandler wires the intake and ledger read endpoints.
type AttendanceHandler struct {
	service  *service.AttendanceService
	evidence *evidence.Store
}

// NewAttendanceHandler creates a new handler.
func NewAttendanceHandler(svc *service.AttendanceService, store *evidence.Store) *AttendanceHandler {
	return &AttendanceHandler{service: svc, evidence: store}
}

// SubmitManual godoc
// @Summary Submit manual attendance
// @Description Record a photo-backed manual check-in for the authenticated student
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body models.ManualSubmissionRequest true "Submission payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance/manual [post]
func (h *AttendanceHandler) SubmitManual(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.ManualSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid submission payload"))
		return
	}

	record, err := h.service.SubmitManual(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// SubmitQR godoc
// @Summary Submit QR attendance
// @Description Record a check-in carried by a scanned QR capability token
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body models.QRSubmissionRequest true "Submission payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance/qr [post]
func (h *AttendanceHandler) SubmitQR(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.QRSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid submission payload"))
		return
	}

	record, err := h.service.SubmitQR(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Tap godoc
// @Summary Process an NFC card tap
// @Description Record attendance for the card holder across every usable session
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body models.TapRequest true "Tap payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 410 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance/nfc/tap [post]
func (h *AttendanceHandler) Tap(c *gin.Context) {
	var req models.TapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid tap payload"))
		return
	}

	result, err := h.service.TapCard(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// UploadEvidence godoc
// @Summary Upload photo evidence
// @Description Store a photo and return its public URL for a manual submission
// @Tags Attendance
// @Accept multipart/form-data
// @Produce json
// @Param photo formData file true "Photo evidence"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance/evidence [post]
func (h *AttendanceHandler) UploadEvidence(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	file, header, err := c.Request.FormFile("photo")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrEvidenceMissing, "photo file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxEvidenceBytes+1))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	if len(data) > maxEvidenceBytes {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "photo exceeds the size limit"))
		return
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(header.Filename), "."))
	if ext == "" {
		ext = "jpg"
	}

	url, err := h.evidence.Upload(evidence.SubmissionPath(claims.UserID, ext), data)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store evidence"))
		return
	}
	response.Created(c, gin.H{"url": url})
}

// MyAttendance godoc
// @Summary List my attendance
// @Description List the authenticated user's ledger records
// @Tags Attendance
// @Produce json
// @Param date_from query string false "Start date (YYYY-MM-DD)"
// @Param date_to query string false "End date (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance/me [get]
func (h *AttendanceHandler) MyAttendance(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	filter, err := filterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	records, pagination, err := h.service.MyAttendance(c.Request.Context(), claims.UserID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// ScheduleDay godoc
// @Summary List attendance for a schedule occurrence
// @Description List every record captured for one schedule on one date
// @Tags Attendance
// @Produce json
// @Param id path string true "Schedule ID"
// @Param date query string true "Attendance date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /attendance/schedule/{id} [get]
func (h *AttendanceHandler) ScheduleDay(c *gin.Context) {
	records, err := h.service.ScheduleDay(c.Request.Context(), c.Param("id"), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

func filterFromQuery(c *gin.Context) (models.AttendanceFilter, error) {
	filter := models.AttendanceFilter{
		ScheduleID: c.Query("schedule_id"),
		CourseID:   c.Query("course_id"),
	}
	if raw := c.Query("date_from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "date_from must be YYYY-MM-DD")
		}
		filter.DateFrom = &parsed
	}
	if raw := c.Query("date_to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, "date_to must be YYYY-MM-DD")
		}
		filter.DateTo = &parsed
	}
	filter.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filter.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "50"))
	return filter, nil
}
