package http

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"auction-analyzer/internal/domain/vehicle"
	"auction-analyzer/internal/report"
	"auction-analyzer/internal/service"
)

// maxUploadBytes bounds one multipart submission.
const maxUploadBytes = 50 << 20

type Handler struct {
	vehicleService *service.VehicleService
	log            zerolog.Logger
}

func NewHandler(
	vehicleService *service.VehicleService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		vehicleService: vehicleService,
		log:            log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	// Public endpoints
	public := r.Group("/api/v1")
	{
		public.POST("/vehicles", h.submitVehicle)
		public.GET("/vehicles", h.listVehicles)
		public.GET("/vehicles/:id/analysis", h.getAnalysis)
		public.GET("/vehicles/:id/report", h.downloadReport)
	}

	// Protected endpoints
	protected := r.Group("/api/v1")
	protected.Use(authMiddleware)
	{
		protected.DELETE("/vehicles/:id", h.deleteVehicle)
	}
}

// submitVehicle accepts a multipart upload of photos plus optional metadata
// fields and starts the analysis in the background. Responds 202: the
// analysis outcome is fetched separately.
func (h *Handler) submitVehicle(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(maxUploadBytes); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid multipart payload"))
		return
	}

	var meta vehicle.UploadMetadata
	if err := c.ShouldBind(&meta); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	uploads, err := collectUploads(c.Request.MultipartForm)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	h.log.Info().
		Int("photo_count", len(uploads)).
		Str("make", meta.Make).
		Str("model", meta.Model).
		Msg("processing vehicle submission")

	result, err := h.vehicleService.SubmitVehicle(c.Request.Context(), uploads, meta)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, result)
}

func (h *Handler) getAnalysis(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid vehicle id"))
		return
	}

	view, err := h.vehicleService.GetAnalysis(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(view))
}

func (h *Handler) listVehicles(c *gin.Context) {
	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	offset := 0
	if o := c.Query("offset"); o != "" {
		if parsed, err := strconv.Atoi(o); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	summaries, err := h.vehicleService.ListVehicles(c.Request.Context(), limit, offset)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list vehicles")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
		return
	}

	c.JSON(http.StatusOK, successResponse(summaries))
}

// downloadReport streams the completed analysis as an Excel workbook.
func (h *Handler) downloadReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid vehicle id"))
		return
	}

	result, err := h.vehicleService.GetResult(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	workbook, err := report.BuildWorkbook(result)
	if err != nil {
		h.log.Error().Err(err).Str("vehicle_id", id.String()).Msg("failed to build report")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
		return
	}

	var buf bytes.Buffer
	if err := workbook.Write(&buf); err != nil {
		h.log.Error().Err(err).Str("vehicle_id", id.String()).Msg("failed to serialize report")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
		return
	}

	filename := fmt.Sprintf("vehicle-analysis-%s.xlsx", id)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *Handler) deleteVehicle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid vehicle id"))
		return
	}

	if err := h.vehicleService.DeleteVehicle(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	h.log.Info().Str("vehicle_id", id.String()).Msg("vehicle deleted")
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

// collectUploads reads every file part named "photos" (with a fallback to
// any file part, which some upload clients use).
func collectUploads(form *multipart.Form) ([]service.PhotoUpload, error) {
	if form == nil {
		return nil, errors.New("photos are required")
	}

	files := form.File["photos"]
	if len(files) == 0 {
		for _, headers := range form.File {
			files = append(files, headers...)
		}
	}
	if len(files) == 0 {
		return nil, errors.New("photos are required")
	}

	uploads := make([]service.PhotoUpload, 0, len(files))
	for _, fh := range files {
		file, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open %q: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read %q: %w", fh.Filename, err)
		}
		uploads = append(uploads, service.PhotoUpload{
			Filename:    fh.Filename,
			ContentType: strings.ToLower(fh.Header.Get("Content-Type")),
			Data:        data,
		})
	}
	return uploads, nil
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}
