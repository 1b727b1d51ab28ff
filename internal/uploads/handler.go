package uploads

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/keshav-protos/medai-clinical-view/internal/documents"
	"github.com/keshav-protos/medai-clinical-view/internal/medai"
	"github.com/keshav-protos/medai-clinical-view/internal/shared/metrics"
	"github.com/keshav-protos/medai-clinical-view/internal/shared/server/middleware"
	"github.com/keshav-protos/medai-clinical-view/internal/shared/server/respond"
	"github.com/keshav-protos/medai-clinical-view/internal/shared/storage/object"
	"github.com/keshav-protos/medai-clinical-view/internal/shared/telemetry"
)

// Analyzer is the subset of the analyzer client the upload pipeline needs.
type Analyzer interface {
	ProcessDocument(ctx context.Context, documentURL string) (documents.Analysis, error)
}

// Handler drives the upload-store-analyze-persist pipeline and reports
// workflow status.
type Handler struct {
	Tracker      *Tracker
	Store        object.ObjectStore
	Analyzer     Analyzer
	Docs         *documents.Service
	Metrics      *metrics.Metrics
	SignedURLTTL time.Duration
	Service      string
}

// RegisterRoutes attaches upload routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents", h.upload)
	rg.GET("/uploads/status", h.status)
	rg.POST("/uploads/reset", h.reset)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	wf := h.Tracker.Get(userID)
	defer func() {
		c.Set("workflowState", string(wf.Snapshot().State))
	}()

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "multipart field 'file' is required", nil)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if err := ValidateSelection(header.Filename, header.Size, contentType); err != nil {
		status := http.StatusBadRequest
		switch {
		case errors.Is(err, ErrFileTooLarge):
			status = http.StatusRequestEntityTooLarge
		case errors.Is(err, ErrUnsupportedType):
			status = http.StatusUnsupportedMediaType
		}
		respond.Error(c, status, "validation_error", err.Error(), nil)
		return
	}

	if err := wf.Begin(header.Filename); err != nil {
		switch {
		case errors.Is(err, ErrBusy):
			respond.Error(c, http.StatusConflict, "upload_in_progress", err.Error(), nil)
		case errors.Is(err, ErrNeedsReset):
			respond.Error(c, http.StatusConflict, "reset_required", err.Error(), nil)
		default:
			respond.Error(c, http.StatusConflict, "conflict", err.Error(), nil)
		}
		return
	}

	ctx := c.Request.Context()

	key, size, _, err := h.Store.Save(ctx, userID, header.Filename, file)
	if err != nil {
		wf.Fail("failed to store file")
		telemetry.Error("object store save failed", map[string]any{"error": err.Error()})
		h.Metrics.RecordDocumentProcessed(h.Service, "failure", 0)
		respond.Error(c, http.StatusInternalServerError, "storage_error", "failed to store file", nil)
		return
	}
	wf.MarkStored()

	fileURL, err := h.Store.SignedURL(ctx, key, h.SignedURLTTL)
	if err != nil {
		wf.Fail("failed to sign file URL")
		telemetry.Error("signed URL failed", map[string]any{"error": err.Error(), "storage_key": key})
		h.Metrics.RecordDocumentProcessed(h.Service, "failure", 0)
		respond.Error(c, http.StatusInternalServerError, "storage_error", "failed to sign file URL", nil)
		return
	}
	wf.MarkSigned()

	wf.MarkAnalyzing()
	res, err := h.Analyzer.ProcessDocument(ctx, fileURL)
	if err != nil {
		// The stored object is left in place; there is no rollback.
		wf.Fail(analysisFailureMessage(err))
		h.Metrics.RecordDocumentProcessed(h.Service, "failure", 0)

		var apiErr *medai.APIError
		switch {
		case errors.Is(err, medai.ErrUnavailable):
			respond.Error(c, http.StatusServiceUnavailable, "service_unavailable", "document analyzer is unavailable", nil)
		case errors.As(err, &apiErr):
			respond.Error(c, http.StatusBadGateway, "analyzer_error", apiErr.Error(), nil)
		default:
			respond.Error(c, http.StatusBadGateway, "analyzer_error", "document analysis failed", nil)
		}
		return
	}
	wf.MarkAnalyzed()

	doc, err := h.Docs.SaveProcessed(ctx, userID, header.Filename, fileURL, res)
	if err != nil {
		wf.Fail("failed to save document")
		telemetry.Error("persist processed document failed", map[string]any{"error": err.Error()})
		h.Metrics.RecordDocumentProcessed(h.Service, "failure", 0)
		respond.Error(c, http.StatusInternalServerError, "persistence_error", "failed to save document", nil)
		return
	}

	wf.Complete(doc.ID)
	h.Metrics.RecordDocumentProcessed(h.Service, "success", res.ProcessingTime)
	telemetry.Info("document processed", map[string]any{
		"document_id": doc.ID,
		"storage_key": key,
		"size_bytes":  size,
	})
	c.Set("documentId", doc.ID)

	respond.JSON(c, http.StatusCreated, documents.ToResponse(doc))
}

func (h *Handler) status(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	respond.OK(c, h.Tracker.Get(userID).Snapshot())
}

func (h *Handler) reset(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	wf := h.Tracker.Get(userID)
	wf.Reset()
	c.Set("workflowState", string(StateIdle))
	respond.OK(c, wf.Snapshot())
}

func analysisFailureMessage(err error) string {
	var apiErr *medai.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, medai.ErrUnavailable) {
		return "document analyzer is unavailable"
	}
	return "document analysis failed"
}
