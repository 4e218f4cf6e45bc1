package rest

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"einvoice-tracker/internal/domain/entity"
	"einvoice-tracker/internal/domain/repository"
	"einvoice-tracker/internal/usecase"
	"einvoice-tracker/pkg/logger"

	"github.com/gin-gonic/gin"
)

// WorkflowService is the passenger workflow surface the transport calls into
type WorkflowService interface {
	GetAll(ctx context.Context) ([]*entity.Passenger, error)
	GetByID(ctx context.Context, id string) (*entity.Passenger, error)
	DownloadInvoice(ctx context.Context, id string) (*entity.Passenger, error)
	ParseInvoice(ctx context.Context, id string) (*entity.Passenger, error)
}

// InvoiceService is the read-only aggregation surface
type InvoiceService interface {
	ListInvoices(ctx context.Context) ([]entity.InvoiceData, error)
	Summary(ctx context.Context) (*entity.InvoiceSummary, error)
	HighValue(ctx context.Context, threshold float64) ([]entity.InvoiceData, error)
}

// apiResponse is the JSON envelope every endpoint answers with
type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Handler exposes the workflow and aggregator over HTTP. It maps typed core
// failures onto status codes and never alters the returned records.
type Handler struct {
	workflow   WorkflowService
	aggregator InvoiceService
	logger     logger.Logger
}

// NewHandler creates a new REST handler
func NewHandler(workflow WorkflowService, aggregator InvoiceService, log logger.Logger) *Handler {
	return &Handler{
		workflow:   workflow,
		aggregator: aggregator,
		logger:     log,
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrPassengerNotFound):
		c.JSON(http.StatusNotFound, apiResponse{Success: false, Error: err.Error()})
	case errors.Is(err, usecase.ErrNoDocument):
		c.JSON(http.StatusBadRequest, apiResponse{Success: false, Error: err.Error()})
	default:
		h.logger.Error("Request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, apiResponse{Success: false, Error: err.Error()})
	}
}

// ListPassengers handles GET /api/passengers
func (h *Handler) ListPassengers(c *gin.Context) {
	passengers, err := h.workflow.GetAll(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apiResponse{Success: true, Data: passengers})
}

// GetPassenger handles GET /api/passengers/:id
func (h *Handler) GetPassenger(c *gin.Context) {
	passenger, err := h.workflow.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apiResponse{Success: true, Data: passenger})
}

// DownloadInvoice handles POST /api/passengers/:id/download
func (h *Handler) DownloadInvoice(c *gin.Context) {
	passenger, err := h.workflow.DownloadInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apiResponse{Success: true, Data: passenger, Message: "Invoice download finished"})
}

// ParseInvoice handles POST /api/passengers/:id/parse
func (h *Handler) ParseInvoice(c *gin.Context) {
	passenger, err := h.workflow.ParseInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apiResponse{Success: true, Data: passenger, Message: "Invoice parsed"})
}

// ListInvoices handles GET /api/invoices
func (h *Handler) ListInvoices(c *gin.Context) {
	invoices, err := h.aggregator.ListInvoices(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apiResponse{Success: true, Data: invoices})
}

// GetSummary handles GET /api/invoices/summary
func (h *Handler) GetSummary(c *gin.Context) {
	summary, err := h.aggregator.Summary(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apiResponse{Success: true, Data: summary})
}

// GetHighValue handles GET /api/invoices/high-value. A missing or
// unparseable threshold selects the default.
func (h *Handler) GetHighValue(c *gin.Context) {
	threshold := -1.0
	if raw := c.Query("threshold"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			threshold = v
		}
	}

	invoices, err := h.aggregator.HighValue(c.Request.Context(), threshold)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, apiResponse{Success: true, Data: invoices})
}

// Health handles GET /api/health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK", "message": "Server is running"})
}
