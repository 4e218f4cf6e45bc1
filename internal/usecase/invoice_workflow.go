package usecase

import (
	"context"
	"errors"
	"sync"

	"einvoice-tracker/internal/domain/entity"
	"einvoice-tracker/internal/domain/repository"
	"einvoice-tracker/pkg/logger"
	"einvoice-tracker/pkg/metrics"
)

// ErrNoDocument is the precondition failure for parsing before a
// successful download
var ErrNoDocument = errors.New("no document available to parse, download the invoice first")

const extractionFailedMessage = "Failed to extract invoice data from PDF"
const invoiceNotFoundMessage = "Invoice not found for this passenger"

// AcquisitionAgent retrieves one passenger's invoice document from the
// airline portal
type AcquisitionAgent interface {
	Acquire(ctx context.Context, passenger *entity.Passenger) (*entity.AcquisitionResult, error)
}

// DocumentReader turns a stored document into raw text for extraction
type DocumentReader interface {
	ExtractText(path string) (string, error)
}

// Parser recovers structured invoice fields from a portal payload or raw
// document text, nil when nothing reliable was found
type Parser interface {
	Parse(ctx context.Context, payload *entity.PortalPayload, text string) *entity.InvoiceData
}

// InvoiceWorkflow owns the per-passenger state machine: the download phase
// (portal acquisition) and the parse phase (field extraction). Both phases
// converge to a terminal status and persist before returning; pending is
// only ever a transient, externally observable mid-flight marker.
type InvoiceWorkflow struct {
	passengerRepo repository.PassengerRepository
	agent         AcquisitionAgent
	parser        Parser
	docReader     DocumentReader
	logger        logger.Logger
	metrics       *metrics.Metrics

	// At most one in-flight operation per passenger id. Two concurrent
	// downloads of one id would interleave snapshot writes.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	// Side-channel payloads from the latest acquisition, consumed exactly
	// once by the next parse of the same passenger.
	payloadsMu sync.Mutex
	payloads   map[string]*entity.PortalPayload
}

// NewInvoiceWorkflow creates a new invoice workflow controller
func NewInvoiceWorkflow(
	passengerRepo repository.PassengerRepository,
	agent AcquisitionAgent,
	parser Parser,
	docReader DocumentReader,
	logger logger.Logger,
	metrics *metrics.Metrics,
) *InvoiceWorkflow {
	return &InvoiceWorkflow{
		passengerRepo: passengerRepo,
		agent:         agent,
		parser:        parser,
		docReader:     docReader,
		logger:        logger,
		metrics:       metrics,
		locks:         make(map[string]*sync.Mutex),
		payloads:      make(map[string]*entity.PortalPayload),
	}
}

func (w *InvoiceWorkflow) lockFor(id string) *sync.Mutex {
	w.locksMu.Lock()
	defer w.locksMu.Unlock()
	if l, ok := w.locks[id]; ok {
		return l
	}
	l := &sync.Mutex{}
	w.locks[id] = l
	return l
}

func (w *InvoiceWorkflow) stashPayload(id string, payload *entity.PortalPayload) {
	w.payloadsMu.Lock()
	defer w.payloadsMu.Unlock()
	if payload == nil {
		delete(w.payloads, id)
		return
	}
	w.payloads[id] = payload
}

func (w *InvoiceWorkflow) takePayload(id string) *entity.PortalPayload {
	w.payloadsMu.Lock()
	defer w.payloadsMu.Unlock()
	payload := w.payloads[id]
	delete(w.payloads, id)
	return payload
}

// GetAll returns every passenger record
func (w *InvoiceWorkflow) GetAll(ctx context.Context) ([]*entity.Passenger, error) {
	return w.passengerRepo.GetAll(ctx)
}

// GetByID returns one passenger record
func (w *InvoiceWorkflow) GetByID(ctx context.Context, id string) (*entity.Passenger, error) {
	return w.passengerRepo.GetByID(ctx, id)
}

// DownloadInvoice runs the acquisition phase for one passenger. Except for
// the unknown-id precondition, it always converges the record to a terminal
// download status and returns it.
func (w *InvoiceWorkflow) DownloadInvoice(ctx context.Context, id string) (*entity.Passenger, error) {
	lock := w.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	passenger, err := w.passengerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	w.logger.Info("Starting invoice download",
		"id", id, "ticketNumber", passenger.TicketNumber)

	// A new acquisition invalidates any earlier document and everything
	// parsed out of it; parse success must never outlive the download it
	// came from.
	passenger.DownloadStatus = entity.DownloadPending
	passenger.ParseStatus = entity.ParsePending
	passenger.PDFPath = ""
	passenger.InvoiceData = nil
	passenger.ErrorMessage = ""
	if err := w.passengerRepo.Save(ctx, passenger); err != nil {
		return nil, err
	}

	result, err := w.agent.Acquire(ctx, passenger)
	switch {
	case err != nil:
		passenger.DownloadStatus = entity.DownloadError
		passenger.ErrorMessage = err.Error()
		w.stashPayload(id, nil)
		w.metrics.DownloadsTotal.WithLabelValues(entity.DownloadError).Inc()
		w.logger.Error("Invoice download failed", "id", id, "error", err)

	case result.Outcome == entity.AcquisitionNotFound:
		passenger.DownloadStatus = entity.DownloadNotFound
		passenger.ErrorMessage = invoiceNotFoundMessage
		w.stashPayload(id, nil)
		w.metrics.DownloadsTotal.WithLabelValues(entity.DownloadNotFound).Inc()

	default:
		passenger.DownloadStatus = entity.DownloadSuccess
		passenger.PDFPath = result.PDFPath
		passenger.ErrorMessage = ""
		w.stashPayload(id, result.Payload)
		w.metrics.DownloadsTotal.WithLabelValues(entity.DownloadSuccess).Inc()
		w.logger.Info("Invoice download finished",
			"id", id, "outcome", result.Outcome, "path", result.PDFPath)
	}

	if err := w.passengerRepo.Save(ctx, passenger); err != nil {
		return nil, err
	}
	return passenger, nil
}

// ParseInvoice runs the extraction phase for one passenger. It requires a
// previously successful download; that precondition is the only hard
// failure besides an unknown id.
func (w *InvoiceWorkflow) ParseInvoice(ctx context.Context, id string) (*entity.Passenger, error) {
	lock := w.lockFor(id)
	lock.Lock()
	defer lock.Unlock()

	passenger, err := w.passengerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if passenger.PDFPath == "" || passenger.DownloadStatus != entity.DownloadSuccess {
		return nil, ErrNoDocument
	}

	passenger.ParseStatus = entity.ParsePending
	if err := w.passengerRepo.Save(ctx, passenger); err != nil {
		return nil, err
	}

	payload := w.takePayload(id)

	var text string
	var readErr error
	if payload == nil {
		text, readErr = w.docReader.ExtractText(passenger.PDFPath)
	}

	var invoiceData *entity.InvoiceData
	if readErr != nil {
		w.logger.Error("Failed to read invoice document", "id", id, "error", readErr)
	} else {
		invoiceData = w.parser.Parse(ctx, payload, text)
	}

	if invoiceData != nil {
		passenger.ParseStatus = entity.ParseSuccess
		passenger.InvoiceData = invoiceData
		passenger.ErrorMessage = ""
		w.metrics.ParsesTotal.WithLabelValues(entity.ParseSuccess).Inc()
		w.logger.Info("Invoice parsed",
			"id", id, "invoiceNumber", invoiceData.InvoiceNumber, "amount", invoiceData.Amount)
	} else {
		passenger.ParseStatus = entity.ParseError
		passenger.InvoiceData = nil // never carry data alongside a failed parse
		if readErr != nil {
			passenger.ErrorMessage = readErr.Error()
		} else {
			passenger.ErrorMessage = extractionFailedMessage
		}
		w.metrics.ParsesTotal.WithLabelValues(entity.ParseError).Inc()
		w.logger.Warn("No reliable invoice data extracted", "id", id, "path", passenger.PDFPath)
	}

	if err := w.passengerRepo.Save(ctx, passenger); err != nil {
		return nil, err
	}
	return passenger, nil
}
