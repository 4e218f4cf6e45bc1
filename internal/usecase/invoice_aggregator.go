package usecase

import (
	"context"
	"sort"

	"einvoice-tracker/internal/domain/entity"
	"einvoice-tracker/internal/domain/repository"
	"einvoice-tracker/pkg/logger"
)

// DefaultHighValueThreshold flags invoices worth reviewing individually
const DefaultHighValueThreshold = 30000

// InvoiceAggregator derives summary statistics from the current passenger
// snapshot. Everything here is recomputed on demand and never persisted.
type InvoiceAggregator struct {
	passengerRepo repository.PassengerRepository
	threshold     float64
	logger        logger.Logger
}

// NewInvoiceAggregator creates a new aggregator; threshold <= 0 selects the
// default high-value threshold
func NewInvoiceAggregator(passengerRepo repository.PassengerRepository, threshold float64, logger logger.Logger) *InvoiceAggregator {
	if threshold <= 0 {
		threshold = DefaultHighValueThreshold
	}
	return &InvoiceAggregator{
		passengerRepo: passengerRepo,
		threshold:     threshold,
		logger:        logger,
	}
}

// ListInvoices returns all successfully parsed invoices, newest first
func (a *InvoiceAggregator) ListInvoices(ctx context.Context) ([]entity.InvoiceData, error) {
	passengers, err := a.passengerRepo.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	invoices := make([]entity.InvoiceData, 0)
	for _, p := range passengers {
		if p.ParseStatus == entity.ParseSuccess && p.InvoiceData != nil {
			invoices = append(invoices, *p.InvoiceData)
		}
	}

	// Dates are ISO formatted so a lexical comparison orders them
	sort.SliceStable(invoices, func(i, j int) bool {
		return invoices[i].Date > invoices[j].Date
	})
	return invoices, nil
}

// Summary computes totals, the per-airline breakdown and the high-value
// subset at the configured threshold
func (a *InvoiceAggregator) Summary(ctx context.Context) (*entity.InvoiceSummary, error) {
	invoices, err := a.ListInvoices(ctx)
	if err != nil {
		return nil, err
	}

	summary := &entity.InvoiceSummary{
		AirlineTotals:     make(map[string]entity.AirlineTotal),
		HighValueInvoices: make([]entity.InvoiceData, 0),
	}

	for _, invoice := range invoices {
		summary.TotalInvoices++
		summary.TotalAmount += invoice.Amount

		totals := summary.AirlineTotals[invoice.Airline]
		totals.Count++
		totals.Amount += invoice.Amount
		summary.AirlineTotals[invoice.Airline] = totals

		if invoice.Amount > a.threshold {
			summary.HighValueInvoices = append(summary.HighValueInvoices, invoice)
		}
	}
	return summary, nil
}

// HighValue returns the invoices whose amount exceeds the given threshold.
// A negative threshold falls back to the configured one.
func (a *InvoiceAggregator) HighValue(ctx context.Context, threshold float64) ([]entity.InvoiceData, error) {
	if threshold < 0 {
		threshold = a.threshold
	}

	invoices, err := a.ListInvoices(ctx)
	if err != nil {
		return nil, err
	}

	highValue := make([]entity.InvoiceData, 0)
	for _, invoice := range invoices {
		if invoice.Amount > threshold {
			highValue = append(highValue, invoice)
		}
	}
	return highValue, nil
}
