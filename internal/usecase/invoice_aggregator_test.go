package usecase

import (
	"context"
	"testing"

	"einvoice-tracker/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parsedPassenger(id, airline, date string, amount float64) *entity.Passenger {
	return &entity.Passenger{
		ID:             id,
		TicketNumber:   "T-" + id,
		DownloadStatus: entity.DownloadSuccess,
		ParseStatus:    entity.ParseSuccess,
		PDFPath:        "uploads/" + id + ".pdf",
		InvoiceData: &entity.InvoiceData{
			InvoiceNumber: "INV-" + id,
			Date:          date,
			Airline:       airline,
			Amount:        amount,
		},
	}
}

func aggregatorFixture() *InvoiceAggregator {
	repo := newFakePassengerRepo(
		parsedPassenger("a", "Thai Airways International", "2024-10-14", 10000),
		parsedPassenger("b", "Thai Airways International", "2024-11-02", 35000),
		parsedPassenger("c", "Air India", "2024-09-20", 40000),
		&entity.Passenger{ID: "d", TicketNumber: "T-d", DownloadStatus: entity.DownloadNotFound, ParseStatus: entity.ParsePending},
	)
	return NewInvoiceAggregator(repo, 0, testLogger())
}

func TestSummaryAggregation(t *testing.T) {
	agg := aggregatorFixture()

	summary, err := agg.Summary(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalInvoices)
	assert.Equal(t, float64(85000), summary.TotalAmount)

	require.Len(t, summary.AirlineTotals, 2)
	thai := summary.AirlineTotals["Thai Airways International"]
	assert.Equal(t, 2, thai.Count)
	assert.Equal(t, float64(45000), thai.Amount)
	airIndia := summary.AirlineTotals["Air India"]
	assert.Equal(t, 1, airIndia.Count)
	assert.Equal(t, float64(40000), airIndia.Amount)

	assert.Len(t, summary.HighValueInvoices, 2)
}

func TestHighValueThresholds(t *testing.T) {
	agg := aggregatorFixture()

	over30k, err := agg.HighValue(context.Background(), 30000)
	require.NoError(t, err)
	require.Len(t, over30k, 2)
	for _, inv := range over30k {
		assert.Greater(t, inv.Amount, float64(30000))
	}

	all, err := agg.HighValue(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// a negative threshold falls back to the configured default
	defaulted, err := agg.HighValue(context.Background(), -1)
	require.NoError(t, err)
	assert.Len(t, defaulted, 2)
}

func TestListInvoicesNewestFirst(t *testing.T) {
	agg := aggregatorFixture()

	invoices, err := agg.ListInvoices(context.Background())
	require.NoError(t, err)
	require.Len(t, invoices, 3)
	assert.Equal(t, "2024-11-02", invoices[0].Date)
	assert.Equal(t, "2024-10-14", invoices[1].Date)
	assert.Equal(t, "2024-09-20", invoices[2].Date)
}
