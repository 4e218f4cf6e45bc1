package portal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const detailViewText = `THAI AIRWAYS INTERNATIONAL PUBLIC COMPANY LIMITED
TAX INVOICE

Invoice No. : 27P2410IV002348
Invoice Date : 14/10/2024
Passenger Name : WAGNER/VICTOR MR
GST No. : 27AABCB3524G1Z1
Tax Location : BOM
Itinerary : BOM(BKK)

Description THB INR
Air Fare 30,000.00 28,500.00
GST Total 1,500.00 1,400.00
Total 36,800.00 35,000.00
`

func TestScrapePayloadFromDetailView(t *testing.T) {
	payload := scrapePayload(detailViewText)

	assert.Equal(t, "27P2410IV002348", payload.InvoiceNumber)
	assert.Equal(t, "14/10/2024", payload.InvoiceDate)
	assert.Equal(t, "WAGNER/VICTOR MR", payload.PassengerName)
	assert.Equal(t, "27AABCB3524G1Z1", payload.GSTNumber)
	// monetary rows carry two columns; the local currency one is kept
	assert.Equal(t, "35,000.00", payload.TotalAmount)
	assert.Equal(t, "1,400.00", payload.GSTTotal)
	assert.Equal(t, "BOM", payload.TaxLocation)
	assert.Equal(t, "BOM(BKK)", payload.Itinerary)
}

func TestScrapePayloadMissingFields(t *testing.T) {
	payload := scrapePayload("an error page with none of the expected fields")

	assert.Empty(t, payload.InvoiceNumber)
	assert.Empty(t, payload.InvoiceDate)
	assert.Empty(t, payload.TotalAmount)
	assert.Empty(t, payload.GSTNumber)
}
