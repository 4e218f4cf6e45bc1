// internal/domain/entity/invoice.go
package entity

// InvoiceData holds the structured fields recovered from one e-invoice
type InvoiceData struct {
	InvoiceNumber string  `json:"invoiceNumber"`
	Date          string  `json:"date"` // YYYY-MM-DD
	Airline       string  `json:"airline"`
	Amount        float64 `json:"amount"`
	GSTIN         string  `json:"gstin,omitempty"`
}

// AirlineTotal aggregates parsed invoices for a single airline
type AirlineTotal struct {
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
}

// InvoiceSummary is recomputed on demand from the passenger set, never stored
type InvoiceSummary struct {
	TotalInvoices     int                     `json:"totalInvoices"`
	TotalAmount       float64                 `json:"totalAmount"`
	AirlineTotals     map[string]AirlineTotal `json:"airlineTotals"`
	HighValueInvoices []InvoiceData           `json:"highValueInvoices"`
}

// PortalPayload carries fields scraped straight off the portal's invoice
// detail view. When present it outranks anything re-extracted from the
// rendered PDF text.
type PortalPayload struct {
	InvoiceNumber string `json:"invoiceNumber"`
	InvoiceDate   string `json:"invoiceDate"` // D/M/YYYY as shown on the portal
	PassengerName string `json:"passengerName"`
	GSTNumber     string `json:"gstNumber"`
	TotalAmount   string `json:"totalAmount"` // grouped decimal, e.g. 35,000.00
	GSTTotal      string `json:"gstTotal"`
	TaxLocation   string `json:"taxLocation"`
	Itinerary     string `json:"itinerary"`
}
