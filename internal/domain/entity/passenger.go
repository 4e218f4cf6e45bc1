// internal/domain/entity/passenger.go
package entity

// Download Status
const (
	DownloadPending  = "pending"
	DownloadSuccess  = "success"
	DownloadNotFound = "not_found"
	DownloadError    = "error"
)

// Parse Status
const (
	ParsePending = "pending"
	ParseSuccess = "success"
	ParseError   = "error"
)

// Passenger represents one ticketed passenger and the progress of both
// workflow phases for their e-invoice
type Passenger struct {
	ID             string       `json:"id"`
	TicketNumber   string       `json:"ticketNumber"`
	FirstName      string       `json:"firstName"`
	LastName       string       `json:"lastName"`
	DownloadStatus string       `json:"downloadStatus"`
	ParseStatus    string       `json:"parseStatus"`
	PDFPath        string       `json:"pdfPath,omitempty"`
	InvoiceData    *InvoiceData `json:"invoiceData,omitempty"`
	ErrorMessage   string       `json:"errorMessage,omitempty"`
}
