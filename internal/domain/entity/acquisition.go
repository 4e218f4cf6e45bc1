// internal/domain/entity/acquisition.go
package entity

// Acquisition Outcome
const (
	AcquisitionLocated  = "located"
	AcquisitionNotFound = "not_found"
	AcquisitionFallback = "fallback"
)

// AcquisitionResult is what one portal run produced. Payload is only set on
// a genuine portal acquisition, never on the fallback path; the degraded
// path must not look like real data downstream.
type AcquisitionResult struct {
	Outcome string
	PDFPath string
	Payload *PortalPayload
}
