package portal

import (
	"regexp"
	"strings"

	"einvoice-tracker/internal/domain/entity"
)

// Patterns matching the portal's invoice detail view as rendered text.
// Monetary rows show two columns (THB and local currency); the second,
// local-currency figure is the one carried forward.
var (
	detailInvoiceNo = regexp.MustCompile(`Invoice No\.\s*:\s*([0-9]{2}[A-Z][0-9]{4}[A-Z]{2}[0-9]{6})`)
	detailDate      = regexp.MustCompile(`Invoice Date\s*:\s*(\d{1,2}/\d{1,2}/\d{4})`)
	detailPassenger = regexp.MustCompile(`Passenger Name\s*:\s*([A-Z/\s]+(?:MR|MS|MRS|DR)?)`)
	detailGSTNo     = regexp.MustCompile(`GST No\.\s*:\s*([0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][0-9][A-Z][0-9])`)
	detailTotal     = regexp.MustCompile(`(?m)^\s*Total\s+(\d{1,3}(?:,\d{3})*\.?\d{0,2})\s+(\d{1,3}(?:,\d{3})*\.?\d{0,2})`)
	detailGSTTotal  = regexp.MustCompile(`GST Total\s+(\d{1,3}(?:,\d{3})*\.?\d{0,2})\s+(\d{1,3}(?:,\d{3})*\.?\d{0,2})`)
	detailTaxLoc    = regexp.MustCompile(`Tax Location\s*:\s*([A-Z]{3})`)
	detailItinerary = regexp.MustCompile(`Itinerary\s*:\s*([A-Z()]+)`)
)

func firstGroup(re *regexp.Regexp, text string, group int) string {
	if m := re.FindStringSubmatch(text); m != nil {
		return m[group]
	}
	return ""
}

// scrapePayload pulls the directly recoverable invoice fields off the
// rendered detail view text
func scrapePayload(pageText string) *entity.PortalPayload {
	payload := &entity.PortalPayload{
		InvoiceNumber: firstGroup(detailInvoiceNo, pageText, 1),
		InvoiceDate:   firstGroup(detailDate, pageText, 1),
		PassengerName: firstGroup(detailPassenger, pageText, 1),
		GSTNumber:     firstGroup(detailGSTNo, pageText, 1),
		TotalAmount:   firstGroup(detailTotal, pageText, 2),
		GSTTotal:      firstGroup(detailGSTTotal, pageText, 2),
		TaxLocation:   firstGroup(detailTaxLoc, pageText, 1),
		Itinerary:     firstGroup(detailItinerary, pageText, 1),
	}

	payload.PassengerName = strings.TrimSpace(payload.PassengerName)
	return payload
}
