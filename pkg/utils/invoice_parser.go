package utils

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"einvoice-tracker/internal/domain/entity"
	"einvoice-tracker/internal/domain/repository"
	"einvoice-tracker/pkg/logger"
)

// Extraction patterns. The issuer invoice number has a rigid shape
// (27P2410IV002348) so the labelled pattern is tried first and the bare
// shape second. Amount tokens must carry a thousands separator or decimals;
// bare integers (ticket numbers, years) are not treated as money.
var (
	invoiceNumberPattern = regexp.MustCompile(`(?i)Invoice\s*No[.:]?\s*([0-9]{2}[A-Z][0-9]{4}[A-Z]{2}[0-9]{6})`)
	altInvoicePattern    = regexp.MustCompile(`[0-9]{2}[A-Z][0-9]{4}[A-Z]{2}[0-9]{6}`)

	datePattern    = regexp.MustCompile(`(?i)(?:Invoice\s*Date|Date)\s*:?\s*(\d{1,2}/\d{1,2}/\d{4})`)
	altDatePattern = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`)

	totalAmountPattern = regexp.MustCompile(`(?i)Total\s*:?\s*(\d{1,3}(?:,\d{3})*(?:\.\d{1,2})?)`)
	amountTokenPattern = regexp.MustCompile(`\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|\d+\.\d{2}`)

	gstNumberPattern = regexp.MustCompile(`(?i)GST\s*No[.:]?\s*([0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][0-9][A-Z][0-9])`)
	altGstPattern    = regexp.MustCompile(`[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][0-9][A-Z][0-9]`)

	whitespacePattern = regexp.MustCompile(`\s+`)
)

// thaiAirwaysCode is the issuer behind the supported portal; payloads
// scraped from its detail view are attributed to it directly.
const thaiAirwaysCode = "TG"

// InvoiceParser turns one document's raw text, or a payload scraped from
// the portal detail view, into structured invoice fields. It fabricates
// nothing: when no reliable field is present it reports no data at all.
type InvoiceParser struct {
	airlineRepo repository.AirlineRepository
	logger      logger.Logger

	markersMu     sync.Mutex
	markersLoaded bool
	markers       []*entity.Airline
}

// NewInvoiceParser creates a new invoice parser with dependencies
func NewInvoiceParser(airlineRepo repository.AirlineRepository, logger logger.Logger) *InvoiceParser {
	return &InvoiceParser{
		airlineRepo: airlineRepo,
		logger:      logger,
	}
}

// Parse extracts invoice fields. A portal payload, when present, is
// authoritative and the document text is ignored. A nil result means no
// reliable data could be recovered.
func (p *InvoiceParser) Parse(ctx context.Context, payload *entity.PortalPayload, text string) *entity.InvoiceData {
	if payload != nil && payload.InvoiceNumber != "" {
		return p.fromPayload(ctx, payload)
	}
	return p.extractFromText(ctx, text)
}

// fromPayload converts portal detail-view fields into invoice data
func (p *InvoiceParser) fromPayload(ctx context.Context, payload *entity.PortalPayload) *entity.InvoiceData {
	p.logger.Info("Using portal payload", "invoiceNumber", payload.InvoiceNumber)

	airline := "Thai Airways International"
	if a, err := p.airlineRepo.GetByCode(ctx, thaiAirwaysCode); err == nil {
		airline = a.Name
	}

	return &entity.InvoiceData{
		InvoiceNumber: payload.InvoiceNumber,
		Date:          p.formatDate(payload.InvoiceDate),
		Airline:       airline,
		Amount:        parseAmount(payload.TotalAmount),
		GSTIN:         payload.GSTNumber,
	}
}

// extractFromText runs the regex pipeline over normalized document text
func (p *InvoiceParser) extractFromText(ctx context.Context, text string) *entity.InvoiceData {
	cleanText := strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))

	airline := p.detectAirline(ctx, cleanText)

	var invoiceNumber string
	if m := invoiceNumberPattern.FindStringSubmatch(cleanText); m != nil {
		invoiceNumber = m[1]
	} else if m := altInvoicePattern.FindString(cleanText); m != "" {
		invoiceNumber = m
	}

	var date string
	if m := datePattern.FindStringSubmatch(cleanText); m != nil {
		date = p.formatDate(m[1])
	} else if m := altDatePattern.FindString(cleanText); m != "" {
		date = p.formatDate(m)
	}

	var amount float64
	if m := totalAmountPattern.FindStringSubmatch(cleanText); m != nil {
		amount = parseAmount(m[1])
	} else {
		for _, token := range amountTokenPattern.FindAllString(cleanText, -1) {
			if v := parseAmount(token); v > amount {
				amount = v
			}
		}
	}

	var gstin string
	if m := gstNumberPattern.FindStringSubmatch(cleanText); m != nil {
		gstin = m[1]
	} else if m := altGstPattern.FindString(cleanText); m != "" {
		gstin = m
	}

	p.logger.Debug("Extracted fields from text",
		"invoiceNumber", invoiceNumber,
		"date", date,
		"airline", airline,
		"amount", amount,
		"gstin", gstin)

	// All critical fields missing means this is not a real invoice, most
	// likely a placeholder document. Reporting fabricated values here would
	// poison the financial totals.
	if invoiceNumber == "" && amount == 0 && gstin == "" {
		p.logger.Warn("No reliable invoice data found in document text")
		return nil
	}

	if invoiceNumber == "" {
		invoiceNumber = "N/A"
	}
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	return &entity.InvoiceData{
		InvoiceNumber: invoiceNumber,
		Date:          date,
		Airline:       airline,
		Amount:        amount,
		GSTIN:         gstin,
	}
}

// detectAirline matches known issuer markers against the text
func (p *InvoiceParser) detectAirline(ctx context.Context, cleanText string) string {
	upper := strings.ToUpper(cleanText)
	for _, a := range p.loadMarkers(ctx) {
		if a.Marker != "" && strings.Contains(upper, a.Marker) {
			return a.Name
		}
	}
	return "Unknown"
}

// loadMarkers caches the airline catalog after the first successful read.
// A failed read is not cached, the next parse retries.
func (p *InvoiceParser) loadMarkers(ctx context.Context) []*entity.Airline {
	p.markersMu.Lock()
	defer p.markersMu.Unlock()

	if !p.markersLoaded {
		airlines, err := p.airlineRepo.GetAll(ctx)
		if err != nil {
			p.logger.Error("Failed to load airline catalog", "error", err)
			return nil
		}
		p.markers = airlines
		p.markersLoaded = true
	}
	return p.markers
}

// formatDate normalizes a day/month/year slash date to YYYY-MM-DD. Today is
// the last resort for a token that cannot be parsed; it is never invented
// when no token was found at all.
func (p *InvoiceParser) formatDate(dateString string) string {
	t, err := time.Parse("2/1/2006", strings.TrimSpace(dateString))
	if err != nil {
		p.logger.Warn("Unparseable invoice date", "date", dateString)
		return time.Now().Format("2006-01-02")
	}
	return t.Format("2006-01-02")
}

// parseAmount strips digit grouping and parses a monetary token
func parseAmount(token string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(token, ",", ""), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
