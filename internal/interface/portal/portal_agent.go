package portal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"einvoice-tracker/internal/domain/entity"
	"einvoice-tracker/pkg/logger"
	"einvoice-tracker/pkg/metrics"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

const desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

var errResultsTimeout = errors.New("search results did not load within the polling budget")

// Config bounds every wait in one portal run
type Config struct {
	PortalURL          string
	UploadsDir         string
	NavigationTimeout  time.Duration
	ElementTimeout     time.Duration
	ResultPollInterval time.Duration
	ResultPollAttempts int
}

// Agent drives a headless browser session against the airline e-invoice
// portal for one passenger at a time. Each acquisition owns an isolated
// browser context, released on every exit path.
type Agent struct {
	cfg      Config
	fallback *FallbackWriter
	logger   logger.Logger
	metrics  *metrics.Metrics
}

// NewAgent creates a new portal acquisition agent
func NewAgent(cfg Config, fallback *FallbackWriter, log logger.Logger, m *metrics.Metrics) *Agent {
	return &Agent{
		cfg:      cfg,
		fallback: fallback,
		logger:   log,
		metrics:  m,
	}
}

// Acquire retrieves the passenger's e-invoice document, or determines none
// exists. Portal faults do not propagate: the business requirement is to
// always hand back something reviewable, so a fault degrades to a clearly
// labelled placeholder document with no structured payload.
func (a *Agent) Acquire(ctx context.Context, passenger *entity.Passenger) (*entity.AcquisitionResult, error) {
	start := time.Now()
	defer func() {
		a.metrics.AcquisitionDuration.Observe(time.Since(start).Seconds())
	}()

	a.logger.Info("Starting portal acquisition",
		"ticketNumber", passenger.TicketNumber,
		"passenger", passenger.FirstName+" "+passenger.LastName)

	if err := os.MkdirAll(a.cfg.UploadsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads directory: %w", err)
	}

	result, err := a.acquireFromPortal(ctx, passenger)
	if err == nil {
		return result, nil
	}

	a.logger.Warn("Portal acquisition failed, writing placeholder document",
		"ticketNumber", passenger.TicketNumber, "error", err)
	a.metrics.FallbackDocuments.Inc()

	pdfPath, fbErr := a.fallback.Write(passenger, a.documentPath(passenger))
	if fbErr != nil {
		return nil, fmt.Errorf("placeholder document after portal fault (%v): %w", err, fbErr)
	}

	return &entity.AcquisitionResult{
		Outcome: entity.AcquisitionFallback,
		PDFPath: pdfPath,
	}, nil
}

// acquireFromPortal runs the real portal protocol. Any returned error is a
// fault; a definitive "no invoice" comes back as a NotFound result.
func (a *Agent) acquireFromPortal(ctx context.Context, passenger *entity.Passenger) (*entity.AcquisitionResult, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(desktopUserAgent),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	// Start the browser on the session context itself; a timeout-bounded
	// first run would tie the browser's lifetime to that timeout.
	if err := chromedp.Run(browserCtx); err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	if err := a.runWithTimeout(browserCtx, a.cfg.NavigationTimeout,
		chromedp.Navigate(a.cfg.PortalURL),
	); err != nil {
		return nil, fmt.Errorf("navigate to portal: %w", err)
	}

	// The ticket lookup form going missing means the portal interface has
	// changed and automation cannot continue.
	if err := a.runWithTimeout(browserCtx, a.cfg.ElementTimeout,
		chromedp.WaitVisible(`#ticketNo`, chromedp.ByID),
	); err != nil {
		return nil, fmt.Errorf("ticket lookup form not found: %w", err)
	}

	a.logger.Info("Portal loaded, submitting search", "ticketNumber", passenger.TicketNumber)

	if err := chromedp.Run(browserCtx,
		chromedp.SendKeys(`#ticketNo`, passenger.TicketNumber, chromedp.ByID),
	); err != nil {
		return nil, fmt.Errorf("fill ticket number: %w", err)
	}

	// Some portal search paths require a secondary identifier beyond the
	// ticket number, so the name fields are filled whenever they exist.
	var hasNameFields bool
	if err := chromedp.Run(browserCtx,
		chromedp.Evaluate(`document.querySelector('#firstName') !== null && document.querySelector('#lastName') !== null`, &hasNameFields),
	); err != nil {
		return nil, fmt.Errorf("probe name fields: %w", err)
	}
	if hasNameFields {
		if err := chromedp.Run(browserCtx,
			chromedp.SendKeys(`#firstName`, passenger.FirstName, chromedp.ByID),
			chromedp.SendKeys(`#lastName`, passenger.LastName, chromedp.ByID),
		); err != nil {
			return nil, fmt.Errorf("fill passenger name: %w", err)
		}
	} else {
		a.logger.Warn("Name fields not found on portal, searching by ticket only")
	}

	if err := chromedp.Run(browserCtx,
		chromedp.Click(`button[onclick="search()"]`, chromedp.ByQuery),
	); err != nil {
		return nil, fmt.Errorf("search button not found: %w", err)
	}

	state, err := a.pollSearchResults(browserCtx)
	if err != nil {
		return nil, err
	}
	if state == resultsEmpty {
		a.logger.Info("Portal reported no invoice for this ticket", "ticketNumber", passenger.TicketNumber)
		return &entity.AcquisitionResult{Outcome: entity.AcquisitionNotFound}, nil
	}

	a.logger.Info("Search results present, opening invoice detail view")

	if err := chromedp.Run(browserCtx,
		chromedp.Click(`#searchResults input[name="ticket"]`, chromedp.ByQuery),
	); err != nil {
		return nil, fmt.Errorf("invoice row checkbox not found: %w", err)
	}

	if err := chromedp.Run(browserCtx, chromedp.Evaluate(clickViewButtonJS, nil)); err != nil {
		return nil, fmt.Errorf("view button not found: %w", err)
	}

	if err := a.runWithTimeout(browserCtx, a.cfg.NavigationTimeout,
		chromedp.WaitVisible(`#divprint`, chromedp.ByID),
	); err != nil {
		return nil, fmt.Errorf("invoice detail view did not load: %w", err)
	}

	// Fields scraped off the rendered detail view are higher fidelity than
	// anything re-extracted from the exported PDF later.
	var pageText string
	if err := chromedp.Run(browserCtx,
		chromedp.Evaluate(`document.body.innerText`, &pageText),
	); err != nil {
		return nil, fmt.Errorf("read detail view text: %w", err)
	}
	payload := scrapePayload(pageText)
	a.logger.Info("Scraped invoice fields from detail view",
		"invoiceNumber", payload.InvoiceNumber, "totalAmount", payload.TotalAmount)

	pdfPath := a.documentPath(passenger)
	var pdfData []byte
	if err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		buf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
		if err != nil {
			return err
		}
		pdfData = buf
		return nil
	})); err != nil {
		return nil, fmt.Errorf("render invoice page to PDF: %w", err)
	}
	if err := os.WriteFile(pdfPath, pdfData, 0o644); err != nil {
		return nil, fmt.Errorf("store invoice document: %w", err)
	}

	a.logger.Info("Invoice document acquired", "path", pdfPath)

	return &entity.AcquisitionResult{
		Outcome: entity.AcquisitionLocated,
		PDFPath: pdfPath,
		Payload: payload,
	}, nil
}

type resultState int

const (
	resultsEmpty resultState = iota
	resultsTable
)

// "No ticket details found" is the portal's explicit empty-result marker:
// the portal affirmatively said no invoice exists, which is a normal
// outcome and not a fault.
const classifyResultsJS = `(() => {
	const el = document.querySelector('#searchResults');
	if (!el) return 'pending';
	const content = el.innerHTML.trim();
	if (content.length === 0) return 'pending';
	if (content.includes('No ticket details found')) return 'no_results';
	if (content.includes('<table')) return 'results';
	return 'pending';
})()`

const clickViewButtonJS = `(() => {
	const btn = document.querySelector('#searchResults button.view-button')
		|| document.querySelector('#searchResults button[onclick="viewTicketDetails()"]');
	if (!btn) throw new Error('view button missing');
	btn.click();
})()`

// pollSearchResults watches the AJAX-populated results region until it is
// classifiable. Exhausting the budget is a fault, not a "no results": the
// portal never gave a definitive answer.
func (a *Agent) pollSearchResults(browserCtx context.Context) (resultState, error) {
	for attempt := 1; attempt <= a.cfg.ResultPollAttempts; attempt++ {
		select {
		case <-browserCtx.Done():
			return 0, browserCtx.Err()
		case <-time.After(a.cfg.ResultPollInterval):
		}

		var state string
		if err := chromedp.Run(browserCtx, chromedp.Evaluate(classifyResultsJS, &state)); err != nil {
			return 0, fmt.Errorf("inspect search results: %w", err)
		}

		switch state {
		case "no_results":
			return resultsEmpty, nil
		case "results":
			return resultsTable, nil
		}
		a.logger.Debug("Waiting for search results", "attempt", attempt, "maxAttempts", a.cfg.ResultPollAttempts)
	}
	return 0, errResultsTimeout
}

// runWithTimeout bounds a chromedp action without cancelling the session
func (a *Agent) runWithTimeout(browserCtx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	timed, cancel := context.WithTimeout(browserCtx, timeout)
	defer cancel()
	return chromedp.Run(timed, actions...)
}

// documentPath builds the stable artifact name served by the static layer
func (a *Agent) documentPath(passenger *entity.Passenger) string {
	name := fmt.Sprintf("invoice_%s_%d.pdf", strings.TrimSpace(passenger.TicketNumber), time.Now().UnixMilli())
	return filepath.Join(a.cfg.UploadsDir, name)
}
