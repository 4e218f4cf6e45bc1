package portal

import (
	"fmt"
	"os"
	"time"

	"einvoice-tracker/internal/domain/entity"
	"einvoice-tracker/pkg/logger"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// FallbackWriter synthesizes the placeholder document handed back when the
// portal could not be driven to a definitive answer. The document carries
// only the passenger's own known fields and is deliberately free of
// invoice-shaped codes, monetary figures and tax ids so the parse phase
// cannot mistake it for a genuine invoice.
type FallbackWriter struct {
	logger logger.Logger
}

// NewFallbackWriter creates a new placeholder document writer
func NewFallbackWriter(log logger.Logger) *FallbackWriter {
	return &FallbackWriter{logger: log}
}

// Write renders the placeholder PDF at the given path
func (w *FallbackWriter) Write(passenger *entity.Passenger, path string) (string, error) {
	m := maroto.New(config.NewBuilder().Build())

	m.AddRow(14, text.NewCol(12, "E-INVOICE PLACEHOLDER", props.Text{
		Size:  20,
		Style: fontstyle.Bold,
		Align: align.Center,
	}))
	m.AddRow(8, text.NewCol(12, "The airline portal could not be reached for this ticket.", props.Text{
		Size:  11,
		Align: align.Center,
	}))
	m.AddRow(6, line.NewCol(12))

	m.AddRow(10, text.NewCol(12, "Passenger Details", props.Text{
		Size:  13,
		Style: fontstyle.Bold,
	}))
	m.AddRow(8, text.NewCol(12, "Name: "+passenger.FirstName+" "+passenger.LastName, props.Text{Size: 11}))
	m.AddRow(8, text.NewCol(12, "Ticket Number: "+passenger.TicketNumber, props.Text{Size: 11}))
	m.AddRow(8, text.NewCol(12, "Generated: "+time.Now().Format("2006-01-02"), props.Text{Size: 11}))

	m.AddRow(6, line.NewCol(12))
	m.AddRow(8, text.NewCol(12, "Review this ticket manually and retry the download once the portal is available.", props.Text{
		Size:  10,
		Align: align.Center,
	}))

	doc, err := m.Generate()
	if err != nil {
		return "", fmt.Errorf("render placeholder document: %w", err)
	}
	if err := os.WriteFile(path, doc.GetBytes(), 0o644); err != nil {
		return "", fmt.Errorf("store placeholder document: %w", err)
	}

	w.logger.Info("Placeholder document written", "path", path, "ticketNumber", passenger.TicketNumber)
	return path, nil
}
