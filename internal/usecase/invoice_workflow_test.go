package usecase

import (
	"context"
	"errors"
	"testing"

	"einvoice-tracker/internal/domain/entity"
	"einvoice-tracker/internal/domain/repository"
	"einvoice-tracker/pkg/logger"
	"einvoice-tracker/pkg/metrics"
	"einvoice-tracker/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testMetrics = metrics.NewMetrics("einvoice_usecase_test")

func testLogger() logger.Logger {
	return logger.NewLogger("error")
}

type fakePassengerRepo struct {
	passengers map[string]*entity.Passenger
	order      []string
	saves      int
}

func newFakePassengerRepo(passengers ...*entity.Passenger) *fakePassengerRepo {
	repo := &fakePassengerRepo{passengers: make(map[string]*entity.Passenger)}
	for _, p := range passengers {
		copied := *p
		repo.passengers[p.ID] = &copied
		repo.order = append(repo.order, p.ID)
	}
	return repo
}

func (f *fakePassengerRepo) GetAll(ctx context.Context) ([]*entity.Passenger, error) {
	all := make([]*entity.Passenger, 0, len(f.order))
	for _, id := range f.order {
		copied := *f.passengers[id]
		all = append(all, &copied)
	}
	return all, nil
}

func (f *fakePassengerRepo) GetByID(ctx context.Context, id string) (*entity.Passenger, error) {
	p, ok := f.passengers[id]
	if !ok {
		return nil, repository.ErrPassengerNotFound
	}
	copied := *p
	return &copied, nil
}

func (f *fakePassengerRepo) Save(ctx context.Context, passenger *entity.Passenger) error {
	if _, ok := f.passengers[passenger.ID]; !ok {
		f.order = append(f.order, passenger.ID)
	}
	copied := *passenger
	f.passengers[passenger.ID] = &copied
	f.saves++
	return nil
}

type fakeAirlineRepo struct{}

func (f *fakeAirlineRepo) GetByCode(ctx context.Context, code string) (*entity.Airline, error) {
	if code == "TG" {
		return &entity.Airline{Code: "TG", Name: "Thai Airways International", Marker: "THAI AIRWAYS"}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAirlineRepo) GetAll(ctx context.Context) ([]*entity.Airline, error) {
	return []*entity.Airline{
		{Code: "TG", Name: "Thai Airways International", Marker: "THAI AIRWAYS"},
	}, nil
}

type fakeAgent struct {
	result *entity.AcquisitionResult
	err    error
	calls  int
}

func (f *fakeAgent) Acquire(ctx context.Context, passenger *entity.Passenger) (*entity.AcquisitionResult, error) {
	f.calls++
	return f.result, f.err
}

type fakeDocReader struct {
	text string
	err  error
}

func (f *fakeDocReader) ExtractText(path string) (string, error) {
	return f.text, f.err
}

type stubParser struct {
	data *entity.InvoiceData
}

func (s *stubParser) Parse(ctx context.Context, payload *entity.PortalPayload, text string) *entity.InvoiceData {
	return s.data
}

func newWorkflow(repo *fakePassengerRepo, agent *fakeAgent, reader *fakeDocReader) *InvoiceWorkflow {
	parser := utils.NewInvoiceParser(&fakeAirlineRepo{}, testLogger())
	return NewInvoiceWorkflow(repo, agent, parser, reader, testLogger(), testMetrics)
}

func seedPassenger() *entity.Passenger {
	return &entity.Passenger{
		ID:             "p1",
		TicketNumber:   "ABC123",
		FirstName:      "Victor",
		LastName:       "Wagner",
		DownloadStatus: entity.DownloadPending,
		ParseStatus:    entity.ParsePending,
	}
}

func happyPayload() *entity.PortalPayload {
	return &entity.PortalPayload{
		InvoiceNumber: "27P2410IV002348",
		InvoiceDate:   "14/10/2024",
		TotalAmount:   "35,000.00",
		GSTNumber:     "27AABCB3524G1Z1",
	}
}

func TestDownloadThenParseHappyPath(t *testing.T) {
	repo := newFakePassengerRepo(seedPassenger())
	agent := &fakeAgent{result: &entity.AcquisitionResult{
		Outcome: entity.AcquisitionLocated,
		PDFPath: "uploads/invoice_ABC123_1.pdf",
		Payload: happyPayload(),
	}}
	wf := newWorkflow(repo, agent, &fakeDocReader{})

	got, err := wf.DownloadInvoice(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, entity.DownloadSuccess, got.DownloadStatus)
	assert.Equal(t, "uploads/invoice_ABC123_1.pdf", got.PDFPath)
	assert.Empty(t, got.ErrorMessage)

	got, err = wf.ParseInvoice(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, entity.ParseSuccess, got.ParseStatus)
	require.NotNil(t, got.InvoiceData)
	assert.Equal(t, "27P2410IV002348", got.InvoiceData.InvoiceNumber)
	assert.Equal(t, "2024-10-14", got.InvoiceData.Date)
	assert.Equal(t, "Thai Airways International", got.InvoiceData.Airline)
	assert.Equal(t, float64(35000), got.InvoiceData.Amount)
	assert.Equal(t, "27AABCB3524G1Z1", got.InvoiceData.GSTIN)

	// parse success implies the download succeeded and data is present
	stored, err := repo.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, entity.DownloadSuccess, stored.DownloadStatus)
	assert.NotNil(t, stored.InvoiceData)
}

func TestDownloadNotFound(t *testing.T) {
	repo := newFakePassengerRepo(seedPassenger())
	agent := &fakeAgent{result: &entity.AcquisitionResult{Outcome: entity.AcquisitionNotFound}}
	wf := newWorkflow(repo, agent, &fakeDocReader{})

	got, err := wf.DownloadInvoice(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, entity.DownloadNotFound, got.DownloadStatus)
	assert.Equal(t, "Invoice not found for this passenger", got.ErrorMessage)
	assert.Empty(t, got.PDFPath)

	// parsing now fails its precondition
	_, err = wf.ParseInvoice(context.Background(), "p1")
	assert.ErrorIs(t, err, ErrNoDocument)
}

func TestDownloadAgentFault(t *testing.T) {
	repo := newFakePassengerRepo(seedPassenger())
	agent := &fakeAgent{err: errors.New("portal unreachable")}
	wf := newWorkflow(repo, agent, &fakeDocReader{})

	got, err := wf.DownloadInvoice(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, entity.DownloadError, got.DownloadStatus)
	assert.Contains(t, got.ErrorMessage, "portal unreachable")
}

func TestDownloadUnknownPassenger(t *testing.T) {
	wf := newWorkflow(newFakePassengerRepo(), &fakeAgent{}, &fakeDocReader{})

	_, err := wf.DownloadInvoice(context.Background(), "nope")
	assert.ErrorIs(t, err, repository.ErrPassengerNotFound)

	_, err = wf.ParseInvoice(context.Background(), "nope")
	assert.ErrorIs(t, err, repository.ErrPassengerNotFound)
}

func TestParseFallbackPlaceholderYieldsError(t *testing.T) {
	repo := newFakePassengerRepo(seedPassenger())
	agent := &fakeAgent{result: &entity.AcquisitionResult{
		Outcome: entity.AcquisitionFallback,
		PDFPath: "uploads/invoice_ABC123_2.pdf",
	}}
	reader := &fakeDocReader{text: "E-INVOICE PLACEHOLDER Name: Victor Wagner Ticket Number: ABC123"}
	wf := newWorkflow(repo, agent, reader)

	got, err := wf.DownloadInvoice(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, entity.DownloadSuccess, got.DownloadStatus)

	got, err = wf.ParseInvoice(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, entity.ParseError, got.ParseStatus)
	assert.Nil(t, got.InvoiceData)
	assert.Equal(t, "Failed to extract invoice data from PDF", got.ErrorMessage)
}

func TestPortalPayloadIsConsumedOnce(t *testing.T) {
	repo := newFakePassengerRepo(seedPassenger())
	agent := &fakeAgent{result: &entity.AcquisitionResult{
		Outcome: entity.AcquisitionLocated,
		PDFPath: "uploads/invoice_ABC123_3.pdf",
		Payload: happyPayload(),
	}}
	reader := &fakeDocReader{text: "THAI AIRWAYS Invoice No. 27P2410IV002348 Total : 1,000.00"}
	wf := newWorkflow(repo, agent, reader)

	_, err := wf.DownloadInvoice(context.Background(), "p1")
	require.NoError(t, err)

	first, err := wf.ParseInvoice(context.Background(), "p1")
	require.NoError(t, err)
	require.NotNil(t, first.InvoiceData)
	assert.Equal(t, float64(35000), first.InvoiceData.Amount)

	// The payload was one-shot: a re-parse goes back to document text.
	second, err := wf.ParseInvoice(context.Background(), "p1")
	require.NoError(t, err)
	require.NotNil(t, second.InvoiceData)
	assert.Equal(t, float64(1000), second.InvoiceData.Amount)
}

func TestRedownloadResetsParseTrack(t *testing.T) {
	repo := newFakePassengerRepo(seedPassenger())
	agent := &fakeAgent{result: &entity.AcquisitionResult{
		Outcome: entity.AcquisitionLocated,
		PDFPath: "uploads/invoice_ABC123_4.pdf",
		Payload: happyPayload(),
	}}
	wf := newWorkflow(repo, agent, &fakeDocReader{})

	_, err := wf.DownloadInvoice(context.Background(), "p1")
	require.NoError(t, err)
	parsed, err := wf.ParseInvoice(context.Background(), "p1")
	require.NoError(t, err)
	require.Equal(t, entity.ParseSuccess, parsed.ParseStatus)

	// The portal degrades; a second download must not leave the old
	// parse result attached to a failed acquisition.
	agent.result = nil
	agent.err = errors.New("portal unreachable")

	got, err := wf.DownloadInvoice(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, entity.DownloadError, got.DownloadStatus)
	assert.Equal(t, entity.ParsePending, got.ParseStatus)
	assert.Nil(t, got.InvoiceData)
	assert.Empty(t, got.PDFPath)

	stored, err := repo.GetByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.NotEqual(t, entity.ParseSuccess, stored.ParseStatus)
	assert.Nil(t, stored.InvoiceData)
}

func TestParseRequiresSuccessfulDownload(t *testing.T) {
	p := seedPassenger()
	p.DownloadStatus = entity.DownloadSuccess // but no document on record
	repo := newFakePassengerRepo(p)
	wf := newWorkflow(repo, &fakeAgent{}, &fakeDocReader{})

	_, err := wf.ParseInvoice(context.Background(), "p1")
	assert.ErrorIs(t, err, ErrNoDocument)
}

func TestParseUsesInjectedParser(t *testing.T) {
	p := seedPassenger()
	p.DownloadStatus = entity.DownloadSuccess
	p.PDFPath = "uploads/invoice_ABC123_5.pdf"
	repo := newFakePassengerRepo(p)
	parser := &stubParser{data: &entity.InvoiceData{
		InvoiceNumber: "27P2410IV002348",
		Date:          "2024-10-14",
		Airline:       "Thai Airways International",
		Amount:        35000,
		GSTIN:         "27AABCB3524G1Z1",
	}}
	wf := NewInvoiceWorkflow(repo, &fakeAgent{}, parser, &fakeDocReader{}, testLogger(), testMetrics)

	got, err := wf.ParseInvoice(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, entity.ParseSuccess, got.ParseStatus)
	require.NotNil(t, got.InvoiceData)
	assert.Equal(t, "27P2410IV002348", got.InvoiceData.InvoiceNumber)
}

func TestDownloadPersistsTerminalState(t *testing.T) {
	repo := newFakePassengerRepo(seedPassenger())
	agent := &fakeAgent{result: &entity.AcquisitionResult{Outcome: entity.AcquisitionNotFound}}
	wf := newWorkflow(repo, agent, &fakeDocReader{})

	_, err := wf.DownloadInvoice(context.Background(), "p1")
	require.NoError(t, err)

	// pending was persisted mid-flight, then the terminal state
	assert.Equal(t, 2, repo.saves)
	stored, _ := repo.GetByID(context.Background(), "p1")
	assert.Equal(t, entity.DownloadNotFound, stored.DownloadStatus)
}
