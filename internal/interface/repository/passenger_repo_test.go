package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"einvoice-tracker/internal/domain/entity"
	"einvoice-tracker/internal/domain/repository"
	"einvoice-tracker/pkg/logger"
	"einvoice-tracker/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testMetrics = metrics.NewMetrics("einvoice_repo_test")

const rosterCSV = `Ticket Number,First Name,Last Name
ABC123,Victor,Wagner
DEF456,Anna,Schmidt
,Missing,Ticket
GHI789,Lena,Meyer
`

func newTestRepo(t *testing.T, dir string) *FilePassengerRepository {
	t.Helper()
	rosterFile := filepath.Join(dir, "data.csv")
	if _, err := os.Stat(rosterFile); err != nil {
		require.NoError(t, os.WriteFile(rosterFile, []byte(rosterCSV), 0o644))
	}
	return NewFilePassengerRepository(
		filepath.Join(dir, "passengers.json"),
		rosterFile,
		logger.NewLogger("error"),
		testMetrics,
	)
}

func TestImportsRosterOnFirstLoad(t *testing.T) {
	repo := newTestRepo(t, t.TempDir())

	all, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3) // row without ticket number is dropped

	assert.Equal(t, "ABC123", all[0].TicketNumber)
	assert.Equal(t, "Victor", all[0].FirstName)
	assert.Equal(t, "Wagner", all[0].LastName)
	for _, p := range all {
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, entity.DownloadPending, p.DownloadStatus)
		assert.Equal(t, entity.ParsePending, p.ParseStatus)
	}
}

func TestReloadYieldsIdenticalSnapshot(t *testing.T) {
	dir := t.TempDir()
	repo := newTestRepo(t, dir)

	all, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, all)

	snapshotFile := filepath.Join(dir, "passengers.json")
	before, err := os.ReadFile(snapshotFile)
	require.NoError(t, err)

	// A new instance over the same files must load the persisted state, and
	// re-saving an unchanged record must rewrite the same bytes.
	reloaded := newTestRepo(t, dir)
	again, err := reloaded.GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, all, again)

	require.NoError(t, reloaded.Save(context.Background(), again[0]))
	after, err := os.ReadFile(snapshotFile)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestPersistedStateWinsOverRoster(t *testing.T) {
	dir := t.TempDir()
	repo := newTestRepo(t, dir)

	all, err := repo.GetAll(context.Background())
	require.NoError(t, err)

	p := all[0]
	p.DownloadStatus = entity.DownloadSuccess
	p.PDFPath = "uploads/invoice_ABC123_1.pdf"
	require.NoError(t, repo.Save(context.Background(), p))

	// Fresh instance: achieved progress survives instead of being clobbered
	// by a re-import.
	reloaded := newTestRepo(t, dir)
	got, err := reloaded.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DownloadSuccess, got.DownloadStatus)
	assert.Equal(t, "uploads/invoice_ABC123_1.pdf", got.PDFPath)
}

func TestGetByIDUnknown(t *testing.T) {
	repo := newTestRepo(t, t.TempDir())

	_, err := repo.GetByID(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, repository.ErrPassengerNotFound)
}

func TestPersistFailureDoesNotBlockMutations(t *testing.T) {
	dir := t.TempDir()
	repo := newTestRepo(t, dir)

	all, err := repo.GetAll(context.Background())
	require.NoError(t, err)

	// Make the snapshot path unwritable: the rename target is a directory.
	snapshotFile := filepath.Join(dir, "passengers.json")
	require.NoError(t, os.Remove(snapshotFile))
	require.NoError(t, os.Mkdir(snapshotFile, 0o755))

	p := all[0]
	p.DownloadStatus = entity.DownloadError
	p.ErrorMessage = "portal unreachable"
	require.NoError(t, repo.Save(context.Background(), p))

	// The in-memory working set carried the mutation anyway.
	got, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.DownloadError, got.DownloadStatus)
}
