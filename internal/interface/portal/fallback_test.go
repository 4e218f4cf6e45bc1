package portal

import (
	"os"
	"path/filepath"
	"testing"

	"einvoice-tracker/internal/domain/entity"
	"einvoice-tracker/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackWriterProducesDocument(t *testing.T) {
	writer := NewFallbackWriter(logger.NewLogger("error"))
	path := filepath.Join(t.TempDir(), "invoice_ABC123_1.pdf")

	passenger := &entity.Passenger{
		ID:           "p1",
		TicketNumber: "ABC123",
		FirstName:    "Victor",
		LastName:     "Wagner",
	}

	got, err := writer.Write(passenger, path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(data[:4]))
}
