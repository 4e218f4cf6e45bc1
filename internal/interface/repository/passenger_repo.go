package repository

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"einvoice-tracker/internal/domain/entity"
	"einvoice-tracker/internal/domain/repository"
	"einvoice-tracker/pkg/logger"
	"einvoice-tracker/pkg/metrics"

	"github.com/google/uuid"
)

// FilePassengerRepository implements PassengerRepository on top of a single
// JSON snapshot file. The whole record set is rewritten after every mutation;
// record volume is small and a full rewrite keeps recovery trivial.
type FilePassengerRepository struct {
	dataFile   string
	rosterFile string
	logger     logger.Logger
	metrics    *metrics.Metrics

	mu         sync.RWMutex
	passengers map[string]*entity.Passenger
	order      []string

	loadOnce sync.Once
	loadErr  error
}

// NewFilePassengerRepository creates a new file-backed passenger repository.
// Nothing is read from disk until the first access.
func NewFilePassengerRepository(dataFile, rosterFile string, log logger.Logger, m *metrics.Metrics) *FilePassengerRepository {
	return &FilePassengerRepository{
		dataFile:   dataFile,
		rosterFile: rosterFile,
		logger:     log,
		metrics:    m,
		passengers: make(map[string]*entity.Passenger),
	}
}

// ensureLoaded performs the one-shot initialization: a previously persisted
// snapshot is authoritative and wins over a fresh roster import so already
// achieved download/parse progress is never clobbered.
func (r *FilePassengerRepository) ensureLoaded() error {
	r.loadOnce.Do(func() {
		data, err := os.ReadFile(r.dataFile)
		if err == nil {
			var existing []*entity.Passenger
			if err := json.Unmarshal(data, &existing); err != nil {
				r.loadErr = fmt.Errorf("corrupt passenger snapshot %s: %w", r.dataFile, err)
				return
			}
			for _, p := range existing {
				r.passengers[p.ID] = p
				r.order = append(r.order, p.ID)
			}
			r.logger.Info("Loaded passengers from snapshot", "count", len(existing), "file", r.dataFile)
			return
		}

		r.logger.Info("No existing passenger snapshot, importing roster", "roster", r.rosterFile)
		imported, err := r.importRoster()
		if err != nil {
			r.loadErr = err
			return
		}
		for _, p := range imported {
			r.passengers[p.ID] = p
			r.order = append(r.order, p.ID)
		}
		r.logger.Info("Imported passengers from roster", "count", len(imported))
		r.persistLocked()
	})
	return r.loadErr
}

// importRoster reads the one-time CSV roster: header row skipped, rows
// without a ticket number dropped.
func (r *FilePassengerRepository) importRoster() ([]*entity.Passenger, error) {
	f, err := os.Open(r.rosterFile)
	if err != nil {
		return nil, fmt.Errorf("open roster: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	var passengers []*entity.Passenger
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		var ticket, first, last string
		if len(row) > 0 {
			ticket = strings.TrimSpace(row[0])
		}
		if len(row) > 1 {
			first = strings.TrimSpace(row[1])
		}
		if len(row) > 2 {
			last = strings.TrimSpace(row[2])
		}
		if ticket == "" {
			continue
		}
		passengers = append(passengers, &entity.Passenger{
			ID:             uuid.NewString(),
			TicketNumber:   ticket,
			FirstName:      first,
			LastName:       last,
			DownloadStatus: entity.DownloadPending,
			ParseStatus:    entity.ParsePending,
		})
	}
	return passengers, nil
}

// persistLocked rewrites the full snapshot. Write goes to a temp file first
// and is renamed into place so readers never observe a partial write. A
// failed write is logged and counted, never surfaced to the caller: the
// in-memory working set stays usable through a storage hiccup.
func (r *FilePassengerRepository) persistLocked() {
	all := make([]*entity.Passenger, 0, len(r.order))
	for _, id := range r.order {
		all = append(all, r.passengers[id])
	}

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		r.logger.Error("Failed to encode passenger snapshot", "error", err)
		r.metrics.PersistFailures.Inc()
		return
	}

	if err := os.MkdirAll(filepath.Dir(r.dataFile), 0o755); err != nil {
		r.logger.Error("Failed to create data directory", "error", err)
		r.metrics.PersistFailures.Inc()
		return
	}

	tmp := r.dataFile + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		r.logger.Error("Failed to write passenger snapshot", "error", err)
		r.metrics.PersistFailures.Inc()
		return
	}
	if err := os.Rename(tmp, r.dataFile); err != nil {
		r.logger.Error("Failed to replace passenger snapshot", "error", err)
		r.metrics.PersistFailures.Inc()
	}
}

// GetAll returns all passengers in roster order
func (r *FilePassengerRepository) GetAll(ctx context.Context) ([]*entity.Passenger, error) {
	if err := r.ensureLoaded(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]*entity.Passenger, 0, len(r.order))
	for _, id := range r.order {
		p := *r.passengers[id]
		all = append(all, &p)
	}
	return all, nil
}

// GetByID returns one passenger or ErrPassengerNotFound
func (r *FilePassengerRepository) GetByID(ctx context.Context, id string) (*entity.Passenger, error) {
	if err := r.ensureLoaded(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.passengers[id]
	if !ok {
		return nil, repository.ErrPassengerNotFound
	}
	copied := *p
	return &copied, nil
}

// Save upserts one passenger and rewrites the snapshot
func (r *FilePassengerRepository) Save(ctx context.Context, passenger *entity.Passenger) error {
	if err := r.ensureLoaded(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.passengers[passenger.ID]; !ok {
		r.order = append(r.order, passenger.ID)
	}
	copied := *passenger
	r.passengers[passenger.ID] = &copied
	r.persistLocked()
	return nil
}
