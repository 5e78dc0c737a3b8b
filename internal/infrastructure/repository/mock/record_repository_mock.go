// Package mock provides in-memory repository implementations for tests and
// for wiring use cases without a database.
package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/atelierlabs/obswork/internal/domain/model"
	"github.com/atelierlabs/obswork/internal/domain/model/catalog"
	"github.com/atelierlabs/obswork/internal/domain/model/observation"
)

// MockRecordRepository is an in-memory implementation of
// repository.RecordRepository. It enforces the same identity and validation
// rules as the SQLite implementation.
type MockRecordRepository struct {
	mu      sync.RWMutex
	records map[string]*observation.Record // record id -> record
	cat     *catalog.Catalog

	// FailCreateFor makes Create fail for the given "session/participant"
	// pair keys; used to exercise provisioning failure collection.
	FailCreateFor map[string]bool
}

// NewMockRecordRepository creates a new in-memory record repository
func NewMockRecordRepository(cat *catalog.Catalog) *MockRecordRepository {
	return &MockRecordRepository{
		records:       make(map[string]*observation.Record),
		cat:           cat,
		FailCreateFor: make(map[string]bool),
	}
}

func pairKey(sessionID model.SessionID, participantID model.ParticipantID) string {
	return sessionID.String() + "/" + participantID.String()
}

// Create persists a new record
func (m *MockRecordRepository) Create(ctx context.Context, rec *observation.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailCreateFor[pairKey(rec.SessionID(), rec.ParticipantID())] {
		return fmt.Errorf("injected create failure for %s", pairKey(rec.SessionID(), rec.ParticipantID()))
	}
	if err := observation.ValidateAnswers(rec.Answers(), m.cat); err != nil {
		return err
	}
	for _, existing := range m.records {
		if existing.SessionID() == rec.SessionID() &&
			existing.ParticipantID() == rec.ParticipantID() &&
			existing.Version().Equals(rec.Version()) {
			return fmt.Errorf("create record %s/%s %s: %w",
				rec.SessionID(), rec.ParticipantID(), rec.Version(), observation.ErrRecordConflict)
		}
	}
	m.records[rec.ID().String()] = rec
	return nil
}

// Update replaces an existing record
func (m *MockRecordRepository) Update(ctx context.Context, rec *observation.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := observation.ValidateAnswers(rec.Answers(), m.cat); err != nil {
		return err
	}
	if _, exists := m.records[rec.ID().String()]; !exists {
		return fmt.Errorf("update record %s: %w", rec.ID(), observation.ErrRecordNotFound)
	}
	m.records[rec.ID().String()] = rec
	return nil
}

// FindByID retrieves a record by its ID
func (m *MockRecordRepository) FindByID(ctx context.Context, id model.RecordID) (*observation.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, exists := m.records[id.String()]
	if !exists {
		return nil, fmt.Errorf("find record %s: %w", id, observation.ErrRecordNotFound)
	}
	return rec, nil
}

// FindPending returns the single pending record of a pair, or nil
func (m *MockRecordRepository) FindPending(ctx context.Context, sessionID model.SessionID, participantID model.ParticipantID) (*observation.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, rec := range m.records {
		if rec.SessionID() == sessionID && rec.ParticipantID() == participantID && rec.IsPending() {
			return rec, nil
		}
	}
	return nil, nil
}

// FindLatest returns the highest-version record of a pair, or nil
func (m *MockRecordRepository) FindLatest(ctx context.Context, sessionID model.SessionID, participantID model.ParticipantID) (*observation.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var latest *observation.Record
	for _, rec := range m.records {
		if rec.SessionID() != sessionID || rec.ParticipantID() != participantID {
			continue
		}
		if latest == nil || rec.Version().Value() > latest.Version().Value() {
			latest = rec
		}
	}
	return latest, nil
}

// LatestVersion returns the highest stored version for a pair, or 0
func (m *MockRecordRepository) LatestVersion(ctx context.Context, sessionID model.SessionID, participantID model.ParticipantID) (int, error) {
	latest, err := m.FindLatest(ctx, sessionID, participantID)
	if err != nil {
		return 0, err
	}
	if latest == nil {
		return 0, nil
	}
	return latest.Version().Value(), nil
}

// CountVersions returns the number of stored versions for a pair
func (m *MockRecordRepository) CountVersions(ctx context.Context, sessionID model.SessionID, participantID model.ParticipantID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, rec := range m.records {
		if rec.SessionID() == sessionID && rec.ParticipantID() == participantID {
			count++
		}
	}
	return count, nil
}

// ListBySessions returns all records belonging to the given sessions
func (m *MockRecordRepository) ListBySessions(ctx context.Context, sessionIDs []model.SessionID) ([]*observation.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	wanted := make(map[model.SessionID]bool, len(sessionIDs))
	for _, id := range sessionIDs {
		wanted[id] = true
	}

	var records []*observation.Record
	for _, rec := range m.records {
		if wanted[rec.SessionID()] {
			records = append(records, rec)
		}
	}
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.SessionID() != b.SessionID() {
			return a.SessionID() < b.SessionID()
		}
		if a.ParticipantID() != b.ParticipantID() {
			return a.ParticipantID() < b.ParticipantID()
		}
		return a.Version().Value() < b.Version().Value()
	})
	return records, nil
}

// Delete removes a single record, refusing interior versions
func (m *MockRecordRepository) Delete(ctx context.Context, id model.RecordID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, exists := m.records[id.String()]
	if !exists {
		return fmt.Errorf("delete record %s: %w", id, observation.ErrRecordNotFound)
	}
	for _, other := range m.records {
		if other.SessionID() == rec.SessionID() &&
			other.ParticipantID() == rec.ParticipantID() &&
			other.Version().Value() > rec.Version().Value() {
			return fmt.Errorf("delete %s %s: %w", id, rec.Version(), observation.ErrProtectedVersion)
		}
	}
	delete(m.records, id.String())
	return nil
}

// DeleteBySession removes all records of a session
func (m *MockRecordRepository) DeleteBySession(ctx context.Context, sessionID model.SessionID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for id, rec := range m.records {
		if rec.SessionID() == sessionID {
			delete(m.records, id)
			deleted++
		}
	}
	return deleted, nil
}

// DeleteByParticipant removes all records of a participant
func (m *MockRecordRepository) DeleteByParticipant(ctx context.Context, participantID model.ParticipantID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for id, rec := range m.records {
		if rec.ParticipantID() == participantID {
			delete(m.records, id)
			deleted++
		}
	}
	return deleted, nil
}
