package repository

import (
	"context"

	"github.com/atelierlabs/obswork/internal/domain/model"
	"github.com/atelierlabs/obswork/internal/domain/model/observation"
)

// RecordRepository is the persistence contract for observational records.
//
// Implementations enforce identity uniqueness on (session, participant,
// version) and validate answers against the catalog at write time. All
// writes are atomic at single-record granularity; no multi-record
// transactions are required by this contract.
//
// Lookup methods that may legitimately find nothing (FindPending,
// FindLatest) return (nil, nil) for absence; FindByID returns
// observation.ErrRecordNotFound instead, since the caller held a concrete
// identity.
type RecordRepository interface {
	// Create persists a new record. Fails with observation.ErrRecordConflict
	// when the identity already exists, and with ErrUnknownQuestion /
	// ErrInvalidAnswer when the answer map does not validate.
	Create(ctx context.Context, rec *observation.Record) error

	// Update replaces the answers, notes and state of an existing record.
	// Fails with observation.ErrRecordNotFound if the record is absent.
	Update(ctx context.Context, rec *observation.Record) error

	// FindByID retrieves a record by its ID
	FindByID(ctx context.Context, id model.RecordID) (*observation.Record, error)

	// FindPending returns the single pending record of a pair, or nil
	FindPending(ctx context.Context, sessionID model.SessionID, participantID model.ParticipantID) (*observation.Record, error)

	// FindLatest returns the highest-version record of a pair, or nil
	FindLatest(ctx context.Context, sessionID model.SessionID, participantID model.ParticipantID) (*observation.Record, error)

	// LatestVersion returns the highest stored version for a pair, or 0
	// when the pair has no records (0 is a sentinel, never a version)
	LatestVersion(ctx context.Context, sessionID model.SessionID, participantID model.ParticipantID) (int, error)

	// CountVersions returns the number of stored versions for a pair
	CountVersions(ctx context.Context, sessionID model.SessionID, participantID model.ParticipantID) (int, error)

	// ListBySessions returns all records belonging to the given sessions,
	// ordered by session, participant and version
	ListBySessions(ctx context.Context, sessionIDs []model.SessionID) ([]*observation.Record, error)

	// Delete removes a single record. Only the highest version of its pair
	// may be deleted; interior deletes fail with ErrProtectedVersion so the
	// version sequence stays dense.
	Delete(ctx context.Context, id model.RecordID) error

	// DeleteBySession removes all records of a session (cascade from the
	// session lifecycle collaborator). Returns the number removed.
	DeleteBySession(ctx context.Context, sessionID model.SessionID) (int64, error)

	// DeleteByParticipant removes all records of a participant. Returns the
	// number removed.
	DeleteByParticipant(ctx context.Context, participantID model.ParticipantID) (int64, error)
}
