package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/atelierlabs/obswork/internal/domain/model"
	"github.com/atelierlabs/obswork/internal/domain/model/catalog"
	"github.com/atelierlabs/obswork/internal/domain/model/observation"
	"github.com/atelierlabs/obswork/internal/domain/repository"
)

// RecordRepositoryImpl implements repository.RecordRepository with SQLite.
// Answer maps are stored as JSON text; identity uniqueness and the
// one-pending-per-pair rule are enforced by the schema's unique indexes.
type RecordRepositoryImpl struct {
	db  *sql.DB
	cat *catalog.Catalog
}

// NewRecordRepository creates a new SQLite-based record repository
func NewRecordRepository(db *sql.DB, cat *catalog.Catalog) repository.RecordRepository {
	return &RecordRepositoryImpl{db: db, cat: cat}
}

const recordColumns = `id, session_id, participant_id, version, state, answers, freeform_notes, created_at, updated_at`

// Create persists a new record
func (r *RecordRepositoryImpl) Create(ctx context.Context, rec *observation.Record) error {
	if err := observation.ValidateAnswers(rec.Answers(), r.cat); err != nil {
		return err
	}

	answersJSON, err := json.Marshal(rec.Answers())
	if err != nil {
		return fmt.Errorf("marshal answers failed: %w", err)
	}

	query := `
		INSERT INTO observational_records (` + recordColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		rec.ID().String(), rec.SessionID().String(), rec.ParticipantID().String(),
		rec.Version().Value(), rec.State().String(), string(answersJSON),
		rec.FreeformNotes(), rec.CreatedAt().Value(), rec.UpdatedAt().Value(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create record %s/%s %s: %w",
				rec.SessionID(), rec.ParticipantID(), rec.Version(), observation.ErrRecordConflict)
		}
		return fmt.Errorf("create record failed: %w", err)
	}
	return nil
}

// Update replaces answers, notes and state of an existing record
func (r *RecordRepositoryImpl) Update(ctx context.Context, rec *observation.Record) error {
	if err := observation.ValidateAnswers(rec.Answers(), r.cat); err != nil {
		return err
	}

	answersJSON, err := json.Marshal(rec.Answers())
	if err != nil {
		return fmt.Errorf("marshal answers failed: %w", err)
	}

	query := `
		UPDATE observational_records
		SET state = ?, answers = ?, freeform_notes = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		rec.State().String(), string(answersJSON), rec.FreeformNotes(),
		rec.UpdatedAt().Value(), rec.ID().String(),
	)
	if err != nil {
		return fmt.Errorf("update record failed: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected failed: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update record %s: %w", rec.ID(), observation.ErrRecordNotFound)
	}
	return nil
}

// FindByID retrieves a record by its ID
func (r *RecordRepositoryImpl) FindByID(ctx context.Context, id model.RecordID) (*observation.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM observational_records
		WHERE id = ?
	`
	rec, err := r.scanRecord(r.db.QueryRowContext(ctx, query, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find record %s: %w", id, observation.ErrRecordNotFound)
	}
	return rec, err
}

// FindPending returns the single pending record of a pair, or nil
func (r *RecordRepositoryImpl) FindPending(ctx context.Context, sessionID model.SessionID, participantID model.ParticipantID) (*observation.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM observational_records
		WHERE session_id = ? AND participant_id = ? AND state = 'pending'
	`
	rec, err := r.scanRecord(r.db.QueryRowContext(ctx, query, sessionID.String(), participantID.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

// FindLatest returns the highest-version record of a pair, or nil
func (r *RecordRepositoryImpl) FindLatest(ctx context.Context, sessionID model.SessionID, participantID model.ParticipantID) (*observation.Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM observational_records
		WHERE session_id = ? AND participant_id = ?
		ORDER BY version DESC
		LIMIT 1
	`
	rec, err := r.scanRecord(r.db.QueryRowContext(ctx, query, sessionID.String(), participantID.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

// LatestVersion returns the highest stored version for a pair, or 0
func (r *RecordRepositoryImpl) LatestVersion(ctx context.Context, sessionID model.SessionID, participantID model.ParticipantID) (int, error) {
	query := `
		SELECT COALESCE(MAX(version), 0)
		FROM observational_records
		WHERE session_id = ? AND participant_id = ?
	`
	var latest int
	if err := r.db.QueryRowContext(ctx, query, sessionID.String(), participantID.String()).Scan(&latest); err != nil {
		return 0, fmt.Errorf("query latest version failed: %w", err)
	}
	return latest, nil
}

// CountVersions returns the number of stored versions for a pair
func (r *RecordRepositoryImpl) CountVersions(ctx context.Context, sessionID model.SessionID, participantID model.ParticipantID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM observational_records
		WHERE session_id = ? AND participant_id = ?
	`
	var count int
	if err := r.db.QueryRowContext(ctx, query, sessionID.String(), participantID.String()).Scan(&count); err != nil {
		return 0, fmt.Errorf("count versions failed: %w", err)
	}
	return count, nil
}

// ListBySessions returns all records belonging to the given sessions
func (r *RecordRepositoryImpl) ListBySessions(ctx context.Context, sessionIDs []model.SessionID) ([]*observation.Record, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}

	placeholders := ""
	args := make([]interface{}, 0, len(sessionIDs))
	for i, id := range sessionIDs {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
		args = append(args, id.String())
	}

	query := `
		SELECT ` + recordColumns + `
		FROM observational_records
		WHERE session_id IN (` + placeholders + `)
		ORDER BY session_id, participant_id, version
	`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query records by sessions failed: %w", err)
	}
	defer rows.Close()

	var records []*observation.Record
	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Delete removes a single record, refusing interior versions
func (r *RecordRepositoryImpl) Delete(ctx context.Context, id model.RecordID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction failed: %w", err)
	}
	defer tx.Rollback()

	var sessionID, participantID string
	var version, maxVersion int
	err = tx.QueryRowContext(ctx, `
		SELECT session_id, participant_id, version
		FROM observational_records
		WHERE id = ?
	`, id.String()).Scan(&sessionID, &participantID, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("delete record %s: %w", id, observation.ErrRecordNotFound)
	}
	if err != nil {
		return fmt.Errorf("query record for delete failed: %w", err)
	}

	err = tx.QueryRowContext(ctx, `
		SELECT MAX(version)
		FROM observational_records
		WHERE session_id = ? AND participant_id = ?
	`, sessionID, participantID).Scan(&maxVersion)
	if err != nil {
		return fmt.Errorf("query max version failed: %w", err)
	}
	if version != maxVersion {
		return fmt.Errorf("delete %s %s/%s v%d (latest is v%d): %w",
			id, sessionID, participantID, version, maxVersion, observation.ErrProtectedVersion)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM observational_records WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("delete record failed: %w", err)
	}
	return tx.Commit()
}

// DeleteBySession removes all records of a session
func (r *RecordRepositoryImpl) DeleteBySession(ctx context.Context, sessionID model.SessionID) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM observational_records WHERE session_id = ?`, sessionID.String())
	if err != nil {
		return 0, fmt.Errorf("delete records by session failed: %w", err)
	}
	return result.RowsAffected()
}

// DeleteByParticipant removes all records of a participant
func (r *RecordRepositoryImpl) DeleteByParticipant(ctx context.Context, participantID model.ParticipantID) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM observational_records WHERE participant_id = ?`, participantID.String())
	if err != nil {
		return 0, fmt.Errorf("delete records by participant failed: %w", err)
	}
	return result.RowsAffected()
}

// rowScanner abstracts *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanRecord reconstructs a record from a scanned row
func (r *RecordRepositoryImpl) scanRecord(row rowScanner) (*observation.Record, error) {
	var (
		idStr, sessionID, participantID, state, answersJSON string
		version                                             int
		notes                                               sql.NullString
		createdAt, updatedAt                                time.Time
	)
	err := row.Scan(&idStr, &sessionID, &participantID, &version, &state,
		&answersJSON, &notes, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan record failed: %w", err)
	}

	var answers map[string]model.Answer
	if err := json.Unmarshal([]byte(answersJSON), &answers); err != nil {
		return nil, fmt.Errorf("unmarshal answers failed: %w", err)
	}

	recordID, err := model.NewRecordIDFromString(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid stored record id: %w", err)
	}
	ver, err := model.NewVersion(version)
	if err != nil {
		return nil, fmt.Errorf("invalid stored version: %w", err)
	}

	var notesPtr *string
	if notes.Valid {
		notesPtr = &notes.String
	}

	return observation.ReconstructRecord(
		recordID,
		model.SessionID(sessionID),
		model.ParticipantID(participantID),
		ver,
		model.RecordState(state),
		answers,
		notesPtr,
		createdAt,
		updatedAt,
	), nil
}

// isUniqueViolation reports whether err is a sqlite unique constraint error
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
