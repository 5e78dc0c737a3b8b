// Package observation defines the observational record aggregate.
//
// A record captures one observation attempt of a participant in a session.
// For a fixed (session, participant) pair, versions form a dense sequence
// 1..N; at most one record among them is pending at any time. A pending
// record is a placeholder provisioned when workshop membership changes and
// is completed in place — same version number — when the observation is
// recorded.
package observation

import (
	"fmt"
	"time"

	"github.com/atelierlabs/obswork/internal/domain/model"
	"github.com/atelierlabs/obswork/internal/domain/model/catalog"
)

// Record is the observational record aggregate root
type Record struct {
	id            model.RecordID
	sessionID     model.SessionID
	participantID model.ParticipantID
	version       model.Version
	state         model.RecordState
	answers       map[string]model.Answer
	freeformNotes *string
	createdAt     model.Timestamp
	updatedAt     model.Timestamp
}

// NewPendingRecord creates a pending placeholder record with no answers
func NewPendingRecord(sessionID model.SessionID, participantID model.ParticipantID, version model.Version) (*Record, error) {
	if sessionID.IsZero() {
		return nil, fmt.Errorf("session id cannot be empty")
	}
	if participantID.IsZero() {
		return nil, fmt.Errorf("participant id cannot be empty")
	}

	now := model.NewTimestamp()
	return &Record{
		id:            model.NewRecordID(),
		sessionID:     sessionID,
		participantID: participantID,
		version:       version,
		state:         model.StatePending,
		answers:       map[string]model.Answer{},
		freeformNotes: nil,
		createdAt:     now,
		updatedAt:     now,
	}, nil
}

// NewCompletedRecord creates a record that is born completed. This is the
// re-observation path: no pending placeholder exists, so a fresh version is
// written with its full answer set in one step.
func NewCompletedRecord(
	sessionID model.SessionID,
	participantID model.ParticipantID,
	version model.Version,
	answers map[string]model.Answer,
	notes *string,
	cat *catalog.Catalog,
) (*Record, error) {
	rec, err := NewPendingRecord(sessionID, participantID, version)
	if err != nil {
		return nil, err
	}
	if err := rec.Complete(answers, notes, cat); err != nil {
		return nil, err
	}
	return rec, nil
}

// ReconstructRecord reconstructs a record from stored data
func ReconstructRecord(
	id model.RecordID,
	sessionID model.SessionID,
	participantID model.ParticipantID,
	version model.Version,
	state model.RecordState,
	answers map[string]model.Answer,
	freeformNotes *string,
	createdAt time.Time,
	updatedAt time.Time,
) *Record {
	if answers == nil {
		answers = map[string]model.Answer{}
	}
	return &Record{
		id:            id,
		sessionID:     sessionID,
		participantID: participantID,
		version:       version,
		state:         state,
		answers:       answers,
		freeformNotes: freeformNotes,
		createdAt:     model.NewTimestampFromTime(createdAt),
		updatedAt:     model.NewTimestampFromTime(updatedAt),
	}
}

// ID returns the record ID
func (r *Record) ID() model.RecordID {
	return r.id
}

// SessionID returns the owning session ID
func (r *Record) SessionID() model.SessionID {
	return r.sessionID
}

// ParticipantID returns the owning participant ID
func (r *Record) ParticipantID() model.ParticipantID {
	return r.participantID
}

// Version returns the observation attempt number
func (r *Record) Version() model.Version {
	return r.version
}

// State returns the record state
func (r *Record) State() model.RecordState {
	return r.state
}

// IsPending reports whether the record is a provisioned placeholder
func (r *Record) IsPending() bool {
	return r.state == model.StatePending
}

// Answers returns a copy of the answers map
func (r *Record) Answers() map[string]model.Answer {
	out := make(map[string]model.Answer, len(r.answers))
	for k, v := range r.answers {
		out[k] = v
	}
	return out
}

// AnswerFor returns the stored answer for a question id
func (r *Record) AnswerFor(questionID string) (model.Answer, bool) {
	a, ok := r.answers[questionID]
	return a, ok
}

// FreeformNotes returns the optional freeform notes
func (r *Record) FreeformNotes() *string {
	return r.freeformNotes
}

// CreatedAt returns the creation timestamp
func (r *Record) CreatedAt() model.Timestamp {
	return r.createdAt
}

// UpdatedAt returns the last update timestamp
func (r *Record) UpdatedAt() model.Timestamp {
	return r.updatedAt
}

// Complete transitions a pending record to completed, in place. The answer
// set must cover every catalog question exactly; partial completions are
// never persisted.
func (r *Record) Complete(answers map[string]model.Answer, notes *string, cat *catalog.Catalog) error {
	if !r.state.CanTransitionTo(model.StateCompleted) {
		return fmt.Errorf("complete record %s in state %s: %w", r.id, r.state, ErrInvalidTransition)
	}
	if err := ValidateAnswers(answers, cat); err != nil {
		return err
	}
	if len(answers) != cat.TotalQuestions() {
		return fmt.Errorf("got %d answers, catalog has %d questions: %w",
			len(answers), cat.TotalQuestions(), ErrIncompleteAnswers)
	}

	copied := make(map[string]model.Answer, len(answers))
	for k, v := range answers {
		copied[k] = v
	}
	r.answers = copied
	r.freeformNotes = normalizeNotes(notes)
	r.state = model.StateCompleted
	r.updatedAt = model.NewTimestamp()
	return nil
}

// ValidateAnswers checks every answer key against the catalog and every
// value against the answer domain
func ValidateAnswers(answers map[string]model.Answer, cat *catalog.Catalog) error {
	for id, a := range answers {
		if !cat.Contains(id) {
			return fmt.Errorf("question %q: %w", id, ErrUnknownQuestion)
		}
		if !a.IsValid() {
			return fmt.Errorf("question %q has value %q: %w", id, a, ErrInvalidAnswer)
		}
	}
	return nil
}

// normalizeNotes maps empty notes to nil so the store never persists an
// empty string where "no notes" is meant
func normalizeNotes(notes *string) *string {
	if notes == nil || *notes == "" {
		return nil
	}
	return notes
}
