package model

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// RecordID is the unique identifier of an observational record.
// Format: ULID (e.g., 01JB6X8Y2K9FQR4T3VWHGP5M2C)
type RecordID struct {
	value string
}

// NewRecordID generates a new RecordID
func NewRecordID() RecordID {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	return RecordID{value: id.String()}
}

// NewRecordIDFromString creates a RecordID from an existing string
func NewRecordIDFromString(id string) (RecordID, error) {
	if id == "" {
		return RecordID{}, errors.New("record ID cannot be empty")
	}
	return RecordID{value: id}, nil
}

// String returns the string representation
func (r RecordID) String() string {
	return r.value
}

// Equals checks if two RecordIDs are equal
func (r RecordID) Equals(other RecordID) bool {
	return r.value == other.value
}

// SessionID identifies a workshop session. Session lifecycle is owned by an
// external collaborator; this core only carries the identity.
type SessionID string

// String returns the string representation
func (s SessionID) String() string {
	return string(s)
}

// IsZero reports whether the ID is empty
func (s SessionID) IsZero() bool {
	return s == ""
}

// ParticipantID identifies a workshop participant.
type ParticipantID string

// String returns the string representation
func (p ParticipantID) String() string {
	return string(p)
}

// IsZero reports whether the ID is empty
func (p ParticipantID) IsZero() bool {
	return p == ""
}

// Answer is the closed answer domain for observation questions
type Answer string

const (
	AnswerYes           Answer = "yes"
	AnswerNo            Answer = "no"
	AnswerNotSure       Answer = "not_sure"
	AnswerNotApplicable Answer = "not_applicable"
)

// String returns the string representation
func (a Answer) String() string {
	return string(a)
}

// IsValid validates the answer value
func (a Answer) IsValid() bool {
	switch a {
	case AnswerYes, AnswerNo, AnswerNotSure, AnswerNotApplicable:
		return true
	default:
		return false
	}
}

// AnswerValues returns the full answer domain in declaration order
func AnswerValues() []Answer {
	return []Answer{AnswerYes, AnswerNo, AnswerNotSure, AnswerNotApplicable}
}

// RecordState tags a record as a provisioned placeholder or a finished
// observation. The tag is stored explicitly rather than inferred from an
// empty answers map.
type RecordState string

const (
	StatePending   RecordState = "pending"
	StateCompleted RecordState = "completed"
)

// String returns the string representation
func (s RecordState) String() string {
	return string(s)
}

// IsValid validates the record state
func (s RecordState) IsValid() bool {
	switch s {
	case StatePending, StateCompleted:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a state transition is valid
func (s RecordState) CanTransitionTo(next RecordState) bool {
	// completed is terminal; a pending record may only be completed
	return s == StatePending && next == StateCompleted
}

// Version is a 1-based observation attempt number for a
// (session, participant) pair. Zero is the "no record" sentinel and is
// never a valid Version.
type Version struct {
	value int
}

// NewVersion creates a Version from an integer value
func NewVersion(value int) (Version, error) {
	if value < 1 {
		return Version{}, fmt.Errorf("version must be at least 1, got %d", value)
	}
	return Version{value: value}, nil
}

// FirstVersion returns version 1
func FirstVersion() Version {
	return Version{value: 1}
}

// Value returns the integer value
func (v Version) Value() int {
	return v.value
}

// Next returns the following version number
func (v Version) Next() Version {
	return Version{value: v.value + 1}
}

// Equals checks if two Versions are equal
func (v Version) Equals(other Version) bool {
	return v.value == other.value
}

// String returns the string representation
func (v Version) String() string {
	return fmt.Sprintf("v%d", v.value)
}

// Timestamp represents a point in time
type Timestamp struct {
	value time.Time
}

// NewTimestamp creates a new Timestamp with current time
func NewTimestamp() Timestamp {
	return Timestamp{value: time.Now()}
}

// NewTimestampFromTime creates a Timestamp from a time.Time value
func NewTimestampFromTime(t time.Time) Timestamp {
	return Timestamp{value: t}
}

// Value returns the time.Time value
func (t Timestamp) Value() time.Time {
	return t.value
}

// Before checks if this timestamp is before another
func (t Timestamp) Before(other Timestamp) bool {
	return t.value.Before(other.value)
}

// String returns the string representation
func (t Timestamp) String() string {
	return t.value.Format(time.RFC3339)
}
