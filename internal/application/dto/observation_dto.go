// Package dto defines data transfer objects exchanged between the
// application layer and its callers (CLI, API adapters).
package dto

import "time"

// QuestionDTO is a catalog question prepared for rendering
type QuestionDTO struct {
	ID          string
	Text        string
	Category    string
	Subcategory string
	Order       int
}

// RecordDTO is an observational record prepared for rendering
type RecordDTO struct {
	ID            string
	SessionID     string
	ParticipantID string
	Version       int
	State         string
	Answers       map[string]string
	FreeformNotes *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ProvisionReport summarizes one provisioning batch. Failures are collected
// per pair; one failing pair never aborts the rest of the batch.
type ProvisionReport struct {
	Created  []PairDTO
	Skipped  []PairDTO // already provisioned, left untouched
	Failures []PairFailure
}

// PairDTO identifies a (session, participant) pair
type PairDTO struct {
	SessionID     string
	ParticipantID string
}

// PairFailure records a provisioning failure for a single pair
type PairFailure struct {
	SessionID     string
	ParticipantID string
	Reason        string
}

// ConsolidatedReport is the tabular view over completed observations of a
// set of sessions: one column per catalog question, one row per record.
type ConsolidatedReport struct {
	Questions []QuestionDTO
	Rows      []ReportRow
}

// ReportRow is one completed record in the consolidated report
type ReportRow struct {
	SessionID     string
	ParticipantID string
	Version       int
	Answers       map[string]string
	FreeformNotes *string
	CreatedAt     time.Time
}
