package service

import (
	"context"

	"github.com/atelierlabs/obswork/internal/domain/model"
	"github.com/atelierlabs/obswork/internal/domain/repository"
)

// VersioningService decides, for a (session, participant) pair, whether a
// new observation resumes the pending placeholder or opens a fresh version.
// This is the single place that computes target versions; the recording
// workflow never derives version numbers itself.
type VersioningService struct {
	recordRepo repository.RecordRepository
}

// NewVersioningService creates a new versioning service
func NewVersioningService(recordRepo repository.RecordRepository) *VersioningService {
	return &VersioningService{recordRepo: recordRepo}
}

// Target is the resolved write target for a recording workflow
type Target struct {
	Version     model.Version
	Resume      bool            // true when a pending record is completed in place
	RecordID    *model.RecordID // set when Resume is true
	SeedAnswers map[string]model.Answer
}

// ResolveTarget resolves the write target for a pair. A pending record wins;
// otherwise the next version after the latest stored one is opened.
func (s *VersioningService) ResolveTarget(ctx context.Context, sessionID model.SessionID, participantID model.ParticipantID) (Target, error) {
	pending, err := s.recordRepo.FindPending(ctx, sessionID, participantID)
	if err != nil {
		return Target{}, err
	}
	if pending != nil {
		id := pending.ID()
		return Target{
			Version:     pending.Version(),
			Resume:      true,
			RecordID:    &id,
			SeedAnswers: pending.Answers(),
		}, nil
	}

	latest, err := s.recordRepo.LatestVersion(ctx, sessionID, participantID)
	if err != nil {
		return Target{}, err
	}
	version, err := model.NewVersion(latest + 1)
	if err != nil {
		return Target{}, err
	}
	return Target{
		Version:     version,
		Resume:      false,
		SeedAnswers: map[string]model.Answer{},
	}, nil
}

// HasObservation reports whether the pair has any stored record
func (s *VersioningService) HasObservation(ctx context.Context, sessionID model.SessionID, participantID model.ParticipantID) (bool, error) {
	latest, err := s.recordRepo.LatestVersion(ctx, sessionID, participantID)
	if err != nil {
		return false, err
	}
	return latest > 0, nil
}

// ObservationCount returns the number of stored versions for the pair
func (s *VersioningService) ObservationCount(ctx context.Context, sessionID model.SessionID, participantID model.ParticipantID) (int, error) {
	return s.recordRepo.CountVersions(ctx, sessionID, participantID)
}
