package observation

import (
	"context"
	"fmt"

	"github.com/atelierlabs/obswork/internal/app"
	"github.com/atelierlabs/obswork/internal/application/dto"
	"github.com/atelierlabs/obswork/internal/domain/model"
	obsmodel "github.com/atelierlabs/obswork/internal/domain/model/observation"
	"github.com/atelierlabs/obswork/internal/domain/repository"
)

// ProvisioningUseCase creates pending placeholder records when workshop
// membership changes. Invoked by the session and participant lifecycle
// collaborators; never by the recording workflow.
type ProvisioningUseCase struct {
	recordRepo repository.RecordRepository
}

// NewProvisioningUseCase creates a new provisioning use case
func NewProvisioningUseCase(recordRepo repository.RecordRepository) *ProvisioningUseCase {
	return &ProvisioningUseCase{recordRepo: recordRepo}
}

// ParticipantAdded provisions a pending version-1 record for the new
// participant in every existing session of the workshop. Idempotent: pairs
// that already have any record are skipped, so a retried batch never
// duplicates placeholders. Per-pair failures are collected in the report
// rather than aborting the batch.
func (uc *ProvisioningUseCase) ParticipantAdded(ctx context.Context, participantID model.ParticipantID, sessionIDs []model.SessionID) (*dto.ProvisionReport, error) {
	if participantID.IsZero() {
		return nil, fmt.Errorf("participant id is required")
	}

	report := &dto.ProvisionReport{}
	for _, sessionID := range sessionIDs {
		uc.provisionPair(ctx, sessionID, participantID, report)
	}
	uc.logReport("participant %s added", participantID.String(), report)
	return report, nil
}

// SessionAdded is the symmetric hook: a pending version-1 record for every
// existing participant of the workshop in the new session.
func (uc *ProvisioningUseCase) SessionAdded(ctx context.Context, sessionID model.SessionID, participantIDs []model.ParticipantID) (*dto.ProvisionReport, error) {
	if sessionID.IsZero() {
		return nil, fmt.Errorf("session id is required")
	}

	report := &dto.ProvisionReport{}
	for _, participantID := range participantIDs {
		uc.provisionPair(ctx, sessionID, participantID, report)
	}
	uc.logReport("session %s added", sessionID.String(), report)
	return report, nil
}

// provisionPair creates one pending placeholder, appending the outcome to
// the report
func (uc *ProvisioningUseCase) provisionPair(ctx context.Context, sessionID model.SessionID, participantID model.ParticipantID, report *dto.ProvisionReport) {
	pair := dto.PairDTO{SessionID: sessionID.String(), ParticipantID: participantID.String()}

	latest, err := uc.recordRepo.LatestVersion(ctx, sessionID, participantID)
	if err != nil {
		report.Failures = append(report.Failures, dto.PairFailure{
			SessionID: pair.SessionID, ParticipantID: pair.ParticipantID, Reason: err.Error(),
		})
		return
	}
	if latest > 0 {
		report.Skipped = append(report.Skipped, pair)
		return
	}

	rec, err := obsmodel.NewPendingRecord(sessionID, participantID, model.FirstVersion())
	if err == nil {
		err = uc.recordRepo.Create(ctx, rec)
	}
	if err != nil {
		report.Failures = append(report.Failures, dto.PairFailure{
			SessionID: pair.SessionID, ParticipantID: pair.ParticipantID, Reason: err.Error(),
		})
		return
	}
	report.Created = append(report.Created, pair)
}

// logReport emits one summary line per batch
func (uc *ProvisioningUseCase) logReport(event, subject string, report *dto.ProvisionReport) {
	logger := app.GetLogger()
	logger.Info(event+": %d placeholders created, %d skipped, %d failed",
		subject, len(report.Created), len(report.Skipped), len(report.Failures))
	for _, f := range report.Failures {
		logger.Warn("provisioning failed for %s/%s: %s", f.SessionID, f.ParticipantID, f.Reason)
	}
}
