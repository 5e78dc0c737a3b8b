package observation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierlabs/obswork/internal/domain/model"
	"github.com/atelierlabs/obswork/internal/domain/model/catalog"
	"github.com/atelierlabs/obswork/internal/infrastructure/repository/mock"
)

func TestParticipantAddedProvisionsAllSessions(t *testing.T) {
	ctx := context.Background()
	repo := mock.NewMockRecordRepository(catalog.Default())
	uc := NewProvisioningUseCase(repo)

	report, err := uc.ParticipantAdded(ctx, "par-1",
		[]model.SessionID{"ses-1", "ses-2", "ses-3"})
	require.NoError(t, err)

	assert.Len(t, report.Created, 3)
	assert.Empty(t, report.Skipped)
	assert.Empty(t, report.Failures)

	for _, sessionID := range []model.SessionID{"ses-1", "ses-2", "ses-3"} {
		pending, err := repo.FindPending(ctx, sessionID, "par-1")
		require.NoError(t, err)
		require.NotNil(t, pending)
		assert.Equal(t, 1, pending.Version().Value())
		assert.Empty(t, pending.Answers())
	}
}

func TestSessionAddedProvisionsAllParticipants(t *testing.T) {
	ctx := context.Background()
	repo := mock.NewMockRecordRepository(catalog.Default())
	uc := NewProvisioningUseCase(repo)

	report, err := uc.SessionAdded(ctx, "ses-9",
		[]model.ParticipantID{"par-1", "par-2"})
	require.NoError(t, err)

	assert.Len(t, report.Created, 2)
	assert.Empty(t, report.Failures)
}

func TestProvisioningIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := mock.NewMockRecordRepository(catalog.Default())
	uc := NewProvisioningUseCase(repo)

	_, err := uc.SessionAdded(ctx, "ses-1", []model.ParticipantID{"par-1", "par-2"})
	require.NoError(t, err)

	report, err := uc.SessionAdded(ctx, "ses-1", []model.ParticipantID{"par-1", "par-2"})
	require.NoError(t, err)

	assert.Empty(t, report.Created)
	assert.Len(t, report.Skipped, 2)

	for _, participantID := range []model.ParticipantID{"par-1", "par-2"} {
		count, err := repo.CountVersions(ctx, "ses-1", participantID)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "retry must not duplicate placeholders")
	}
}

func TestProvisioningSkipsPairsWithHistory(t *testing.T) {
	ctx := context.Background()
	repo := mock.NewMockRecordRepository(catalog.Default())
	uc := NewProvisioningUseCase(repo)

	// par-1 already has a completed observation in ses-1
	rec := newCompletedTestRecord(t, "ses-1", "par-1", 1)
	require.NoError(t, repo.Create(ctx, rec))

	report, err := uc.ParticipantAdded(ctx, "par-1", []model.SessionID{"ses-1", "ses-2"})
	require.NoError(t, err)

	assert.Len(t, report.Created, 1)
	assert.Len(t, report.Skipped, 1)
	assert.Equal(t, "ses-1", report.Skipped[0].SessionID)

	// The completed pair gained no pending placeholder
	pending, err := repo.FindPending(ctx, "ses-1", "par-1")
	require.NoError(t, err)
	assert.Nil(t, pending)
}

func TestProvisioningCollectsFailuresAndContinues(t *testing.T) {
	ctx := context.Background()
	repo := mock.NewMockRecordRepository(catalog.Default())
	repo.FailCreateFor["ses-2/par-1"] = true
	uc := NewProvisioningUseCase(repo)

	report, err := uc.ParticipantAdded(ctx, "par-1",
		[]model.SessionID{"ses-1", "ses-2", "ses-3"})
	require.NoError(t, err, "per-pair failures never abort the batch")

	assert.Len(t, report.Created, 2)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "ses-2", report.Failures[0].SessionID)
	assert.Equal(t, "par-1", report.Failures[0].ParticipantID)
	assert.NotEmpty(t, report.Failures[0].Reason)

	// The pairs after the failing one were still provisioned
	pending, err := repo.FindPending(ctx, "ses-3", "par-1")
	require.NoError(t, err)
	assert.NotNil(t, pending)
}

func TestProvisioningRequiresSubjectID(t *testing.T) {
	uc := NewProvisioningUseCase(mock.NewMockRecordRepository(catalog.Default()))

	_, err := uc.ParticipantAdded(context.Background(), "", []model.SessionID{"ses-1"})
	assert.Error(t, err)

	_, err = uc.SessionAdded(context.Background(), "", []model.ParticipantID{"par-1"})
	assert.Error(t, err)
}

func TestProvisioningEmptyPeerSet(t *testing.T) {
	uc := NewProvisioningUseCase(mock.NewMockRecordRepository(catalog.Default()))

	report, err := uc.ParticipantAdded(context.Background(), "par-1", nil)
	require.NoError(t, err)
	assert.Empty(t, report.Created)
	assert.Empty(t, report.Skipped)
	assert.Empty(t, report.Failures)
}
