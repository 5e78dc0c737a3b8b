package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierlabs/obswork/internal/domain/model"
	"github.com/atelierlabs/obswork/internal/domain/model/catalog"
	"github.com/atelierlabs/obswork/internal/domain/model/observation"
	"github.com/atelierlabs/obswork/internal/infrastructure/repository/mock"
)

func completedRecord(t *testing.T, sessionID, participantID string, version int) *observation.Record {
	t.Helper()
	cat := catalog.Default()
	answers := make(map[string]model.Answer, cat.TotalQuestions())
	for _, q := range cat.Flattened() {
		answers[q.ID] = model.AnswerYes
	}
	v, err := model.NewVersion(version)
	require.NoError(t, err)
	rec, err := observation.NewCompletedRecord(
		model.SessionID(sessionID), model.ParticipantID(participantID), v, answers, nil, cat)
	require.NoError(t, err)
	return rec
}

func TestResolveTargetEmptyPair(t *testing.T) {
	repo := mock.NewMockRecordRepository(catalog.Default())
	svc := NewVersioningService(repo)

	target, err := svc.ResolveTarget(context.Background(), "ses-1", "par-1")
	require.NoError(t, err)

	assert.Equal(t, 1, target.Version.Value())
	assert.False(t, target.Resume)
	assert.Nil(t, target.RecordID)
	assert.Empty(t, target.SeedAnswers)
}

func TestResolveTargetPendingWins(t *testing.T) {
	ctx := context.Background()
	repo := mock.NewMockRecordRepository(catalog.Default())
	svc := NewVersioningService(repo)

	pending, err := observation.NewPendingRecord("ses-1", "par-1", model.FirstVersion())
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, pending))

	target, err := svc.ResolveTarget(ctx, "ses-1", "par-1")
	require.NoError(t, err)

	assert.True(t, target.Resume)
	assert.Equal(t, 1, target.Version.Value())
	require.NotNil(t, target.RecordID)
	assert.True(t, target.RecordID.Equals(pending.ID()))
}

func TestResolveTargetOpensNextVersion(t *testing.T) {
	ctx := context.Background()
	repo := mock.NewMockRecordRepository(catalog.Default())
	svc := NewVersioningService(repo)

	require.NoError(t, repo.Create(ctx, completedRecord(t, "ses-1", "par-1", 1)))
	require.NoError(t, repo.Create(ctx, completedRecord(t, "ses-1", "par-1", 2)))

	target, err := svc.ResolveTarget(ctx, "ses-1", "par-1")
	require.NoError(t, err)

	assert.False(t, target.Resume)
	assert.Equal(t, 3, target.Version.Value(), "fresh version after the latest stored one")
}

func TestResolveTargetIsScopedToThePair(t *testing.T) {
	ctx := context.Background()
	repo := mock.NewMockRecordRepository(catalog.Default())
	svc := NewVersioningService(repo)

	require.NoError(t, repo.Create(ctx, completedRecord(t, "ses-1", "par-1", 1)))

	// Other participant in the same session is unaffected
	target, err := svc.ResolveTarget(ctx, "ses-1", "par-2")
	require.NoError(t, err)
	assert.Equal(t, 1, target.Version.Value())

	// Same participant in another session is unaffected
	target, err = svc.ResolveTarget(ctx, "ses-2", "par-1")
	require.NoError(t, err)
	assert.Equal(t, 1, target.Version.Value())
}

func TestHasObservation(t *testing.T) {
	ctx := context.Background()
	repo := mock.NewMockRecordRepository(catalog.Default())
	svc := NewVersioningService(repo)

	has, err := svc.HasObservation(ctx, "ses-1", "par-1")
	require.NoError(t, err)
	assert.False(t, has)

	// A pending placeholder already counts as a stored record
	pending, err := observation.NewPendingRecord("ses-1", "par-1", model.FirstVersion())
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, pending))

	has, err = svc.HasObservation(ctx, "ses-1", "par-1")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestObservationCount(t *testing.T) {
	ctx := context.Background()
	repo := mock.NewMockRecordRepository(catalog.Default())
	svc := NewVersioningService(repo)

	require.NoError(t, repo.Create(ctx, completedRecord(t, "ses-1", "par-1", 1)))
	require.NoError(t, repo.Create(ctx, completedRecord(t, "ses-1", "par-1", 2)))
	require.NoError(t, repo.Create(ctx, completedRecord(t, "ses-1", "par-2", 1)))

	count, err := svc.ObservationCount(ctx, "ses-1", "par-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
