package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierlabs/obswork/internal/domain/model"
	"github.com/atelierlabs/obswork/internal/domain/model/catalog"
	"github.com/atelierlabs/obswork/internal/domain/model/observation"
	"github.com/atelierlabs/obswork/internal/domain/repository"
)

func newTestRepo(t *testing.T) repository.RecordRepository {
	t.Helper()
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, NewMigrator(db).Migrate())
	return NewRecordRepository(db, catalog.Default())
}

func fullAnswers(value model.Answer) map[string]model.Answer {
	cat := catalog.Default()
	answers := make(map[string]model.Answer, cat.TotalQuestions())
	for _, q := range cat.Flattened() {
		answers[q.ID] = value
	}
	return answers
}

func completedRecord(t *testing.T, sessionID, participantID string, version int) *observation.Record {
	t.Helper()
	v, err := model.NewVersion(version)
	require.NoError(t, err)
	rec, err := observation.NewCompletedRecord(
		model.SessionID(sessionID), model.ParticipantID(participantID), v,
		fullAnswers(model.AnswerYes), nil, catalog.Default())
	require.NoError(t, err)
	return rec
}

func pendingRecord(t *testing.T, sessionID, participantID string, version int) *observation.Record {
	t.Helper()
	v, err := model.NewVersion(version)
	require.NoError(t, err)
	rec, err := observation.NewPendingRecord(
		model.SessionID(sessionID), model.ParticipantID(participantID), v)
	require.NoError(t, err)
	return rec
}

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	m := NewMigrator(db)
	require.NoError(t, m.Migrate())
	require.NoError(t, m.Migrate())

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestCreateAndFindByID(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	notes := "presenta avances notables"
	v, err := model.NewVersion(1)
	require.NoError(t, err)
	rec, err := observation.NewCompletedRecord("ses-1", "par-1", v,
		fullAnswers(model.AnswerNotApplicable), &notes, catalog.Default())
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, rec))

	loaded, err := repo.FindByID(ctx, rec.ID())
	require.NoError(t, err)

	assert.True(t, loaded.ID().Equals(rec.ID()))
	assert.Equal(t, rec.SessionID(), loaded.SessionID())
	assert.Equal(t, rec.ParticipantID(), loaded.ParticipantID())
	assert.Equal(t, 1, loaded.Version().Value())
	assert.Equal(t, model.StateCompleted, loaded.State())
	assert.Equal(t, rec.Answers(), loaded.Answers())
	require.NotNil(t, loaded.FreeformNotes())
	assert.Equal(t, notes, *loaded.FreeformNotes())
}

func TestFindByIDNotFound(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.FindByID(context.Background(), model.NewRecordID())
	require.Error(t, err)
	assert.True(t, errors.Is(err, observation.ErrRecordNotFound))
}

func TestCreateConflictOnSameIdentity(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.Create(ctx, completedRecord(t, "ses-1", "par-1", 1)))

	err := repo.Create(ctx, completedRecord(t, "ses-1", "par-1", 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, observation.ErrRecordConflict))
}

func TestCreateEnforcesOnePendingPerPair(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.Create(ctx, pendingRecord(t, "ses-1", "par-1", 1)))

	// A second pending at another version still violates the partial index
	err := repo.Create(ctx, pendingRecord(t, "ses-1", "par-1", 2))
	require.Error(t, err)
	assert.True(t, errors.Is(err, observation.ErrRecordConflict))
}

func TestCreateValidatesAnswers(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	v := model.FirstVersion()
	rec := observation.ReconstructRecord(
		model.NewRecordID(), "ses-1", "par-1", v, model.StateCompleted,
		map[string]model.Answer{"ghost_question": model.AnswerYes},
		nil, model.NewTimestamp().Value(), model.NewTimestamp().Value())

	err := repo.Create(ctx, rec)
	require.Error(t, err)
	assert.True(t, errors.Is(err, observation.ErrUnknownQuestion))
}

func TestUpdateCompletesPendingInPlace(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	rec := pendingRecord(t, "ses-1", "par-1", 1)
	require.NoError(t, repo.Create(ctx, rec))

	notes := "completado en segunda sesión"
	require.NoError(t, rec.Complete(fullAnswers(model.AnswerNo), &notes, catalog.Default()))
	require.NoError(t, repo.Update(ctx, rec))

	loaded, err := repo.FindByID(ctx, rec.ID())
	require.NoError(t, err)
	assert.Equal(t, model.StateCompleted, loaded.State())
	assert.Equal(t, 1, loaded.Version().Value())
	assert.Len(t, loaded.Answers(), catalog.Default().TotalQuestions())

	pending, err := repo.FindPending(ctx, "ses-1", "par-1")
	require.NoError(t, err)
	assert.Nil(t, pending, "completion clears the pending slot")
}

func TestUpdateMissingRecord(t *testing.T) {
	repo := newTestRepo(t)

	rec := completedRecord(t, "ses-1", "par-1", 1)
	err := repo.Update(context.Background(), rec)
	require.Error(t, err)
	assert.True(t, errors.Is(err, observation.ErrRecordNotFound))
}

func TestFindPending(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	pending, err := repo.FindPending(ctx, "ses-1", "par-1")
	require.NoError(t, err)
	assert.Nil(t, pending)

	rec := pendingRecord(t, "ses-1", "par-1", 1)
	require.NoError(t, repo.Create(ctx, rec))

	pending, err = repo.FindPending(ctx, "ses-1", "par-1")
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.True(t, pending.ID().Equals(rec.ID()))
	assert.Empty(t, pending.Answers())
}

func TestLatestVersionSentinel(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	latest, err := repo.LatestVersion(ctx, "ses-1", "par-1")
	require.NoError(t, err)
	assert.Equal(t, 0, latest, "0 means no record, never a version")

	require.NoError(t, repo.Create(ctx, completedRecord(t, "ses-1", "par-1", 1)))
	require.NoError(t, repo.Create(ctx, completedRecord(t, "ses-1", "par-1", 2)))

	latest, err = repo.LatestVersion(ctx, "ses-1", "par-1")
	require.NoError(t, err)
	assert.Equal(t, 2, latest)
}

func TestFindLatest(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	latest, err := repo.FindLatest(ctx, "ses-1", "par-1")
	require.NoError(t, err)
	assert.Nil(t, latest)

	require.NoError(t, repo.Create(ctx, completedRecord(t, "ses-1", "par-1", 1)))
	require.NoError(t, repo.Create(ctx, pendingRecord(t, "ses-1", "par-1", 2)))

	latest, err = repo.FindLatest(ctx, "ses-1", "par-1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 2, latest.Version().Value())
	assert.True(t, latest.IsPending())
}

func TestCountVersions(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.Create(ctx, completedRecord(t, "ses-1", "par-1", 1)))
	require.NoError(t, repo.Create(ctx, completedRecord(t, "ses-1", "par-1", 2)))
	require.NoError(t, repo.Create(ctx, completedRecord(t, "ses-1", "par-2", 1)))

	count, err := repo.CountVersions(ctx, "ses-1", "par-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = repo.CountVersions(ctx, "ses-2", "par-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestListBySessionsOrdering(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.Create(ctx, completedRecord(t, "ses-2", "par-1", 1)))
	require.NoError(t, repo.Create(ctx, completedRecord(t, "ses-1", "par-2", 1)))
	require.NoError(t, repo.Create(ctx, completedRecord(t, "ses-1", "par-1", 2)))
	require.NoError(t, repo.Create(ctx, completedRecord(t, "ses-1", "par-1", 1)))
	require.NoError(t, repo.Create(ctx, completedRecord(t, "ses-3", "par-1", 1)))

	records, err := repo.ListBySessions(ctx, []model.SessionID{"ses-1", "ses-2"})
	require.NoError(t, err)
	require.Len(t, records, 4, "ses-3 is not requested")

	type key struct {
		session, participant string
		version              int
	}
	var got []key
	for _, rec := range records {
		got = append(got, key{rec.SessionID().String(), rec.ParticipantID().String(), rec.Version().Value()})
	}
	assert.Equal(t, []key{
		{"ses-1", "par-1", 1},
		{"ses-1", "par-1", 2},
		{"ses-1", "par-2", 1},
		{"ses-2", "par-1", 1},
	}, got)
}

func TestListBySessionsEmptyInput(t *testing.T) {
	repo := newTestRepo(t)

	records, err := repo.ListBySessions(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDeleteLatestVersionOnly(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	v1 := completedRecord(t, "ses-1", "par-1", 1)
	v2 := completedRecord(t, "ses-1", "par-1", 2)
	require.NoError(t, repo.Create(ctx, v1))
	require.NoError(t, repo.Create(ctx, v2))

	// Interior delete would leave a hole in the version sequence
	err := repo.Delete(ctx, v1.ID())
	require.Error(t, err)
	assert.True(t, errors.Is(err, observation.ErrProtectedVersion))

	// The latest may go, then its predecessor becomes deletable
	require.NoError(t, repo.Delete(ctx, v2.ID()))
	require.NoError(t, repo.Delete(ctx, v1.ID()))

	count, err := repo.CountVersions(ctx, "ses-1", "par-1")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestDeleteMissingRecord(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.Delete(context.Background(), model.NewRecordID())
	require.Error(t, err)
	assert.True(t, errors.Is(err, observation.ErrRecordNotFound))
}

func TestDeleteBySessionCascades(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.Create(ctx, completedRecord(t, "ses-1", "par-1", 1)))
	require.NoError(t, repo.Create(ctx, completedRecord(t, "ses-1", "par-1", 2)))
	require.NoError(t, repo.Create(ctx, completedRecord(t, "ses-1", "par-2", 1)))
	require.NoError(t, repo.Create(ctx, completedRecord(t, "ses-2", "par-1", 1)))

	removed, err := repo.DeleteBySession(ctx, "ses-1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	// Other sessions are untouched
	count, err := repo.CountVersions(ctx, "ses-2", "par-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDeleteByParticipantCascades(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	require.NoError(t, repo.Create(ctx, completedRecord(t, "ses-1", "par-1", 1)))
	require.NoError(t, repo.Create(ctx, completedRecord(t, "ses-2", "par-1", 1)))
	require.NoError(t, repo.Create(ctx, completedRecord(t, "ses-1", "par-2", 1)))

	removed, err := repo.DeleteByParticipant(ctx, "par-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	count, err := repo.CountVersions(ctx, "ses-1", "par-2")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
