package observation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atelierlabs/obswork/internal/domain/model"
	"github.com/atelierlabs/obswork/internal/domain/model/catalog"
)

// fullAnswers builds a complete answer set over the catalog
func fullAnswers(cat *catalog.Catalog, value model.Answer) map[string]model.Answer {
	answers := make(map[string]model.Answer, cat.TotalQuestions())
	for _, q := range cat.Flattened() {
		answers[q.ID] = value
	}
	return answers
}

func TestNewPendingRecord(t *testing.T) {
	rec, err := NewPendingRecord("ses-1", "par-1", model.FirstVersion())
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID().String())
	assert.Equal(t, model.SessionID("ses-1"), rec.SessionID())
	assert.Equal(t, model.ParticipantID("par-1"), rec.ParticipantID())
	assert.Equal(t, 1, rec.Version().Value())
	assert.True(t, rec.IsPending())
	assert.Empty(t, rec.Answers())
	assert.Nil(t, rec.FreeformNotes())
}

func TestNewPendingRecordRequiresIdentity(t *testing.T) {
	_, err := NewPendingRecord("", "par-1", model.FirstVersion())
	assert.Error(t, err)

	_, err = NewPendingRecord("ses-1", "", model.FirstVersion())
	assert.Error(t, err)
}

func TestCompleteTransitionsInPlace(t *testing.T) {
	cat := catalog.Default()
	rec, err := NewPendingRecord("ses-1", "par-1", model.FirstVersion())
	require.NoError(t, err)

	notes := "se mostró muy participativo"
	err = rec.Complete(fullAnswers(cat, model.AnswerYes), &notes, cat)
	require.NoError(t, err)

	assert.False(t, rec.IsPending())
	assert.Equal(t, model.StateCompleted, rec.State())
	assert.Equal(t, 1, rec.Version().Value(), "completion keeps the version")
	assert.Len(t, rec.Answers(), cat.TotalQuestions())
	require.NotNil(t, rec.FreeformNotes())
	assert.Equal(t, notes, *rec.FreeformNotes())
}

func TestCompleteIsTerminal(t *testing.T) {
	cat := catalog.Default()
	rec, err := NewCompletedRecord("ses-1", "par-1", model.FirstVersion(),
		fullAnswers(cat, model.AnswerNo), nil, cat)
	require.NoError(t, err)

	err = rec.Complete(fullAnswers(cat, model.AnswerYes), nil, cat)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

func TestCompleteRejectsIncompleteAnswers(t *testing.T) {
	cat := catalog.Default()
	rec, err := NewPendingRecord("ses-1", "par-1", model.FirstVersion())
	require.NoError(t, err)

	answers := fullAnswers(cat, model.AnswerYes)
	delete(answers, "entry_on_time")

	err = rec.Complete(answers, nil, cat)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIncompleteAnswers))
	assert.True(t, rec.IsPending(), "failed completion leaves the record pending")
}

func TestCompleteRejectsUnknownQuestion(t *testing.T) {
	cat := catalog.Default()
	rec, err := NewPendingRecord("ses-1", "par-1", model.FirstVersion())
	require.NoError(t, err)

	answers := fullAnswers(cat, model.AnswerYes)
	delete(answers, "entry_on_time")
	answers["made_up_question"] = model.AnswerYes

	err = rec.Complete(answers, nil, cat)
	assert.True(t, errors.Is(err, ErrUnknownQuestion))
}

func TestCompleteRejectsInvalidAnswerValue(t *testing.T) {
	cat := catalog.Default()
	rec, err := NewPendingRecord("ses-1", "par-1", model.FirstVersion())
	require.NoError(t, err)

	answers := fullAnswers(cat, model.AnswerYes)
	answers["entry_on_time"] = model.Answer("maybe")

	err = rec.Complete(answers, nil, cat)
	assert.True(t, errors.Is(err, ErrInvalidAnswer))
}

func TestCompleteNormalizesEmptyNotes(t *testing.T) {
	cat := catalog.Default()
	rec, err := NewPendingRecord("ses-1", "par-1", model.FirstVersion())
	require.NoError(t, err)

	empty := ""
	require.NoError(t, rec.Complete(fullAnswers(cat, model.AnswerNotSure), &empty, cat))
	assert.Nil(t, rec.FreeformNotes())
}

func TestCompleteCopiesAnswerMap(t *testing.T) {
	cat := catalog.Default()
	rec, err := NewPendingRecord("ses-1", "par-1", model.FirstVersion())
	require.NoError(t, err)

	answers := fullAnswers(cat, model.AnswerYes)
	require.NoError(t, rec.Complete(answers, nil, cat))

	answers["entry_on_time"] = model.AnswerNo
	assert.Equal(t, model.AnswerYes, rec.Answers()["entry_on_time"])

	// The accessor also hands out a copy
	rec.Answers()["entry_on_time"] = model.AnswerNo
	got, ok := rec.AnswerFor("entry_on_time")
	require.True(t, ok)
	assert.Equal(t, model.AnswerYes, got)
}

func TestNewCompletedRecordValidates(t *testing.T) {
	cat := catalog.Default()

	_, err := NewCompletedRecord("ses-1", "par-1", model.FirstVersion(),
		map[string]model.Answer{"entry_on_time": model.AnswerYes}, nil, cat)
	assert.True(t, errors.Is(err, ErrIncompleteAnswers))
}

func TestValidateAnswersAllowsPartialSets(t *testing.T) {
	cat := catalog.Default()

	// Validation checks keys and values only; completeness is a completion
	// rule, not a storage rule
	err := ValidateAnswers(map[string]model.Answer{
		"entry_on_time": model.AnswerNotApplicable,
	}, cat)
	assert.NoError(t, err)
}

func TestObservationErrorMatching(t *testing.T) {
	wrapped := ErrRecordConflict
	assert.True(t, errors.Is(wrapped, ErrRecordConflict))
	assert.False(t, errors.Is(wrapped, ErrRecordNotFound))
	assert.Contains(t, ErrRecordConflict.Error(), "OBS_RECORD_CONFLICT")
}
