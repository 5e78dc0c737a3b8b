// Package observation implements the application use cases around
// observational records: the stepwise recording workflow, membership
// provisioning and the consolidated report.
package observation

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/atelierlabs/obswork/internal/application/dto"
	"github.com/atelierlabs/obswork/internal/domain/model"
	"github.com/atelierlabs/obswork/internal/domain/model/catalog"
	obsmodel "github.com/atelierlabs/obswork/internal/domain/model/observation"
	"github.com/atelierlabs/obswork/internal/domain/repository"
	"github.com/atelierlabs/obswork/internal/domain/service"
)

// WorkflowState is the state of a recording workflow instance
type WorkflowState string

const (
	WorkflowInProgress    WorkflowState = "IN_PROGRESS"
	WorkflowAwaitingNotes WorkflowState = "AWAITING_NOTES"
	WorkflowCompleted     WorkflowState = "COMPLETED"
	WorkflowCancelled     WorkflowState = "CANCELLED"
)

// Workflow is one in-flight recording session: a strict linear walk over a
// snapshot of the flattened catalog. Nothing is persisted until notes are
// submitted; cancelling discards the instance without touching the store.
//
// The handle is addressed by ID so a presentation layer can park it between
// requests. Instances are not safe for concurrent use; the surrounding
// application keeps at most one active workflow per (session, participant)
// pair.
type Workflow struct {
	id            string
	sessionID     model.SessionID
	participantID model.ParticipantID
	target        service.Target
	questions     []catalog.Question // snapshot taken at Start
	index         int
	answers       map[string]model.Answer
	state         WorkflowState
}

// ID returns the workflow handle id
func (w *Workflow) ID() string {
	return w.id
}

// State returns the current workflow state
func (w *Workflow) State() WorkflowState {
	return w.state
}

// SessionID returns the target session
func (w *Workflow) SessionID() model.SessionID {
	return w.sessionID
}

// ParticipantID returns the target participant
func (w *Workflow) ParticipantID() model.ParticipantID {
	return w.participantID
}

// TargetVersion returns the version this workflow will persist
func (w *Workflow) TargetVersion() model.Version {
	return w.target.Version
}

// IsRedo reports whether this workflow opens a fresh version on top of
// completed history rather than resuming a pending placeholder
func (w *Workflow) IsRedo() bool {
	return !w.target.Resume
}

// CurrentQuestion returns the question at the current position
func (w *Workflow) CurrentQuestion() (catalog.Question, error) {
	if w.state != WorkflowInProgress {
		return catalog.Question{}, fmt.Errorf("no current question in state %s: %w",
			w.state, obsmodel.ErrWorkflowState)
	}
	return w.questions[w.index], nil
}

// Progress returns the number of answered questions and the total
func (w *Workflow) Progress() (answered, total int) {
	return w.index, len(w.questions)
}

// RecordingUseCase drives recording workflows and owns the arena of active
// handles
type RecordingUseCase struct {
	recordRepo repository.RecordRepository
	versioning *service.VersioningService
	cat        *catalog.Catalog

	mu     sync.Mutex
	active map[string]*Workflow
}

// NewRecordingUseCase creates a new recording use case
func NewRecordingUseCase(
	recordRepo repository.RecordRepository,
	versioning *service.VersioningService,
	cat *catalog.Catalog,
) *RecordingUseCase {
	return &RecordingUseCase{
		recordRepo: recordRepo,
		versioning: versioning,
		cat:        cat,
		active:     make(map[string]*Workflow),
	}
}

// Start resolves the write target for the pair and opens a workflow at the
// first question. A pending record resumes at its own version; otherwise a
// fresh version is opened after the latest stored one.
func (uc *RecordingUseCase) Start(ctx context.Context, sessionID model.SessionID, participantID model.ParticipantID) (*Workflow, error) {
	if sessionID.IsZero() || participantID.IsZero() {
		return nil, fmt.Errorf("session and participant ids are required")
	}

	target, err := uc.versioning.ResolveTarget(ctx, sessionID, participantID)
	if err != nil {
		return nil, fmt.Errorf("resolve recording target: %w", err)
	}

	answers := make(map[string]model.Answer, len(target.SeedAnswers))
	for k, v := range target.SeedAnswers {
		answers[k] = v
	}

	wf := &Workflow{
		id:            uuid.New().String(),
		sessionID:     sessionID,
		participantID: participantID,
		target:        target,
		questions:     uc.cat.Flattened(),
		index:         0,
		answers:       answers,
		state:         WorkflowInProgress,
	}

	uc.mu.Lock()
	uc.active[wf.id] = wf
	uc.mu.Unlock()
	return wf, nil
}

// Find restores an active workflow handle by id
func (uc *RecordingUseCase) Find(id string) (*Workflow, bool) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	wf, ok := uc.active[id]
	return wf, ok
}

// Answer records the answer for the question at the current position and
// advances the walk. The question id must match the current position;
// out-of-order answers are rejected. Returns the next question, or done
// when the walk moved to notes collection.
func (uc *RecordingUseCase) Answer(wf *Workflow, questionID string, value model.Answer) (next *catalog.Question, done bool, err error) {
	if wf.state != WorkflowInProgress {
		return nil, false, fmt.Errorf("answer in state %s: %w", wf.state, obsmodel.ErrWorkflowState)
	}
	current := wf.questions[wf.index]
	if current.ID != questionID {
		return nil, false, fmt.Errorf("expected question %q at position %d, got %q: %w",
			current.ID, wf.index, questionID, obsmodel.ErrOutOfOrderAnswer)
	}
	if !value.IsValid() {
		return nil, false, fmt.Errorf("question %q has value %q: %w", questionID, value, obsmodel.ErrInvalidAnswer)
	}

	wf.answers[questionID] = value
	wf.index++
	if wf.index < len(wf.questions) {
		q := wf.questions[wf.index]
		return &q, false, nil
	}
	wf.state = WorkflowAwaitingNotes
	return nil, true, nil
}

// SubmitNotes persists the completed observation with optional freeform
// notes. On a store error the workflow stays in AWAITING_NOTES so the
// caller may retry; a conflict means someone else completed this
// observation and the caller should re-resolve.
func (uc *RecordingUseCase) SubmitNotes(ctx context.Context, wf *Workflow, notes *string) (*dto.RecordDTO, error) {
	if wf.state != WorkflowAwaitingNotes {
		return nil, fmt.Errorf("submit notes in state %s: %w", wf.state, obsmodel.ErrWorkflowState)
	}

	var persisted *obsmodel.Record
	if wf.target.Resume {
		rec, err := uc.recordRepo.FindByID(ctx, *wf.target.RecordID)
		if err != nil {
			return nil, fmt.Errorf("load pending record: %w", err)
		}
		if err := rec.Complete(wf.answers, notes, uc.cat); err != nil {
			return nil, err
		}
		if err := uc.recordRepo.Update(ctx, rec); err != nil {
			return nil, err
		}
		persisted = rec
	} else {
		rec, err := obsmodel.NewCompletedRecord(
			wf.sessionID, wf.participantID, wf.target.Version, wf.answers, notes, uc.cat)
		if err != nil {
			return nil, err
		}
		if err := uc.recordRepo.Create(ctx, rec); err != nil {
			return nil, err
		}
		persisted = rec
	}

	wf.state = WorkflowCompleted
	uc.mu.Lock()
	delete(uc.active, wf.id)
	uc.mu.Unlock()

	d := recordToDTO(persisted)
	return &d, nil
}

// Cancel discards an in-flight workflow without touching the store
func (uc *RecordingUseCase) Cancel(wf *Workflow) error {
	if wf.state == WorkflowCompleted || wf.state == WorkflowCancelled {
		return fmt.Errorf("cancel in state %s: %w", wf.state, obsmodel.ErrWorkflowState)
	}
	wf.state = WorkflowCancelled
	uc.mu.Lock()
	delete(uc.active, wf.id)
	uc.mu.Unlock()
	return nil
}

// recordToDTO converts a record aggregate to its DTO
func recordToDTO(rec *obsmodel.Record) dto.RecordDTO {
	answers := make(map[string]string, len(rec.Answers()))
	for k, v := range rec.Answers() {
		answers[k] = v.String()
	}
	return dto.RecordDTO{
		ID:            rec.ID().String(),
		SessionID:     rec.SessionID().String(),
		ParticipantID: rec.ParticipantID().String(),
		Version:       rec.Version().Value(),
		State:         rec.State().String(),
		Answers:       answers,
		FreeformNotes: rec.FreeformNotes(),
		CreatedAt:     rec.CreatedAt().Value(),
		UpdatedAt:     rec.UpdatedAt().Value(),
	}
}
