package observation

import (
	"context"
	"fmt"

	"github.com/atelierlabs/obswork/internal/application/dto"
	"github.com/atelierlabs/obswork/internal/domain/model"
	"github.com/atelierlabs/obswork/internal/domain/model/catalog"
	"github.com/atelierlabs/obswork/internal/domain/repository"
)

// ReportUseCase builds the consolidated observation table for a set of
// sessions. Only completed records appear; pending placeholders are not
// observations yet.
type ReportUseCase struct {
	recordRepo repository.RecordRepository
	cat        *catalog.Catalog
}

// NewReportUseCase creates a new report use case
func NewReportUseCase(recordRepo repository.RecordRepository, cat *catalog.Catalog) *ReportUseCase {
	return &ReportUseCase{recordRepo: recordRepo, cat: cat}
}

// ConsolidatedReport lists completed records for the given sessions with
// the flattened catalog as column headers. Stored answer keys are always
// valid catalog ids, so every key resolves to a question.
func (uc *ReportUseCase) ConsolidatedReport(ctx context.Context, sessionIDs []model.SessionID) (*dto.ConsolidatedReport, error) {
	records, err := uc.recordRepo.ListBySessions(ctx, sessionIDs)
	if err != nil {
		return nil, fmt.Errorf("list records for report: %w", err)
	}

	report := &dto.ConsolidatedReport{}
	for _, q := range uc.cat.Flattened() {
		report.Questions = append(report.Questions, dto.QuestionDTO{
			ID:          q.ID,
			Text:        q.Text,
			Category:    q.Category,
			Subcategory: q.Subcategory,
			Order:       q.Order,
		})
	}

	for _, rec := range records {
		if rec.IsPending() {
			continue
		}
		answers := make(map[string]string, len(rec.Answers()))
		for id, a := range rec.Answers() {
			answers[id] = a.String()
		}
		report.Rows = append(report.Rows, dto.ReportRow{
			SessionID:     rec.SessionID().String(),
			ParticipantID: rec.ParticipantID().String(),
			Version:       rec.Version().Value(),
			Answers:       answers,
			FreeformNotes: rec.FreeformNotes(),
			CreatedAt:     rec.CreatedAt().Value(),
		})
	}
	return report, nil
}
