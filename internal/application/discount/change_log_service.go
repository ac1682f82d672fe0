package discount

import (
	"context"

	"github.com/storefront/backend/internal/domain/discount"
)

// ChangeLogService exposes the append-only discount audit trail
type ChangeLogService struct {
	changeLog discount.ChangeLogRepository
}

// NewChangeLogService creates a new ChangeLogService
func NewChangeLogService(changeLog discount.ChangeLogRepository) *ChangeLogService {
	return &ChangeLogService{changeLog: changeLog}
}

// Query returns matching entries newest first. The limit is clamped to
// the repository cap.
func (s *ChangeLogService) Query(ctx context.Context, query ChangeLogQuery) ([]ChangeLogEntryResponse, error) {
	limit := query.Limit
	if limit <= 0 || limit > discount.MaxChangeLogResults {
		limit = discount.MaxChangeLogResults
	}

	entries, err := s.changeLog.Find(ctx, discount.ChangeLogFilter{
		EntityType: query.EntityType,
		ActionType: query.ActionType,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}

	return ToChangeLogEntryResponses(entries), nil
}
