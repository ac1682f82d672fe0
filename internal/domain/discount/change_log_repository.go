package discount

import (
	"context"
)

// MaxChangeLogResults caps any single change log query
const MaxChangeLogResults = 500

// ChangeLogFilter narrows a change log query. ActionType matches as a
// substring; EntityType matches exactly. A zero filter returns the most
// recent entries up to the cap.
type ChangeLogFilter struct {
	EntityType string
	ActionType string
	Limit      int
}

// ChangeLogRepository persists the append-only discount change log
type ChangeLogRepository interface {
	Append(ctx context.Context, entry *ChangeLogEntry) error
	// Find returns entries newest first, capped at MaxChangeLogResults.
	Find(ctx context.Context, filter ChangeLogFilter) ([]ChangeLogEntry, error)
}
