package compliance

import "time"

type ItemState string

const (
	ItemPending   ItemState = "PENDING"
	ItemCompleted ItemState = "COMPLETED"
	ItemOverdue   ItemState = "OVERDUE"
)

type StatusItem struct {
	TemplateItemID string
	Name           string
	State          ItemState
	DueDate        *time.Time
	CompletedAt    *time.Time
}

// Status summarises a user's compliance items.
type Status struct {
	UserID    string
	Items     []StatusItem
	UpdatedAt time.Time
}

type PackAssignment struct {
	UserIDs         []string
	TemplateID      string
	TemplateItemIDs []string
}
