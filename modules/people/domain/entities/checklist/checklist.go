package checklist

import (
	"context"
	"sort"
	"time"
)

type InstanceStatus string

const (
	InstanceInProgress InstanceStatus = "IN_PROGRESS"
	InstanceCompleted  InstanceStatus = "COMPLETED"
)

type TemplateItem struct {
	ID          string
	Label       string
	Description string
	Order       int
}

type Template struct {
	ID    string
	OrgID string
	Name  string
	Items []TemplateItem
}

// SortedItems returns the template items ordered by Order.
func (t Template) SortedItems() []TemplateItem {
	items := append([]TemplateItem(nil), t.Items...)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Order < items[j].Order })
	return items
}

type ItemProgress struct {
	ItemID      string
	Label       string
	Notes       string
	Completed   bool
	CompletedAt *time.Time
}

type Instance struct {
	ID             string
	OrgID          string
	TemplateID     string
	EmployeeNumber string
	Status         InstanceStatus
	Items          []ItemProgress
	Metadata       map[string]any
	CreatedAt      time.Time
}

// NewInstance builds a fresh in-progress instance from template items.
func NewInstance(orgID, employeeNumber string, tmpl Template, metadata map[string]any) Instance {
	sorted := tmpl.SortedItems()
	progress := make([]ItemProgress, 0, len(sorted))
	for _, item := range sorted {
		progress = append(progress, ItemProgress{ItemID: item.ID, Label: item.Label, Notes: item.Description})
	}
	return Instance{
		OrgID:          orgID,
		TemplateID:     tmpl.ID,
		EmployeeNumber: employeeNumber,
		Status:         InstanceInProgress,
		Items:          progress,
		Metadata:       metadata,
	}
}

// TemplateRepository returns nil without error for unknown templates.
type TemplateRepository interface {
	GetByID(ctx context.Context, orgID, templateID string) (*Template, error)
}

type InstanceRepository interface {
	// FindActive returns nil without error when no active instance exists.
	FindActive(ctx context.Context, orgID, employeeNumber string) (*Instance, error)
	Create(ctx context.Context, instance Instance) (*Instance, error)
}
