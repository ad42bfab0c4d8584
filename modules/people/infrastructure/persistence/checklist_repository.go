package persistence

import (
	"context"
	"encoding/json"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/hr-people/modules/people/domain/entities/checklist"
)

const (
	selectChecklistTemplate = `SELECT id, org_id, name, items FROM onboarding_checklist_templates
		WHERE org_id = $1 AND id = $2`

	selectActiveChecklist = `SELECT id, org_id, template_id, employee_number, status, items, metadata, created_at
		FROM onboarding_checklist_instances
		WHERE org_id = $1 AND employee_number = $2 AND status = 'IN_PROGRESS'
		ORDER BY created_at DESC LIMIT 1`

	insertChecklist = `INSERT INTO onboarding_checklist_instances
		(id, org_id, template_id, employee_number, status, items, metadata)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id, org_id, template_id, employee_number, status, items, metadata, created_at`
)

type templateItemRow struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order"`
}

type checklistItemRow struct {
	ItemID      string  `json:"itemId"`
	Label       string  `json:"label"`
	Notes       string  `json:"notes,omitempty"`
	Completed   bool    `json:"completed"`
	CompletedAt *string `json:"completedAt,omitempty"`
}

type ChecklistTemplateRepository struct{}

func NewChecklistTemplateRepository() checklist.TemplateRepository {
	return &ChecklistTemplateRepository{}
}

func (r *ChecklistTemplateRepository) GetByID(ctx context.Context, orgID, templateID string) (*checklist.Template, error) {
	tx, err := querier(ctx)
	if err != nil {
		return nil, err
	}
	var (
		tmpl checklist.Template
		raw  []byte
	)
	err = tx.QueryRow(ctx, selectChecklistTemplate, orgID, templateID).Scan(&tmpl.ID, &tmpl.OrgID, &tmpl.Name, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, gerrors.Wrap(err, "query checklist template")
	}
	var items []templateItemRow
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, gerrors.Wrap(err, "decode checklist template items")
	}
	for _, item := range items {
		tmpl.Items = append(tmpl.Items, checklist.TemplateItem(item))
	}
	return &tmpl, nil
}

type ChecklistInstanceRepository struct{}

func NewChecklistInstanceRepository() checklist.InstanceRepository {
	return &ChecklistInstanceRepository{}
}

func (r *ChecklistInstanceRepository) FindActive(ctx context.Context, orgID, employeeNumber string) (*checklist.Instance, error) {
	tx, err := querier(ctx)
	if err != nil {
		return nil, err
	}
	inst, err := scanChecklist(tx.QueryRow(ctx, selectActiveChecklist, orgID, employeeNumber))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, gerrors.Wrap(err, "query active checklist")
	}
	return inst, nil
}

func (r *ChecklistInstanceRepository) Create(ctx context.Context, inst checklist.Instance) (*checklist.Instance, error) {
	tx, err := querier(ctx)
	if err != nil {
		return nil, err
	}
	id := inst.ID
	if id == "" {
		id = uuid.NewString()
	}
	rows := make([]checklistItemRow, 0, len(inst.Items))
	for _, item := range inst.Items {
		row := checklistItemRow{ItemID: item.ItemID, Label: item.Label, Notes: item.Notes, Completed: item.Completed}
		if item.CompletedAt != nil {
			s := item.CompletedAt.UTC().Format(timeLayout)
			row.CompletedAt = &s
		}
		rows = append(rows, row)
	}
	items, err := json.Marshal(rows)
	if err != nil {
		return nil, gerrors.Wrap(err, "encode checklist items")
	}
	created, err := scanChecklist(tx.QueryRow(ctx, insertChecklist,
		id, inst.OrgID, inst.TemplateID, inst.EmployeeNumber, string(inst.Status), items, jsonArg(inst.Metadata),
	))
	if err != nil {
		return nil, gerrors.Wrap(err, "create checklist instance")
	}
	return created, nil
}

func scanChecklist(row pgx.Row) (*checklist.Instance, error) {
	var (
		inst   checklist.Instance
		status string
		raw    []byte
	)
	if err := row.Scan(&inst.ID, &inst.OrgID, &inst.TemplateID, &inst.EmployeeNumber, &status, &raw, &inst.Metadata, &inst.CreatedAt); err != nil {
		return nil, err
	}
	inst.Status = checklist.InstanceStatus(status)
	var items []checklistItemRow
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, gerrors.Wrap(err, "decode checklist items")
	}
	for _, item := range items {
		progress := checklist.ItemProgress{ItemID: item.ItemID, Label: item.Label, Notes: item.Notes, Completed: item.Completed}
		if item.CompletedAt != nil {
			if at, ok := parseTimestamp(*item.CompletedAt); ok {
				progress.CompletedAt = &at
			}
		}
		inst.Items = append(inst.Items, progress)
	}
	return &inst, nil
}
