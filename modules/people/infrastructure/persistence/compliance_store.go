package persistence

import (
	"context"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/hr-people/modules/people/domain/entities/compliance"
	"github.com/iota-uz/hr-people/modules/people/domain/security"
)

const (
	selectComplianceItems = `SELECT template_item_id, name, state, due_date, completed_at, updated_at
		FROM compliance_items WHERE org_id = $1 AND user_id = $2
		ORDER BY due_date NULLS LAST, template_item_id`

	// Reassigning an item keeps its progress.
	assignComplianceItem = `INSERT INTO compliance_items (org_id, user_id, template_id, template_item_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (org_id, user_id, template_item_id) DO UPDATE SET template_id = EXCLUDED.template_id, updated_at = now()`
)

// ComplianceStore reads compliance status and assigns compliance packs.
type ComplianceStore struct{}

func NewComplianceStore() *ComplianceStore {
	return &ComplianceStore{}
}

func (s *ComplianceStore) GetStatusForUser(ctx context.Context, auth security.Authorization, userID string) (*compliance.Status, error) {
	tx, err := querier(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, selectComplianceItems, auth.OrgID, userID)
	if err != nil {
		return nil, gerrors.Wrap(err, "query compliance items")
	}
	var updatedAt time.Time
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (compliance.StatusItem, error) {
		var (
			item      compliance.StatusItem
			state     string
			rowUpdate time.Time
		)
		if err := row.Scan(&item.TemplateItemID, &item.Name, &state, &item.DueDate, &item.CompletedAt, &rowUpdate); err != nil {
			return compliance.StatusItem{}, err
		}
		item.State = compliance.ItemState(state)
		if rowUpdate.After(updatedAt) {
			updatedAt = rowUpdate
		}
		return item, nil
	})
	if err != nil {
		return nil, gerrors.Wrap(err, "scan compliance items")
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &compliance.Status{UserID: userID, Items: items, UpdatedAt: updatedAt}, nil
}

func (s *ComplianceStore) AssignCompliancePack(ctx context.Context, auth security.Authorization, assignment compliance.PackAssignment) error {
	tx, err := querier(ctx)
	if err != nil {
		return err
	}
	for _, userID := range assignment.UserIDs {
		for _, itemID := range assignment.TemplateItemIDs {
			if _, err := tx.Exec(ctx, assignComplianceItem, auth.OrgID, userID, assignment.TemplateID, itemID); err != nil {
				return gerrors.Wrapf(err, "assign compliance item %s to %s", itemID, userID)
			}
		}
	}
	return nil
}
