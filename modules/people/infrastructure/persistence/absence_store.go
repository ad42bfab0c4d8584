package persistence

import (
	"context"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/hr-people/modules/people/domain/entities/absence"
	"github.com/iota-uz/hr-people/modules/people/domain/security"
)

var ErrAbsenceNotCancellable = gerrors.New("absence not found or already closed")

const (
	selectAbsences = `SELECT id, org_id, user_id, type_id, status, start_date, end_date
		FROM absences
		WHERE org_id = $1 AND user_id = $2
		  AND ($3 OR status NOT IN ('CANCELLED', 'CLOSED'))
		ORDER BY start_date`

	cancelAbsence = `UPDATE absences SET status = 'CANCELLED', cancel_reason = $3
		WHERE org_id = $1 AND id = $2 AND status NOT IN ('CANCELLED', 'CLOSED')`
)

// AbsenceStore keeps unplanned absences keyed by user id.
type AbsenceStore struct{}

func NewAbsenceStore() *AbsenceStore {
	return &AbsenceStore{}
}

func (s *AbsenceStore) ListAbsences(ctx context.Context, auth security.Authorization, filter absence.Filter) ([]absence.Absence, error) {
	tx, err := querier(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, selectAbsences, auth.OrgID, filter.UserID, filter.IncludeClosed)
	if err != nil {
		return nil, gerrors.Wrap(err, "query absences")
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (absence.Absence, error) {
		var (
			a       absence.Absence
			status  string
			endDate *time.Time
		)
		if err := row.Scan(&a.ID, &a.OrgID, &a.UserID, &a.TypeID, &status, &a.StartDate, &endDate); err != nil {
			return absence.Absence{}, err
		}
		a.Status = absence.Status(status)
		a.EndDate = endDate
		return a, nil
	})
}

func (s *AbsenceStore) CancelAbsence(ctx context.Context, auth security.Authorization, absenceID, reason string) error {
	tx, err := querier(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, cancelAbsence, auth.OrgID, absenceID, reason)
	if err != nil {
		return gerrors.Wrap(err, "cancel absence")
	}
	if tag.RowsAffected() == 0 {
		return gerrors.Wrapf(ErrAbsenceNotCancellable, "absence %s", absenceID)
	}
	return nil
}
