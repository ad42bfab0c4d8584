package persistence

import (
	"context"

	gerrors "github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/iota-uz/hr-people/modules/people/domain/entities/leave"
	"github.com/iota-uz/hr-people/modules/people/domain/security"
)

// ErrLeaveRequestNotCancellable is returned for unknown or already decided requests.
var ErrLeaveRequestNotCancellable = gerrors.New("leave request not found or not cancellable")

// DefaultEntitlements seeds new balances, in days. Unlisted types start at zero.
var DefaultEntitlements = map[string]decimal.Decimal{
	"ANNUAL":        decimal.NewFromInt(28),
	"SICK":          decimal.NewFromInt(10),
	"COMPASSIONATE": decimal.NewFromInt(5),
}

const (
	ensureBalance = `INSERT INTO leave_balances (org_id, employee_number, leave_type, year, entitlement, audit_source)
		VALUES ($1, $2, $3, $4, $5::text::numeric, $6)
		ON CONFLICT (org_id, employee_number, leave_type, year) DO NOTHING`

	selectBalances = `SELECT employee_number, leave_type, year, entitlement::text, used::text
		FROM leave_balances WHERE org_id = $1 AND employee_number = $2 AND year = $3
		ORDER BY leave_type`

	selectLeaveRequests = `SELECT id, org_id, employee_number, leave_type, status, start_date, end_date, days::text
		FROM leave_requests
		WHERE org_id = $1 AND employee_number = $2
		  AND (cardinality($3::text[]) = 0 OR status = ANY($3))
		  AND ($4::int = 0 OR extract(year FROM start_date)::int = $4)
		ORDER BY start_date`

	cancelLeaveRequest = `UPDATE leave_requests SET status = 'cancelled', cancelled_by = $3, cancel_reason = $4
		WHERE org_id = $1 AND id = $2 AND status IN ('submitted', 'approved')`
)

// LeaveStore keeps leave balances and requests keyed by employee number.
type LeaveStore struct{}

func NewLeaveStore() *LeaveStore {
	return &LeaveStore{}
}

func (s *LeaveStore) EnsureEmployeeBalances(ctx context.Context, auth security.Authorization, employeeNumber string, year int, leaveTypes []string) (leave.EnsureBalancesResult, error) {
	tx, err := querier(ctx)
	if err != nil {
		return leave.EnsureBalancesResult{}, err
	}
	for _, leaveType := range leaveTypes {
		entitlement := DefaultEntitlements[leaveType]
		if _, err := tx.Exec(ctx, ensureBalance, auth.OrgID, employeeNumber, leaveType, year, entitlement.String(), auth.AuditSource); err != nil {
			return leave.EnsureBalancesResult{}, gerrors.Wrapf(err, "ensure %s balance", leaveType)
		}
	}
	balances, err := s.GetLeaveBalances(ctx, auth, employeeNumber, year)
	if err != nil {
		return leave.EnsureBalancesResult{}, err
	}
	wanted := make(map[string]struct{}, len(leaveTypes))
	for _, t := range leaveTypes {
		wanted[t] = struct{}{}
	}
	out := make([]leave.Balance, 0, len(leaveTypes))
	for _, b := range balances {
		if _, ok := wanted[b.LeaveType]; ok {
			out = append(out, b)
		}
	}
	return leave.EnsureBalancesResult{EnsuredBalances: out}, nil
}

func (s *LeaveStore) GetLeaveBalances(ctx context.Context, auth security.Authorization, employeeNumber string, year int) ([]leave.Balance, error) {
	tx, err := querier(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, selectBalances, auth.OrgID, employeeNumber, year)
	if err != nil {
		return nil, gerrors.Wrap(err, "query leave balances")
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (leave.Balance, error) {
		var (
			b                 leave.Balance
			entitlement, used string
		)
		if err := row.Scan(&b.EmployeeNumber, &b.LeaveType, &b.Year, &entitlement, &used); err != nil {
			return leave.Balance{}, err
		}
		var err error
		if b.Entitlement, err = decimal.NewFromString(entitlement); err != nil {
			return leave.Balance{}, err
		}
		if b.Used, err = decimal.NewFromString(used); err != nil {
			return leave.Balance{}, err
		}
		b.Remaining = b.Entitlement.Sub(b.Used)
		return b, nil
	})
}

func (s *LeaveStore) ListLeaveRequests(ctx context.Context, auth security.Authorization, filter leave.RequestFilter) ([]leave.Request, error) {
	tx, err := querier(ctx)
	if err != nil {
		return nil, err
	}
	statuses := make([]string, 0, len(filter.Statuses))
	for _, st := range filter.Statuses {
		statuses = append(statuses, string(st))
	}
	rows, err := tx.Query(ctx, selectLeaveRequests, auth.OrgID, filter.EmployeeNumber, statuses, filter.Year)
	if err != nil {
		return nil, gerrors.Wrap(err, "query leave requests")
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (leave.Request, error) {
		var (
			r            leave.Request
			status, days string
		)
		if err := row.Scan(&r.ID, &r.OrgID, &r.EmployeeNumber, &r.LeaveType, &status, &r.StartDate, &r.EndDate, &days); err != nil {
			return leave.Request{}, err
		}
		r.Status = leave.RequestStatus(status)
		d, err := decimal.NewFromString(days)
		if err != nil {
			return leave.Request{}, err
		}
		r.Days = d
		return r, nil
	})
}

func (s *LeaveStore) CancelLeaveRequest(ctx context.Context, auth security.Authorization, requestID, cancelledBy, reason string) error {
	tx, err := querier(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, cancelLeaveRequest, auth.OrgID, requestID, cancelledBy, reason)
	if err != nil {
		return gerrors.Wrap(err, "cancel leave request")
	}
	if tag.RowsAffected() == 0 {
		return gerrors.Wrapf(ErrLeaveRequestNotCancellable, "request %s", requestID)
	}
	return nil
}
