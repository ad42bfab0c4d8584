package persistence

import (
	"context"
	"errors"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/hr-people/modules/people/domain/aggregates/employee"
	"github.com/iota-uz/hr-people/modules/people/domain/security"
)

const contractColumns = `id, org_id, user_id, contract_type, job_title, department_id, start_date, end_date,
	termination_reason, location, working_pattern, benefits, data_residency, data_classification,
	created_at, updated_at`

const (
	selectContractByID = `SELECT ` + contractColumns + ` FROM employment_contracts WHERE org_id = $1 AND id = $2`

	selectLatestContract = `SELECT ` + contractColumns + ` FROM employment_contracts
		WHERE org_id = $1 AND user_id = $2 ORDER BY start_date DESC, created_at DESC LIMIT 1`

	insertContract = `INSERT INTO employment_contracts (
		id, org_id, user_id, contract_type, job_title, department_id, start_date, end_date,
		termination_reason, location, working_pattern, benefits, data_residency, data_classification)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	RETURNING ` + contractColumns

	updateContract = `UPDATE employment_contracts SET
		termination_reason = COALESCE($3, termination_reason),
		end_date = COALESCE($4, end_date),
		updated_at = now()
	WHERE org_id = $1 AND id = $2
	RETURNING ` + contractColumns

	deleteContract = `DELETE FROM employment_contracts WHERE org_id = $1 AND id = $2`
)

type ContractRepository struct{}

func NewContractRepository() employee.ContractRepository {
	return &ContractRepository{}
}

func (r *ContractRepository) GetByID(ctx context.Context, orgID, contractID string) (*employee.Contract, error) {
	return r.queryOne(ctx, selectContractByID, orgID, contractID)
}

func (r *ContractRepository) GetLatestForUser(ctx context.Context, orgID, userID string) (*employee.Contract, error) {
	return r.queryOne(ctx, selectLatestContract, orgID, userID)
}

func (r *ContractRepository) Create(ctx context.Context, c employee.Contract) (*employee.Contract, error) {
	id := c.ID
	if id == "" {
		id = uuid.NewString()
	}
	return r.queryOne(ctx, insertContract,
		id, c.OrgID, c.UserID, string(c.ContractType), c.JobTitle, c.DepartmentID, c.StartDate, c.EndDate,
		c.TerminationReason, c.Location, jsonArg(c.WorkingPattern), jsonArg(c.Benefits),
		string(c.DataResidency), string(c.DataClassification),
	)
}

func (r *ContractRepository) Update(ctx context.Context, orgID, contractID string, changes employee.ContractUpdate) (*employee.Contract, error) {
	return r.queryOne(ctx, updateContract, orgID, contractID, changes.TerminationReason, changes.EndDate)
}

func (r *ContractRepository) Delete(ctx context.Context, orgID, contractID string) error {
	tx, err := querier(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, deleteContract, orgID, contractID)
	if err != nil {
		return gerrors.Wrap(err, "delete employment contract")
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrContractNotFound
	}
	return nil
}

func (r *ContractRepository) queryOne(ctx context.Context, query string, args ...any) (*employee.Contract, error) {
	tx, err := querier(ctx)
	if err != nil {
		return nil, err
	}
	c, err := scanContract(tx.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, employee.ErrContractNotFound
	}
	if err != nil {
		return nil, gerrors.Wrap(err, "query employment contract")
	}
	return c, nil
}

func scanContract(row pgx.Row) (*employee.Contract, error) {
	var (
		c                         employee.Contract
		contractType              string
		residency, classification string
		endDate                   *time.Time
	)
	err := row.Scan(
		&c.ID, &c.OrgID, &c.UserID, &contractType, &c.JobTitle, &c.DepartmentID, &c.StartDate, &endDate,
		&c.TerminationReason, &c.Location, &c.WorkingPattern, &c.Benefits, &residency, &classification,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.ContractType = employee.ContractType(contractType)
	c.EndDate = endDate
	c.DataResidency = security.DataResidency(residency)
	c.DataClassification = security.DataClassification(classification)
	return &c, nil
}
