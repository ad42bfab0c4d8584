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

const profileColumns = `id, org_id, user_id, employee_number, email, personal_email, display_name,
	first_name, last_name, job_title, department_id, employment_type, employment_status,
	start_date, end_date, annual_salary::text, hourly_rate::text, salary_currency, salary_basis,
	pay_schedule, eligible_leave_types, metadata, data_residency, data_classification,
	created_at, updated_at`

const (
	selectProfileByID = `SELECT ` + profileColumns + ` FROM employee_profiles WHERE org_id = $1 AND id = $2`

	selectProfileByUser = `SELECT ` + profileColumns + ` FROM employee_profiles
		WHERE org_id = $1 AND user_id = $2 ORDER BY created_at DESC LIMIT 1`

	selectProfileByNumber = `SELECT ` + profileColumns + ` FROM employee_profiles
		WHERE org_id = $1 AND employee_number = $2`

	// The conflict branch only fires for a row already owned by the same user
	// (or both unlinked); otherwise no row comes back.
	upsertProfile = `INSERT INTO employee_profiles (
		id, org_id, user_id, employee_number, email, personal_email, display_name,
		first_name, last_name, job_title, department_id, employment_type, employment_status,
		start_date, end_date, annual_salary, hourly_rate, salary_currency, salary_basis,
		pay_schedule, eligible_leave_types, metadata, data_residency, data_classification)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		$16::text::numeric, $17::text::numeric, $18, $19, $20, $21, $22, $23, $24)
	ON CONFLICT (org_id, employee_number) DO UPDATE SET
		email = EXCLUDED.email,
		display_name = EXCLUDED.display_name,
		first_name = EXCLUDED.first_name,
		last_name = EXCLUDED.last_name,
		job_title = EXCLUDED.job_title,
		department_id = EXCLUDED.department_id,
		employment_type = EXCLUDED.employment_type,
		employment_status = EXCLUDED.employment_status,
		start_date = COALESCE(EXCLUDED.start_date, employee_profiles.start_date),
		annual_salary = COALESCE(EXCLUDED.annual_salary, employee_profiles.annual_salary),
		hourly_rate = COALESCE(EXCLUDED.hourly_rate, employee_profiles.hourly_rate),
		salary_currency = EXCLUDED.salary_currency,
		salary_basis = EXCLUDED.salary_basis,
		pay_schedule = EXCLUDED.pay_schedule,
		eligible_leave_types = EXCLUDED.eligible_leave_types,
		metadata = employee_profiles.metadata || EXCLUDED.metadata,
		updated_at = now()
	WHERE employee_profiles.user_id IS NOT DISTINCT FROM EXCLUDED.user_id
	RETURNING ` + profileColumns

	updateProfile = `UPDATE employee_profiles SET
		employment_status = COALESCE($3, employment_status),
		end_date = COALESCE($4, end_date),
		eligible_leave_types = COALESCE($5, eligible_leave_types),
		metadata = CASE WHEN $6::jsonb IS NULL THEN metadata ELSE metadata || $6::jsonb END,
		updated_at = now()
	WHERE org_id = $1 AND id = $2
	RETURNING ` + profileColumns

	linkProfile = `UPDATE employee_profiles SET user_id = $3, updated_at = now()
		WHERE org_id = $1 AND employee_number = $2
		RETURNING ` + profileColumns

	deleteProfile = `DELETE FROM employee_profiles WHERE org_id = $1 AND id = $2`
)

type ProfileRepository struct{}

func NewProfileRepository() employee.ProfileRepository {
	return &ProfileRepository{}
}

func (r *ProfileRepository) GetByID(ctx context.Context, orgID, profileID string) (*employee.Profile, error) {
	return r.queryOne(ctx, selectProfileByID, orgID, profileID)
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, orgID, userID string) (*employee.Profile, error) {
	return r.queryOne(ctx, selectProfileByUser, orgID, userID)
}

func (r *ProfileRepository) FindByEmployeeNumber(ctx context.Context, orgID, employeeNumber string) (*employee.Profile, error) {
	return r.queryOne(ctx, selectProfileByNumber, orgID, employeeNumber)
}

func (r *ProfileRepository) Create(ctx context.Context, p employee.Profile) (*employee.Profile, error) {
	tx, err := querier(ctx)
	if err != nil {
		return nil, err
	}
	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}
	eligible := p.EligibleLeaveTypes
	if eligible == nil {
		eligible = []string{}
	}
	metadata := p.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	row := tx.QueryRow(ctx, upsertProfile,
		id, p.OrgID, nullIfEmpty(p.UserID), p.EmployeeNumber, p.Email, p.PersonalEmail, p.DisplayName,
		p.FirstName, p.LastName, p.JobTitle, p.DepartmentID, string(p.EmploymentType), string(p.EmploymentStatus),
		p.StartDate, p.EndDate, decimalArg(p.AnnualSalary), decimalArg(p.HourlyRate), p.SalaryCurrency, p.SalaryBasis,
		string(p.PaySchedule), eligible, metadata, string(p.DataResidency), string(p.DataClassification),
	)
	created, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, employee.ErrEmployeeNumberTaken
	}
	if err != nil {
		return nil, gerrors.Wrap(err, "create employee profile")
	}
	return created, nil
}

func (r *ProfileRepository) Update(ctx context.Context, orgID, profileID string, changes employee.ProfileUpdate) (*employee.Profile, error) {
	var status *string
	if changes.EmploymentStatus != nil {
		s := string(*changes.EmploymentStatus)
		status = &s
	}
	var eligible any
	if changes.EligibleLeaveTypes != nil {
		types := *changes.EligibleLeaveTypes
		if types == nil {
			types = []string{}
		}
		eligible = types
	}
	var metadata any
	if len(changes.Metadata) > 0 {
		metadata = changes.Metadata
	}
	return r.queryOne(ctx, updateProfile, orgID, profileID, status, changes.EndDate, eligible, metadata)
}

func (r *ProfileRepository) LinkToUser(ctx context.Context, orgID, employeeNumber, userID string) (*employee.Profile, error) {
	return r.queryOne(ctx, linkProfile, orgID, employeeNumber, nullIfEmpty(userID))
}

func (r *ProfileRepository) Delete(ctx context.Context, orgID, profileID string) error {
	tx, err := querier(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, deleteProfile, orgID, profileID)
	if err != nil {
		return gerrors.Wrap(err, "delete employee profile")
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrProfileNotFound
	}
	return nil
}

func (r *ProfileRepository) queryOne(ctx context.Context, query string, args ...any) (*employee.Profile, error) {
	tx, err := querier(ctx)
	if err != nil {
		return nil, err
	}
	p, err := scanProfile(tx.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, employee.ErrProfileNotFound
	}
	if err != nil {
		return nil, gerrors.Wrap(err, "query employee profile")
	}
	return p, nil
}

func scanProfile(row pgx.Row) (*employee.Profile, error) {
	var (
		p                         employee.Profile
		userID                    *string
		employmentType, status    string
		paySchedule               string
		residency, classification string
		annualSalary, hourlyRate  *string
		startDate, endDate        *time.Time
		eligibleLeaveTypes        []string
		metadata                  map[string]any
	)
	err := row.Scan(
		&p.ID, &p.OrgID, &userID, &p.EmployeeNumber, &p.Email, &p.PersonalEmail, &p.DisplayName,
		&p.FirstName, &p.LastName, &p.JobTitle, &p.DepartmentID, &employmentType, &status,
		&startDate, &endDate, &annualSalary, &hourlyRate, &p.SalaryCurrency, &p.SalaryBasis,
		&paySchedule, &eligibleLeaveTypes, &metadata, &residency, &classification,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.AnnualSalary, err = decimalFrom(annualSalary); err != nil {
		return nil, err
	}
	if p.HourlyRate, err = decimalFrom(hourlyRate); err != nil {
		return nil, err
	}
	p.UserID = deref(userID)
	p.EmploymentType = employee.EmploymentType(employmentType)
	p.EmploymentStatus = employee.EmploymentStatus(status)
	p.PaySchedule = employee.PaySchedule(paySchedule)
	p.StartDate = startDate
	p.EndDate = endDate
	if eligibleLeaveTypes == nil {
		eligibleLeaveTypes = []string{}
	}
	p.EligibleLeaveTypes = eligibleLeaveTypes
	p.Metadata = metadata
	p.DataResidency = security.DataResidency(residency)
	p.DataClassification = security.DataClassification(classification)
	return &p, nil
}
