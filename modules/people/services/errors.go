package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/iota-uz/hr-people/modules/people/domain/security"
)

type ErrorKind string

const (
	KindNotFound      ErrorKind = "not_found"
	KindValidation    ErrorKind = "validation"
	KindAuthorization ErrorKind = "authorization"
	KindConflict      ErrorKind = "conflict"
)

type ServiceError struct {
	Kind    ErrorKind
	Status  int
	Code    string
	Message string
	Details map[string]any
	Cause   error
}

func (e *ServiceError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *ServiceError) Unwrap() error { return e.Cause }

func newServiceError(kind ErrorKind, status int, code, message string, cause error) *ServiceError {
	return &ServiceError{Kind: kind, Status: status, Code: code, Message: message, Cause: cause}
}

func (e *ServiceError) withDetails(details map[string]any) *ServiceError {
	e.Details = details
	return e
}

func notFound(resource string, details map[string]any) *ServiceError {
	return newServiceError(KindNotFound, http.StatusNotFound, "PEOPLE_NOT_FOUND", resource+" not found", nil).withDetails(details)
}

func validationError(code, message string, details map[string]any) *ServiceError {
	return newServiceError(KindValidation, http.StatusUnprocessableEntity, code, message, nil).withDetails(details)
}

func authorizationError(cause error) *ServiceError {
	return newServiceError(KindAuthorization, http.StatusForbidden, "PEOPLE_FORBIDDEN", "access denied", cause)
}

// invalidAuthorization converts an authorization context validation failure.
func invalidAuthorization(err error) *ServiceError {
	details := map[string]any{}
	for field, tag := range security.ValidationFieldErrors(err) {
		details[field] = tag
	}
	var mismatch *security.ScopeMismatchError
	if errors.As(err, &mismatch) {
		details[mismatch.Field] = "mismatch"
	}
	e := validationError("PEOPLE_INVALID_AUTHORIZATION", "invalid authorization context", details)
	e.Cause = err
	return e
}

func invalidInput(err error) *ServiceError {
	details := map[string]any{}
	for field, tag := range security.ValidationFieldErrors(err) {
		details[field] = tag
	}
	e := validationError("PEOPLE_INVALID_INPUT", "invalid input", details)
	e.Cause = err
	return e
}

// KindOf returns the kind of the first ServiceError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr.Kind, true
	}
	return "", false
}

func IsNotFound(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindNotFound
}

func IsValidation(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindValidation
}

func IsAuthorization(err error) bool {
	kind, ok := KindOf(err)
	return ok && kind == KindAuthorization
}

func mapPgErrorToServiceError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return newServiceError(KindNotFound, http.StatusNotFound, "PEOPLE_NOT_FOUND", "not found", err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case "23505": // unique_violation
		switch pgErr.ConstraintName {
		case "employee_profiles_org_id_employee_number_key":
			return newServiceError(KindConflict, http.StatusConflict, "PEOPLE_EMPLOYEE_NUMBER_CONFLICT", "employee number already exists", err)
		case "org_memberships_pkey":
			return newServiceError(KindConflict, http.StatusConflict, "PEOPLE_MEMBERSHIP_CONFLICT", "membership already exists", err)
		default:
			return newServiceError(KindConflict, http.StatusConflict, "PEOPLE_CONFLICT", "unique constraint violated", err)
		}
	case "23503": // foreign_key_violation
		return newServiceError(KindValidation, http.StatusUnprocessableEntity, "PEOPLE_REFERENCE_NOT_FOUND", "referenced record not found", err)
	case "23514": // check_violation
		return newServiceError(KindValidation, http.StatusUnprocessableEntity, "PEOPLE_INVALID_BODY", "check constraint violated", err)
	default:
		return err
	}
}
