// Package security holds the authorization context every people operation
// runs under.
package security

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

type DataResidency string

const (
	ResidencyUKOnly           DataResidency = "UK_ONLY"
	ResidencyUKAndEEA         DataResidency = "UK_AND_EEA"
	ResidencyGlobalRestricted DataResidency = "GLOBAL_RESTRICTED"
)

type DataClassification string

const (
	ClassificationOfficial          DataClassification = "OFFICIAL"
	ClassificationOfficialSensitive DataClassification = "OFFICIAL_SENSITIVE"
	ClassificationSecret            DataClassification = "SECRET"
	ClassificationTopSecret         DataClassification = "TOP_SECRET"
)

// TenantScope is the org-level tagging applied to every record an operation
// writes.
type TenantScope struct {
	OrgID              string             `validate:"required,uuid"`
	DataResidency      DataResidency      `validate:"required,oneof=UK_ONLY UK_AND_EEA GLOBAL_RESTRICTED"`
	DataClassification DataClassification `validate:"required,oneof=OFFICIAL OFFICIAL_SENSITIVE SECRET TOP_SECRET"`
	AuditSource        string             `validate:"required"`
	AuditBatchID       string             `validate:"omitempty"`
}

// Authorization is immutable for the duration of an operation and is passed
// by value into every downstream call, cache key and audit record.
type Authorization struct {
	OrgID              string              `validate:"required,uuid"`
	UserID             string              `validate:"required,uuid"`
	RoleKey            string              `validate:"required"`
	Permissions        map[string][]string `validate:"omitempty"`
	DataResidency      DataResidency       `validate:"required,oneof=UK_ONLY UK_AND_EEA GLOBAL_RESTRICTED"`
	DataClassification DataClassification  `validate:"required,oneof=OFFICIAL OFFICIAL_SENSITIVE SECRET TOP_SECRET"`
	AuditSource        string              `validate:"required"`
	CorrelationID      string              `validate:"omitempty,uuid"`
	TenantScope        TenantScope
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator instance.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks field formats and that the tenant scope matches the org.
func (a Authorization) Validate() error {
	if err := Validator().Struct(a); err != nil {
		return err
	}
	if !strings.EqualFold(a.TenantScope.OrgID, a.OrgID) {
		return &ScopeMismatchError{Field: "TenantScope.OrgID"}
	}
	return nil
}

// ScopeMismatchError reports a tenant scope that does not belong to the
// authorization it is attached to.
type ScopeMismatchError struct {
	Field string
}

func (e *ScopeMismatchError) Error() string {
	return e.Field + " does not match the authorization org"
}

// WithAuditSource returns a copy tagged with source. Permissions are shared.
func (a Authorization) WithAuditSource(source string) Authorization {
	a.AuditSource = source
	a.TenantScope.AuditSource = source
	return a
}

// HasPermission reports whether the permission map grants action on resource.
func (a Authorization) HasPermission(resource, action string) bool {
	for _, granted := range a.Permissions[resource] {
		if granted == action || granted == "*" {
			return true
		}
	}
	return false
}

// NewAuthorization builds an Authorization whose tenant scope mirrors its own
// tags.
func NewAuthorization(orgID, userID, roleKey string, residency DataResidency, classification DataClassification, auditSource, correlationID string) Authorization {
	return Authorization{
		OrgID:              orgID,
		UserID:             userID,
		RoleKey:            roleKey,
		Permissions:        map[string][]string{},
		DataResidency:      residency,
		DataClassification: classification,
		AuditSource:        auditSource,
		CorrelationID:      correlationID,
		TenantScope: TenantScope{
			OrgID:              orgID,
			DataResidency:      residency,
			DataClassification: classification,
			AuditSource:        auditSource,
		},
	}
}

// ValidationFieldErrors flattens validator errors into field => tag details.
func ValidationFieldErrors(err error) map[string]string {
	out := map[string]string{}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return out
	}
	for _, fe := range fieldErrs {
		out[fe.Namespace()] = fe.Tag()
	}
	return out
}
