package authz

import (
	"strings"
)

const (
	globalDomain          = "global"
	subjectOrgPrefix      = "org"
	subjectUserPrefix     = "user"
	rolePrefix            = "role"
	objectSeparator       = "."
	subjectSeparator      = ":"
	defaultActionWildcard = "*"
)

// Attributes contain optional ABAC style attributes supplied with a request.
type Attributes map[string]any

// Request encapsulates all parameters required to evaluate a Casbin rule.
type Request struct {
	Subject    string
	Domain     string
	Object     string
	Action     string
	Attributes Attributes
}

// RequestOption mutates a Request.
type RequestOption func(*Request)

// WithAttributes merges attributes into the enforcement request.
func WithAttributes(attrs Attributes) RequestOption {
	return func(r *Request) {
		for k, v := range attrs {
			r.Attributes[k] = v
		}
	}
}

// NewRequest constructs a Request with sane defaults.
func NewRequest(subject, domain, object, action string, opts ...RequestOption) Request {
	req := Request{
		Subject:    subject,
		Domain:     domain,
		Object:     object,
		Action:     action,
		Attributes: Attributes{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&req)
		}
	}
	return req
}

// SubjectForUser builds a subject identifier in the form org:{orgID}:user:{userID}.
func SubjectForUser(orgID, userID string) string {
	userPart := strings.TrimSpace(userID)
	if userPart == "" {
		userPart = "anonymous"
	}
	return strings.Join([]string{subjectOrgPrefix, DomainFromOrg(orgID), subjectUserPrefix, userPart}, subjectSeparator)
}

// SubjectForRole returns the canonical identifier for a role-based subject.
func SubjectForRole(roleKey string) string {
	roleKey = strings.TrimSpace(roleKey)
	if roleKey == "" {
		roleKey = "unnamed"
	}
	if strings.HasPrefix(roleKey, rolePrefix+subjectSeparator) {
		return roleKey
	}
	return rolePrefix + subjectSeparator + strings.ToLower(roleKey)
}

// DomainFromOrg converts an org id into a casbin domain string.
func DomainFromOrg(orgID string) string {
	orgID = strings.ToLower(strings.TrimSpace(orgID))
	if orgID == "" {
		return globalDomain
	}
	return orgID
}

// ObjectName returns the canonical module.resource string, lowercased.
func ObjectName(module, resource string) string {
	module = strings.ToLower(strings.TrimSpace(module))
	resource = strings.ToLower(strings.TrimSpace(resource))
	if module == "" {
		module = "global"
	}
	if resource == "" {
		resource = "resource"
	}
	return module + objectSeparator + resource
}

// NormalizeAction returns a normalized action string.
func NormalizeAction(action string) string {
	action = strings.ToLower(strings.TrimSpace(action))
	if action == "" {
		return defaultActionWildcard
	}
	return action
}
