package services

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/hr-people/modules/people/domain/security"
	"github.com/iota-uz/hr-people/pkg/cache"
)

const (
	ScopeProfiles      cache.Scope = "hr:people:profiles"
	ScopeContracts     cache.Scope = "hr:people:contracts"
	ScopeLeaveRequests cache.Scope = "hr:leave:requests"
	ScopeLeaveBalances cache.Scope = "hr:leave:balances"
	ScopeAbsences      cache.Scope = "hr:absences"
	ScopeIdentity      cache.Scope = "hr:identity"
	ScopeCompliance    cache.Scope = "hr:compliance:status"
)

// summaryCacheEntry is the cache family for employee summaries.
const summaryCacheEntry = "employee_summary"

// DefaultEligibilityScopes are invalidated after an eligibility update unless
// configured otherwise.
var DefaultEligibilityScopes = []cache.Scope{ScopeLeaveBalances, ScopeLeaveRequests}

func cacheKeys(auth security.Authorization, scopes ...cache.Scope) []cache.Key {
	keys := make([]cache.Key, 0, len(scopes))
	for _, scope := range scopes {
		keys = append(keys, cache.Key{
			OrgID:          auth.OrgID,
			Classification: string(auth.DataClassification),
			Residency:      string(auth.DataResidency),
			Scope:          scope,
		})
	}
	return keys
}

// registerCacheScopes records the scopes a read depended on. Failures are
// logged; a read never fails because of cache bookkeeping.
func registerCacheScopes(ctx context.Context, coordinator CacheCoordinator, auth security.Authorization, scopes ...cache.Scope) {
	if coordinator == nil || len(scopes) == 0 {
		return
	}
	if err := coordinator.Register(ctx, cacheKeys(auth, scopes...)...); err != nil {
		logWithFields(ctx, logrus.WarnLevel, "people: cache scope registration failed",
			mergeFields(operationFields(auth, "cache.register"), logrus.Fields{"error": err.Error()}))
	}
}

// invalidateAfterMutation bumps every scope in one call. It runs once per
// operation, after the authoritative mutation succeeded.
func invalidateAfterMutation(ctx context.Context, coordinator CacheCoordinator, auth security.Authorization, scopes ...cache.Scope) error {
	if coordinator == nil || len(scopes) == 0 {
		return nil
	}
	if err := coordinator.Invalidate(ctx, cacheKeys(auth, scopes...)...); err != nil {
		return errors.Wrap(err, "invalidate cache scopes")
	}
	for _, scope := range scopes {
		recordCacheInvalidation(string(scope))
	}
	return nil
}

// ScopesFromStrings converts configured scope names, skipping blanks.
func ScopesFromStrings(values []string) []cache.Scope {
	out := make([]cache.Scope, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		out = append(out, cache.Scope(v))
	}
	return out
}
