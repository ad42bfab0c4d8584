// Package cache tracks org-scoped read scopes so that mutations can make every
// dependent cached read stale at once.
package cache

import (
	"context"
	"strings"
	"time"
)

// Scope names one family of cached reads, e.g. "hr:people:profiles".
type Scope string

// Key identifies a scope within one org, classification and residency zone.
type Key struct {
	OrgID          string
	Classification string
	Residency      string
	Scope          Scope
}

// Tag renders the key as the string used by stores.
func (k Key) Tag() string {
	parts := []string{
		"org",
		normalizePart(k.OrgID),
		normalizePart(k.Classification),
		normalizePart(k.Residency),
		normalizePart(string(k.Scope)),
	}
	return strings.Join(parts, ":")
}

func (k Key) valid() bool {
	return strings.TrimSpace(k.OrgID) != "" && strings.TrimSpace(string(k.Scope)) != ""
}

// Entry names one cached value. Name is a fixed family of values and labels
// lookup metrics; ID distinguishes instances within the family.
type Entry struct {
	Name string
	ID   string
}

func (e Entry) key() string {
	if e.ID == "" {
		return e.Name
	}
	return e.Name + ":" + e.ID
}

func normalizePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "_"
	}
	return s
}

// Store persists tag generations and cached entries.
type Store interface {
	// Generation returns the current generation of tag, creating it at zero.
	Generation(ctx context.Context, tag string) (int64, error)
	// Bump advances the generation of tag, orphaning entries built on older ones.
	Bump(ctx context.Context, tag string) (int64, error)
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type skipInvalidationKey struct{}

// WithSkipInvalidation suppresses invalidations issued with the returned
// context. Used by callers that invalidate once at the end of a batch.
func WithSkipInvalidation(ctx context.Context) context.Context {
	return context.WithValue(ctx, skipInvalidationKey{}, true)
}

func shouldSkipInvalidation(ctx context.Context) bool {
	skip, _ := ctx.Value(skipInvalidationKey{}).(bool)
	return skip
}
