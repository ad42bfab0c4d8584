package invitation

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("invitation not found")
	// ErrNotPending is returned by MarkAccepted when the invitation left the
	// pending state concurrently.
	ErrNotPending = errors.New("invitation is no longer pending")
)

type Repository interface {
	GetByToken(ctx context.Context, token string) (*Invitation, error)
	Create(ctx context.Context, inv Invitation) (*Invitation, error)
	// MarkAccepted transitions a pending invitation to accepted.
	MarkAccepted(ctx context.Context, orgID, token, userID string, at time.Time) (*Invitation, error)
	// Reopen returns an accepted invitation to pending.
	Reopen(ctx context.Context, orgID, token string) error
}
