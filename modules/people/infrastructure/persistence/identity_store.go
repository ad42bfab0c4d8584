package persistence

import (
	"context"

	gerrors "github.com/go-faster/errors"
)

const (
	upsertUser = `INSERT INTO users (id, email, display_name) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, display_name = EXCLUDED.display_name, updated_at = now()`

	syncSeats = `UPDATE organizations SET seat_count = (
			SELECT count(*) FROM org_memberships WHERE org_id = $1 AND status = 'ACTIVE'
		) WHERE id = $1`
)

// UserStore mirrors identities from the authentication provider.
type UserStore struct{}

func NewUserStore() *UserStore {
	return &UserStore{}
}

func (s *UserStore) UpsertUser(ctx context.Context, userID, email, displayName string) error {
	tx, err := querier(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, upsertUser, userID, email, displayName); err != nil {
		return gerrors.Wrap(err, "upsert user")
	}
	return nil
}

// SeatStore recounts active memberships into the organization's seat count.
type SeatStore struct{}

func NewSeatStore() *SeatStore {
	return &SeatStore{}
}

func (s *SeatStore) SyncSeats(ctx context.Context, orgID string) error {
	tx, err := querier(ctx)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, syncSeats, orgID); err != nil {
		return gerrors.Wrap(err, "sync seats")
	}
	return nil
}
