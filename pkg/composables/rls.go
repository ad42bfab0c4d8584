package composables

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
)

var rlsEnforced atomic.Bool

// SetRLSEnforced toggles setting app.current_org on every tenant transaction.
func SetRLSEnforced(enabled bool) {
	rlsEnforced.Store(enabled)
}

func ApplyOrgRLS(ctx context.Context, tx pgx.Tx) error {
	if !rlsEnforced.Load() {
		return nil
	}
	orgID, err := UseOrgID(ctx)
	if err != nil {
		return fmt.Errorf("rls requires org in context: %w", err)
	}
	_, err = tx.Exec(ctx, "SELECT set_config('app.current_org', $1, true)", orgID)
	if err != nil {
		return fmt.Errorf("failed to set rls org context: %w", err)
	}
	return nil
}

func RLSEnforced() bool {
	return rlsEnforced.Load()
}
