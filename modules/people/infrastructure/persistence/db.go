package persistence

import (
	"context"
	"embed"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/iota-uz/hr-people/modules/people/domain/entities/automation"
	"github.com/iota-uz/hr-people/pkg/composables"
	"github.com/iota-uz/hr-people/pkg/constants"
	"github.com/iota-uz/hr-people/pkg/repo"
)

//go:embed schema/*.sql
var Schema embed.FS

// SchemaDir is the directory inside Schema holding the goose migrations.
const SchemaDir = "schema"

// querier returns the transaction bound to ctx, or the pool when RLS is off.
func querier(ctx context.Context) (repo.Tx, error) {
	if composables.RLSEnforced() && ctx.Value(constants.TxKey) == nil {
		return nil, errors.New("rls enforced: people queries require an explicit transaction")
	}
	return composables.UseTx(ctx)
}

// TxRunner opens one org-scoped transaction per call.
type TxRunner struct{}

func NewTxRunner() *TxRunner {
	return &TxRunner{}
}

func (TxRunner) RunInTx(ctx context.Context, orgID string, fn func(ctx context.Context) error) error {
	return composables.InTenantTx(composables.WithOrgID(ctx, orgID), fn)
}

func nullIfEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// decimalArg is bound as text and cast to numeric in SQL.
func decimalArg(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func decimalFrom(s *string) (*decimal.Decimal, error) {
	if s == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, errors.Wrapf(err, "parse numeric %q", *s)
	}
	return &d, nil
}

// tagArgs expands tags into the five trailing columns every artifact table has.
func tagArgs(t automation.Tags) []any {
	return []any{
		string(t.DataResidency),
		string(t.DataClassification),
		t.AuditSource,
		nullIfEmpty(t.CorrelationID),
		t.CreatedBy,
	}
}

// jsonArg binds an empty map as SQL NULL.
func jsonArg(m map[string]any) any {
	if len(m) == 0 {
		return nil
	}
	return m
}

const timeLayout = time.RFC3339Nano

func parseTimestamp(s string) (time.Time, bool) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
