package people

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/iota-uz/hr-people/modules/people/services"
	"github.com/iota-uz/hr-people/pkg/authz"
	"github.com/iota-uz/hr-people/pkg/configuration"
	"github.com/iota-uz/hr-people/pkg/outbox"
)

type stubBroker struct{ published []string }

func (b *stubBroker) PublishAudit(_ context.Context, topic, _ string, _ []byte) error {
	b.published = append(b.published, topic)
	return nil
}

func testConfig() *configuration.Configuration {
	return &configuration.Configuration{
		Cache: configuration.CacheOptions{Backend: "memory", TTL: time.Minute, Prefix: "hr:cache"},
		People: configuration.PeopleOptions{
			AutomationFailurePolicy:       "isolated",
			CompensationPolicy:            "best_effort",
			EligibilityInvalidationScopes: []string{"hr:leave:balances"},
		},
		RLSEnforce: "disabled",
	}
}

func testAuthorizer(t *testing.T) *authz.Service {
	t.Helper()
	svc, err := authz.NewService(authz.Config{
		ModelPath:    "../../config/access/model.conf",
		PolicyPath:   "../../config/access/policy.csv",
		FlagProvider: authz.NewStaticFlagProvider(authz.ModeEnforce),
	})
	require.NoError(t, err)
	return svc
}

func TestNewModule_WiresServices(t *testing.T) {
	broker := &stubBroker{}
	m, err := NewModule(Options{Config: testConfig(), Authorizer: testAuthorizer(t), Broker: broker})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	require.Equal(t, "people", m.Name())
	require.NotNil(t, m.People)
	require.NotNil(t, m.Invitations)
	require.NotNil(t, m.Issuer)
	require.NotNil(t, m.Automation)
	require.NotNil(t, m.Audit)

	require.NoError(t, m.Audit.RecordAuditEvent(context.Background(), services.AuditEvent{
		OrgID:     "11111111-1111-4111-8111-111111111111",
		EventType: "employee.onboarded",
		Action:    "create",
	}))
	require.Equal(t, []string{"people.audit.employee.onboarded"}, broker.published)
}

func TestNewModule_RejectsUnknownPolicies(t *testing.T) {
	cfg := testConfig()
	cfg.People.AutomationFailurePolicy = "sometimes"
	_, err := NewModule(Options{Config: cfg, Authorizer: testAuthorizer(t)})
	require.Error(t, err)

	cfg = testConfig()
	cfg.People.CompensationPolicy = "always"
	_, err = NewModule(Options{Config: cfg, Authorizer: testAuthorizer(t)})
	require.Error(t, err)

	_, err = NewModule(Options{})
	require.Error(t, err)
}

func TestNewModule_RequiresOutboxTable(t *testing.T) {
	cfg := testConfig()
	cfg.Audit.OutboxEnabled = true
	cfg.Audit.OutboxTable = " "
	_, err := NewModule(Options{Config: cfg, Authorizer: testAuthorizer(t)})
	require.Error(t, err)
}

func TestMigrationFilesAreExposed(t *testing.T) {
	entries, err := MigrationFiles.ReadDir(MigrationDir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
}

func TestNewModule_OutboxRelayForwardsToBroker(t *testing.T) {
	cfg := testConfig()
	_, err := mustModule(t, cfg, nil).NewOutboxRelay(nil, outbox.RelayOptions{})
	require.Error(t, err)

	cfg.Audit.OutboxEnabled = true
	cfg.Audit.OutboxTable = "public.people_outbox"
	_, err = mustModule(t, cfg, nil).NewOutboxRelay(nil, outbox.RelayOptions{})
	require.Error(t, err)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	broker := &stubBroker{}
	relay, err := mustModule(t, cfg, broker).NewOutboxRelay(mock, outbox.RelayOptions{})
	require.NoError(t, err)

	eventID := uuid.New()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`FROM "public"."people_outbox"`)).
		WithArgs(pgxmock.AnyArg(), 25, pgxmock.AnyArg(), 100).
		WillReturnRows(pgxmock.NewRows([]string{"sequence", "org_id", "topic", "payload", "event_id", "attempts"}).
			AddRow(int64(1), "org-1", "people.audit.employee.onboarded", []byte(`{}`), eventID, 0))
	mock.ExpectExec(regexp.QuoteMeta(`SET locked_at = $1`)).
		WithArgs(pgxmock.AnyArg(), []int64{1}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`SET published_at = now()`)).
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectCommit()

	n, err := relay.ProcessOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.Equal(t, []string{"people.audit.employee.onboarded"}, broker.published)
	require.NoError(t, mock.ExpectationsWereMet())
}

func mustModule(t *testing.T, cfg *configuration.Configuration, broker services.AuditBroker) *Module {
	t.Helper()
	m, err := NewModule(Options{Config: cfg, Authorizer: testAuthorizer(t), Broker: broker})
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}
