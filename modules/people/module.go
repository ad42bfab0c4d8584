package people

import (
	"context"
	"embed"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	peopleamqp "github.com/iota-uz/hr-people/modules/people/infrastructure/amqp"
	"github.com/iota-uz/hr-people/modules/people/infrastructure/persistence"
	"github.com/iota-uz/hr-people/modules/people/services"
	"github.com/iota-uz/hr-people/pkg/authz"
	"github.com/iota-uz/hr-people/pkg/cache"
	"github.com/iota-uz/hr-people/pkg/composables"
	"github.com/iota-uz/hr-people/pkg/configuration"
	"github.com/iota-uz/hr-people/pkg/eventbus"
	"github.com/iota-uz/hr-people/pkg/outbox"
)

// MigrationFiles holds the goose migrations under MigrationDir.
var MigrationFiles embed.FS = persistence.Schema

const MigrationDir = persistence.SchemaDir

type Options struct {
	Config *configuration.Configuration
	Logger *logrus.Logger
	// Authorizer defaults to the casbin service built from Config.Authz.
	Authorizer services.Authorizer
	// Cache defaults to a coordinator over the configured backend.
	Cache services.CacheCoordinator
	// Broker defaults to an AMQP publisher when Config.Audit.AMQPURL is set.
	// With the outbox enabled it is fed by NewOutboxRelay instead of a sink.
	Broker services.AuditBroker
	Now    services.Clock
}

// Module owns the people services and the resources they were built on.
type Module struct {
	People      *services.PeopleService
	Invitations *services.InvitationSaga
	Issuer      *services.RepositoryInvitationIssuer
	Automation  *services.AutomationPipeline
	Audit       *services.AuditEmitter

	broker      services.AuditBroker
	outboxTable pgx.Identifier
	logger      *logrus.Logger
	closers     []func() error
}

func NewModule(opts Options) (*Module, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, errors.New("people: configuration is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = cfg.Logger()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	automationPolicy, err := services.ParseAutomationFailurePolicy(cfg.People.AutomationFailurePolicy)
	if err != nil {
		return nil, err
	}
	compensationPolicy, err := services.ParseCompensationPolicy(cfg.People.CompensationPolicy)
	if err != nil {
		return nil, err
	}
	composables.SetRLSEnforced(strings.EqualFold(cfg.RLSEnforce, "enforce"))

	m := &Module{logger: logger}

	authorizer := opts.Authorizer
	if authorizer == nil {
		svc, err := authz.NewService(authz.ConfigFrom(cfg))
		if err != nil {
			return nil, errors.Wrap(err, "people: authz")
		}
		authorizer = svc
	}
	guard := services.NewCasbinAccessGuard(authorizer)

	coordinator := opts.Cache
	if coordinator == nil {
		coordinator = m.newCacheCoordinator(cfg, logger)
	}

	audit, err := m.newAuditEmitter(cfg, logger, now, opts.Broker)
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	m.Audit = audit

	profiles := persistence.NewProfileRepository()
	contracts := persistence.NewContractRepository()
	invitations := persistence.NewInvitationRepository()
	organizations := persistence.NewOrganizationRepository()
	checklistTemplates := persistence.NewChecklistTemplateRepository()
	checklistInstances := persistence.NewChecklistInstanceRepository()
	workflows := persistence.NewWorkflowRepository()
	sequences := persistence.NewEmailSequenceRepository()
	documents := persistence.NewDocumentRepository()
	metrics := persistence.NewMetricRepository()
	compliance := persistence.NewComplianceStore()
	tx := persistence.NewTxRunner()

	m.Automation = services.NewAutomationPipeline(services.AutomationDependencies{
		Profiles:            profiles,
		Mentors:             persistence.NewMentorAssignmentRepository(),
		WorkflowTemplates:   workflows,
		WorkflowRuns:        workflows,
		EmailTemplates:      sequences,
		EmailEnrollments:    sequences,
		EmailDeliveries:     sequences,
		ProvisioningTasks:   persistence.NewProvisioningTaskRepository(),
		DocumentTemplates:   documents,
		DocumentAssignments: documents,
		MetricDefinitions:   metrics,
		MetricResults:       metrics,
		Guard:               guard,
		FailurePolicy:       automationPolicy,
		Now:                 now,
	})

	m.Issuer = services.NewInvitationIssuer(invitations, organizations, services.DefaultInvitationTTL, now)

	m.People = services.NewPeopleService(services.PeopleDependencies{
		Profiles:                      profiles,
		Contracts:                     contracts,
		Leave:                         persistence.NewLeaveStore(),
		Absences:                      persistence.NewAbsenceStore(),
		ComplianceStatus:              compliance,
		Compliance:                    compliance,
		ChecklistTemplates:            checklistTemplates,
		ChecklistInstances:            checklistInstances,
		Invitations:                   m.Issuer,
		Transactions:                  tx,
		Guard:                         guard,
		Cache:                         coordinator,
		Audit:                         audit,
		Now:                           now,
		EligibilityInvalidationScopes: services.ScopesFromStrings(cfg.People.EligibilityInvalidationScopes),
	})

	m.Invitations = services.NewInvitationSaga(services.InvitationSagaDependencies{
		Invitations:        invitations,
		Organizations:      organizations,
		Profiles:           profiles,
		Contracts:          contracts,
		Memberships:        persistence.NewMembershipRepository(profiles),
		Billing:            persistence.NewSeatStore(),
		Users:              userSyncer{store: persistence.NewUserStore()},
		ChecklistTemplates: checklistTemplates,
		ChecklistInstances: checklistInstances,
		Transactions:       tx,
		Guard:              guard,
		Cache:              coordinator,
		Audit:              audit,
		Automation:         m.Automation,
		CompensationPolicy: compensationPolicy,
		Now:                now,
		NewCorrelationID:   uuid.NewString,
	})
	return m, nil
}

func (m *Module) Name() string {
	return "people"
}

// Close releases the broker connection and detaches audit sinks.
func (m *Module) Close() error {
	var first error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	m.closers = nil
	return first
}

func (m *Module) newCacheCoordinator(cfg *configuration.Configuration, logger *logrus.Logger) *cache.Coordinator {
	var store cache.Store
	if cfg.Cache.Backend == "redis" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisURL})
		m.closers = append(m.closers, client.Close)
		store = cache.NewRedisStore(client, cfg.Cache.Prefix)
	} else {
		store = cache.NewMemoryStore()
	}
	return cache.NewCoordinator(store, cfg.Cache.TTL, logger)
}

func (m *Module) newAuditEmitter(cfg *configuration.Configuration, logger *logrus.Logger, now services.Clock, broker services.AuditBroker) (*services.AuditEmitter, error) {
	emitter := services.NewAuditEmitter(eventbus.NewEventPublisher(logger), logger, services.WithAuditClock(now))
	m.addSink(emitter, services.NewLogAuditSink(logger))

	if cfg.Audit.OutboxEnabled {
		table := outbox.ParseTable(cfg.Audit.OutboxTable)
		if len(table) == 0 {
			return nil, errors.New("people: AUDIT_OUTBOX_TABLE is empty")
		}
		m.outboxTable = table
		m.addSink(emitter, services.NewOutboxAuditSink(outbox.NewPublisher(), table))
	}

	if broker == nil && cfg.Audit.AMQPURL != "" {
		publisher, err := peopleamqp.Dial(cfg.Audit.AMQPURL, cfg.Audit.Exchange, cfg.Audit.RoutingKey)
		if err != nil {
			return nil, errors.Wrap(err, "people: audit broker")
		}
		m.closers = append(m.closers, publisher.Close)
		broker = publisher
	}
	m.broker = broker
	if broker != nil && len(m.outboxTable) == 0 {
		m.addSink(emitter, services.NewBrokerAuditSink(broker))
	}
	return emitter, nil
}

// NewOutboxRelay returns a relay that forwards audit rows from the outbox
// table to the broker. Both must be configured.
func (m *Module) NewOutboxRelay(db outbox.DB, opts outbox.RelayOptions) (*outbox.Relay, error) {
	if len(m.outboxTable) == 0 {
		return nil, errors.New("people: audit outbox is disabled")
	}
	if m.broker == nil {
		return nil, errors.New("people: no audit broker configured (set AUDIT_AMQP_URL)")
	}
	if opts.Logger == nil {
		opts.Logger = m.logger.WithField("component", "people.outbox_relay")
	}
	return outbox.NewRelay(db, m.outboxTable, services.NewBrokerDispatcher(m.broker), opts)
}

func (m *Module) addSink(emitter *services.AuditEmitter, sink func(ctx context.Context, event services.AuditEvent) error) {
	unsubscribe := emitter.AddSink(sink)
	m.closers = append(m.closers, func() error {
		unsubscribe()
		return nil
	})
}

type userSyncer struct {
	store *persistence.UserStore
}

func (u userSyncer) UpsertUser(ctx context.Context, user services.SyncedUser) error {
	return u.store.UpsertUser(ctx, user.UserID, user.Email, user.DisplayName)
}
