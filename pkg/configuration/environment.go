package configuration

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/hr-people/pkg/logging"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

// LoadEnv loads the env files that exist, looking in the working directory
// first and then walking up to the nearest go.mod.
func LoadEnv(envFiles []string) (int, error) {
	existing := make([]string, 0, len(envFiles))
	for _, file := range envFiles {
		if path, ok := findEnvFile(file); ok {
			existing = append(existing, path)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

func findEnvFile(name string) (string, bool) {
	if filepath.IsAbs(name) {
		return name, fileExists(name)
	}
	if fileExists(name) {
		return name, true
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for {
		if fileExists(filepath.Join(dir, "go.mod")) {
			candidate := filepath.Join(dir, name)
			return candidate, fileExists(candidate)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

type DatabaseOptions struct {
	Opts     string `env:"-"`
	Name     string `env:"DB_NAME" envDefault:"hr_people"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     string `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
}

func (d *DatabaseOptions) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s password=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Name, d.Password,
	)
}

type OpenTelemetryOptions struct {
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"false"`
	TempoURL    string `env:"OTEL_TEMPO_URL" envDefault:"localhost:4318"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"hr-people"`
}

type AuthzOptions struct {
	ModelPath      string `env:"AUTHZ_MODEL_PATH" envDefault:"config/access/model.conf"`
	PolicyPath     string `env:"AUTHZ_POLICY_PATH" envDefault:"config/access/policy.csv"`
	FlagConfigPath string `env:"AUTHZ_FLAG_CONFIG" envDefault:"config/access/authz_flags.yaml"`
	Mode           string `env:"AUTHZ_MODE" envDefault:"shadow"`
}

type CacheOptions struct {
	// memory or redis
	Backend  string        `env:"CACHE_BACKEND" envDefault:"memory"`
	RedisURL string        `env:"CACHE_REDIS_URL" envDefault:"localhost:6379"`
	Prefix   string        `env:"CACHE_PREFIX" envDefault:"hr:cache"`
	TTL      time.Duration `env:"CACHE_TTL" envDefault:"10m"`
}

func (c *CacheOptions) Validate() error {
	switch c.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache Backend must be 'memory' or 'redis', got '%s'", c.Backend)
	}
	if c.Backend == "redis" && c.RedisURL == "" {
		return fmt.Errorf("cache RedisURL is required when Backend is 'redis'")
	}
	if c.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive, got %s", c.TTL)
	}
	return nil
}

type AuditOptions struct {
	OutboxEnabled bool   `env:"AUDIT_OUTBOX_ENABLED" envDefault:"true"`
	OutboxTable   string `env:"AUDIT_OUTBOX_TABLE" envDefault:"public.people_outbox"`
	AMQPURL       string `env:"AUDIT_AMQP_URL"`
	Exchange      string `env:"AUDIT_AMQP_EXCHANGE" envDefault:"hr.audit"`
	RoutingKey    string `env:"AUDIT_AMQP_ROUTING_KEY" envDefault:"people.audit"`
}

type PeopleOptions struct {
	// fatal or isolated
	AutomationFailurePolicy string `env:"PEOPLE_AUTOMATION_FAILURE_POLICY" envDefault:"fatal"`
	// none or best_effort
	CompensationPolicy string `env:"PEOPLE_COMPENSATION_POLICY" envDefault:"none"`
	// Cache scopes invalidated after an eligibility update.
	EligibilityInvalidationScopes []string `env:"PEOPLE_ELIGIBILITY_INVALIDATION_SCOPES" envSeparator:"," envDefault:"hr:leave:balances,hr:leave:requests"`
}

func (p *PeopleOptions) Validate() error {
	switch p.AutomationFailurePolicy {
	case "fatal", "isolated":
	default:
		return fmt.Errorf("invalid PEOPLE_AUTOMATION_FAILURE_POLICY=%q (expected fatal|isolated)", p.AutomationFailurePolicy)
	}
	switch p.CompensationPolicy {
	case "none", "best_effort":
	default:
		return fmt.Errorf("invalid PEOPLE_COMPENSATION_POLICY=%q (expected none|best_effort)", p.CompensationPolicy)
	}
	return nil
}

type Configuration struct {
	Database      DatabaseOptions
	OpenTelemetry OpenTelemetryOptions
	Authz         AuthzOptions
	Cache         CacheOptions
	Audit         AuditOptions
	People        PeopleOptions

	MigrationsDir    string `env:"MIGRATIONS_DIR" envDefault:"modules/people/infrastructure/persistence/schema"`
	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"error"`
	LogPath          string `env:"LOG_PATH"`
	// DEV: row level security mode (disabled/enforce).
	RLSEnforce string `env:"RLS_ENFORCE" envDefault:"disabled"`

	logFile *os.File
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}

func Use() *Configuration {
	return singleton()
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	return c.apply()
}

// apply parses the process environment into c and validates it.
func (c *Configuration) apply() error {
	if err := env.Parse(c); err != nil {
		return err
	}
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if err := c.Cache.Validate(); err != nil {
		return fmt.Errorf("cache configuration error: %w", err)
	}
	c.People.AutomationFailurePolicy = strings.ToLower(strings.TrimSpace(c.People.AutomationFailurePolicy))
	c.People.CompensationPolicy = strings.ToLower(strings.TrimSpace(c.People.CompensationPolicy))
	if err := c.People.Validate(); err != nil {
		return err
	}
	if err := c.validateRLS(); err != nil {
		return err
	}

	if c.LogPath != "" {
		f, logger, err := logging.FileLogger(c.LogrusLogLevel(), c.LogPath)
		if err != nil {
			return err
		}
		c.logFile = f
		c.logger = logger
	} else {
		c.logger = logging.ConsoleLogger(c.LogrusLogLevel())
	}

	c.Database.Opts = c.Database.ConnectionString()
	return nil
}

func (c *Configuration) validateRLS() error {
	mode := strings.ToLower(strings.TrimSpace(c.RLSEnforce))
	if mode == "" {
		mode = "disabled"
	}
	switch mode {
	case "disabled", "enforce":
	default:
		return fmt.Errorf("invalid RLS_ENFORCE=%q (expected disabled|enforce)", c.RLSEnforce)
	}

	if mode == "enforce" && strings.EqualFold(strings.TrimSpace(c.Database.User), "postgres") {
		return fmt.Errorf("RLS_ENFORCE=enforce requires a non-superuser DB_USER (postgres will bypass RLS)")
	}

	c.RLSEnforce = mode
	return nil
}

// Unload handles a graceful shutdown.
func (c *Configuration) Unload() {
	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Printf("Failed to close log file: %v", err)
		}
		c.logFile = nil
	}
}
