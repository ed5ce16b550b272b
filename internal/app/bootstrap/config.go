// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"

	"github.com/dalemusser/selecthub/internal/app/system/timeouts"
)

// appConfigKeys defines the configuration keys for SelectHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, session_name, etc.
//   - Environment variables: SELECTHUB_MONGO_URI, SELECTHUB_SESSION_NAME, etc.
//   - Command-line flags: --mongo_uri, --session_name, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "select_hub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "selecthub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	// Collaborative voting
	{Name: "consensus_threshold", Default: 70, Desc: "Consensus percentage that closes voting (1-100)"},
	{Name: "round_deadline", Default: "72h", Desc: "How long each voting round stays open (e.g., 72h, 48h)"},

	// Optimizer search parameters
	{Name: "optimizer_population", Default: 50, Desc: "Candidate teams per optimizer generation"},
	{Name: "optimizer_generations", Default: 100, Desc: "Optimizer generations per run"},
	{Name: "optimizer_mutation_pct", Default: 10, Desc: "Percent chance of mutating an optimizer offspring (0-100)"},
	{Name: "optimizer_elite_pct", Default: 20, Desc: "Percent of each generation carried over unchanged (0-100)"},

	// Emergency override
	{Name: "emergency_report_window", Default: "48h", Desc: "Deadline for the mandatory after-action report"},
	{Name: "emergency_escalation_delay", Default: "30m", Desc: "Unstarted-response window before auto-escalation"},

	// API rate limiting
	{Name: "rate_limit_requests", Default: 120, Desc: "Requests allowed per window per client IP"},
	{Name: "rate_limit_window", Default: "1m", Desc: "Rate limit window duration"},

	// Handler operation deadlines
	{Name: "timeout_ping", Default: "2s", Desc: "Deadline for health-check pings"},
	{Name: "timeout_short", Default: "5s", Desc: "Deadline for single-document reads"},
	{Name: "timeout_medium", Default: "10s", Desc: "Deadline for list queries and moderate writes"},
	{Name: "timeout_long", Default: "30s", Desc: "Deadline for tier executions (consensus, optimizer, overrides)"},
	{Name: "timeout_batch", Default: "60s", Desc: "Deadline for startup recovery sweeps"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
// CoreConfig comes from the shared WAFFLE layer; AppConfig is specific
// to this app and can be extended as the app grows.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, SELECTHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "SELECTHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),
		SessionKey:       appValues.String("session_key"),
		SessionName:      appValues.String("session_name"),
		SessionDomain:    appValues.String("session_domain"),

		// Collaborative voting
		ConsensusThreshold: float64(appValues.Int("consensus_threshold")),
		RoundDeadline:      appValues.Duration("round_deadline", 72*time.Hour),

		// Optimizer
		PopulationSize: appValues.Int("optimizer_population"),
		Generations:    appValues.Int("optimizer_generations"),
		MutationRate:   float64(appValues.Int("optimizer_mutation_pct")) / 100,
		EliteFraction:  float64(appValues.Int("optimizer_elite_pct")) / 100,

		// Emergency override
		EmergencyReportWindow:    appValues.Duration("emergency_report_window", 48*time.Hour),
		EmergencyEscalationDelay: appValues.Duration("emergency_escalation_delay", 30*time.Minute),

		// Rate limiting
		RateLimitRequests: appValues.Int("rate_limit_requests"),
		RateLimitWindow:   appValues.Duration("rate_limit_window", time.Minute),

		// Operation deadlines
		OpTimeouts: timeouts.Config{
			Ping:   appValues.Duration("timeout_ping", timeouts.DefaultPing),
			Short:  appValues.Duration("timeout_short", timeouts.DefaultShort),
			Medium: appValues.Duration("timeout_medium", timeouts.DefaultMedium),
			Long:   appValues.Duration("timeout_long", timeouts.DefaultLong),
			Batch:  appValues.Duration("timeout_batch", timeouts.DefaultBatch),
		},
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// This is the right place to enforce required fields or invariants that
// involve both the core and app configs.
//
// SelectHub validates the MongoDB URI format and the tuning ranges that
// would otherwise fail quietly at runtime.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if appCfg.ConsensusThreshold <= 0 || appCfg.ConsensusThreshold > 100 {
		return fmt.Errorf("consensus_threshold must be in (0,100], got %v", appCfg.ConsensusThreshold)
	}
	if appCfg.MutationRate < 0 || appCfg.MutationRate > 1 {
		return fmt.Errorf("optimizer_mutation_pct must be in [0,100], got %v", appCfg.MutationRate*100)
	}
	if appCfg.EliteFraction < 0 || appCfg.EliteFraction > 1 {
		return fmt.Errorf("optimizer_elite_pct must be in [0,100], got %v", appCfg.EliteFraction*100)
	}

	return nil
}
