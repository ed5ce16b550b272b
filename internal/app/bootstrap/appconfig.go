// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"time"

	"github.com/dalemusser/selecthub/internal/app/system/timeouts"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//   - Database connection timeouts
//
// AppConfig is where everything specific to SelectHub lives: the MongoDB
// connection, session cookies, the voting and escalation windows, and the
// optimizer's search parameters.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64 // Max connection pool size
	MongoMinPoolSize uint64 // Min connection pool size

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionName   string // Cookie name for sessions (default: selecthub-session)
	SessionDomain string // Cookie domain (blank means current host)

	// Collaborative voting configuration
	ConsensusThreshold float64       // Consensus percentage that closes voting (default 70)
	RoundDeadline      time.Duration // How long each voting round stays open

	// Optimizer search parameters
	PopulationSize int     // Candidate teams per generation
	Generations    int     // Generations per run
	MutationRate   float64 // Probability of mutating an offspring
	EliteFraction  float64 // Share of each generation carried over unchanged

	// Emergency override configuration
	EmergencyReportWindow    time.Duration // Deadline for the mandatory after-action report
	EmergencyEscalationDelay time.Duration // Unstarted-response window before auto-escalation

	// API rate limiting
	RateLimitRequests int           // Requests allowed per window per client IP
	RateLimitWindow   time.Duration // Rate limit window duration

	// Handler operation deadlines (zero keeps the package default)
	OpTimeouts timeouts.Config
}
