// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	healthfeature "github.com/dalemusser/selecthub/internal/app/features/health"
	selectionsfeature "github.com/dalemusser/selecthub/internal/app/features/selections"
	"github.com/dalemusser/selecthub/internal/app/selection/collaborative"
	"github.com/dalemusser/selecthub/internal/app/selection/emergency"
	"github.com/dalemusser/selecthub/internal/app/selection/optimize"
	"github.com/dalemusser/selecthub/internal/app/store/directory"
	"github.com/dalemusser/selecthub/internal/app/system/auth"
	"github.com/dalemusser/selecthub/internal/app/system/httpjson"
	"github.com/dalemusser/selecthub/internal/app/system/ratelimit"
	"github.com/dalemusser/selecthub/internal/app/system/timeouts"
)

// rearmLimit caps how many open selections get their timers re-armed on
// startup.
const rearmLimit = 1000

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. SelectHub wires the session middleware,
// mounts the health and selections routers, and re-arms the voting-round
// and emergency-escalation timers that were pending when the process last
// stopped.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Fetch fresh user data on each request so authority changes and
	// removed accounts take effect immediately.
	sessionMgr.SetUserFetcher(directory.NewFetcher(deps.MongoDatabase))

	selectionsHandler := selectionsfeature.NewHandler(deps.MongoDatabase, deps.Scheduler, logger, selectionsfeature.Config{
		Collaborative: collaborative.Config{
			ConsensusThreshold: appCfg.ConsensusThreshold,
			RoundDeadline:      appCfg.RoundDeadline,
		},
		Optimize: optimize.Config{
			PopulationSize: appCfg.PopulationSize,
			Generations:    appCfg.Generations,
			MutationRate:   appCfg.MutationRate,
			EliteFraction:  appCfg.EliteFraction,
		},
		Emergency: emergency.Config{
			ReportWindow:    appCfg.EmergencyReportWindow,
			EscalationDelay: appCfg.EmergencyEscalationDelay,
		},
	})

	// Re-arm timers that were pending when the process last stopped.
	// Failures are logged, not fatal: a stuck round is recoverable through
	// the API, a dead process is not.
	rearmCtx, cancel := context.WithTimeout(context.Background(), timeouts.Batch())
	defer cancel()
	if err := selectionsHandler.Collaborative.RearmDeadlines(rearmCtx, rearmLimit); err != nil {
		logger.Warn("re-arming round deadlines failed", zap.Error(err))
	}
	if err := selectionsHandler.Emergency.RearmEscalations(rearmCtx, rearmLimit); err != nil {
		logger.Warn("re-arming emergency escalations failed", zap.Error(err))
	}

	limiter := ratelimit.New(appCfg.RateLimitRequests, appCfg.RateLimitWindow)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// The selections API, rate limited per client IP
	r.Group(func(api chi.Router) {
		api.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if !limiter.Allow(ratelimit.ClientIP(r)) {
					httpjson.Error(w, http.StatusTooManyRequests, "rate limit exceeded")
					return
				}
				next.ServeHTTP(w, r)
			})
		})
		api.Mount("/api/selections", selectionsfeature.Routes(selectionsHandler, sessionMgr))
	})

	return r, nil
}
