// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	"github.com/dalemusser/selecthub/internal/app/system/timeouts"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
//
// SelectHub applies the configured operation deadlines and starts the
// escalation scheduler here so that timers re-armed during BuildHandler
// have a running scheduler to land on.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(appCfg.OpTimeouts)
	deps.Scheduler.Start()
	logger.Info("escalation scheduler started")
	return nil
}
