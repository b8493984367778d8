package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/haptics/internal/config"
	"github.com/zeusync/haptics/internal/core/observability/log"
	"github.com/zeusync/haptics/internal/session"
)

// SessionSet provides a session from a loaded configuration.
var SessionSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	session.New,
)

// ProvideLogger builds the process logger from the log section.
func ProvideLogger(cfg *config.Config) (*log.Logger, func()) {
	logger := log.NewWithOptions(cfg.Log.LogLevel(), log.Options{
		Console: cfg.Log.Console,
		Output:  cfg.Log.Output,
	})
	return logger, func() { _ = logger.Sync() }
}
