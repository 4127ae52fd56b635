package modkit

import (
	"hansard/internal/modkit/repokit"
	"hansard/internal/platform/config"
	"hansard/internal/platform/logger"
)

// Deps is what every module constructor receives. PG is nil when no database is configured
// and modules decide what that means for them
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
}
