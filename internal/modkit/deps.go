package modkit

import (
	"gscchat/internal/modkit/repokit"
	"gscchat/internal/platform/config"
	"gscchat/internal/platform/logger"
)

// Deps are handed to every module constructor. PG and CH are nil when their DSN is unset
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.Backend
	CH  repokit.Backend
}
