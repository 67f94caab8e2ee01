package module

import (
	"gscchat/internal/platform/config"
	"gscchat/internal/platform/store"
	"gscchat/internal/services/api/insights/repo"
)

// Settings holds the metrics source settings for the insights module
type Settings struct {
	Source         store.Kind
	Table          string
	ThresholdsFile string
}

// FromConfig reads settings from GSC_ prefixed keys
func FromConfig(cfg config.Conf) Settings {
	gc := cfg.Prefix("GSC_")
	kind, _ := store.ParseKind(gc.MayEnum("SOURCE_KIND", string(store.KindClickhouse),
		string(store.KindClickhouse), string(store.KindPostgres)))
	return Settings{
		Source:         kind,
		Table:          gc.MayString("SOURCE_TABLE", repo.DefaultTable),
		ThresholdsFile: gc.MayString("THRESHOLDS_FILE", ""),
	}
}
