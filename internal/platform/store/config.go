package store

import (
	"time"

	"gscchat/internal/platform/config"
)

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG PGConfig
	CH CHConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int
	// StatementTimeout is applied per session, zero keeps the server default
	StatementTimeout time.Duration

	ConnectRetries int           // default 20
	PingTimeout    time.Duration // default 3s
}

// CHConfig configures clickhouse connectivity and tracing
type CHConfig struct {
	Enabled     bool
	URL         string
	LogSQL      bool
	SlowQueryMs int
	// MaxExecution maps to the max_execution_time setting
	MaxExecution time.Duration
	// Role is reported in client info, e.g. "api" or "cli"
	Role string

	ConnectRetries int
	PingTimeout    time.Duration
}

// FromConfig reads SERVICE_PGSQL_* and SERVICE_CLICKHOUSE_*. A backend is enabled
// only when its DBURL is set
func FromConfig(c config.Conf, app, role string) Config {
	pg := c.Prefix("SERVICE_PGSQL_")
	ch := c.Prefix("SERVICE_CLICKHOUSE_")
	out := Config{
		AppName: app,
		PG: PGConfig{
			URL:              pg.MayString("DBURL", ""),
			MaxConns:         int32(pg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs:      pg.MayInt("SLOW_MS", 500),
			LogSQL:           pg.MayBool("LOG_SQL", false),
			StatementTimeout: pg.MayDuration("STATEMENT_TIMEOUT", 0),
			ConnectRetries:   pg.MayInt("CONNECT_RETRIES", 0),
		},
		CH: CHConfig{
			URL:            ch.MayString("DBURL", ""),
			SlowQueryMs:    ch.MayInt("SLOW_MS", 500),
			LogSQL:         ch.MayBool("LOG_SQL", false),
			MaxExecution:   ch.MayDuration("MAX_EXECUTION", 0),
			Role:           role,
			ConnectRetries: ch.MayInt("CONNECT_RETRIES", 0),
		},
	}
	out.PG.Enabled = out.PG.URL != ""
	out.CH.Enabled = out.CH.URL != ""
	return out
}

// Only keeps the backend of kind k enabled
func (c Config) Only(k Kind) Config {
	if k != KindPostgres {
		c.PG.Enabled = false
	}
	if k != KindClickhouse {
		c.CH.Enabled = false
	}
	return c
}
