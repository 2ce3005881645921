package store

import (
	"time"

	"localpulse/internal/platform/config"
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

	// Guard/boot knobs:
	ConnectRetries int           // default 20
	PingTimeout    time.Duration // default 3s
}

// CHConfig configures the optional clickhouse event sink
type CHConfig struct {
	Enabled bool
	URL     string
	Role    string
}

// FromEnv reads backend config from SERVICE_PGSQL_* and SERVICE_CLICKHOUSE_* env
// role tags the clickhouse client info, e.g. "api" or "pipeline"
func FromEnv(cfg config.Conf, role string) Config {
	pg := cfg.Prefix("SERVICE_PGSQL_")
	ch := cfg.Prefix("SERVICE_CLICKHOUSE_")
	return Config{
		AppName: "localpulse",
		PG: PGConfig{
			Enabled:     true,
			URL:         pg.MustString("URL"),
			MaxConns:    int32(pg.MayInt("MAX_CONNS", 8)),
			LogSQL:      pg.MayBool("LOG_SQL", false),
			SlowQueryMs: pg.MayInt("SLOW_MS", 250),
		},
		CH: CHConfig{
			Enabled: ch.MayBool("ENABLED", false),
			URL:     ch.MayString("URL", ""),
			Role:    role,
		},
	}
}
