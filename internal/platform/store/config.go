package store

import "time"

// Config is what Open needs; only postgres is a backend today
type Config struct {
	AppName string
	PG      PGConfig
}

// PGConfig configures postgres connectivity and query tracing
type PGConfig struct {
	Enabled     bool
	URL         string
	MaxConns    int32
	LogSQL      bool
	SlowQueryMs int

	ConnectRetries int           // pings before giving up, default 20
	PingTimeout    time.Duration // per ping, default 3s
}

func (c PGConfig) retries() int {
	if c.ConnectRetries > 0 {
		return c.ConnectRetries
	}
	return 20
}

func (c PGConfig) pingTimeout() time.Duration {
	if c.PingTimeout > 0 {
		return c.PingTimeout
	}
	return 3 * time.Second
}
