package generatechatresponse

import (
	"time"

	"bailey-assistant/internal/common/config"
)

type Config struct {
	Timeout    time.Duration
	MaxHistory int
}

// LoadConfig returns defaults, overridden by the worker's configured timeout.
func LoadConfig(wcfg config.WorkerConfig) *Config {
	cfg := &Config{
		Timeout:    30 * time.Second,
		MaxHistory: 20,
	}
	if wcfg.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wcfg.Timeout)
	}
	return cfg
}
