package config

import (
	"time"

	"moonlend/core"
)

func defaults(cfg *core.Config) {
	if cfg.Oracle.CacheExpire <= 0 {
		cfg.Oracle.CacheExpire = 10 * time.Second
	}

	if cfg.Risk.WarningBps == 0 {
		cfg.Risk.WarningBps = 500
	}
	if cfg.Risk.CriticalBps == 0 {
		cfg.Risk.CriticalBps = 1000
	}
	if cfg.Risk.AlertCooldown <= 0 {
		cfg.Risk.AlertCooldown = 15 * time.Minute
	}
}
