package core

import (
	"time"

	"github.com/fox-one/pkg/store/db"
)

// Config engine config
type Config struct {
	App        App        `json:"app"`
	DB         db.Config  `json:"db"`
	Chain      Chain      `json:"chain"`
	Aggregator Aggregator `json:"aggregator"`
	Oracle     Oracle     `json:"oracle"`
	Risk       Risk       `json:"risk"`
}

// App app config
type App struct {
	Location string `json:"location"`
}

// Chain solana rpc & liquidator wallet config
type Chain struct {
	Endpoint string `json:"endpoint"`
	// Program lending program id, base58
	Program string `json:"program"`
	// LiquidatorKey liquidator wallet private key, base58
	LiquidatorKey string `json:"liquidator_key"`
}

// Aggregator swap aggregator api config
type Aggregator struct {
	EndPoint      string `json:"end_point"`
	PriceEndPoint string `json:"price_end_point"`
}

// Oracle price oracle config
type Oracle struct {
	CacheExpire time.Duration `json:"cache_expire"`
}

// Risk exposure monitor config
type Risk struct {
	WarningBps    uint64        `json:"warning_bps"`
	CriticalBps   uint64        `json:"critical_bps"`
	AlertCooldown time.Duration `json:"alert_cooldown"`
}
