package core

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PriceQuote resolved collateral price. Price is fixed point, lamports per
// whole token scaled by lending.PriceScale, computed with the identical
// integer division order as the on-chain program.
type PriceQuote struct {
	Mint         string          `json:"mint"`
	Price        uint64          `json:"price"`
	HumanPrice   decimal.Decimal `json:"human_price"`
	Source       string          `json:"source"`
	BaseReserve  uint64          `json:"base_reserve,omitempty"`
	QuoteReserve uint64          `json:"quote_reserve,omitempty"`
	FetchedAt    time.Time       `json:"fetched_at"`
}

// price sources
const (
	PriceSourcePool       = "pool"
	PriceSourceAggregator = "aggregator"
)

// IPriceOracleService price oracle service interface
type IPriceOracleService interface {
	GetPrice(ctx context.Context, token *TokenConfig) (*PriceQuote, error)
}
