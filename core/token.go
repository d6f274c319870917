package core

import (
	"context"
	"time"
)

// TokenTier token risk tier
type TokenTier int8

const (
	// TokenTierBronze bronze
	TokenTierBronze TokenTier = iota
	// TokenTierSilver silver
	TokenTierSilver
	// TokenTierGold gold
	TokenTierGold
)

// VenueType swap venue type
type VenueType int8

const (
	// VenueTypeFixedCurve dedicated single-token launch venue, constant product curve
	VenueTypeFixedCurve VenueType = iota
	// VenueTypeRouter pooled liquidity, routed through the swap aggregator
	VenueTypeRouter
)

func (t VenueType) String() string {
	switch t {
	case VenueTypeFixedCurve:
		return "fixedcurve"
	case VenueTypeRouter:
		return "router"
	default:
		return "unknown"
	}
}

// TokenConfig whitelisted collateral token, mirror of the on-chain config account.
// Owned by the protocol admin; read-only to this engine except mirror refresh.
type TokenConfig struct {
	ID                  uint64    `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	Mint                string    `sql:"size:44;unique_index:mint_idx" json:"mint"`
	Symbol              string    `sql:"size:20" json:"symbol"`
	Tier                TokenTier `sql:"default:0" json:"tier"`
	Enabled             bool      `sql:"default:0" json:"enabled"`
	Decimals            uint8     `sql:"default:6" json:"decimals"`
	VenueType           VenueType `sql:"default:0" json:"venue_type"`
	VenueAddress        string    `sql:"size:44" json:"venue_address"`
	LtvBps              uint64    `sql:"default:0" json:"ltv_bps"`
	FeeBps              uint64    `sql:"default:200" json:"fee_bps"`
	LiquidationBonusBps uint64    `sql:"default:0" json:"liquidation_bonus_bps"`
	MinLoanAmount       uint64    `sql:"default:0" json:"min_loan_amount"`
	MaxLoanAmount       uint64    `sql:"default:0" json:"max_loan_amount"`
	Version             int64     `sql:"default:0" json:"version"`
	CreatedAt           time.Time `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt           time.Time `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// ITokenStore token config mirror store interface
type ITokenStore interface {
	Save(ctx context.Context, token *TokenConfig) error
	Find(ctx context.Context, mint string) (*TokenConfig, error)
	All(ctx context.Context) ([]*TokenConfig, error)
	AllEnabled(ctx context.Context) ([]*TokenConfig, error)
}
