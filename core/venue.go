package core

import (
	"context"
	"encoding/json"

	"github.com/gagliardetto/solana-go"
)

// VenueQuote expected swap output with a minimum output guard at the given
// slippage tolerance.
type VenueQuote struct {
	Venue       string `json:"venue"`
	SellAmount  uint64 `json:"sell_amount"`
	ExpectedOut uint64 `json:"expected_out"`
	MinOut      uint64 `json:"min_out"`
	SlippageBps uint64 `json:"slippage_bps"`

	// Raw upstream quote payload, replayed to the venue's build step
	Raw json.RawMessage `json:"-"`
}

// ExecutionData venue specific routing payload carried by the liquidate
// instruction. Accounts are appended as remaining accounts.
type ExecutionData struct {
	Data     []byte
	Accounts []*solana.AccountMeta
}

// VenueStrategy swap venue capability. The executor is written against this
// interface, never against a concrete venue.
type VenueStrategy interface {
	Name() string
	Quote(ctx context.Context, token *TokenConfig, sellAmount, slippageBps uint64) (*VenueQuote, error)
	BuildExecutionData(ctx context.Context, token *TokenConfig, loan *Loan, quote *VenueQuote) (*ExecutionData, error)
}
