package core

import (
	"context"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// AggregatorQuote routed swap quote. Raw carries the aggregator's original
// response and is replayed verbatim to the build endpoint.
type AggregatorQuote struct {
	InputMint            string          `json:"input_mint"`
	OutputMint           string          `json:"output_mint"`
	InAmount             uint64          `json:"in_amount"`
	OutAmount            uint64          `json:"out_amount"`
	OtherAmountThreshold uint64          `json:"other_amount_threshold"`
	SlippageBps          uint64          `json:"slippage_bps"`
	Raw                  json.RawMessage `json:"raw,omitempty"`
}

// IAggregatorService swap aggregator api client interface
type IAggregatorService interface {
	PriceOf(ctx context.Context, mint string) (decimal.Decimal, error)
	Quote(ctx context.Context, inputMint, outputMint string, amount, slippageBps uint64) (*AggregatorQuote, error)
	BuildSwap(ctx context.Context, quote *AggregatorQuote, user string) (*ExecutionData, error)
}
