package venue

import (
	"context"

	"moonlend/core"

	"github.com/gagliardetto/solana-go"
)

type routerStrategy struct {
	aggregator core.IAggregatorService
	baseMint   string
	user       string
}

// NewRouter aggregator routed strategy for pooled liquidity venues
func NewRouter(cfg *core.Config, aggregator core.IAggregatorService) (core.VenueStrategy, error) {
	key, err := solana.PrivateKeyFromBase58(cfg.Chain.LiquidatorKey)
	if err != nil {
		return nil, err
	}

	return &routerStrategy{
		aggregator: aggregator,
		baseMint:   solana.SolMint.String(),
		user:       key.PublicKey().String(),
	}, nil
}

func (s *routerStrategy) Name() string {
	return core.VenueTypeRouter.String()
}

func (s *routerStrategy) Quote(ctx context.Context, token *core.TokenConfig, sellAmount, slippageBps uint64) (*core.VenueQuote, error) {
	quote, err := s.aggregator.Quote(ctx, token.Mint, s.baseMint, sellAmount, slippageBps)
	if err != nil {
		return nil, err
	}

	return &core.VenueQuote{
		Venue:       s.Name(),
		SellAmount:  sellAmount,
		ExpectedOut: quote.OutAmount,
		MinOut:      quote.OtherAmountThreshold,
		SlippageBps: slippageBps,
		Raw:         quote.Raw,
	}, nil
}

func (s *routerStrategy) BuildExecutionData(ctx context.Context, token *core.TokenConfig, loan *core.Loan, quote *core.VenueQuote) (*core.ExecutionData, error) {
	return s.aggregator.BuildSwap(ctx, &core.AggregatorQuote{
		InputMint:            token.Mint,
		OutputMint:           s.baseMint,
		InAmount:             quote.SellAmount,
		OutAmount:            quote.ExpectedOut,
		OtherAmountThreshold: quote.MinOut,
		SlippageBps:          quote.SlippageBps,
		Raw:                  quote.Raw,
	}, s.user)
}
