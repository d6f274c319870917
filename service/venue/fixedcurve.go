package venue

import (
	"context"
	"encoding/binary"

	"moonlend/core"
	"moonlend/internal/lending"

	"github.com/gagliardetto/solana-go"
)

// launch venue program constants (mainnet)
var (
	curveProgramID      = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")
	curveGlobalState    = solana.MustPublicKeyFromBase58("4wTV1YmiEkRvAtNtsSGPtUrqRYQMe5SKy2uB4Jjaxnjf")
	curveFeeRecipient   = solana.MustPublicKeyFromBase58("CebN5WGQ4jvEPvsVU4EoHEpgzq1VV7AbicfhtW4xC9iM")
	curveEventAuthority = solana.MustPublicKeyFromBase58("Ce6TQqeHC9p8KetsN6JsjHK7UTZk7nasjjnr7XxXp9F1")
)

// anchor discriminator for the venue's "sell" instruction
var sellDiscriminator = [8]byte{0x33, 0xe6, 0x85, 0xa4, 0x01, 0x7f, 0x83, 0xad}

type fixedCurveStrategy struct {
	chainz core.IChainService
}

// NewFixedCurve constant product strategy for dedicated single-token launch
// venues whose reserves are read directly.
func NewFixedCurve(chainz core.IChainService) core.VenueStrategy {
	return &fixedCurveStrategy{chainz: chainz}
}

func (s *fixedCurveStrategy) Name() string {
	return core.VenueTypeFixedCurve.String()
}

func (s *fixedCurveStrategy) Quote(ctx context.Context, token *core.TokenConfig, sellAmount, slippageBps uint64) (*core.VenueQuote, error) {
	venue, err := solana.PublicKeyFromBase58(token.VenueAddress)
	if err != nil {
		return nil, core.ErrVenueQuoteFailed
	}

	reserves, err := s.chainz.GetPoolReserves(ctx, venue)
	if err != nil {
		return nil, err
	}

	expected, err := lending.SellOutput(reserves.BaseReserve, reserves.QuoteReserve, sellAmount)
	if err != nil {
		return nil, core.ErrVenueQuoteFailed
	}

	return &core.VenueQuote{
		Venue:       s.Name(),
		SellAmount:  sellAmount,
		ExpectedOut: expected,
		MinOut:      lending.MinOutput(expected, slippageBps),
		SlippageBps: slippageBps,
	}, nil
}

// BuildExecutionData venue sell args and accounts, appended by the chain
// service as the liquidate instruction's remaining accounts.
func (s *fixedCurveStrategy) BuildExecutionData(ctx context.Context, token *core.TokenConfig, loan *core.Loan, quote *core.VenueQuote) (*core.ExecutionData, error) {
	mint, err := solana.PublicKeyFromBase58(token.Mint)
	if err != nil {
		return nil, err
	}
	curve, err := solana.PublicKeyFromBase58(token.VenueAddress)
	if err != nil {
		return nil, err
	}

	curveTokenAccount, _, err := solana.FindAssociatedTokenAddress(curve, mint)
	if err != nil {
		return nil, err
	}

	data := make([]byte, 0, 8+8+8)
	data = append(data, sellDiscriminator[:]...)
	data = binary.LittleEndian.AppendUint64(data, quote.SellAmount)
	data = binary.LittleEndian.AppendUint64(data, quote.MinOut)

	return &core.ExecutionData{
		Data: data,
		Accounts: []*solana.AccountMeta{
			solana.NewAccountMeta(curveProgramID, false, false),
			solana.NewAccountMeta(curveGlobalState, false, false),
			solana.NewAccountMeta(curveFeeRecipient, true, false),
			solana.NewAccountMeta(curve, true, false),
			solana.NewAccountMeta(curveTokenAccount, true, false),
			solana.NewAccountMeta(curveEventAuthority, false, false),
		},
	}, nil
}
