package core

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// ChainLoan decoded on-chain loan account
type ChainLoan struct {
	Borrower         solana.PublicKey
	Mint             solana.PublicKey
	CollateralAmount uint64
	Borrowed         uint64
	EntryPrice       uint64
	LiquidationPrice uint64
	CreatedAt        int64
	DueAt            int64
	Status           LoanStatus
	Index            uint64
}

// ChainTokenConfig decoded on-chain token config account
type ChainTokenConfig struct {
	Mint                solana.PublicKey
	Tier                TokenTier
	Enabled             bool
	VenueAddress        solana.PublicKey
	VenueType           VenueType
	LtvBps              uint64
	LiquidationBonusBps uint64
	MinLoanAmount       uint64
	MaxLoanAmount       uint64
	ActiveLoans         uint64
}

// PoolReserves raw reserve balances of a fixed curve venue
type PoolReserves struct {
	BaseReserve  uint64
	QuoteReserve uint64
	Complete     bool
}

// LiquidationParams liquidate instruction parameters
type LiquidationParams struct {
	Loan      *Loan
	Token     *TokenConfig
	MinOutput uint64
	Execution *ExecutionData
}

// IChainService chain access. Every call is a bounded network round trip;
// none may be assumed synchronous.
type IChainService interface {
	GetLoanAccount(ctx context.Context, address solana.PublicKey) (*ChainLoan, error)
	GetTokenConfigAccount(ctx context.Context, mint solana.PublicKey) (*ChainTokenConfig, error)
	GetPoolReserves(ctx context.Context, pool solana.PublicKey) (*PoolReserves, error)
	SubmitLiquidation(ctx context.Context, params *LiquidationParams) (solana.Signature, error)
	ConfirmTransaction(ctx context.Context, sig solana.Signature) error
}
