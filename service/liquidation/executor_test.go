package liquidation

import (
	"context"
	"errors"
	"testing"
	"time"

	"moonlend/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testLoanAddress = "So11111111111111111111111111111111111111112"

type fakeLoanStore struct {
	core.ILoanStore
	loan *core.Loan
}

func (s *fakeLoanStore) Find(ctx context.Context, id uint64) (*core.Loan, error) {
	return s.loan, nil
}

func (s *fakeLoanStore) Update(ctx context.Context, tx *db.DB, loan *core.Loan, version int64) error {
	s.loan = loan
	return nil
}

type fakeTokenStore struct {
	core.ITokenStore
	token *core.TokenConfig
}

func (s *fakeTokenStore) Find(ctx context.Context, mint string) (*core.TokenConfig, error) {
	return s.token, nil
}

type fakeChain struct {
	core.IChainService
	loanStatus core.LoanStatus
	loanErr    error
	submitErr  error
	confirmErr error

	submits  int
	confirms int
}

func (c *fakeChain) GetLoanAccount(ctx context.Context, address solana.PublicKey) (*core.ChainLoan, error) {
	if c.loanErr != nil {
		return nil, c.loanErr
	}
	return &core.ChainLoan{Status: c.loanStatus}, nil
}

func (c *fakeChain) SubmitLiquidation(ctx context.Context, params *core.LiquidationParams) (solana.Signature, error) {
	c.submits++
	if c.submitErr != nil {
		return solana.Signature{}, c.submitErr
	}
	return solana.Signature{1}, nil
}

func (c *fakeChain) ConfirmTransaction(ctx context.Context, sig solana.Signature) error {
	c.confirms++
	return c.confirmErr
}

type fakeStrategy struct {
	quoteErr  error
	quotes    int
	slippages []uint64
}

func (s *fakeStrategy) Name() string { return "fixedcurve" }

func (s *fakeStrategy) Quote(ctx context.Context, token *core.TokenConfig, sellAmount, slippageBps uint64) (*core.VenueQuote, error) {
	s.quotes++
	s.slippages = append(s.slippages, slippageBps)
	if s.quoteErr != nil {
		return nil, s.quoteErr
	}
	return &core.VenueQuote{
		Venue:       s.Name(),
		SellAmount:  sellAmount,
		ExpectedOut: 1000,
		MinOut:      970,
		SlippageBps: slippageBps,
	}, nil
}

func (s *fakeStrategy) BuildExecutionData(ctx context.Context, token *core.TokenConfig, loan *core.Loan, quote *core.VenueQuote) (*core.ExecutionData, error) {
	return &core.ExecutionData{}, nil
}

type fakeSelector struct {
	strategy core.VenueStrategy
}

func (s *fakeSelector) For(token *core.TokenConfig) core.VenueStrategy { return s.strategy }

func testLoan(status core.LoanStatus) *core.Loan {
	return &core.Loan{
		ID:               1,
		Address:          testLoanAddress,
		Mint:             "mint",
		CollateralAmount: 1_000_000_000,
		Borrowed:         350_000,
		Status:           status,
		DueAt:            time.Now().Add(time.Hour),
	}
}

func testExecutor(loans *fakeLoanStore, chainz *fakeChain, strategy *fakeStrategy) *Executor {
	e := New(
		nil,
		loans,
		&fakeTokenStore{token: &core.TokenConfig{ID: 1, Mint: "mint", Enabled: true}},
		nil,
		nil,
		chainz,
		&fakeSelector{strategy: strategy},
	)
	e.backoffBase = time.Millisecond
	return e
}

func TestLiquidateAlreadySettledLedger(t *testing.T) {
	strategy := &fakeStrategy{}
	chainz := &fakeChain{}
	e := testExecutor(&fakeLoanStore{loan: testLoan(core.LoanStatusRepaid)}, chainz, strategy)

	result, err := e.Liquidate(context.Background(), &core.LiquidationCandidate{
		LoanID:  1,
		Reason:  core.LoanStatusLiquidatedTime,
		Address: testLoanAddress,
	})
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeAlreadySettled, result.Outcome)
	assert.Equal(t, core.LoanStatusRepaid, result.Reason)

	// no venue or chain interaction on an already closed loan
	assert.Zero(t, strategy.quotes)
	assert.Zero(t, chainz.submits)
}

func TestLiquidateRetryExhaustion(t *testing.T) {
	strategy := &fakeStrategy{quoteErr: errors.New("quote rejected")}
	chainz := &fakeChain{loanStatus: core.LoanStatusActive}
	e := testExecutor(&fakeLoanStore{loan: testLoan(core.LoanStatusActive)}, chainz, strategy)

	start := time.Now()
	result, err := e.Liquidate(context.Background(), &core.LiquidationCandidate{
		LoanID:  1,
		Reason:  core.LoanStatusLiquidatedPrice,
		Address: testLoanAddress,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrVenueQuoteFailed)

	assert.Equal(t, core.OutcomeFailed, result.Outcome)
	assert.Equal(t, []uint64{300, 500, 700, 900, 1100, 1500}, strategy.slippages)
	require.Len(t, result.Attempts, 6)
	for _, attempt := range result.Attempts {
		assert.Equal(t, core.ExecStateFailed, attempt.State)
		assert.NotEmpty(t, attempt.Error)
	}

	// exponential backoff after each failed attempt: 1+2+4+8+16+32 base units
	assert.GreaterOrEqual(t, time.Since(start), 63*time.Millisecond)
}

func TestLiquidateSettledMidLadder(t *testing.T) {
	strategy := &fakeStrategy{quoteErr: errors.New("quote rejected")}
	chainz := &fakeChain{loanStatus: core.LoanStatusRepaid}
	loans := &fakeLoanStore{loan: testLoan(core.LoanStatusActive)}
	e := testExecutor(loans, chainz, strategy)

	result, err := e.Liquidate(context.Background(), &core.LiquidationCandidate{
		LoanID:  1,
		Reason:  core.LoanStatusLiquidatedPrice,
		Address: testLoanAddress,
	})
	require.NoError(t, err)
	assert.Equal(t, core.OutcomeAlreadySettled, result.Outcome)
	assert.Equal(t, core.LoanStatusRepaid, result.Reason)

	// the rejection is recognized after the first failed attempt
	assert.Equal(t, 1, strategy.quotes)
	assert.Equal(t, core.LoanStatusRepaid, loans.loan.Status)
}

func TestLiquidateClosedAccountMidLadder(t *testing.T) {
	strategy := &fakeStrategy{quoteErr: errors.New("quote rejected")}
	chainz := &fakeChain{loanErr: core.ErrAccountNotFound}
	loans := &fakeLoanStore{loan: testLoan(core.LoanStatusActive)}
	e := testExecutor(loans, chainz, strategy)

	result, err := e.Liquidate(context.Background(), &core.LiquidationCandidate{
		LoanID:  1,
		Reason:  core.LoanStatusLiquidatedTime,
		Address: testLoanAddress,
	})
	require.NoError(t, err)

	// a concurrently reclaimed account is the same settled signal the
	// Verifying phase accepts; the ladder must not burn through it
	assert.Equal(t, core.OutcomeAlreadySettled, result.Outcome)
	assert.Equal(t, core.LoanStatusRepaid, result.Reason)
	assert.Equal(t, 1, strategy.quotes)
	assert.Equal(t, core.LoanStatusRepaid, loans.loan.Status)
}

func TestLiquidateUnknownToken(t *testing.T) {
	strategy := &fakeStrategy{}
	chainz := &fakeChain{}
	e := New(
		nil,
		&fakeLoanStore{loan: testLoan(core.LoanStatusActive)},
		&fakeTokenStore{token: &core.TokenConfig{}},
		nil,
		nil,
		chainz,
		&fakeSelector{strategy: strategy},
	)
	e.backoffBase = time.Millisecond

	_, err := e.Liquidate(context.Background(), &core.LiquidationCandidate{
		LoanID:  1,
		Reason:  core.LoanStatusLiquidatedTime,
		Address: testLoanAddress,
	})
	assert.ErrorIs(t, err, core.ErrTokenNotFound)
	assert.Zero(t, strategy.quotes)
	assert.Zero(t, chainz.submits)
}

func TestLiquidateContextCancelled(t *testing.T) {
	strategy := &fakeStrategy{quoteErr: errors.New("quote rejected")}
	chainz := &fakeChain{loanStatus: core.LoanStatusActive}
	e := testExecutor(&fakeLoanStore{loan: testLoan(core.LoanStatusActive)}, chainz, strategy)
	e.backoffBase = time.Minute

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := e.Liquidate(ctx, &core.LiquidationCandidate{
		LoanID:  1,
		Reason:  core.LoanStatusLiquidatedTime,
		Address: testLoanAddress,
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunAttemptVerifiesClosedAccount(t *testing.T) {
	strategy := &fakeStrategy{}
	chainz := &fakeChain{loanErr: core.ErrAccountNotFound}
	e := testExecutor(&fakeLoanStore{loan: testLoan(core.LoanStatusActive)}, chainz, strategy)

	loan := testLoan(core.LoanStatusActive)
	attempt := &core.LiquidationAttempt{Index: 1, SlippageBps: 300, State: core.ExecStateQuoting}
	sig, err := e.runAttempt(context.Background(), loan, &core.TokenConfig{Mint: "mint"}, strategy, attempt)
	require.NoError(t, err)
	assert.Equal(t, solana.Signature{1}, sig)
	assert.Equal(t, 1, chainz.submits)
	assert.Equal(t, 1, chainz.confirms)
}

func TestRunAttemptRejectsActiveAfterConfirm(t *testing.T) {
	strategy := &fakeStrategy{}
	chainz := &fakeChain{loanStatus: core.LoanStatusActive}
	e := testExecutor(&fakeLoanStore{loan: testLoan(core.LoanStatusActive)}, chainz, strategy)

	loan := testLoan(core.LoanStatusActive)
	attempt := &core.LiquidationAttempt{Index: 1, SlippageBps: 300, State: core.ExecStateQuoting}
	_, err := e.runAttempt(context.Background(), loan, &core.TokenConfig{Mint: "mint"}, strategy, attempt)
	assert.ErrorIs(t, err, core.ErrTransactionFailed)
	assert.Equal(t, core.ExecStateVerifying, attempt.State)
}

func TestRunAttemptConfirmTimeout(t *testing.T) {
	strategy := &fakeStrategy{}
	chainz := &fakeChain{confirmErr: core.ErrConfirmationTimeout}
	e := testExecutor(&fakeLoanStore{loan: testLoan(core.LoanStatusActive)}, chainz, strategy)

	loan := testLoan(core.LoanStatusActive)
	attempt := &core.LiquidationAttempt{Index: 1, SlippageBps: 300, State: core.ExecStateQuoting}
	_, err := e.runAttempt(context.Background(), loan, &core.TokenConfig{Mint: "mint"}, strategy, attempt)
	assert.ErrorIs(t, err, core.ErrConfirmationTimeout)
	assert.Equal(t, core.ExecStateConfirming, attempt.State)
}
