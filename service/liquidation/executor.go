package liquidation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"moonlend/core"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	foxuuid "github.com/fox-one/pkg/uuid"
	"github.com/gagliardetto/solana-go"
)

// slippageLadder escalating tolerance per attempt, bps
var slippageLadder = []uint64{300, 500, 700, 900, 1100, 1500}

// VenueSelector strategy dispatch by venue type
type VenueSelector interface {
	For(token *core.TokenConfig) core.VenueStrategy
}

// Executor drives venue specific liquidation trades through the
// Quoting -> Submitting -> Confirming -> Verifying state machine with a
// bounded retry ladder. A failed attempt loops back to Quoting with the
// next slippage tolerance; the Verifying phase's account re-check is the
// only authority for declaring final success.
type Executor struct {
	db        *db.DB
	loans     core.ILoanStore
	tokens    core.ITokenStore
	exposures core.IExposureService
	events    core.IEventStore
	chainz    core.IChainService
	venues    VenueSelector

	backoffBase time.Duration
}

// New new liquidation executor
func New(
	database *db.DB,
	loans core.ILoanStore,
	tokens core.ITokenStore,
	exposures core.IExposureService,
	events core.IEventStore,
	chainz core.IChainService,
	venues VenueSelector,
) *Executor {
	return &Executor{
		db:          database,
		loans:       loans,
		tokens:      tokens,
		exposures:   exposures,
		events:      events,
		chainz:      chainz,
		venues:      venues,
		backoffBase: time.Second,
	}
}

// Liquidate run the full attempt ladder for one candidate. Executions for
// different loans are independent and may run concurrently; a single
// loan's attempt sequence is strictly sequential.
func (e *Executor) Liquidate(ctx context.Context, candidate *core.LiquidationCandidate) (*core.LiquidationResult, error) {
	log := logger.FromContext(ctx).WithField("loan", candidate.LoanID)

	loan, err := e.loans.Find(ctx, candidate.LoanID)
	if err != nil {
		return nil, err
	}
	if loan.ID == 0 {
		return nil, core.ErrLoanNotFound
	}

	// idempotence: re-check ledger status before any venue work
	if loan.Status != core.LoanStatusActive {
		log.Debugln("loan already settled:", loan.Status)
		return &core.LiquidationResult{
			LoanID:  loan.ID,
			Outcome: core.OutcomeAlreadySettled,
			Reason:  loan.Status,
		}, nil
	}

	token, err := e.tokens.Find(ctx, loan.Mint)
	if err != nil {
		return nil, err
	}
	if token.ID == 0 {
		return nil, core.ErrTokenNotFound
	}

	strategy := e.venues.For(token)

	result := &core.LiquidationResult{
		LoanID: loan.ID,
		Reason: candidate.Reason,
	}

	var lastErr error
	for i := 0; i < len(slippageLadder); i++ {
		attempt := &core.LiquidationAttempt{
			Index:       i + 1,
			SlippageBps: slippageLadder[i],
			Venue:       strategy.Name(),
			State:       core.ExecStateQuoting,
			StartedAt:   time.Now(),
		}
		result.Attempts = append(result.Attempts, attempt)

		sig, err := e.runAttempt(ctx, loan, token, strategy, attempt)
		if err == nil {
			attempt.State = core.ExecStateSucceeded
			result.Outcome = core.OutcomeSucceeded
			result.Signature = sig.String()

			if err := e.persistSuccess(ctx, loan, candidate.Reason, sig); err != nil {
				return nil, err
			}
			return result, nil
		}

		attempt.State = core.ExecStateFailed
		attempt.Error = err.Error()
		lastErr = err
		log.WithError(err).Infof("liquidation attempt %d failed at %s", attempt.Index, attempt.State)

		// a concurrent liquidation or repayment may have settled the loan;
		// the on-chain rejection is neutral, not an error
		if settled, status := e.settledOnChain(ctx, loan); settled {
			result.Outcome = core.OutcomeAlreadySettled
			result.Reason = status
			return result, nil
		}

		if err := e.backoff(ctx, i); err != nil {
			return nil, err
		}
	}

	result.Outcome = core.OutcomeFailed
	return result, fmt.Errorf("liquidation of loan %d failed after %d attempts: %w", loan.ID, len(slippageLadder), lastErr)
}

// runAttempt one pass through the state machine; returns the confirmed and
// verified transaction signature.
func (e *Executor) runAttempt(ctx context.Context, loan *core.Loan, token *core.TokenConfig, strategy core.VenueStrategy, attempt *core.LiquidationAttempt) (solana.Signature, error) {
	var zero solana.Signature

	// Quoting
	quote, err := strategy.Quote(ctx, token, loan.CollateralAmount, attempt.SlippageBps)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", core.ErrVenueQuoteFailed, err)
	}

	// Submitting
	attempt.State = core.ExecStateSubmitting
	execution, err := strategy.BuildExecutionData(ctx, token, loan, quote)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", core.ErrVenueQuoteFailed, err)
	}

	sig, err := e.chainz.SubmitLiquidation(ctx, &core.LiquidationParams{
		Loan:      loan,
		Token:     token,
		MinOutput: quote.MinOut,
		Execution: execution,
	})
	if err != nil {
		return zero, err
	}
	attempt.Signature = sig.String()

	// Confirming
	attempt.State = core.ExecStateConfirming
	if err := e.chainz.ConfirmTransaction(ctx, sig); err != nil {
		return zero, err
	}

	// Verifying: the loan account must no longer report Active, or must no
	// longer exist; a closed account is an acceptable success signal.
	attempt.State = core.ExecStateVerifying
	address, err := solana.PublicKeyFromBase58(loan.Address)
	if err != nil {
		return zero, err
	}

	chainLoan, err := e.chainz.GetLoanAccount(ctx, address)
	if err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			return sig, nil
		}
		return zero, err
	}
	if chainLoan.Status == core.LoanStatusActive {
		return zero, fmt.Errorf("%w: loan still active after confirmation", core.ErrTransactionFailed)
	}

	return sig, nil
}

// settledOnChain best effort re-read after a failed attempt; true when the
// chain reports the loan is no longer active. A closed account counts as
// settled too: the settlement that reclaimed it took its reason along, so
// the ledger converges on the conservative status, same as Sync.
func (e *Executor) settledOnChain(ctx context.Context, loan *core.Loan) (bool, core.LoanStatus) {
	address, err := solana.PublicKeyFromBase58(loan.Address)
	if err != nil {
		return false, core.LoanStatusActive
	}

	status := core.LoanStatusRepaid
	chainLoan, err := e.chainz.GetLoanAccount(ctx, address)
	switch {
	case errors.Is(err, core.ErrAccountNotFound):
	case err != nil:
		return false, core.LoanStatusActive
	case chainLoan.Status == core.LoanStatusActive:
		return false, core.LoanStatusActive
	default:
		status = chainLoan.Status
	}

	// converge the ledger to the on-chain outcome
	if err := e.convergeLedger(ctx, loan, status); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("converge settled loan")
	}
	return true, status
}

func (e *Executor) convergeLedger(ctx context.Context, loan *core.Loan, status core.LoanStatus) error {
	version := loan.Version
	loan.Status = status
	return e.loans.Update(ctx, e.db, loan, version)
}

// persistSuccess write the ledger transition carrying the originally
// detected reason, drop the loan from exposure tracking and emit the
// domain event. Writes happen only here, after confirmed success.
func (e *Executor) persistSuccess(ctx context.Context, loan *core.Loan, reason core.LoanStatus, sig solana.Signature) error {
	if err := e.db.Tx(func(tx *db.DB) error {
		version := loan.Version
		loan.Status = reason
		loan.LiquidationTx = sig.String()
		return e.loans.Update(ctx, tx, loan, version)
	}); err != nil {
		return err
	}

	if err := e.exposures.OnLoanClosed(ctx, loan); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("exposure update after liquidation")
	}

	event, err := core.NewEvent(foxuuid.New(), core.EventTypeLoanLiquidated, map[string]interface{}{
		"loan_id":   loan.ID,
		"address":   loan.Address,
		"borrower":  loan.Borrower,
		"mint":      loan.Mint,
		"reason":    reason.String(),
		"signature": sig.String(),
	})
	if err != nil {
		return err
	}
	return e.events.Create(ctx, event)
}

func (e *Executor) backoff(ctx context.Context, attemptIdx int) error {
	delay := e.backoffBase << uint(attemptIdx)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}
