package core

import (
	"context"
	"time"
)

// ExecState liquidation attempt state
type ExecState int8

const (
	// ExecStateQuoting requesting a venue quote
	ExecStateQuoting ExecState = iota
	// ExecStateSubmitting sending the liquidate transaction
	ExecStateSubmitting
	// ExecStateConfirming polling transaction status
	ExecStateConfirming
	// ExecStateVerifying re-reading the loan account
	ExecStateVerifying
	// ExecStateSucceeded terminal success
	ExecStateSucceeded
	// ExecStateFailed attempt failed
	ExecStateFailed
)

func (s ExecState) String() string {
	switch s {
	case ExecStateQuoting:
		return "quoting"
	case ExecStateSubmitting:
		return "submitting"
	case ExecStateConfirming:
		return "confirming"
	case ExecStateVerifying:
		return "verifying"
	case ExecStateSucceeded:
		return "succeeded"
	case ExecStateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// LiquidationOutcome terminal outcome of a liquidate call
type LiquidationOutcome int8

const (
	// OutcomeSucceeded confirmed and verified on chain
	OutcomeSucceeded LiquidationOutcome = iota
	// OutcomeAlreadySettled loan was no longer active; neutral, not an error
	OutcomeAlreadySettled
	// OutcomeFailed all attempts exhausted
	OutcomeFailed
)

func (o LiquidationOutcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeAlreadySettled:
		return "already_settled"
	default:
		return "failed"
	}
}

// LiquidationAttempt transient record of one ladder attempt; exists only
// within one liquidation call and in the terminal result for audit.
type LiquidationAttempt struct {
	Index       int       `json:"index"`
	SlippageBps uint64    `json:"slippage_bps"`
	Venue       string    `json:"venue"`
	State       ExecState `json:"state"`
	Signature   string    `json:"signature,omitempty"`
	Error       string    `json:"error,omitempty"`
	StartedAt   time.Time `json:"started_at"`
}

// LiquidationResult terminal result of a liquidate call
type LiquidationResult struct {
	LoanID    uint64                `json:"loan_id"`
	Outcome   LiquidationOutcome    `json:"outcome"`
	Reason    LoanStatus            `json:"reason,omitempty"`
	Signature string                `json:"signature,omitempty"`
	Attempts  []*LiquidationAttempt `json:"attempts,omitempty"`
}

// LiquidationCandidate loan detected as eligible, with the originally
// detected reason. The persisted reason on success is this one, not one
// recomputed after execution.
type LiquidationCandidate struct {
	LoanID  uint64     `json:"loan_id"`
	Reason  LoanStatus `json:"reason"`
	Price   uint64     `json:"price,omitempty"`
	Address string     `json:"address"`
}

// ILiquidationService liquidation executor interface
type ILiquidationService interface {
	Liquidate(ctx context.Context, candidate *LiquidationCandidate) (*LiquidationResult, error)
}

// IScannerService eligibility scanner interface
type IScannerService interface {
	Scan(ctx context.Context) ([]*LiquidationCandidate, error)
}
