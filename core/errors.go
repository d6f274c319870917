package core

import (
	"errors"
	"strconv"
)

// ErrorCode int
type ErrorCode int

const (
	// ErrUnknown unknown
	ErrUnknown ErrorCode = 100000
	// ErrOperationForbidden operation forbidden
	ErrOperationForbidden ErrorCode = 100001

	// ErrTokenNotFound no token config
	ErrTokenNotFound ErrorCode = 100100
	// ErrInvalidAmount invalid amount
	ErrInvalidAmount ErrorCode = 100101
	// ErrInvalidDuration invalid loan duration
	ErrInvalidDuration ErrorCode = 100102
	// ErrLoanNotFound no loan
	ErrLoanNotFound ErrorCode = 100103
	// ErrLoanNotLiquidatable loan not liquidatable
	ErrLoanNotLiquidatable ErrorCode = 100104
	// ErrInvalidPrice invalid price
	ErrInvalidPrice ErrorCode = 100105
	// ErrTokenDisabled token disabled
	ErrTokenDisabled ErrorCode = 100106
)

func (e ErrorCode) String() string {
	return strconv.Itoa(int(e))
}

func (e ErrorCode) Error() string {
	return e.String()
}

var (
	// ErrPoolDataUnavailable pool reserves empty or unparsable
	ErrPoolDataUnavailable = errors.New("pool data unavailable")
	// ErrNoPriceAvailable both oracle strategies exhausted
	ErrNoPriceAvailable = errors.New("no price available")
	// ErrVenueQuoteFailed venue quote failed
	ErrVenueQuoteFailed = errors.New("venue quote failed")
	// ErrConfirmationTimeout confirmation polling timed out
	ErrConfirmationTimeout = errors.New("confirmation timeout")
	// ErrTransactionFailed on-chain execution error
	ErrTransactionFailed = errors.New("transaction failed on chain")
	// ErrAccountNotFound account closed or never initialized
	ErrAccountNotFound = errors.New("account not found")
	// ErrMathOverflow fixed point overflow
	ErrMathOverflow = errors.New("math overflow")
)
