package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
)

// WarningLevel exposure warning level
type WarningLevel int8

const (
	// WarningLevelNone none
	WarningLevelNone WarningLevel = iota
	// WarningLevelWarning exposure ratio at or above the warning threshold
	WarningLevelWarning
	// WarningLevelCritical exposure ratio at or above the critical threshold
	WarningLevelCritical
)

func (l WarningLevel) String() string {
	switch l {
	case WarningLevelWarning:
		return "warning"
	case WarningLevelCritical:
		return "critical"
	default:
		return "none"
	}
}

// ExposureRecord per-mint aggregate of lending exposure. Mutated
// incrementally on loan open/repay and wholesale on periodic reconciliation
// against the ledger.
type ExposureRecord struct {
	ID              uint64       `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	Mint            string       `sql:"size:44;unique_index:exposure_mint_idx" json:"mint"`
	ActiveLoans     int64        `sql:"default:0" json:"active_loans"`
	TotalCollateral uint64       `sql:"default:0" json:"total_collateral"`
	TotalBorrowed   uint64       `sql:"default:0" json:"total_borrowed"`
	VenueLiquidity  uint64       `sql:"default:0" json:"venue_liquidity"`
	RatioBps        uint64       `sql:"default:0" json:"ratio_bps"`
	Level           WarningLevel `sql:"default:0" json:"level"`
	Version         int64        `sql:"default:0" json:"version"`
	CreatedAt       time.Time    `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time    `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// IExposureStore exposure record store interface
type IExposureStore interface {
	Save(ctx context.Context, record *ExposureRecord) error
	Find(ctx context.Context, mint string) (*ExposureRecord, error)
	All(ctx context.Context) ([]*ExposureRecord, error)
	Update(ctx context.Context, tx *db.DB, record *ExposureRecord, version int64) error
}

// IExposureService exposure monitor interface
type IExposureService interface {
	OnLoanOpened(ctx context.Context, loan *Loan) error
	OnLoanClosed(ctx context.Context, loan *Loan) error
	UpdateLiquidity(ctx context.Context, mint string, liquidity uint64) error
	Reconcile(ctx context.Context) error
}
