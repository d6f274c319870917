package core

import (
	"context"
	"time"

	"github.com/fox-one/pkg/store/db"
)

// LoanStatus loan status, matches the on-chain enum
type LoanStatus uint8

const (
	// LoanStatusActive active
	LoanStatusActive LoanStatus = iota
	// LoanStatusRepaid repaid by the borrower
	LoanStatusRepaid
	// LoanStatusLiquidatedTime liquidated, loan past due
	LoanStatusLiquidatedTime
	// LoanStatusLiquidatedPrice liquidated, price at or below threshold
	LoanStatusLiquidatedPrice
)

func (s LoanStatus) String() string {
	switch s {
	case LoanStatusActive:
		return "active"
	case LoanStatusRepaid:
		return "repaid"
	case LoanStatusLiquidatedTime:
		return "liquidated_time"
	case LoanStatusLiquidatedPrice:
		return "liquidated_price"
	default:
		return "unknown"
	}
}

// IsLiquidated liquidated by time or price
func (s LoanStatus) IsLiquidated() bool {
	return s == LoanStatusLiquidatedTime || s == LoanStatusLiquidatedPrice
}

// Loan ledger mirror of an on-chain loan account. The chain is authoritative
// for existence and solvency; the ledger indexes and must converge to the
// on-chain outcome. Status transitions exactly once out of Active; every
// other field is immutable after creation.
type Loan struct {
	ID               uint64     `sql:"PRIMARY_KEY;AUTO_INCREMENT" json:"id"`
	Address          string     `sql:"size:44;unique_index:loan_address_idx" json:"address"`
	Borrower         string     `sql:"size:44;index:borrower_idx" json:"borrower"`
	Mint             string     `sql:"size:44;index:loan_mint_idx" json:"mint"`
	CollateralAmount uint64     `sql:"default:0" json:"collateral_amount"`
	Borrowed         uint64     `sql:"default:0" json:"borrowed"`
	EntryPrice       uint64     `sql:"default:0" json:"entry_price"`
	LiquidationPrice uint64     `sql:"default:0" json:"liquidation_price"`
	Status           LoanStatus `sql:"default:0;index:loan_status_idx" json:"status"`
	LiquidationTx    string     `sql:"size:96" json:"liquidation_tx,omitempty"`
	DueAt            time.Time  `json:"due_at"`
	CreatedAt        time.Time  `sql:"default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt        time.Time  `sql:"default:CURRENT_TIMESTAMP" json:"updated_at"`
	Version          int64      `sql:"default:0" json:"version"`
}

// ILoanLedgerService ledger side of the loan lifecycle. The chain stays
// authoritative; these calls record confirmed outcomes and converge drift.
type ILoanLedgerService interface {
	RecordOpen(ctx context.Context, address string) (*Loan, error)
	RecordRepaid(ctx context.Context, loan *Loan) error
	Sync(ctx context.Context) error
}

// ILoanStore loan store interface
type ILoanStore interface {
	Create(ctx context.Context, loan *Loan) error
	Find(ctx context.Context, id uint64) (*Loan, error)
	FindByAddress(ctx context.Context, address string) (*Loan, error)
	ListActive(ctx context.Context) ([]*Loan, error)
	ListActiveByMint(ctx context.Context, mint string) ([]*Loan, error)
	Update(ctx context.Context, tx *db.DB, loan *Loan, version int64) error
}
