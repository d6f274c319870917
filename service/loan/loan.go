package loan

import (
	"context"
	"errors"
	"time"

	"moonlend/core"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	foxuuid "github.com/fox-one/pkg/uuid"
	"github.com/gagliardetto/solana-go"
)

type loanService struct {
	db        *db.DB
	loans     core.ILoanStore
	chainz    core.IChainService
	exposures core.IExposureService
	events    core.IEventStore
}

// New new loan ledger service
func New(
	database *db.DB,
	loans core.ILoanStore,
	chainz core.IChainService,
	exposures core.IExposureService,
	events core.IEventStore,
) core.ILoanLedgerService {
	return &loanService{
		db:        database,
		loans:     loans,
		chainz:    chainz,
		exposures: exposures,
		events:    events,
	}
}

// RecordOpen mirror a confirmed on-chain loan account into the ledger.
// Safe to call repeatedly for the same address.
func (s *loanService) RecordOpen(ctx context.Context, address string) (*core.Loan, error) {
	existing, err := s.loans.FindByAddress(ctx, address)
	if err != nil {
		return nil, err
	}
	if existing.ID > 0 {
		return existing, nil
	}

	pub, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return nil, err
	}

	chainLoan, err := s.chainz.GetLoanAccount(ctx, pub)
	if err != nil {
		return nil, err
	}

	loan := &core.Loan{
		Address:          address,
		Borrower:         chainLoan.Borrower.String(),
		Mint:             chainLoan.Mint.String(),
		CollateralAmount: chainLoan.CollateralAmount,
		Borrowed:         chainLoan.Borrowed,
		EntryPrice:       chainLoan.EntryPrice,
		LiquidationPrice: chainLoan.LiquidationPrice,
		Status:           chainLoan.Status,
		DueAt:            time.Unix(chainLoan.DueAt, 0),
	}

	if err := s.loans.Create(ctx, loan); err != nil {
		return nil, err
	}

	if loan.Status == core.LoanStatusActive {
		if err := s.exposures.OnLoanOpened(ctx, loan); err != nil {
			logger.FromContext(ctx).WithError(err).Errorln("exposure update on loan open")
		}
	}

	event, err := core.NewEvent(foxuuid.New(), core.EventTypeLoanCreated, map[string]interface{}{
		"loan_id":  loan.ID,
		"address":  loan.Address,
		"borrower": loan.Borrower,
		"mint":     loan.Mint,
		"borrowed": loan.Borrowed,
		"due_at":   loan.DueAt,
	})
	if err != nil {
		return nil, err
	}
	if err := s.events.Create(ctx, event); err != nil {
		return nil, err
	}

	return loan, nil
}

// RecordRepaid transition Active -> Repaid in the ledger
func (s *loanService) RecordRepaid(ctx context.Context, loan *core.Loan) error {
	if loan.Status != core.LoanStatusActive {
		return nil
	}
	return s.settle(ctx, loan, core.LoanStatusRepaid, "")
}

// Sync converge every ledger-Active loan to its on-chain outcome. A loan
// closed or settled on chain that the ledger still reports Active gets its
// terminal status written and its exposure released.
func (s *loanService) Sync(ctx context.Context) error {
	log := logger.FromContext(ctx)

	loans, err := s.loans.ListActive(ctx)
	if err != nil {
		return err
	}

	for _, loan := range loans {
		pub, err := solana.PublicKeyFromBase58(loan.Address)
		if err != nil {
			log.WithError(err).Errorln("bad loan address:", loan.Address)
			continue
		}

		chainLoan, err := s.chainz.GetLoanAccount(ctx, pub)
		if err != nil {
			if errors.Is(err, core.ErrAccountNotFound) {
				// account closed after settlement; the concrete reason is
				// gone with it, record the conservative one
				if err := s.settle(ctx, loan, core.LoanStatusRepaid, ""); err != nil {
					return err
				}
				continue
			}
			log.WithError(err).Errorln("fetch loan account:", loan.Address)
			continue
		}

		if chainLoan.Status == core.LoanStatusActive {
			continue
		}

		if err := s.settle(ctx, loan, chainLoan.Status, ""); err != nil {
			return err
		}
	}
	return nil
}

func (s *loanService) settle(ctx context.Context, loan *core.Loan, status core.LoanStatus, signature string) error {
	if err := s.db.Tx(func(tx *db.DB) error {
		version := loan.Version
		loan.Status = status
		if signature != "" {
			loan.LiquidationTx = signature
		}
		return s.loans.Update(ctx, tx, loan, version)
	}); err != nil {
		return err
	}

	if err := s.exposures.OnLoanClosed(ctx, loan); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("exposure update on loan close")
	}

	typ := core.EventTypeLoanRepaid
	if status.IsLiquidated() {
		typ = core.EventTypeLoanLiquidated
	}
	event, err := core.NewEvent(foxuuid.New(), typ, map[string]interface{}{
		"loan_id":  loan.ID,
		"address":  loan.Address,
		"borrower": loan.Borrower,
		"mint":     loan.Mint,
		"reason":   status.String(),
	})
	if err != nil {
		return err
	}
	return s.events.Create(ctx, event)
}
