package scanner

import (
	"context"
	"sync"
	"time"

	"moonlend/core"
	"moonlend/internal/lending"
	"moonlend/pkg/concurrency"

	"github.com/fox-one/pkg/logger"
)

// scannerService evaluates active loans against the time and price rules.
// Read-only and idempotent: safe to invoke concurrently with itself and
// interleaved with execution.
type scannerService struct {
	loans  core.ILoanStore
	tokens core.ITokenStore
	oracle core.IPriceOracleService
}

// New new eligibility scanner
func New(loans core.ILoanStore, tokens core.ITokenStore, oracle core.IPriceOracleService) core.IScannerService {
	return &scannerService{
		loans:  loans,
		tokens: tokens,
		oracle: oracle,
	}
}

func (s *scannerService) Scan(ctx context.Context) ([]*core.LiquidationCandidate, error) {
	log := logger.FromContext(ctx).WithField("worker", "scanner")

	loans, err := s.loans.ListActive(ctx)
	if err != nil {
		log.WithError(err).Errorln("list active loans")
		return nil, err
	}

	if len(loans) == 0 {
		return nil, nil
	}

	now := time.Now()

	var mux sync.Mutex
	var candidates []*core.LiquidationCandidate

	limit := concurrency.NewGoLimit(concurrency.DefaultMax)
	wg := sync.WaitGroup{}
	for _, loan := range loans {
		wg.Add(1)
		limit.Add()
		go func(loan *core.Loan) {
			defer wg.Done()
			defer limit.Done()

			candidate, err := s.evaluate(ctx, loan, now)
			if err != nil {
				log.WithError(err).WithField("loan", loan.ID).Debugln("evaluate loan")
				return
			}
			if candidate == nil {
				return
			}

			mux.Lock()
			candidates = append(candidates, candidate)
			mux.Unlock()
		}(loan)
	}
	wg.Wait()

	return candidates, nil
}

// evaluate the time rule first; it short-circuits the price lookup.
func (s *scannerService) evaluate(ctx context.Context, loan *core.Loan, now time.Time) (*core.LiquidationCandidate, error) {
	if lending.IsLiquidatableByTime(now.Unix(), loan.DueAt.Unix()) {
		return &core.LiquidationCandidate{
			LoanID:  loan.ID,
			Reason:  core.LoanStatusLiquidatedTime,
			Address: loan.Address,
		}, nil
	}

	token, err := s.tokens.Find(ctx, loan.Mint)
	if err != nil {
		return nil, err
	}

	quote, err := s.oracle.GetPrice(ctx, token)
	if err != nil {
		return nil, err
	}

	if lending.IsLiquidatableByPrice(quote.Price, loan.LiquidationPrice) {
		return &core.LiquidationCandidate{
			LoanID:  loan.ID,
			Reason:  core.LoanStatusLiquidatedPrice,
			Price:   quote.Price,
			Address: loan.Address,
		}, nil
	}

	return nil, nil
}
