package scanner

import (
	"context"
	"sync"
	"time"

	"moonlend/core"
	"moonlend/pkg/concurrency"
	"moonlend/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
)

const checkpointKey = "scanner_checkpoint"

// Scanner periodic scan and liquidate pass. Liquidations of different loans
// run concurrently; each loan's attempt ladder stays sequential inside the
// executor.
type Scanner struct {
	worker.TickWorker
	scanner     core.IScannerService
	liquidation core.ILiquidationService
	property    property.Store
}

// New new scanner worker
func New(
	scanner core.IScannerService,
	liquidation core.ILiquidationService,
	property property.Store,
) *Scanner {
	return &Scanner{
		TickWorker: worker.TickWorker{
			Delay:    10 * time.Second,
			ErrDelay: 30 * time.Second,
		},
		scanner:     scanner,
		liquidation: liquidation,
		property:    property,
	}
}

// Run run the worker
func (w *Scanner) Run(ctx context.Context) error {
	return w.StartTick(ctx, func(ctx context.Context) error {
		return w.onWork(ctx)
	})
}

func (w *Scanner) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "scanner")

	candidates, err := w.scanner.Scan(ctx)
	if err != nil {
		log.WithError(err).Errorln("scan")
		return err
	}

	if len(candidates) > 0 {
		log.Infoln("liquidatable loans:", len(candidates))
	}

	limit := concurrency.NewGoLimit(8)
	wg := sync.WaitGroup{}
	for _, candidate := range candidates {
		wg.Add(1)
		limit.Add()
		go func(candidate *core.LiquidationCandidate) {
			defer wg.Done()
			defer limit.Done()

			result, err := w.liquidation.Liquidate(ctx, candidate)
			if err != nil {
				log.WithError(err).WithField("loan", candidate.LoanID).Errorln("liquidate")
				return
			}
			log.WithField("loan", candidate.LoanID).Infoln("liquidation outcome:", result.Outcome)
		}(candidate)
	}
	wg.Wait()

	if err := w.property.Save(ctx, checkpointKey, time.Now().Unix()); err != nil {
		log.WithError(err).Errorln("property.Save", checkpointKey)
	}
	return nil
}
