package liquidity

import (
	"context"
	"time"

	"moonlend/core"
	"moonlend/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/gagliardetto/solana-go"
	"github.com/robfig/cron/v3"
)

// Liquidity refreshes per-token venue liquidity and feeds exposure
// re-evaluation. Router-routed tokens have no single pool to introspect and
// keep their last refreshed depth.
type Liquidity struct {
	worker.BaseJob
	tokens    core.ITokenStore
	chainz    core.IChainService
	exposures core.IExposureService
}

// New new liquidity worker
func New(
	location string,
	tokens core.ITokenStore,
	chainz core.IChainService,
	exposures core.IExposureService,
) *Liquidity {
	liquidity := Liquidity{
		tokens:    tokens,
		chainz:    chainz,
		exposures: exposures,
	}

	l, _ := time.LoadLocation(location)
	liquidity.Cron = cron.New(cron.WithLocation(l))
	spec := "@every 1m"
	liquidity.Cron.AddFunc(spec, liquidity.BaseJob.Run)
	liquidity.OnWork = func() error {
		return liquidity.onWork(context.Background())
	}

	return &liquidity
}

// Run start the cron and block until ctx is done
func (w *Liquidity) Run(ctx context.Context) error {
	w.Cron.Start()
	defer w.Cron.Stop()

	<-ctx.Done()
	return ctx.Err()
}

func (w *Liquidity) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "liquidity")

	tokens, err := w.tokens.AllEnabled(ctx)
	if err != nil {
		log.WithError(err).Errorln("list tokens")
		return err
	}

	for _, token := range tokens {
		if token.VenueType != core.VenueTypeFixedCurve || token.VenueAddress == "" {
			continue
		}

		pool, err := solana.PublicKeyFromBase58(token.VenueAddress)
		if err != nil {
			log.WithError(err).Errorln("bad venue address:", token.VenueAddress)
			continue
		}

		reserves, err := w.chainz.GetPoolReserves(ctx, pool)
		if err != nil {
			log.WithError(err).Errorln("pool reserves:", token.Symbol)
			continue
		}

		if err := w.exposures.UpdateLiquidity(ctx, token.Mint, reserves.QuoteReserve); err != nil {
			log.WithError(err).Errorln("update liquidity:", token.Symbol)
		}
	}
	return nil
}
