package syncer

import (
	"context"
	"time"

	"moonlend/core"
	"moonlend/worker"

	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/property"
	"github.com/gagliardetto/solana-go"
	"github.com/robfig/cron/v3"
)

const checkpointKey = "syncer_checkpoint"

// Syncer converges the ledger with the chain: terminal on-chain loan
// outcomes the engine missed are written back, then exposure aggregates are
// rebuilt from the active set.
type Syncer struct {
	worker.BaseJob
	loanz     core.ILoanLedgerService
	tokens    core.ITokenStore
	chainz    core.IChainService
	exposures core.IExposureService
	property  property.Store
}

// New new syncer worker
func New(
	location string,
	loanz core.ILoanLedgerService,
	tokens core.ITokenStore,
	chainz core.IChainService,
	exposures core.IExposureService,
	property property.Store,
) *Syncer {
	syncer := Syncer{
		loanz:     loanz,
		tokens:    tokens,
		chainz:    chainz,
		exposures: exposures,
		property:  property,
	}

	l, _ := time.LoadLocation(location)
	syncer.Cron = cron.New(cron.WithLocation(l))
	spec := "@every 30s"
	syncer.Cron.AddFunc(spec, syncer.BaseJob.Run)
	syncer.OnWork = func() error {
		return syncer.onWork(context.Background())
	}

	return &syncer
}

// Run start the cron and block until ctx is done
func (w *Syncer) Run(ctx context.Context) error {
	w.Cron.Start()
	defer w.Cron.Stop()

	<-ctx.Done()
	return ctx.Err()
}

func (w *Syncer) onWork(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "syncer")

	if err := w.loanz.Sync(ctx); err != nil {
		log.WithError(err).Errorln("loan sync")
		return err
	}

	if err := w.refreshTokens(ctx); err != nil {
		log.WithError(err).Errorln("token config refresh")
		return err
	}

	if err := w.exposures.Reconcile(ctx); err != nil {
		log.WithError(err).Errorln("exposure reconcile")
		return err
	}

	if err := w.property.Save(ctx, checkpointKey, time.Now().Unix()); err != nil {
		log.WithError(err).Errorln("property.Save", checkpointKey)
	}
	return nil
}

// refreshTokens converge the token config mirror with the on-chain config
// accounts, which are authoritative and admin owned.
func (w *Syncer) refreshTokens(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("worker", "syncer")

	tokens, err := w.tokens.All(ctx)
	if err != nil {
		return err
	}

	for _, token := range tokens {
		mint, err := solana.PublicKeyFromBase58(token.Mint)
		if err != nil {
			log.WithError(err).Errorln("bad mint:", token.Mint)
			continue
		}

		chainCfg, err := w.chainz.GetTokenConfigAccount(ctx, mint)
		if err != nil {
			log.WithError(err).Errorln("token config account:", token.Symbol)
			continue
		}

		token.Tier = chainCfg.Tier
		token.Enabled = chainCfg.Enabled
		token.VenueType = chainCfg.VenueType
		token.VenueAddress = chainCfg.VenueAddress.String()
		token.LtvBps = chainCfg.LtvBps
		token.LiquidationBonusBps = chainCfg.LiquidationBonusBps
		token.MinLoanAmount = chainCfg.MinLoanAmount
		token.MaxLoanAmount = chainCfg.MaxLoanAmount

		if err := w.tokens.Save(ctx, token); err != nil {
			log.WithError(err).Errorln("save token config:", token.Symbol)
		}
	}
	return nil
}
