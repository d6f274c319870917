package exposure

import (
	"context"
	"time"

	"moonlend/core"
	"moonlend/pkg/fixed"

	"github.com/bluele/gcache"
	"github.com/fox-one/pkg/logger"
	"github.com/fox-one/pkg/store/db"
	foxuuid "github.com/fox-one/pkg/uuid"
)

type exposureService struct {
	db        *db.DB
	exposures core.IExposureStore
	loans     core.ILoanStore
	events    core.IEventStore

	warningBps  uint64
	criticalBps uint64
	cooldown    time.Duration

	// last alerted level per mint, expiring entries implement the cooldown
	alerts gcache.Cache
}

// New new exposure monitor
func New(
	database *db.DB,
	exposures core.IExposureStore,
	loans core.ILoanStore,
	events core.IEventStore,
	cfg *core.Config,
) core.IExposureService {
	return &exposureService{
		db:          database,
		exposures:   exposures,
		loans:       loans,
		events:      events,
		warningBps:  cfg.Risk.WarningBps,
		criticalBps: cfg.Risk.CriticalBps,
		cooldown:    cfg.Risk.AlertCooldown,
		alerts:      gcache.New(256).LRU().Build(),
	}
}

func (s *exposureService) OnLoanOpened(ctx context.Context, loan *core.Loan) error {
	return s.mutate(ctx, loan.Mint, func(record *core.ExposureRecord) {
		record.ActiveLoans++
		record.TotalCollateral = fixed.AddSat(record.TotalCollateral, loan.CollateralAmount)
		record.TotalBorrowed = fixed.AddSat(record.TotalBorrowed, loan.Borrowed)
	})
}

func (s *exposureService) OnLoanClosed(ctx context.Context, loan *core.Loan) error {
	return s.mutate(ctx, loan.Mint, func(record *core.ExposureRecord) {
		if record.ActiveLoans > 0 {
			record.ActiveLoans--
		}
		record.TotalCollateral = fixed.SubFloor(record.TotalCollateral, loan.CollateralAmount)
		record.TotalBorrowed = fixed.SubFloor(record.TotalBorrowed, loan.Borrowed)
	})
}

func (s *exposureService) UpdateLiquidity(ctx context.Context, mint string, liquidity uint64) error {
	return s.mutate(ctx, mint, func(record *core.ExposureRecord) {
		record.VenueLiquidity = liquidity
	})
}

// Reconcile rebuild every aggregate wholesale from the active loan set to
// correct incremental drift. Venue liquidity is left as last refreshed.
func (s *exposureService) Reconcile(ctx context.Context) error {
	loans, err := s.loans.ListActive(ctx)
	if err != nil {
		return err
	}

	type sums struct {
		count      int64
		collateral uint64
		borrowed   uint64
	}
	byMint := map[string]*sums{}
	for _, loan := range loans {
		sum, ok := byMint[loan.Mint]
		if !ok {
			sum = &sums{}
			byMint[loan.Mint] = sum
		}
		sum.count++
		sum.collateral = fixed.AddSat(sum.collateral, loan.CollateralAmount)
		sum.borrowed = fixed.AddSat(sum.borrowed, loan.Borrowed)
	}

	records, err := s.exposures.All(ctx)
	if err != nil {
		return err
	}

	mints := map[string]bool{}
	for _, record := range records {
		mints[record.Mint] = true
	}
	for mint := range byMint {
		mints[mint] = true
	}

	for mint := range mints {
		sum := byMint[mint]
		if sum == nil {
			sum = &sums{}
		}

		if err := s.mutate(ctx, mint, func(record *core.ExposureRecord) {
			record.ActiveLoans = sum.count
			record.TotalCollateral = sum.collateral
			record.TotalBorrowed = sum.borrowed
		}); err != nil {
			return err
		}
	}
	return nil
}

// mutate load-modify-store one record, then re-evaluate its warning level
func (s *exposureService) mutate(ctx context.Context, mint string, fn func(record *core.ExposureRecord)) error {
	record, err := s.exposures.Find(ctx, mint)
	if err != nil {
		return err
	}

	if record.ID == 0 {
		record.Mint = mint
		if err := s.exposures.Save(ctx, record); err != nil {
			return err
		}
	}

	version := record.Version
	fn(record)
	s.evaluate(ctx, record)

	return s.exposures.Update(ctx, s.db, record, version)
}

// evaluate recompute ratio and level, emit a throttled alert on escalation
func (s *exposureService) evaluate(ctx context.Context, record *core.ExposureRecord) {
	record.RatioBps = exposureRatio(record.TotalBorrowed, record.VenueLiquidity)

	level := core.WarningLevelNone
	switch {
	case record.RatioBps >= s.criticalBps:
		level = core.WarningLevelCritical
	case record.RatioBps >= s.warningBps:
		level = core.WarningLevelWarning
	}
	record.Level = level

	if level == core.WarningLevelNone {
		return
	}
	if last, err := s.alerts.Get(record.Mint); err == nil {
		if alerted, ok := last.(core.WarningLevel); ok && level <= alerted {
			return
		}
	}

	if err := s.emit(ctx, record, level); err != nil {
		logger.FromContext(ctx).WithError(err).Errorln("emit exposure alert")
		return
	}
	_ = s.alerts.SetWithExpire(record.Mint, level, s.cooldown)
}

func (s *exposureService) emit(ctx context.Context, record *core.ExposureRecord, level core.WarningLevel) error {
	typ := core.EventTypeExposureWarning
	if level == core.WarningLevelCritical {
		typ = core.EventTypeExposureCritical
	}

	event, err := core.NewEvent(foxuuid.New(), typ, map[string]interface{}{
		"mint":             record.Mint,
		"active_loans":     record.ActiveLoans,
		"total_borrowed":   record.TotalBorrowed,
		"venue_liquidity":  record.VenueLiquidity,
		"ratio_bps":        record.RatioBps,
		"level":            level.String(),
	})
	if err != nil {
		return err
	}
	return s.events.Create(ctx, event)
}

// ratioCapBps reported when the venue has no depth to absorb a sale
const ratioCapBps = 1_000_000

// exposureRatio borrowed over venue liquidity in bps
func exposureRatio(borrowed, liquidity uint64) uint64 {
	if liquidity == 0 {
		if borrowed == 0 {
			return 0
		}
		return ratioCapBps
	}
	ratio, err := fixed.MulDiv(borrowed, 10000, liquidity)
	if err != nil {
		return ratioCapBps
	}
	return ratio
}
