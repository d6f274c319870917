package exposure

import (
	"context"
	"testing"
	"time"

	"moonlend/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memExposureStore struct {
	records map[string]*core.ExposureRecord
}

func newMemExposureStore() *memExposureStore {
	return &memExposureStore{records: map[string]*core.ExposureRecord{}}
}

func (s *memExposureStore) Save(ctx context.Context, record *core.ExposureRecord) error {
	if _, ok := s.records[record.Mint]; !ok {
		clone := *record
		clone.ID = uint64(len(s.records) + 1)
		s.records[record.Mint] = &clone
		record.ID = clone.ID
	}
	return nil
}

func (s *memExposureStore) Find(ctx context.Context, mint string) (*core.ExposureRecord, error) {
	if record, ok := s.records[mint]; ok {
		clone := *record
		return &clone, nil
	}
	return &core.ExposureRecord{}, nil
}

func (s *memExposureStore) All(ctx context.Context) ([]*core.ExposureRecord, error) {
	var records []*core.ExposureRecord
	for _, record := range s.records {
		clone := *record
		records = append(records, &clone)
	}
	return records, nil
}

func (s *memExposureStore) Update(ctx context.Context, tx *db.DB, record *core.ExposureRecord, version int64) error {
	current, ok := s.records[record.Mint]
	if !ok || current.Version != version {
		return db.ErrOptimisticLock
	}
	clone := *record
	clone.Version = version + 1
	s.records[record.Mint] = &clone
	return nil
}

type memLoanStore struct {
	core.ILoanStore
	active []*core.Loan
}

func (s *memLoanStore) ListActive(ctx context.Context) ([]*core.Loan, error) {
	return s.active, nil
}

type memEventStore struct {
	core.IEventStore
	events []*core.Event
}

func (s *memEventStore) Create(ctx context.Context, event *core.Event) error {
	s.events = append(s.events, event)
	return nil
}

func (s *memEventStore) typesFired() []string {
	var types []string
	for _, event := range s.events {
		types = append(types, event.Type)
	}
	return types
}

func testService(exposures core.IExposureStore, loans core.ILoanStore, events core.IEventStore) core.IExposureService {
	return New(nil, exposures, loans, events, &core.Config{
		Risk: core.Risk{
			WarningBps:    500,
			CriticalBps:   1000,
			AlertCooldown: 15 * time.Minute,
		},
	})
}

func loanOf(mint string, collateral, borrowed uint64) *core.Loan {
	return &core.Loan{Mint: mint, CollateralAmount: collateral, Borrowed: borrowed}
}

func TestExposureAccounting(t *testing.T) {
	ctx := context.Background()
	store := newMemExposureStore()
	s := testService(store, &memLoanStore{}, &memEventStore{})

	require.NoError(t, s.OnLoanOpened(ctx, loanOf("mint", 100, 40)))
	require.NoError(t, s.OnLoanOpened(ctx, loanOf("mint", 200, 60)))
	require.NoError(t, s.OnLoanClosed(ctx, loanOf("mint", 100, 40)))

	record, err := store.Find(ctx, "mint")
	require.NoError(t, err)
	assert.Equal(t, int64(1), record.ActiveLoans)
	assert.Equal(t, uint64(200), record.TotalCollateral)
	assert.Equal(t, uint64(60), record.TotalBorrowed)

	// drift: closing more than is tracked floors at zero
	require.NoError(t, s.OnLoanClosed(ctx, loanOf("mint", 1000, 1000)))
	record, err = store.Find(ctx, "mint")
	require.NoError(t, err)
	assert.Zero(t, record.ActiveLoans)
	assert.Zero(t, record.TotalCollateral)
	assert.Zero(t, record.TotalBorrowed)
}

func TestExposureWarningScenario(t *testing.T) {
	ctx := context.Background()
	store := newMemExposureStore()
	events := &memEventStore{}
	s := testService(store, &memLoanStore{}, events)

	require.NoError(t, s.UpdateLiquidity(ctx, "mint", 100))

	// three loans totaling 6 borrowed against 100 of venue liquidity
	require.NoError(t, s.OnLoanOpened(ctx, loanOf("mint", 10, 2)))
	require.NoError(t, s.OnLoanOpened(ctx, loanOf("mint", 10, 2)))
	require.NoError(t, s.OnLoanOpened(ctx, loanOf("mint", 10, 2)))

	record, _ := store.Find(ctx, "mint")
	assert.Equal(t, uint64(600), record.RatioBps)
	assert.Equal(t, core.WarningLevelWarning, record.Level)
	assert.Equal(t, []string{core.EventTypeExposureWarning}, events.typesFired())

	// a fourth loan pushes the ratio over the critical threshold
	require.NoError(t, s.OnLoanOpened(ctx, loanOf("mint", 10, 5)))
	record, _ = store.Find(ctx, "mint")
	assert.Equal(t, uint64(1100), record.RatioBps)
	assert.Equal(t, core.WarningLevelCritical, record.Level)
	assert.Equal(t, []string{core.EventTypeExposureWarning, core.EventTypeExposureCritical}, events.typesFired())

	// further openings within the cooldown window stay silent
	require.NoError(t, s.OnLoanOpened(ctx, loanOf("mint", 10, 5)))
	require.NoError(t, s.OnLoanOpened(ctx, loanOf("mint", 10, 5)))
	assert.Len(t, events.events, 2)
}

func TestExposureReconcile(t *testing.T) {
	ctx := context.Background()
	store := newMemExposureStore()
	loans := &memLoanStore{active: []*core.Loan{
		loanOf("alpha", 100, 10),
		loanOf("alpha", 200, 20),
		loanOf("beta", 50, 5),
	}}
	s := testService(store, loans, &memEventStore{})

	// stale incremental state for alpha, none for beta
	require.NoError(t, s.OnLoanOpened(ctx, loanOf("alpha", 999, 999)))

	require.NoError(t, s.Reconcile(ctx))

	alpha, _ := store.Find(ctx, "alpha")
	assert.Equal(t, int64(2), alpha.ActiveLoans)
	assert.Equal(t, uint64(300), alpha.TotalCollateral)
	assert.Equal(t, uint64(30), alpha.TotalBorrowed)

	beta, _ := store.Find(ctx, "beta")
	assert.Equal(t, int64(1), beta.ActiveLoans)
	assert.Equal(t, uint64(50), beta.TotalCollateral)
	assert.Equal(t, uint64(5), beta.TotalBorrowed)
}

func TestExposureRatioEmptyVenue(t *testing.T) {
	assert.Zero(t, exposureRatio(0, 0))
	assert.Equal(t, uint64(ratioCapBps), exposureRatio(1, 0))
	assert.Equal(t, uint64(600), exposureRatio(6, 100))
}
