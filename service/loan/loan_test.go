package loan

import (
	"context"
	"testing"
	"time"

	"moonlend/core"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddress = "So11111111111111111111111111111111111111112"

type fakeLoanStore struct {
	core.ILoanStore
	byAddress map[string]*core.Loan
	created   int
}

func newFakeLoanStore() *fakeLoanStore {
	return &fakeLoanStore{byAddress: map[string]*core.Loan{}}
}

func (s *fakeLoanStore) FindByAddress(ctx context.Context, address string) (*core.Loan, error) {
	if loan, ok := s.byAddress[address]; ok {
		return loan, nil
	}
	return &core.Loan{}, nil
}

func (s *fakeLoanStore) Create(ctx context.Context, loan *core.Loan) error {
	s.created++
	loan.ID = uint64(s.created)
	s.byAddress[loan.Address] = loan
	return nil
}

type fakeChain struct {
	core.IChainService
	loan *core.ChainLoan
}

func (c *fakeChain) GetLoanAccount(ctx context.Context, address solana.PublicKey) (*core.ChainLoan, error) {
	return c.loan, nil
}

type fakeExposure struct {
	core.IExposureService
	opened int
}

func (s *fakeExposure) OnLoanOpened(ctx context.Context, loan *core.Loan) error {
	s.opened++
	return nil
}

type fakeEventStore struct {
	core.IEventStore
	events []*core.Event
}

func (s *fakeEventStore) Create(ctx context.Context, event *core.Event) error {
	s.events = append(s.events, event)
	return nil
}

func TestRecordOpen(t *testing.T) {
	ctx := context.Background()

	borrower := solana.MustPublicKeyFromBase58("Vote111111111111111111111111111111111111111")
	mint := solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")

	loans := newFakeLoanStore()
	exposures := &fakeExposure{}
	events := &fakeEventStore{}
	s := New(nil, loans, &fakeChain{loan: &core.ChainLoan{
		Borrower:         borrower,
		Mint:             mint,
		CollateralAmount: 1_000_000_000,
		Borrowed:         350_000,
		EntryPrice:       500,
		LiquidationPrice: 357,
		DueAt:            time.Now().Add(24 * time.Hour).Unix(),
		Status:           core.LoanStatusActive,
	}}, exposures, events)

	loan, err := s.RecordOpen(ctx, testAddress)
	require.NoError(t, err)
	assert.Equal(t, borrower.String(), loan.Borrower)
	assert.Equal(t, mint.String(), loan.Mint)
	assert.Equal(t, uint64(357), loan.LiquidationPrice)
	assert.Equal(t, core.LoanStatusActive, loan.Status)

	assert.Equal(t, 1, exposures.opened)
	require.Len(t, events.events, 1)
	assert.Equal(t, core.EventTypeLoanCreated, events.events[0].Type)

	// recording the same address again is a no-op
	again, err := s.RecordOpen(ctx, testAddress)
	require.NoError(t, err)
	assert.Equal(t, loan.ID, again.ID)
	assert.Equal(t, 1, loans.created)
	assert.Equal(t, 1, exposures.opened)
	assert.Len(t, events.events, 1)
}
