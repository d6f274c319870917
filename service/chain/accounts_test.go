package chain

import (
	"encoding/binary"
	"testing"

	"moonlend/core"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildLoanAccount(status core.LoanStatus) []byte {
	data := make([]byte, loanAccountMinLen+32)
	borrower := solana.NewWallet().PublicKey()
	mint := solana.NewWallet().PublicKey()
	copy(data[8:40], borrower.Bytes())
	copy(data[40:72], mint.Bytes())
	binary.LittleEndian.PutUint64(data[72:80], 1_000_000_000)  // collateral
	binary.LittleEndian.PutUint64(data[80:88], 350_000)        // borrowed
	binary.LittleEndian.PutUint64(data[88:96], 500)            // entry price
	binary.LittleEndian.PutUint64(data[96:104], 357)           // liquidation price
	binary.LittleEndian.PutUint64(data[104:112], 1_700_000_000)
	binary.LittleEndian.PutUint64(data[112:120], 1_700_086_400)
	data[120] = byte(status)
	binary.LittleEndian.PutUint64(data[121:129], 7)
	return data
}

func TestDecodeLoan(t *testing.T) {
	loan, err := decodeLoan(buildLoanAccount(core.LoanStatusActive))
	require.Nil(t, err)

	assert.Equal(t, uint64(1_000_000_000), loan.CollateralAmount)
	assert.Equal(t, uint64(350_000), loan.Borrowed)
	assert.Equal(t, uint64(500), loan.EntryPrice)
	assert.Equal(t, uint64(357), loan.LiquidationPrice)
	assert.Equal(t, int64(1_700_086_400), loan.DueAt)
	assert.Equal(t, core.LoanStatusActive, loan.Status)
	assert.Equal(t, uint64(7), loan.Index)

	loan, err = decodeLoan(buildLoanAccount(core.LoanStatusLiquidatedPrice))
	require.Nil(t, err)
	assert.Equal(t, core.LoanStatusLiquidatedPrice, loan.Status)

	_, err = decodeLoan(make([]byte, 16))
	assert.NotNil(t, err)
}

func TestDecodePoolReserves(t *testing.T) {
	data := make([]byte, 64)
	binary.LittleEndian.PutUint64(data[8:16], 1_073_000_000_000_000)
	binary.LittleEndian.PutUint64(data[16:24], 30_000_000_000)

	reserves, err := decodePoolReserves(data)
	require.Nil(t, err)
	assert.Equal(t, uint64(1_073_000_000_000_000), reserves.BaseReserve)
	assert.Equal(t, uint64(30_000_000_000), reserves.QuoteReserve)
	assert.False(t, reserves.Complete)

	// empty reserves are unusable
	_, err = decodePoolReserves(make([]byte, 64))
	assert.Equal(t, core.ErrPoolDataUnavailable, err)

	// short account is unusable
	_, err = decodePoolReserves(make([]byte, 24))
	assert.Equal(t, core.ErrPoolDataUnavailable, err)
}

func TestDecodeTokenConfig(t *testing.T) {
	data := make([]byte, tokenConfigAccountMinLen+32)
	mint := solana.NewWallet().PublicKey()
	pool := solana.NewWallet().PublicKey()
	copy(data[8:40], mint.Bytes())
	data[40] = 1 // silver
	data[41] = 1 // enabled
	copy(data[42:74], pool.Bytes())
	data[74] = 2 // launch curve
	binary.LittleEndian.PutUint16(data[75:77], 7000)
	binary.LittleEndian.PutUint16(data[77:79], 500)
	binary.LittleEndian.PutUint64(data[79:87], 10_000_000)
	binary.LittleEndian.PutUint64(data[87:95], 10_000_000_000)
	binary.LittleEndian.PutUint64(data[95:103], 3)

	cfg, err := decodeTokenConfig(data)
	require.Nil(t, err)
	assert.Equal(t, mint, cfg.Mint)
	assert.Equal(t, core.TokenTierSilver, cfg.Tier)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, pool, cfg.VenueAddress)
	assert.Equal(t, core.VenueTypeFixedCurve, cfg.VenueType)
	assert.Equal(t, uint64(7000), cfg.LtvBps)
	assert.Equal(t, uint64(500), cfg.LiquidationBonusBps)
	assert.Equal(t, uint64(3), cfg.ActiveLoans)
}
