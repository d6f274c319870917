package chain

import (
	"encoding/binary"
	"fmt"

	"moonlend/core"

	"github.com/gagliardetto/solana-go"
)

// account sizes without trailing reserved bytes
const (
	loanAccountMinLen        = 8 + 32 + 32 + 8 + 8 + 8 + 8 + 8 + 8 + 1 + 8 + 1
	tokenConfigAccountMinLen = 8 + 32 + 1 + 1 + 32 + 1 + 2 + 2 + 8 + 8 + 8 + 8 + 1
	poolAccountMinLen        = 49
)

// decodeLoan decode a loan account. Layout, after the 8 byte anchor
// discriminator: borrower, mint, collateral, borrowed, entry price,
// liquidation price, created at, due at, status, index, bump.
func decodeLoan(data []byte) (*core.ChainLoan, error) {
	if len(data) < loanAccountMinLen {
		return nil, fmt.Errorf("chain: short loan account: %d bytes", len(data))
	}

	loan := &core.ChainLoan{
		Borrower:         solana.PublicKeyFromBytes(data[8:40]),
		Mint:             solana.PublicKeyFromBytes(data[40:72]),
		CollateralAmount: binary.LittleEndian.Uint64(data[72:80]),
		Borrowed:         binary.LittleEndian.Uint64(data[80:88]),
		EntryPrice:       binary.LittleEndian.Uint64(data[88:96]),
		LiquidationPrice: binary.LittleEndian.Uint64(data[96:104]),
		CreatedAt:        int64(binary.LittleEndian.Uint64(data[104:112])),
		DueAt:            int64(binary.LittleEndian.Uint64(data[112:120])),
		Status:           core.LoanStatus(data[120]),
		Index:            binary.LittleEndian.Uint64(data[121:129]),
	}
	return loan, nil
}

// decodeTokenConfig decode a token config account
func decodeTokenConfig(data []byte) (*core.ChainTokenConfig, error) {
	if len(data) < tokenConfigAccountMinLen {
		return nil, fmt.Errorf("chain: short token config account: %d bytes", len(data))
	}

	cfg := &core.ChainTokenConfig{
		Mint:                solana.PublicKeyFromBytes(data[8:40]),
		Tier:                core.TokenTier(data[40]),
		Enabled:             data[41] != 0,
		VenueAddress:        solana.PublicKeyFromBytes(data[42:74]),
		VenueType:           venueTypeFromPool(data[74]),
		LtvBps:              uint64(binary.LittleEndian.Uint16(data[75:77])),
		LiquidationBonusBps: uint64(binary.LittleEndian.Uint16(data[77:79])),
		MinLoanAmount:       binary.LittleEndian.Uint64(data[79:87]),
		MaxLoanAmount:       binary.LittleEndian.Uint64(data[87:95]),
		ActiveLoans:         binary.LittleEndian.Uint64(data[95:103]),
	}
	return cfg, nil
}

// pool type tags of the on-chain enum: raydium and orca pools are routed,
// launch curves are read directly
func venueTypeFromPool(tag byte) core.VenueType {
	switch tag {
	case 2, 3:
		return core.VenueTypeFixedCurve
	default:
		return core.VenueTypeRouter
	}
}

// decodePoolReserves decode a fixed curve venue account. Virtual token
// reserves sit at offset 8, virtual quote reserves at 16, the completed
// flag at 48.
func decodePoolReserves(data []byte) (*core.PoolReserves, error) {
	if len(data) < poolAccountMinLen {
		return nil, core.ErrPoolDataUnavailable
	}

	reserves := &core.PoolReserves{
		BaseReserve:  binary.LittleEndian.Uint64(data[8:16]),
		QuoteReserve: binary.LittleEndian.Uint64(data[16:24]),
		Complete:     data[48] != 0,
	}

	if reserves.BaseReserve == 0 || reserves.QuoteReserve == 0 {
		return nil, core.ErrPoolDataUnavailable
	}
	return reserves, nil
}
