package chain

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"moonlend/core"

	"github.com/fox-one/pkg/logger"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

const (
	confirmInterval = 2 * time.Second
	confirmTimeout  = 60 * time.Second
)

// anchor instruction discriminator for "liquidate"
var liquidateDiscriminator = [8]byte{0xdf, 0x57, 0x30, 0x2e, 0x8d, 0x1f, 0x99, 0x7b}

// seeds of the lending program's PDAs
var (
	seedProtocolState = []byte("protocol_state")
	seedTokenConfig   = []byte("token_config")
	seedTreasury      = []byte("treasury")
	seedVault         = []byte("vault")
)

type chainService struct {
	client     *rpc.Client
	program    solana.PublicKey
	liquidator solana.PrivateKey

	protocolState solana.PublicKey
	treasury      solana.PublicKey
}

// New new chain service
func New(cfg *core.Config) (core.IChainService, error) {
	program, err := solana.PublicKeyFromBase58(cfg.Chain.Program)
	if err != nil {
		return nil, fmt.Errorf("chain: invalid program id: %w", err)
	}

	liquidator, err := solana.PrivateKeyFromBase58(cfg.Chain.LiquidatorKey)
	if err != nil {
		return nil, fmt.Errorf("chain: invalid liquidator key: %w", err)
	}

	protocolState, _, err := solana.FindProgramAddress([][]byte{seedProtocolState}, program)
	if err != nil {
		return nil, err
	}

	treasury, _, err := solana.FindProgramAddress([][]byte{seedTreasury}, program)
	if err != nil {
		return nil, err
	}

	return &chainService{
		client:        rpc.New(cfg.Chain.Endpoint),
		program:       program,
		liquidator:    liquidator,
		protocolState: protocolState,
		treasury:      treasury,
	}, nil
}

func (s *chainService) accountData(ctx context.Context, address solana.PublicKey) ([]byte, error) {
	out, err := s.client.GetAccountInfo(ctx, address)
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, core.ErrAccountNotFound
		}
		return nil, err
	}
	if out == nil || out.Value == nil {
		return nil, core.ErrAccountNotFound
	}

	data := out.Value.Data.GetBinary()
	if len(data) == 0 {
		return nil, core.ErrAccountNotFound
	}
	return data, nil
}

func (s *chainService) GetLoanAccount(ctx context.Context, address solana.PublicKey) (*core.ChainLoan, error) {
	data, err := s.accountData(ctx, address)
	if err != nil {
		return nil, err
	}
	return decodeLoan(data)
}

func (s *chainService) GetTokenConfigAccount(ctx context.Context, mint solana.PublicKey) (*core.ChainTokenConfig, error) {
	address, _, err := solana.FindProgramAddress([][]byte{seedTokenConfig, mint.Bytes()}, s.program)
	if err != nil {
		return nil, err
	}

	data, err := s.accountData(ctx, address)
	if err != nil {
		return nil, err
	}
	return decodeTokenConfig(data)
}

func (s *chainService) GetPoolReserves(ctx context.Context, pool solana.PublicKey) (*core.PoolReserves, error) {
	data, err := s.accountData(ctx, pool)
	if err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			return nil, core.ErrPoolDataUnavailable
		}
		return nil, err
	}
	return decodePoolReserves(data)
}

// SubmitLiquidation build, sign and send the liquidate transaction carrying
// the minimum output guard and the venue routing payload.
func (s *chainService) SubmitLiquidation(ctx context.Context, params *core.LiquidationParams) (solana.Signature, error) {
	loanAccount, err := solana.PublicKeyFromBase58(params.Loan.Address)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("chain: invalid loan address: %w", err)
	}
	mint, err := solana.PublicKeyFromBase58(params.Token.Mint)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("chain: invalid mint: %w", err)
	}

	tokenConfig, _, err := solana.FindProgramAddress([][]byte{seedTokenConfig, mint.Bytes()}, s.program)
	if err != nil {
		return solana.Signature{}, err
	}
	vault, _, err := solana.FindProgramAddress([][]byte{seedVault, loanAccount.Bytes()}, s.program)
	if err != nil {
		return solana.Signature{}, err
	}

	liquidatorPub := s.liquidator.PublicKey()
	liquidatorTokenAccount, _, err := solana.FindAssociatedTokenAddress(liquidatorPub, mint)
	if err != nil {
		return solana.Signature{}, err
	}

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(s.protocolState, true, false),
		solana.NewAccountMeta(tokenConfig, true, false),
		solana.NewAccountMeta(loanAccount, true, false),
		solana.NewAccountMeta(s.treasury, true, false),
		solana.NewAccountMeta(liquidatorPub, true, true),
		solana.NewAccountMeta(liquidatorTokenAccount, true, false),
		solana.NewAccountMeta(vault, true, false),
		solana.NewAccountMeta(mint, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}
	accounts = append(accounts, params.Execution.Accounts...)

	data := make([]byte, 0, 8+8+4+len(params.Execution.Data))
	data = append(data, liquidateDiscriminator[:]...)
	data = binary.LittleEndian.AppendUint64(data, params.MinOutput)
	data = binary.LittleEndian.AppendUint32(data, uint32(len(params.Execution.Data)))
	data = append(data, params.Execution.Data...)

	ix := solana.NewInstruction(s.program, accounts, data)

	recent, err := s.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("chain: latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{ix},
		recent.Value.Blockhash,
		solana.TransactionPayer(liquidatorPub),
	)
	if err != nil {
		return solana.Signature{}, err
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(liquidatorPub) {
			return &s.liquidator
		}
		return nil
	}); err != nil {
		return solana.Signature{}, fmt.Errorf("chain: sign: %w", err)
	}

	sig, err := s.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentProcessed,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("%w: %v", core.ErrTransactionFailed, err)
	}

	return sig, nil
}

// ConfirmTransaction poll signature status at a fixed interval up to a
// bounded timeout. An explicit on-chain error fails fast; a timeout is an
// attempt failure, never a success, even though the transaction may still
// land later.
func (s *chainService) ConfirmTransaction(ctx context.Context, sig solana.Signature) error {
	log := logger.FromContext(ctx).WithField("signature", sig.String())

	ctx, cancel := context.WithTimeout(ctx, confirmTimeout)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return core.ErrConfirmationTimeout
		case <-time.After(confirmInterval):
		}

		out, err := s.client.GetSignatureStatuses(ctx, true, sig)
		if err != nil {
			log.WithError(err).Debugln("signature status")
			continue
		}
		if len(out.Value) == 0 || out.Value[0] == nil {
			continue
		}

		status := out.Value[0]
		if status.Err != nil {
			return fmt.Errorf("%w: %v", core.ErrTransactionFailed, status.Err)
		}
		switch status.ConfirmationStatus {
		case rpc.ConfirmationStatusConfirmed, rpc.ConfirmationStatusFinalized:
			return nil
		}
	}
}
