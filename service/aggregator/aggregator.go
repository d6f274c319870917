package aggregator

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"moonlend/core"
	"moonlend/pkg/resthttp"

	"github.com/fox-one/pkg/logger"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

type aggregatorService struct {
	endpoint      string
	priceEndpoint string
}

// New new aggregator service
func New(cfg *core.Config) core.IAggregatorService {
	return &aggregatorService{
		endpoint:      cfg.Aggregator.EndPoint,
		priceEndpoint: cfg.Aggregator.PriceEndPoint,
	}
}

type priceResponse struct {
	Data map[string]struct {
		ID    string `json:"id"`
		Price string `json:"price"`
	} `json:"data"`
}

func (s *aggregatorService) PriceOf(ctx context.Context, mint string) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s?ids=%s", s.priceEndpoint, mint)
	resp, err := resthttp.Request(ctx).Get(url)
	if err != nil {
		return decimal.Zero, err
	}

	var body priceResponse
	if err := resthttp.ParseResponse(resp, &body); err != nil {
		return decimal.Zero, err
	}

	entry, ok := body.Data[mint]
	if !ok || entry.Price == "" {
		return decimal.Zero, core.ErrNoPriceAvailable
	}

	price, err := decimal.NewFromString(entry.Price)
	if err != nil || price.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, core.ErrNoPriceAvailable
	}
	return price, nil
}

type quoteResponse struct {
	InputMint            string `json:"inputMint"`
	OutputMint           string `json:"outputMint"`
	InAmount             string `json:"inAmount"`
	OutAmount            string `json:"outAmount"`
	OtherAmountThreshold string `json:"otherAmountThreshold"`
	SlippageBps          int64  `json:"slippageBps"`
	ErrorMessage         string `json:"error,omitempty"`
}

func (s *aggregatorService) Quote(ctx context.Context, inputMint, outputMint string, amount, slippageBps uint64) (*core.AggregatorQuote, error) {
	resp, err := resthttp.Request(ctx).
		SetQueryParams(map[string]string{
			"inputMint":   inputMint,
			"outputMint":  outputMint,
			"amount":      cast.ToString(amount),
			"slippageBps": cast.ToString(slippageBps),
			"swapMode":    "ExactIn",
		}).
		Get(s.endpoint + "/quote")
	if err != nil {
		return nil, err
	}

	var body quoteResponse
	if err := resthttp.ParseResponse(resp, &body); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrVenueQuoteFailed, err)
	}
	if body.ErrorMessage != "" {
		logger.FromContext(ctx).Debugln("aggregator quote rejected:", body.ErrorMessage)
		return nil, core.ErrNoPriceAvailable
	}

	outAmount := cast.ToUint64(body.OutAmount)
	if outAmount == 0 {
		return nil, core.ErrNoPriceAvailable
	}

	return &core.AggregatorQuote{
		InputMint:            body.InputMint,
		OutputMint:           body.OutputMint,
		InAmount:             cast.ToUint64(body.InAmount),
		OutAmount:            outAmount,
		OtherAmountThreshold: cast.ToUint64(body.OtherAmountThreshold),
		SlippageBps:          uint64(body.SlippageBps),
		Raw:                  json.RawMessage(resp.Body()),
	}, nil
}

type swapInstructionsResponse struct {
	SwapInstruction struct {
		ProgramID string `json:"programId"`
		Accounts  []struct {
			Pubkey     string `json:"pubkey"`
			IsSigner   bool   `json:"isSigner"`
			IsWritable bool   `json:"isWritable"`
		} `json:"accounts"`
		Data string `json:"data"`
	} `json:"swapInstruction"`
}

// BuildSwap exchange a quote for ready to submit routing instructions
func (s *aggregatorService) BuildSwap(ctx context.Context, quote *core.AggregatorQuote, user string) (*core.ExecutionData, error) {
	resp, err := resthttp.Request(ctx).
		SetBody(map[string]interface{}{
			"quoteResponse": quote.Raw,
			"userPublicKey": user,
		}).
		Post(s.endpoint + "/swap-instructions")
	if err != nil {
		return nil, err
	}

	var body swapInstructionsResponse
	if err := resthttp.ParseResponse(resp, &body); err != nil {
		return nil, err
	}

	data, err := base64.StdEncoding.DecodeString(body.SwapInstruction.Data)
	if err != nil {
		return nil, fmt.Errorf("aggregator: decode swap data: %w", err)
	}

	program, err := solana.PublicKeyFromBase58(body.SwapInstruction.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("aggregator: invalid program id: %w", err)
	}

	accounts := make([]*solana.AccountMeta, 0, len(body.SwapInstruction.Accounts)+1)
	accounts = append(accounts, solana.NewAccountMeta(program, false, false))
	for _, a := range body.SwapInstruction.Accounts {
		pk, err := solana.PublicKeyFromBase58(a.Pubkey)
		if err != nil {
			return nil, fmt.Errorf("aggregator: invalid account: %w", err)
		}
		accounts = append(accounts, solana.NewAccountMeta(pk, a.IsWritable, a.IsSigner))
	}

	return &core.ExecutionData{
		Data:     data,
		Accounts: accounts,
	}, nil
}
