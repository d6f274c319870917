package oracle

import (
	"context"
	"math/big"
	"time"

	"moonlend/core"
	"moonlend/internal/lending"

	"github.com/bluele/gcache"
	"github.com/fox-one/pkg/logger"
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"
)

// priceService resolves collateral prices. Strategy A reads venue reserves
// directly and computes the price with the on-chain program's own formula;
// strategy B falls back to the aggregator. Quotes are cached per mint and
// shared across callers to bound external request volume.
type priceService struct {
	chainz     core.IChainService
	aggregator core.IAggregatorService

	expire time.Duration
	cache  gcache.Cache
	sf     singleflight.Group
}

// New new price oracle service
func New(cfg *core.Config, chainz core.IChainService, aggregator core.IAggregatorService) core.IPriceOracleService {
	expire := cfg.Oracle.CacheExpire
	if expire <= 0 {
		expire = 10 * time.Second
	}

	return &priceService{
		chainz:     chainz,
		aggregator: aggregator,
		expire:     expire,
		cache:      gcache.New(1024).LRU().Build(),
	}
}

func (s *priceService) GetPrice(ctx context.Context, token *core.TokenConfig) (*core.PriceQuote, error) {
	if v, err := s.cache.Get(token.Mint); err == nil {
		if quote, ok := v.(*core.PriceQuote); ok {
			return quote, nil
		}
	}

	v, err, _ := s.sf.Do(token.Mint, func() (interface{}, error) {
		quote, err := s.fetch(ctx, token)
		if err != nil {
			return nil, err
		}
		s.cache.SetWithExpire(token.Mint, quote, s.expire)
		return quote, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*core.PriceQuote), nil
}

func (s *priceService) fetch(ctx context.Context, token *core.TokenConfig) (*core.PriceQuote, error) {
	log := logger.FromContext(ctx).WithField("mint", token.Mint)

	if token.VenueType == core.VenueTypeFixedCurve && token.VenueAddress != "" {
		quote, err := s.readPool(ctx, token)
		if err == nil {
			return quote, nil
		}
		log.WithError(err).Debugln("pool read failed, falling back to aggregator")
	}

	return s.readAggregator(ctx, token)
}

// readPool strategy A: direct reserve read. The scale constant and integer
// division order are identical to the on-chain computation, so off-chain
// estimates can never disagree with on-chain enforcement.
func (s *priceService) readPool(ctx context.Context, token *core.TokenConfig) (*core.PriceQuote, error) {
	venue, err := solana.PublicKeyFromBase58(token.VenueAddress)
	if err != nil {
		return nil, core.ErrPoolDataUnavailable
	}

	reserves, err := s.chainz.GetPoolReserves(ctx, venue)
	if err != nil {
		return nil, err
	}

	price, err := lending.PoolPrice(reserves.QuoteReserve, reserves.BaseReserve)
	if err != nil {
		return nil, core.ErrPoolDataUnavailable
	}

	return &core.PriceQuote{
		Mint:         token.Mint,
		Price:        price,
		HumanPrice:   decimal.NewFromBigInt(new(big.Int).SetUint64(price), -9),
		Source:       core.PriceSourcePool,
		BaseReserve:  reserves.BaseReserve,
		QuoteReserve: reserves.QuoteReserve,
		FetchedAt:    time.Now(),
	}, nil
}

// readAggregator strategy B: aggregator price converted into the same
// fixed point scale by rounding.
func (s *priceService) readAggregator(ctx context.Context, token *core.TokenConfig) (*core.PriceQuote, error) {
	human, err := s.aggregator.PriceOf(ctx, token.Mint)
	if err != nil {
		return nil, core.ErrNoPriceAvailable
	}

	scaled := human.Mul(decimal.New(lending.PriceScale, 0)).Round(0)
	if scaled.LessThanOrEqual(decimal.Zero) {
		return nil, core.ErrNoPriceAvailable
	}

	return &core.PriceQuote{
		Mint:       token.Mint,
		Price:      scaled.BigInt().Uint64(),
		HumanPrice: human,
		Source:     core.PriceSourceAggregator,
		FetchedAt:  time.Now(),
	}, nil
}
