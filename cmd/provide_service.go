package cmd

import (
	"moonlend/core"
	"moonlend/service/aggregator"
	"moonlend/service/chain"
	exposureservice "moonlend/service/exposure"
	"moonlend/service/liquidation"
	loanservice "moonlend/service/loan"
	"moonlend/service/oracle"
	"moonlend/service/scanner"
	"moonlend/service/venue"

	"github.com/fox-one/pkg/store/db"
)

func provideChainService() core.IChainService {
	chainz, err := chain.New(provideConfig())
	if err != nil {
		panic(err)
	}
	return chainz
}

func provideAggregatorService() core.IAggregatorService {
	return aggregator.New(provideConfig())
}

func provideOracleService(chainz core.IChainService, aggregatorz core.IAggregatorService) core.IPriceOracleService {
	return oracle.New(provideConfig(), chainz, aggregatorz)
}

func provideVenueSelector(chainz core.IChainService, aggregatorz core.IAggregatorService) *venue.Selector {
	router, err := venue.NewRouter(provideConfig(), aggregatorz)
	if err != nil {
		panic(err)
	}
	return venue.NewSelector(venue.NewFixedCurve(chainz), router)
}

func provideExposureService(database *db.DB) core.IExposureService {
	return exposureservice.New(
		database,
		provideExposureStore(database),
		provideLoanStore(database),
		provideEventStore(database),
		provideConfig(),
	)
}

func provideLoanService(database *db.DB, chainz core.IChainService, exposures core.IExposureService) core.ILoanLedgerService {
	return loanservice.New(
		database,
		provideLoanStore(database),
		chainz,
		exposures,
		provideEventStore(database),
	)
}

func provideScannerService(database *db.DB, chainz core.IChainService, aggregatorz core.IAggregatorService) core.IScannerService {
	return scanner.New(
		provideLoanStore(database),
		provideTokenStore(database),
		provideOracleService(chainz, aggregatorz),
	)
}

func provideLiquidationService(database *db.DB, chainz core.IChainService, aggregatorz core.IAggregatorService, exposures core.IExposureService) core.ILiquidationService {
	return liquidation.New(
		database,
		provideLoanStore(database),
		provideTokenStore(database),
		exposures,
		provideEventStore(database),
		chainz,
		provideVenueSelector(chainz, aggregatorz),
	)
}
