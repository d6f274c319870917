package cmd

import (
	"sync"

	"moonlend/worker"
	"moonlend/worker/liquidity"
	"moonlend/worker/scanner"
	"moonlend/worker/syncer"

	"github.com/fox-one/pkg/logger"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "moonlend job worker",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		log := logger.FromContext(ctx)
		ctx = logger.WithContext(ctx, log)

		database := provideDatabase()
		defer database.Close()

		propertyStore := providePropertyStore(database)
		chainz := provideChainService()
		aggregatorz := provideAggregatorService()
		exposurez := provideExposureService(database)
		loanz := provideLoanService(database, chainz, exposurez)
		scannerz := provideScannerService(database, chainz, aggregatorz)
		liquidationz := provideLiquidationService(database, chainz, aggregatorz, exposurez)

		workers := []worker.Worker{
			scanner.New(scannerz, liquidationz, propertyStore),
			liquidity.New(cfg.App.Location, provideTokenStore(database), chainz, exposurez),
			syncer.New(cfg.App.Location, loanz, provideTokenStore(database), chainz, exposurez, propertyStore),
		}

		wg := sync.WaitGroup{}
		for _, w := range workers {
			wg.Add(1)

			go func(worker worker.Worker) {
				defer wg.Done()
				worker.Run(ctx)
			}(w)
		}

		wg.Wait()
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
