package cmd

import (
	"encoding/json"

	"moonlend/core"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

// liquidate one loan by ledger id; the reason is re-detected by a scan so
// the persisted explanation matches why the loan was selected
var liquidateCmd = &cobra.Command{
	Use:   "liquidate <loan_id>",
	Short: "liquidate a single eligible loan",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()
		loanID := cast.ToUint64(args[0])

		database := provideDatabase()
		defer database.Close()

		chainz := provideChainService()
		aggregatorz := provideAggregatorService()
		exposurez := provideExposureService(database)
		scannerz := provideScannerService(database, chainz, aggregatorz)
		liquidationz := provideLiquidationService(database, chainz, aggregatorz, exposurez)

		candidates, err := scannerz.Scan(ctx)
		if err != nil {
			cmd.PrintErrln("scan error:", err)
			return
		}

		var candidate *core.LiquidationCandidate
		for _, c := range candidates {
			if c.LoanID == loanID {
				candidate = c
				break
			}
		}
		if candidate == nil {
			cmd.PrintErrln("loan is not eligible for liquidation:", loanID)
			return
		}

		result, err := liquidationz.Liquidate(ctx, candidate)
		if err != nil {
			cmd.PrintErrln("liquidate error:", err)
		}
		if result != nil {
			data, _ := json.MarshalIndent(result, "", "  ")
			cmd.Println(string(data))
		}
	},
}

func init() {
	rootCmd.AddCommand(liquidateCmd)
}
