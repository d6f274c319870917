package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// one-shot eligibility scan, prints candidates without mutating anything
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "scan active loans for liquidation eligibility",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		database := provideDatabase()
		defer database.Close()

		chainz := provideChainService()
		aggregatorz := provideAggregatorService()
		scannerz := provideScannerService(database, chainz, aggregatorz)

		candidates, err := scannerz.Scan(ctx)
		if err != nil {
			cmd.PrintErrln("scan error:", err)
			return
		}

		data, _ := json.MarshalIndent(candidates, "", "  ")
		cmd.Println(string(data))
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
