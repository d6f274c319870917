package cmd

import (
	"encoding/json"

	"moonlend/internal/lending"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"
)

// estimate loan terms from the command line, mirroring the public contract
var estimateCmd = &cobra.Command{
	Use:   "estimate <collateral> <duration_seconds> <price> <ltv_bps> [fee_bps] [decimals]",
	Short: "estimate loan terms for a collateral position",
	Args:  cobra.RangeArgs(4, 6),
	Run: func(cmd *cobra.Command, args []string) {
		collateral := cast.ToUint64(args[0])
		duration := cast.ToInt64(args[1])
		price := cast.ToUint64(args[2])
		ltvBps := cast.ToUint64(args[3])

		feeBps := uint64(lending.DefaultFeeBps)
		if len(args) > 4 {
			feeBps = cast.ToUint64(args[4])
		}
		decimals := uint8(6)
		if len(args) > 5 {
			decimals = cast.ToUint8(args[5])
		}

		terms, err := lending.EstimateLoanTerms(collateral, duration, price, ltvBps, feeBps, decimals)
		if err != nil {
			cmd.PrintErrln("estimate error:", err)
			return
		}

		data, _ := json.MarshalIndent(terms, "", "  ")
		cmd.Println(string(data))
	},
}

func init() {
	rootCmd.AddCommand(estimateCmd)
}
