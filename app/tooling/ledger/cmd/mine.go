package cmd

import (
	"github.com/ardanlabs/ledger/app/tooling/ledger/client"
	"github.com/spf13/cobra"
)

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Ask the node to mine a block",
	Long: `mine asks the node to search for a nonce that gives the block a hash
starting with difficulty zeros. Without --index the latest block is mined.
With --signal the background worker is asked to seal and mine instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		c := newClient()

		if signal, _ := cmd.Flags().GetBool("signal"); signal {
			status, err := c.SignalMining(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), status)
		}

		var mr client.MineRequest
		if cmd.Flags().Changed("index") {
			index, _ := cmd.Flags().GetUint64("index")
			mr.Index = &index
		}
		if cmd.Flags().Changed("difficulty") {
			difficulty, _ := cmd.Flags().GetUint("difficulty")
			mr.Difficulty = &difficulty
		}

		blk, err := c.Mine(ctx, mr)
		if err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), blk)
	},
}

func init() {
	mineCmd.Flags().Uint64P("index", "i", 0, "Index of the block to mine.")
	mineCmd.Flags().UintP("difficulty", "d", 0, "Number of leading zeros required.")
	mineCmd.Flags().Bool("signal", false, "Signal the background worker instead.")

	RootCmd.AddCommand(mineCmd)
}
