package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var blockCmd = &cobra.Command{
	Use:   "block",
	Short: "Work with blocks",
}

var blockNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Seal the pending transactions with an explicit previous hash and nonce",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		prev, _ := cmd.Flags().GetString("previous-hash")
		nonce, _ := cmd.Flags().GetString("nonce")

		blk, err := newClient().NewBlock(commandContext(cmd), prev, nonce)
		if err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), blk)
	},
}

var blockSealCmd = &cobra.Command{
	Use:   "seal",
	Short: "Seal the pending transactions into a block linked to the latest",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		blk, err := newClient().Seal(commandContext(cmd))
		if err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), blk)
	},
}

var blockListCmd = &cobra.Command{
	Use:   "list [from] [to]",
	Short: "List blocks, optionally within an inclusive range",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to := "0", "latest"
		if len(args) > 0 {
			from = args[0]
		}
		if len(args) > 1 {
			to = args[1]
		}

		blocks, err := newClient().Blocks(commandContext(cmd), from, to)
		if err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), blocks)
	},
}

var blockLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the latest block",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		blk, err := newClient().Latest(commandContext(cmd))
		if err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), blk)
	},
}

var blockVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the node's chain and recheck every block hash locally",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		c := newClient()

		status, err := c.Verify(ctx)
		if err != nil {
			return err
		}

		blocks, err := c.Blocks(ctx, "0", "latest")
		if err != nil {
			return err
		}

		for _, blk := range blocks {
			if err := blk.Verify(); err != nil {
				return errors.WithMessagef(err, "local check of block[%d]", blk.Index)
			}
		}

		return printJSON(cmd.OutOrStdout(), status)
	},
}

func init() {
	blockNewCmd.Flags().StringP("previous-hash", "p", "", "Previous hash recorded in the block.")
	blockNewCmd.Flags().StringP("nonce", "n", "", "Nonce recorded in the block.")

	blockCmd.AddCommand(blockNewCmd)
	blockCmd.AddCommand(blockSealCmd)
	blockCmd.AddCommand(blockListCmd)
	blockCmd.AddCommand(blockLatestCmd)
	blockCmd.AddCommand(blockVerifyCmd)
	RootCmd.AddCommand(blockCmd)
}
