package cmd

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Work with transactions",
}

var txSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Submit a transaction to the node",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		data, _ := cmd.Flags().GetString("data")

		if from == "" || to == "" {
			return errors.New("both --from and --to are required")
		}

		status, err := newClient().SubmitTx(commandContext(cmd), database.NewTx(from, to, []byte(data)))
		if err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), status)
	},
}

var txPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List the transactions waiting for the next block",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		txs, err := newClient().Pending(commandContext(cmd))
		if err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), txs)
	},
}

func init() {
	txSendCmd.Flags().StringP("from", "f", "", "Sender of the transaction.")
	txSendCmd.Flags().StringP("to", "t", "", "Recipient of the transaction.")
	txSendCmd.Flags().StringP("data", "d", "", "Payload of the transaction.")

	txCmd.AddCommand(txSendCmd)
	txCmd.AddCommand(txPendingCmd)
	RootCmd.AddCommand(txCmd)
}
