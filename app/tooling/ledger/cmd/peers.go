package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var peersCmd = &cobra.Command{
	Use:   "peers",
	Short: "Manage the node's known peers",
}

var peersAddCmd = &cobra.Command{
	Use:   "add [host]",
	Short: "Add a peer to the node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := newClient().AddPeer(commandContext(cmd), args[0])
		if err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), status)
	},
}

var peersRemoveCmd = &cobra.Command{
	Use:   "remove [host]",
	Short: "Remove a peer from the node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := newClient().RemovePeer(commandContext(cmd), args[0])
		if err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), status)
	},
}

var peersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the node's known peers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		peers, err := newClient().Peers(commandContext(cmd))
		if err != nil {
			return errors.WithMessage(err, "peers")
		}

		return printJSON(cmd.OutOrStdout(), peers)
	},
}

func init() {
	peersCmd.AddCommand(peersAddCmd)
	peersCmd.AddCommand(peersRemoveCmd)
	peersCmd.AddCommand(peersListCmd)
	RootCmd.AddCommand(peersCmd)
}
