// Package cmd contains the ledger command line app.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ardanlabs/ledger/app/tooling/ledger/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RootCmd is the base command for the ledger app.
var RootCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Work with a proof of work ledger",
	Long:  `ledger talks to the public api of a ledger node and benchmarks mining locally.`,
}

func init() {
	RootCmd.PersistentFlags().StringP("url", "u", "http://localhost:8080", "Url of the node.")
	RootCmd.PersistentFlags().Duration("timeout", 30*time.Second, "Timeout for each call to the node.")
	if err := viper.BindPFlags(RootCmd.PersistentFlags()); err != nil {
		fmt.Fprintln(os.Stderr, "binding root flags:", err)
	}

	RootCmd.SilenceUsage = true
	RootCmd.SilenceErrors = true

	viper.SetConfigName("config")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.ledger")

	viper.SetEnvPrefix("ledger")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// Execute runs the root command.
func Execute() {
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "using config file:", viper.ConfigFileUsed())
	}

	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}

// =============================================================================

func newClient() *client.Client {
	return client.New(viper.GetString("url"), viper.GetDuration("timeout"))
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
