package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func NewRootCommand() *cobra.Command {
	a := newApp()

	cmd := &cobra.Command{
		Use:           "icon-cli",
		Short:         "Command line client for ICON networks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	registerFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newWalletCommand(a),
		newBalanceCommand(a),
		newBlockCommand(a),
		newCallCommand(a),
		newSendCommand(a),
		newTxCommand(a),
	)

	return cmd
}

func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)

		cancel()
		os.Exit(1)
	}
}
