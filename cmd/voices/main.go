// Command voices asks the Voices of Independence backend about the founding
// era from a terminal, a watched inbox, or a local JSON API.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCMD().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCMD() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:          "voices",
		Short:        "Ask historical personas about American independence",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default searches ./voices.yaml, ./config, $HOME/.voices)")

	root.AddCommand(
		askCMD(&cfgPath),
		chatCMD(&cfgPath),
		documentsCMD(&cfgPath),
		watchCMD(&cfgPath),
		serveCMD(&cfgPath),
	)
	return root
}
