package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgdrift/internal/journal"
	"github.com/blackwell-systems/pkgdrift/internal/output"
)

var (
	historyFlagLimit int
	historyFlagApp   string

	historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Show past reconciliation runs",
		Long: `Show the journal of past reconciliation runs, newest first.

Each row is one run: the app reconciled, the desired state, the action
taken and whether it changed the host. With --app only the most recent run
for that application is shown.`,
		Example: `  # The last 20 runs
  pkgdrift history

  # More of them
  pkgdrift history --limit 100

  # The last run for one app
  pkgdrift history --app "1Password 6"`,
		RunE: runHistory,
	}
)

func init() {
	historyCmd.Flags().IntVar(&historyFlagLimit, "limit", 20, "maximum number of runs to show")
	historyCmd.Flags().StringVar(&historyFlagApp, "app", "", "show only the most recent run for this app")

	RootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	jnl, err := openJournal(cfg)
	if err != nil {
		return err
	}
	defer jnl.Close()

	if historyFlagApp != "" {
		run, err := jnl.LastForApp(historyFlagApp)
		if err != nil {
			return err
		}
		if run == nil {
			fmt.Printf("No runs recorded for %q.\n", historyFlagApp)
			return nil
		}
		fmt.Print(output.RenderHistory([]journal.Run{*run}))
		return nil
	}

	runs, err := jnl.List(historyFlagLimit)
	if err != nil {
		return err
	}
	fmt.Print(output.RenderHistory(runs))
	return nil
}
