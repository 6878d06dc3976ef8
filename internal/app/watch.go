package app

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgdrift/internal/pkgutil"
	"github.com/blackwell-systems/pkgdrift/internal/reconcile"
	"github.com/blackwell-systems/pkgdrift/internal/watcher"
)

var (
	watchFlagDir       string
	watchFlagPackageID string
	watchFlagVolume    string

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Watch the receipt store for package drift",
		Long: `Watch the package receipt store and report when something installs or
forgets packages outside pkgdrift.

After each settled burst of receipt changes a drift notice is logged. With
--package-id the named package is re-probed on every change, so the log
shows when that package appears or disappears.

The watcher never reconciles on its own; run 'pkgdrift apply' to converge.`,
		Example: `  # Watch the system receipt store (Ctrl+C to stop)
  pkgdrift watch

  # Follow one package's presence
  pkgdrift watch --package-id com.agilebits.pkg.onepassword`,
		RunE: runWatchCmd,
	}
)

func init() {
	watchCmd.Flags().StringVar(&watchFlagDir, "dir", "", "receipt directory to watch (default: /var/db/receipts)")
	watchCmd.Flags().StringVar(&watchFlagPackageID, "package-id", "", "re-probe this package on every change")
	watchCmd.Flags().StringVar(&watchFlagVolume, "volume", "", "volume for re-probes (default: / as root, $HOME otherwise)")

	RootCmd.AddCommand(watchCmd)
}

func runWatchCmd(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dir := watchFlagDir
	if dir == "" {
		dir = cfg.Receipts()
	}

	volume := watchFlagVolume
	if volume == "" {
		priv := reconcile.CurrentPrivilege()
		volume = "/"
		if !priv.Root {
			volume = priv.Home
		}
	}

	onChange := func() {}
	if watchFlagPackageID != "" {
		tool := loadTool(cfg)
		onChange = func() {
			trail := pkgutil.NewAuditTrail()
			prober := pkgutil.NewProber(&pkgutil.ExecRunner{Trail: trail}, tool)
			rec, err := prober.Info(watchFlagPackageID, volume)
			if err != nil {
				log.Error().Err(err).Str("package_id", watchFlagPackageID).Msg("re-probe failed")
				return
			}
			if rec.Present() {
				log.Info().
					Str("package_id", rec.PackageID).
					Str("version", rec.Version).
					Msg("package present")
			} else {
				log.Info().Str("package_id", watchFlagPackageID).Msg("package absent")
			}
		}
	}

	w, err := watcher.New(dir, onChange, log)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("shutting down")

	return w.Stop()
}
