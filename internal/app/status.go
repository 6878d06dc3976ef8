package app

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgdrift/internal/output"
	"github.com/blackwell-systems/pkgdrift/internal/pkgutil"
	"github.com/blackwell-systems/pkgdrift/internal/reconcile"
)

var (
	statusFlagPackageID string
	statusFlagAppName   string
	statusFlagCreates   string
	statusFlagVolume    string

	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Probe the installation state of a package",
		Long: `Probe whether a package is installed, without changing anything.

With --package-id the receipt database is the oracle: the receipt's
version, install location and install time are shown when present. With
--app-name (or an explicit --creates path) presence is judged by whether
the app bundle exists on disk.`,
		Example: `  # Ask the receipt database
  pkgdrift status --package-id com.agilebits.pkg.onepassword

  # Ask the filesystem
  pkgdrift status --app-name "1Password 6"`,
		RunE: runStatus,
	}
)

func init() {
	statusCmd.Flags().StringVar(&statusFlagPackageID, "package-id", "", "receipt package id to probe")
	statusCmd.Flags().StringVar(&statusFlagAppName, "app-name", "", "application name, probed via its app bundle")
	statusCmd.Flags().StringVar(&statusFlagCreates, "creates", "", "path whose existence signals the package is installed")
	statusCmd.Flags().StringVar(&statusFlagVolume, "volume", "", "volume to inspect (default: / as root, $HOME otherwise)")

	RootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	volume := statusFlagVolume
	if volume == "" {
		priv := reconcile.CurrentPrivilege()
		volume = "/"
		if !priv.Root {
			volume = priv.Home
		}
	}

	trail := pkgutil.NewAuditTrail()
	prober := pkgutil.NewProber(&pkgutil.ExecRunner{Trail: trail}, loadTool(cfg))

	if statusFlagPackageID != "" {
		rec, err := prober.Info(statusFlagPackageID, volume)
		if err != nil {
			return err
		}
		fmt.Print(output.RenderRecord(rec))
		return nil
	}

	creates := statusFlagCreates
	if creates == "" {
		if statusFlagAppName == "" {
			return fmt.Errorf("one of --package-id, --app-name or --creates is required")
		}
		creates = filepath.Join(volume, "Applications", statusFlagAppName+".app")
	}

	present, err := prober.Presence(creates, "", volume)
	if err != nil {
		return err
	}

	log.Debug().Str("creates", creates).Bool("present", present).Msg("probed filesystem")
	if present {
		fmt.Printf("%s exists: package is present\n", creates)
	} else {
		fmt.Printf("%s does not exist: package is absent\n", creates)
	}
	return nil
}
