package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgdrift/internal/output"
	"github.com/blackwell-systems/pkgdrift/internal/pkgutil"
	"github.com/blackwell-systems/pkgdrift/internal/reconcile"
)

var (
	packagesFlagVolume string

	packagesCmd = &cobra.Command{
		Use:   "packages",
		Short: "List every installed package id on a volume",
		Example: `  # All packages visible to this user
  pkgdrift packages

  # The system volume explicitly
  pkgdrift packages --volume /`,
		RunE: runPackages,
	}
)

func init() {
	packagesCmd.Flags().StringVar(&packagesFlagVolume, "volume", "", "volume to inspect (default: / as root, $HOME otherwise)")

	RootCmd.AddCommand(packagesCmd)
}

func runPackages(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	volume := packagesFlagVolume
	if volume == "" {
		priv := reconcile.CurrentPrivilege()
		volume = "/"
		if !priv.Root {
			volume = priv.Home
		}
	}

	trail := pkgutil.NewAuditTrail()
	prober := pkgutil.NewProber(&pkgutil.ExecRunner{Trail: trail}, loadTool(cfg))

	snap, err := prober.ListAll(volume)
	if err != nil {
		return err
	}

	fmt.Print(output.RenderPackageList(snap))
	return nil
}
