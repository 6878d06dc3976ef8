package app

import (
	"github.com/spf13/cobra"
)

var (
	flagDB        string
	flagVerbose   bool
	flagPkgutil   string
	flagInstaller string

	// RootCmd is the root command for pkgdrift
	RootCmd = &cobra.Command{
		Use:   "pkgdrift",
		Short: "Reconcile macOS .pkg installation state against a declared desired state",
		Long: `pkgdrift converges the installation state of macOS installer packages
against a declared desired state, using pkgutil and installer as the only
sources of truth.

A reconciliation run probes the actual state, decides whether an install or
uninstall is required, performs the minimal action, and reports exactly what
changed. Runs are idempotent: reconciling an already-converged system does
nothing and reports changed=false.

Removal is gated: unless confident_to_remove is set, pkgdrift lists every
file it would delete and refuses, so you can check that nothing else
depends on the package first.

Examples:
  # Install a pkg unless its app bundle already exists
  pkgdrift apply --app-name "1Password 6" --pkg-path /Volumes/USB/1Password-6.8.7.pkg

  # Reconcile a fleet of packages from a file
  pkgdrift apply -f desired.yaml

  # Preview the removal of a package
  pkgdrift apply --app-name "1Password 6" --package-id com.agilebits.pkg.onepassword --state absent

  # Inspect what a package owns
  pkgdrift files --package-id com.agilebits.pkg.onepassword

  # See past reconciliation runs
  pkgdrift history`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	RootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "journal database path (default: ~/.pkgdrift/pkgdrift.db)")
	RootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose output, including the command audit trail")
	RootCmd.PersistentFlags().StringVar(&flagPkgutil, "pkgutil", "", "path to the pkgutil binary (default: /usr/sbin/pkgutil)")
	RootCmd.PersistentFlags().StringVar(&flagInstaller, "installer", "", "path to the installer binary (default: /usr/sbin/installer)")

	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}
