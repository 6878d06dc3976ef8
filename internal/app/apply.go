package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/blackwell-systems/pkgdrift/internal/journal"
	"github.com/blackwell-systems/pkgdrift/internal/output"
	"github.com/blackwell-systems/pkgdrift/internal/pkgutil"
	"github.com/blackwell-systems/pkgdrift/internal/reconcile"
)

var (
	applyFlagAppName   string
	applyFlagPkgPath   string
	applyFlagState     string
	applyFlagCreates   string
	applyFlagTarget    string
	applyFlagPackageID string
	applyFlagConfident bool
	applyFlagDryRun    bool
	applyFlagFile      string
	applyFlagNoJournal bool

	applyCmd = &cobra.Command{
		Use:   "apply",
		Short: "Reconcile package state against a desired state",
		Long: `Reconcile the installation state of one or more .pkg packages.

A single package is declared with flags; a fleet is declared in a YAML file
(one document holding either a single entry or a list of entries):

  - app_name: 1Password 6
    pkg_path: /Volumes/USB/1Password-6.8.7.pkg
  - app_name: Old Agent
    package_id: com.example.pkg.agent
    state: absent
    confident_to_remove: true

Each entry is reconciled independently: probe, decide, act, report. Entries
that are already converged report changed=false and perform no action.

Removal requires both package_id and confident_to_remove. Without the
confidence gate the files that would be deleted are listed and nothing is
removed.`,
		Example: `  # Install unless the app bundle already exists
  pkgdrift apply --app-name "1Password 6" --pkg-path /Volumes/USB/1Password-6.8.7.pkg

  # Same, but let the receipt database decide presence
  pkgdrift apply --app-name "1Password 6" --pkg-path /Volumes/USB/1Password-6.8.7.pkg \
      --package-id com.agilebits.pkg.onepassword

  # Preview without touching the host
  pkgdrift apply --app-name "1Password 6" --pkg-path /tmp/op.pkg --dry-run

  # Remove, after reviewing the file list a gateless run printed
  pkgdrift apply --app-name "1Password 6" --package-id com.agilebits.pkg.onepassword \
      --state absent --confident-to-remove

  # Reconcile a fleet from a file
  pkgdrift apply -f desired.yaml`,
		RunE: runApply,
	}
)

func init() {
	applyCmd.Flags().StringVar(&applyFlagAppName, "app-name", "", "application name (required unless --file is given)")
	applyCmd.Flags().StringVar(&applyFlagPkgPath, "pkg-path", "", "path to the .pkg file to install")
	applyCmd.Flags().StringVar(&applyFlagState, "state", "", "desired state: present or absent (default: present)")
	applyCmd.Flags().StringVar(&applyFlagCreates, "creates", "", "path whose existence signals the package is installed")
	applyCmd.Flags().StringVar(&applyFlagTarget, "target", "", "installer target volume or path")
	applyCmd.Flags().StringVar(&applyFlagPackageID, "package-id", "", "receipt package id, the preferred presence oracle")
	applyCmd.Flags().BoolVar(&applyFlagConfident, "confident-to-remove", false, "allow deletion of the package's files")
	applyCmd.Flags().BoolVar(&applyFlagDryRun, "dry-run", false, "decide and report without mutating the host")
	applyCmd.Flags().StringVarP(&applyFlagFile, "file", "f", "", "YAML file declaring one or more desired states")
	applyCmd.Flags().BoolVar(&applyFlagNoJournal, "no-journal", false, "do not record this run in the journal")

	RootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	log := newLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tool := loadTool(cfg)

	entries, err := collectDesired()
	if err != nil {
		return err
	}

	var jnl *journal.Journal
	if !applyFlagNoJournal {
		jnl, err = openJournal(cfg)
		if err != nil {
			return err
		}
		defer jnl.Close()
	}

	priv := reconcile.CurrentPrivilege()
	opts := reconcile.Options{DryRun: applyFlagDryRun, Verbose: flagVerbose}

	var progress *output.ProgressBar
	if len(entries) > 1 {
		progress = output.NewProgress(len(entries), "Reconciling entries")
	}

	var failures int
	for i, desired := range entries {
		// Each entry gets its own runner and audit trail; transcripts from
		// one package never leak into another's report.
		trail := pkgutil.NewAuditTrail()
		runner := &pkgutil.ExecRunner{Trail: trail}
		engine := reconcile.New(runner, trail, tool, log)

		res, err := engine.Run(desired, priv, opts)
		if err != nil {
			failures++
		}

		if i > 0 {
			fmt.Println()
		}
		fmt.Print(output.RenderResult(res))

		if jnl != nil {
			if jerr := jnl.Record(journal.FromResult(desired, res)); jerr != nil {
				log.Warn().Err(jerr).Msg("failed to journal run")
			}
		}
		if progress != nil {
			progress.Increment()
		}
	}
	if progress != nil {
		progress.Finish()
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d entries failed to reconcile", failures, len(entries))
	}
	return nil
}

// collectDesired assembles the desired-state entries from the file or the
// flags. Validation beyond basic shape is left to Resolve, so a flag
// mistake is reported the same way a file mistake is.
func collectDesired() ([]reconcile.DesiredState, error) {
	if applyFlagFile != "" {
		return readDesiredFile(applyFlagFile)
	}

	if applyFlagAppName == "" {
		return nil, fmt.Errorf("either --app-name or --file is required")
	}
	return []reconcile.DesiredState{{
		AppName:           applyFlagAppName,
		PkgPath:           applyFlagPkgPath,
		Creates:           applyFlagCreates,
		State:             reconcile.State(applyFlagState),
		Target:            applyFlagTarget,
		PackageID:         applyFlagPackageID,
		ConfidentToRemove: applyFlagConfident,
	}}, nil
}

// readDesiredFile parses a YAML desired-state file holding either a single
// entry or a list of entries.
func readDesiredFile(path string) ([]reconcile.DesiredState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var list []reconcile.DesiredState
	if err := yaml.Unmarshal(data, &list); err == nil {
		if len(list) == 0 {
			return nil, fmt.Errorf("%s declares no entries", path)
		}
		return list, nil
	}

	var single reconcile.DesiredState
	if err := yaml.Unmarshal(data, &single); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return []reconcile.DesiredState{single}, nil
}
