// Package output provides terminal output utilities for pkgdrift.
//
// Reports, manifests, package lists and run history are rendered as plain
// ASCII tables with ANSI colors when stdout is a terminal.
package output

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/pkgdrift/internal/journal"
	"github.com/blackwell-systems/pkgdrift/internal/pkgutil"
	"github.com/blackwell-systems/pkgdrift/internal/reconcile"
)

const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// RenderRecord renders a probed package record as aligned key/value lines.
func RenderRecord(rec *pkgutil.PackageRecord) string {
	var sb strings.Builder

	if !rec.Present() {
		sb.WriteString(fmt.Sprintf("%-14s %s\n", "package-id:", rec.PackageID))
		sb.WriteString(fmt.Sprintf("%-14s %s\n", "state:", colorize(colorYellow, "absent")))
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("%-14s %s\n", "package-id:", rec.PackageID))
	sb.WriteString(fmt.Sprintf("%-14s %s\n", "state:", colorize(colorGreen, "present")))
	sb.WriteString(fmt.Sprintf("%-14s %s\n", "version:", rec.Version))
	sb.WriteString(fmt.Sprintf("%-14s %s\n", "volume:", rec.Volume))
	sb.WriteString(fmt.Sprintf("%-14s %s\n", "location:", rec.Location))
	sb.WriteString(fmt.Sprintf("%-14s %s\n", "root-dir:", rec.RootDir))
	sb.WriteString(fmt.Sprintf("%-14s %s (%s)\n", "installed:",
		rec.InstalledAt.Format("2006-01-02 15:04:05"), formatRelativeTime(rec.InstalledAt)))
	return sb.String()
}

// RenderManifest renders the file manifest of a package, one path per line,
// with a summary footer.
func RenderManifest(packageID string, files []string) string {
	if len(files) == 0 {
		return fmt.Sprintf("%s owns no files.\n", packageID)
	}

	var sb strings.Builder
	for _, f := range files {
		sb.WriteString(f)
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("\n%d files owned by %s\n", len(files), packageID))
	return sb.String()
}

// RenderPackageList renders a snapshot of installed package ids.
func RenderPackageList(snap pkgutil.Snapshot) string {
	ids := snap.Sorted()
	if len(ids) == 0 {
		return "No packages installed.\n"
	}

	var sb strings.Builder
	for _, id := range ids {
		sb.WriteString(id)
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("\n%d packages (captured %s)\n",
		len(ids), snap.TakenAt.Format("2006-01-02 15:04:05")))
	return sb.String()
}

// RenderHistory renders journal runs as a table, newest first.
func RenderHistory(runs []journal.Run) string {
	if len(runs) == 0 {
		return "No reconciliation runs recorded.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-10s %-13s %-20s %-8s %-10s %-8s %s\n",
		"Run", "When", "App", "State", "Action", "Changed", "Result"))
	sb.WriteString(strings.Repeat("─", 84))
	sb.WriteString("\n")

	for _, run := range runs {
		outcome := colorize(colorGreen, "ok")
		if run.Error != "" {
			outcome = colorize(colorRed, truncate(run.Error, 28))
		}
		sb.WriteString(fmt.Sprintf("%-10s %-13s %-20s %-8s %-10s %-8t %s\n",
			truncate(run.ID, 8),
			formatRelativeTime(run.StartedAt),
			truncate(run.AppName, 20),
			run.DesiredState,
			run.Action,
			run.Changed,
			outcome))
	}
	return sb.String()
}

// RenderResult renders a reconciliation result for the operator.
func RenderResult(res *reconcile.Result) string {
	var sb strings.Builder

	changed := colorize(colorGray, "changed: false")
	if res.Changed {
		changed = colorize(colorYellow, "changed: true")
	}
	sb.WriteString(fmt.Sprintf("%s  action: %s\n", changed, res.Action))
	if res.Message != "" {
		sb.WriteString(res.Message)
		sb.WriteString("\n")
	}

	if res.PkgInfo != nil {
		sb.WriteString("\n")
		sb.WriteString(RenderRecord(res.PkgInfo))
	}
	if len(res.NewPackages) > 0 {
		sb.WriteString("\nNew packages:\n")
		for _, id := range res.NewPackages {
			sb.WriteString("  " + id + "\n")
		}
	}
	if res.Err != nil {
		sb.WriteString("\n")
		sb.WriteString(colorize(colorRed, fmt.Sprintf("failed: %v\n", res.Err)))

		// Show the exact files that would have been deleted so the
		// operator can review dependencies before enabling the gate.
		var nc *reconcile.NotConfidentError
		if errors.As(res.Err, &nc) && len(nc.Files) > 0 {
			sb.WriteString("\nFiles that would be deleted:\n")
			for _, f := range nc.Files {
				sb.WriteString("  " + f + "\n")
			}
		}
	}

	if res.Verbose != nil {
		sb.WriteString(renderVerbose(res.Verbose))
	}
	return sb.String()
}

func renderVerbose(v *reconcile.VerboseReport) string {
	var sb strings.Builder
	sb.WriteString("\n--- verbose ---\n")
	sb.WriteString(fmt.Sprintf("volume: %s  target: %s\n", v.Volume, v.Target))
	sb.WriteString(fmt.Sprintf("creates: %s\n", v.Creates))
	sb.WriteString(fmt.Sprintf("should_be_present: %t  originally_present: %t\n",
		v.ShouldBePresent, v.OriginallyPresent))
	for _, line := range v.Removed {
		sb.WriteString(line + "\n")
	}
	for _, e := range v.Trail {
		sb.WriteString(fmt.Sprintf("[%s] rc=%d %s\n",
			e.At.Format("15:04:05.000"), e.RC, strings.Join(e.Argv, " ")))
	}
	return sb.String()
}

// truncate shortens a string to max characters, appending "…" when cut.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}

// formatRelativeTime renders a timestamp relative to now ("3 days ago").
func formatRelativeTime(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%d min ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}
