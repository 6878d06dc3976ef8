package reconcile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/pkgdrift/internal/pkgutil"
)

// ForgetOutcome records the receipt-forget command's result for the report.
type ForgetOutcome struct {
	RC     int
	Stdout string
	Stderr string
}

// UninstallOutcome describes what an uninstall actually did.
type UninstallOutcome struct {
	Files   []string // the manifest that was enumerated
	Removed []string // human-readable removal log, one line per deleted path
	Forget  ForgetOutcome
}

// Executor performs the install and uninstall actions. It owns no decision
// logic; the engine decides, the executor acts.
type Executor struct {
	runner pkgutil.Runner
	prober *pkgutil.Prober
	tool   pkgutil.Tool
	log    zerolog.Logger
}

// NewExecutor returns an Executor that acts through runner.
func NewExecutor(runner pkgutil.Runner, prober *pkgutil.Prober, tool pkgutil.Tool, log zerolog.Logger) *Executor {
	return &Executor{runner: runner, prober: prober, tool: tool, log: log}
}

// Install applies a package image to the target volume. The source must be
// a regular file at its resolved path; a non-zero exit from the apply tool
// is fatal, because partial or corrupt installs are surfaced, not repaired.
func (e *Executor) Install(pkgPath, target string) error {
	realPath, err := filepath.EvalSymlinks(pkgPath)
	if err != nil {
		return &PackageFileNotFoundError{Path: pkgPath}
	}
	fi, err := os.Stat(realPath)
	if err != nil || !fi.Mode().IsRegular() {
		return &PackageFileNotFoundError{Path: realPath}
	}

	e.log.Debug().Str("pkg", pkgPath).Str("target", target).Msg("applying package")

	if _, _, _, err := e.runner.Run(e.tool.ApplyArgs(pkgPath, target), true); err != nil {
		return fmt.Errorf("install of %q failed: %w", pkgPath, err)
	}
	return nil
}

// Uninstall deletes every file the package claims to own, then forgets the
// installation receipt. Files are deleted first and the receipt forgotten
// last, so that a crash mid-uninstall leaves the receipt intact and the
// operation safely re-runnable. Manifest entries already gone from disk are
// skipped; already-removed is not an error.
func (e *Executor) Uninstall(packageID, volume string) (*UninstallOutcome, error) {
	files, err := e.prober.Files(packageID, volume)
	if err != nil {
		return nil, err
	}

	out := &UninstallOutcome{Files: files}
	for _, path := range files {
		fi, err := os.Stat(path)
		if err != nil {
			continue
		}
		if fi.IsDir() {
			out.Removed = append(out.Removed, "Removing directory: "+path)
			e.log.Debug().Str("path", path).Msg("removing directory")
			if err := os.RemoveAll(path); err != nil {
				return out, fmt.Errorf("failed to remove directory %q: %w", path, err)
			}
		} else {
			out.Removed = append(out.Removed, "Removing file: "+path)
			e.log.Debug().Str("path", path).Msg("removing file")
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return out, fmt.Errorf("failed to remove file %q: %w", path, err)
			}
		}
	}

	rc, stdout, stderr, err := e.runner.Run(e.tool.ForgetArgs(packageID, volume), true)
	out.Forget = ForgetOutcome{RC: rc, Stdout: stdout, Stderr: stderr}
	if err != nil {
		return out, fmt.Errorf("failed to forget receipt for %q: %w", packageID, err)
	}
	return out, nil
}
