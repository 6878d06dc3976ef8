package reconcile

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/blackwell-systems/pkgdrift/internal/pkgutil"
)

// Options configure a single reconciliation run.
type Options struct {
	// DryRun decides and reports without mutating the host.
	DryRun bool
	// Verbose attaches intermediate decision values and the audit trail
	// to the result.
	Verbose bool
}

// Engine reconciles one package's installation state against a desired
// state. It owns the command runner and audit trail as injected
// collaborators, so tests can substitute a fake runner returning scripted
// transcripts.
//
// An engine runs fully synchronously: every external command is awaited
// before the next step, and the convergence decision is always taken from a
// presence snapshot that predates any mutation.
type Engine struct {
	runner pkgutil.Runner
	trail  *pkgutil.AuditTrail
	tool   pkgutil.Tool
	prober *pkgutil.Prober
	exec   *Executor
	log    zerolog.Logger
}

// New creates an Engine that probes and acts through runner.
func New(runner pkgutil.Runner, trail *pkgutil.AuditTrail, tool pkgutil.Tool, log zerolog.Logger) *Engine {
	prober := pkgutil.NewProber(runner, tool)
	return &Engine{
		runner: runner,
		trail:  trail,
		tool:   tool,
		prober: prober,
		exec:   NewExecutor(runner, prober, tool, log),
		log:    log,
	}
}

// Run executes one reconciliation: probe actual state, decide, act if the
// system has not converged, and assemble the report. The returned Result is
// never nil; when err is non-nil the same error is carried in Result.Err
// alongside everything discovered before the failure.
func (e *Engine) Run(desired DesiredState, priv PrivilegeContext, opts Options) (*Result, error) {
	res := &Result{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		Action:    ActionNone,
	}

	var messages []string
	if priv.Root {
		messages = append(messages, "Running as root")
	} else {
		messages = append(messages, "Running as unprivileged user")
	}

	resolved, err := desired.Resolve(priv)
	if err != nil {
		return e.fail(res, messages, opts, err)
	}

	verbose := &VerboseReport{
		ShouldBePresent: resolved.ShouldBePresent(),
		Volume:          resolved.Volume,
		Target:          resolved.Target,
		Creates:         resolved.Creates,
	}

	e.log.Debug().
		Str("run_id", res.RunID).
		Str("app", resolved.AppName).
		Str("volume", resolved.Volume).
		Str("state", string(resolved.State)).
		Msg("probing actual state")

	baseline, err := e.prober.ListAll(resolved.Volume)
	if err != nil {
		return e.failVerbose(res, messages, opts, verbose, err)
	}
	res.InstalledPackages = baseline.Sorted()

	originallyPresent, err := e.probePresence(res, resolved)
	if err != nil {
		return e.failVerbose(res, messages, opts, verbose, err)
	}
	verbose.OriginallyPresent = originallyPresent

	// The changed flag reflects the transition intent. It is computed once,
	// before any action, and never recomputed from a post-action probe.
	res.Changed = originallyPresent != resolved.ShouldBePresent()

	e.log.Debug().
		Bool("present", originallyPresent).
		Bool("changed", res.Changed).
		Msg("decision taken")

	if opts.DryRun {
		messages = append(messages, fmt.Sprintf("Checking for %s for pkg at %s", resolved.AppName, resolved.PkgPath))
		return e.finish(res, messages, opts, verbose, nil)
	}
	messages = append(messages, fmt.Sprintf("Running for %s for pkg at %s", resolved.AppName, resolved.PkgPath))

	switch {
	case resolved.ShouldBePresent() && !originallyPresent:
		res.Action = ActionInstall
		if err := e.exec.Install(resolved.PkgPath, resolved.Target); err != nil {
			return e.failVerbose(res, messages, opts, verbose, err)
		}
		if resolved.PackageID == "" {
			// A raw app-name install has no package-id oracle; report what
			// the install introduced by diffing against the baseline.
			fresh, err := e.prober.NewSince(resolved.Volume, baseline)
			if err != nil {
				return e.failVerbose(res, messages, opts, verbose, err)
			}
			res.NewPackages = fresh
		}

	case !resolved.ShouldBePresent() && originallyPresent:
		files, err := e.prober.Files(resolved.PackageID, resolved.Volume)
		if err != nil {
			return e.failVerbose(res, messages, opts, verbose, err)
		}
		res.PkgFiles = files

		if err := CheckRemoval(resolved, files); err != nil {
			return e.failVerbose(res, messages, opts, verbose, err)
		}

		res.Action = ActionUninstall
		outcome, err := e.exec.Uninstall(resolved.PackageID, resolved.Volume)
		if outcome != nil {
			res.PkgFiles = outcome.Files
			res.Forget = &outcome.Forget
			verbose.Removed = outcome.Removed
		}
		if err != nil {
			return e.failVerbose(res, messages, opts, verbose, err)
		}
	}

	return e.finish(res, messages, opts, verbose, nil)
}

// probePresence determines actual presence, attaching the probed record to
// the report when a package-id oracle is in play. The package-id takes
// precedence over the creates path whenever both are available.
func (e *Engine) probePresence(res *Result, resolved Resolved) (bool, error) {
	if resolved.PackageID != "" {
		info, err := e.prober.Info(resolved.PackageID, resolved.Volume)
		if err != nil {
			return false, err
		}
		res.PkgInfo = info
		return info.Present(), nil
	}
	return e.prober.Presence(resolved.Creates, "", resolved.Volume)
}

func (e *Engine) finish(res *Result, messages []string, opts Options, verbose *VerboseReport, err error) (*Result, error) {
	res.FinishedAt = time.Now()
	res.Message = strings.Join(messages, ". ")
	res.Err = err
	if opts.Verbose {
		if verbose != nil && e.trail != nil {
			verbose.Trail = e.trail.Entries()
		}
		res.Verbose = verbose
	}
	return res, err
}

func (e *Engine) fail(res *Result, messages []string, opts Options, err error) (*Result, error) {
	return e.finish(res, messages, opts, nil, err)
}

func (e *Engine) failVerbose(res *Result, messages []string, opts Options, verbose *VerboseReport, err error) (*Result, error) {
	e.log.Debug().Err(err).Str("run_id", res.RunID).Msg("run failed")
	return e.finish(res, messages, opts, verbose, err)
}
