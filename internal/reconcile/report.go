package reconcile

import (
	"time"

	"github.com/blackwell-systems/pkgdrift/internal/pkgutil"
)

// Action names the mutating step a run performed, if any.
type Action string

const (
	// ActionNone means the system was already converged.
	ActionNone Action = "none"
	// ActionInstall means the package image was applied.
	ActionInstall Action = "install"
	// ActionUninstall means the package's files were removed and its
	// receipt forgotten.
	ActionUninstall Action = "uninstall"
)

// Result is the report of one reconciliation run. A failed run still
// carries everything discovered before the failure, so the operator can
// diagnose it; Err being non-nil is what distinguishes failure.
type Result struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time

	Changed bool
	Action  Action
	Message string

	// Diagnostic sub-records, populated as the run discovers them.
	PkgInfo           *pkgutil.PackageRecord
	PkgFiles          []string
	Forget            *ForgetOutcome
	InstalledPackages []string
	NewPackages       []string

	Err error

	// Verbose is populated only at elevated verbosity.
	Verbose *VerboseReport
}

// VerboseReport carries intermediate decision values and the full audit
// trail for high-verbosity output.
type VerboseReport struct {
	ShouldBePresent   bool
	OriginallyPresent bool
	Volume            string
	Target            string
	Creates           string
	Removed           []string
	Trail             []pkgutil.AuditEntry
}

// Failed reports whether the run ended in failure.
func (r *Result) Failed() bool {
	return r.Err != nil
}
