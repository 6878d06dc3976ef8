package journal

import (
	"time"

	"github.com/blackwell-systems/pkgdrift/internal/reconcile"
)

// Run is the persisted summary of one reconciliation run.
type Run struct {
	ID           string
	StartedAt    time.Time
	FinishedAt   time.Time
	AppName      string
	PackageID    string
	DesiredState string
	Changed      bool
	Action       string
	Message      string
	Error        string
}

// FromResult converts an engine result into a journal row.
func FromResult(desired reconcile.DesiredState, res *reconcile.Result) Run {
	run := Run{
		ID:           res.RunID,
		StartedAt:    res.StartedAt,
		FinishedAt:   res.FinishedAt,
		AppName:      desired.AppName,
		PackageID:    desired.PackageID,
		DesiredState: string(desired.State),
		Changed:      res.Changed,
		Action:       string(res.Action),
		Message:      res.Message,
	}
	if run.DesiredState == "" {
		run.DesiredState = string(reconcile.StatePresent)
	}
	if res.Err != nil {
		run.Error = res.Err.Error()
	}
	return run
}
