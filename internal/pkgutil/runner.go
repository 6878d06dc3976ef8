// Package pkgutil wraps the external package inspection and apply tools.
//
// Everything this package knows about installed packages comes from invoking
// pkgutil(1) and installer(8) and parsing their output. Every invocation,
// including failed ones, is appended to an in-memory audit trail that lives
// for one reconciliation run and is never persisted.
package pkgutil

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Runner executes an external command and reports its outcome.
//
// If checkRC is true a non-zero exit is returned as a ProcessExecutionError;
// if false, callers interpret the exit code themselves. Implementations must
// append one audit entry per attempt, even on failure. Commands run exactly
// once with no timeout: the underlying tools are trusted to terminate, and
// blindly retrying a destructive action would be unsafe.
type Runner interface {
	Run(argv []string, checkRC bool) (rc int, stdout, stderr string, err error)
}

// AuditEntry records one attempted external command.
type AuditEntry struct {
	At      time.Time
	Argv    []string
	CheckRC bool
	RC      int
	Stdout  string
	Stderr  string
}

// AuditTrail is the ordered, append-only record of every external command
// attempted during a run. It is owned by a single run and discarded with it.
type AuditTrail struct {
	entries []AuditEntry
}

// NewAuditTrail returns an empty trail.
func NewAuditTrail() *AuditTrail {
	return &AuditTrail{}
}

// Append adds an entry to the trail.
func (t *AuditTrail) Append(e AuditEntry) {
	t.entries = append(t.entries, e)
}

// Entries returns the recorded entries in execution order.
func (t *AuditTrail) Entries() []AuditEntry {
	return t.entries
}

// ProcessExecutionError reports an external command that was required to
// succeed (checkRC=true) but exited non-zero.
type ProcessExecutionError struct {
	Argv   []string
	RC     int
	Stdout string
	Stderr string
}

// Error implements the error interface.
func (e *ProcessExecutionError) Error() string {
	return fmt.Sprintf("command %q exited %d: %s", strings.Join(e.Argv, " "), e.RC, strings.TrimSpace(e.Stderr))
}

// ExecRunner runs commands via os/exec and audits every attempt.
type ExecRunner struct {
	Trail *AuditTrail
}

// Run executes argv[0] with the remaining elements as arguments.
func (r *ExecRunner) Run(argv []string, checkRC bool) (int, string, string, error) {
	if len(argv) == 0 {
		return -1, "", "", fmt.Errorf("empty command")
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	rc := 0
	if runErr != nil {
		if exitErr, ok := runErr.(*exec.ExitError); ok {
			rc = exitErr.ExitCode()
			runErr = nil // a non-zero exit is an outcome, not a spawn failure
		} else {
			rc = -1
		}
	}

	entry := AuditEntry{
		At:      time.Now(),
		Argv:    argv,
		CheckRC: checkRC,
		RC:      rc,
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
	}
	if r.Trail != nil {
		r.Trail.Append(entry)
	}

	if runErr != nil {
		return rc, entry.Stdout, entry.Stderr, fmt.Errorf("failed to run %q: %w", argv[0], runErr)
	}
	if checkRC && rc != 0 {
		return rc, entry.Stdout, entry.Stderr, &ProcessExecutionError{
			Argv:   argv,
			RC:     rc,
			Stdout: entry.Stdout,
			Stderr: entry.Stderr,
		}
	}
	return rc, entry.Stdout, entry.Stderr, nil
}
