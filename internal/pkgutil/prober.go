package pkgutil

import (
	"fmt"
	"os"
	"strings"
)

// ListingFailedError reports that the list-all-packages command failed.
type ListingFailedError struct {
	Volume string
	RC     int
	Stdout string
	Stderr string
}

// Error implements the error interface.
func (e *ListingFailedError) Error() string {
	return fmt.Sprintf("listing packages on volume %q failed (rc=%d)", e.Volume, e.RC)
}

// Prober derives the actual installation state of packages from the
// inspection tool. A Prober never mutates the host.
type Prober struct {
	runner Runner
	tool   Tool
}

// NewProber returns a Prober that issues commands through runner.
func NewProber(runner Runner, tool Tool) *Prober {
	return &Prober{runner: runner, tool: tool}
}

// Tool returns the tool locations this prober was built with.
func (p *Prober) Tool() Tool { return p.tool }

// Info probes a single package by id. A non-zero exit from the inspection
// tool is the normal signal for "not installed", so the command runs with
// checkRC=false and a failure yields a record tagged absent, not an error.
func (p *Prober) Info(packageID, volume string) (*PackageRecord, error) {
	rc, stdout, _, err := p.runner.Run(p.tool.InfoArgs(packageID, volume), false)
	if err != nil {
		return nil, err
	}
	if rc != 0 {
		return &PackageRecord{State: StateAbsent, PackageID: packageID}, nil
	}
	return ParseRecord(stdout)
}

// Files enumerates the absolute paths of every file the package claims to
// own. The package must be present: its root directory is resolved via Info
// first, and files cannot be enumerated for an absent package.
func (p *Prober) Files(packageID, volume string) ([]string, error) {
	info, err := p.Info(packageID, volume)
	if err != nil {
		return nil, err
	}
	if !info.Present() {
		return nil, fmt.Errorf("cannot list files: package %q is not installed on volume %q", packageID, volume)
	}

	_, stdout, _, err := p.runner.Run(p.tool.FilesArgs(packageID, volume), true)
	if err != nil {
		return nil, err
	}
	return ParseFileList(info.RootDir, stdout), nil
}

// Presence reports whether the package is installed. When packageID is
// non-empty it is the sole oracle: the creates path is ignored entirely.
// Otherwise presence is the existence of the creates path.
func (p *Prober) Presence(creates, packageID, volume string) (bool, error) {
	if packageID != "" {
		info, err := p.Info(packageID, volume)
		if err != nil {
			return false, err
		}
		return info.Present(), nil
	}
	_, err := os.Stat(creates)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat %q: %w", creates, err)
	}
	return true, nil
}

// ListAll captures a snapshot of every package id installed on the volume.
func (p *Prober) ListAll(volume string) (Snapshot, error) {
	rc, stdout, stderr, err := p.runner.Run(p.tool.PkgsArgs(volume), false)
	if err != nil {
		return Snapshot{}, err
	}
	if rc != 0 {
		return Snapshot{}, &ListingFailedError{Volume: volume, RC: rc, Stdout: stdout, Stderr: stderr}
	}
	return NewSnapshot(splitLines(stdout)), nil
}

// NewSince takes a fresh snapshot and returns the package ids that appeared
// after baseline was captured. Installs driven only by an app name have no
// known package id a priori; this is how their effect is reported.
func (p *Prober) NewSince(volume string, baseline Snapshot) ([]string, error) {
	fresh, err := p.ListAll(volume)
	if err != nil {
		return nil, err
	}
	return fresh.Since(baseline), nil
}

func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
