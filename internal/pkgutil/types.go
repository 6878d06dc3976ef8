package pkgutil

import (
	"sort"
	"time"
)

// PackageState reports whether a package receipt exists on the probed volume.
type PackageState string

const (
	// StatePresent means the inspection tool returned a receipt for the package.
	StatePresent PackageState = "present"
	// StateAbsent means the inspection tool has no receipt for the package.
	StateAbsent PackageState = "absent"
)

// PackageRecord is the parsed result of a single pkg-info probe. A record is
// produced fresh on every probe and never mutated afterwards; absence is a
// record tagged StateAbsent, not a nil pointer.
type PackageRecord struct {
	State       PackageState
	PackageID   string
	Version     string
	Volume      string
	Location    string
	RootDir     string // derived from Volume and Location, never set directly
	InstallTime int64  // seconds since epoch, UTC, as reported by the tool
	InstalledAt time.Time
}

// Present reports whether the record describes an installed package.
func (r *PackageRecord) Present() bool {
	return r != nil && r.State == StatePresent
}

// Snapshot is the set of package ids installed on a volume at one instant.
type Snapshot struct {
	TakenAt time.Time
	IDs     map[string]struct{}
}

// NewSnapshot builds a snapshot from a list of package ids, stamped now.
func NewSnapshot(ids []string) Snapshot {
	s := Snapshot{TakenAt: time.Now(), IDs: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if id != "" {
			s.IDs[id] = struct{}{}
		}
	}
	return s
}

// Has reports whether the snapshot contains the given package id.
func (s Snapshot) Has(id string) bool {
	_, ok := s.IDs[id]
	return ok
}

// Sorted returns the snapshot's package ids in lexical order.
func (s Snapshot) Sorted() []string {
	ids := make([]string, 0, len(s.IDs))
	for id := range s.IDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Since returns the package ids present in s but not in baseline, sorted.
// Input ordering is irrelevant: this is an unordered set difference.
func (s Snapshot) Since(baseline Snapshot) []string {
	var fresh []string
	for id := range s.IDs {
		if !baseline.Has(id) {
			fresh = append(fresh, id)
		}
	}
	sort.Strings(fresh)
	return fresh
}

// Tool locates the external inspection and apply binaries and builds their
// argument vectors. Paths are fixed per host; overridable via config.
type Tool struct {
	PkgutilPath   string
	InstallerPath string
}

// DefaultTool returns the standard macOS tool locations.
func DefaultTool() Tool {
	return Tool{
		PkgutilPath:   "/usr/sbin/pkgutil",
		InstallerPath: "/usr/sbin/installer",
	}
}

// InfoArgs builds the pkg-info query command.
func (t Tool) InfoArgs(packageID, volume string) []string {
	return []string{t.PkgutilPath, "--pkg-info", packageID, "--volume", volume}
}

// FilesArgs builds the file-listing command.
func (t Tool) FilesArgs(packageID, volume string) []string {
	return []string{t.PkgutilPath, "--files", packageID, "--volume", volume}
}

// ForgetArgs builds the receipt-forget command.
func (t Tool) ForgetArgs(packageID, volume string) []string {
	return []string{t.PkgutilPath, "--forget", packageID, "--volume", volume}
}

// PkgsArgs builds the list-all-packages command.
func (t Tool) PkgsArgs(volume string) []string {
	return []string{t.PkgutilPath, "--pkgs", "--volume", volume}
}

// ApplyArgs builds the package-apply command.
func (t Tool) ApplyArgs(pkgPath, target string) []string {
	return []string{t.InstallerPath, "-pkg", pkgPath, "-target", target}
}
