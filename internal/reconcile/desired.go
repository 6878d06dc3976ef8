// Package reconcile converges the installation state of a macOS .pkg
// against a declared desired state, using the pkgutil and installer tools
// as the only sources of truth.
package reconcile

import (
	"fmt"
	"os"
	"path/filepath"
)

// State is the declared target state of a package.
type State string

const (
	// StatePresent declares that the package should be installed.
	StatePresent State = "present"
	// StateAbsent declares that the package should not be installed.
	StateAbsent State = "absent"
)

// PrivilegeContext tells desired-state resolution how the process is
// privileged. It is an explicit input rather than a runtime global so tests
// can resolve both shapes on any host.
type PrivilegeContext struct {
	Root bool
	Home string
}

// CurrentPrivilege captures the privilege context of this process.
func CurrentPrivilege() PrivilegeContext {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "/"
	}
	return PrivilegeContext{
		Root: os.Geteuid() == 0,
		Home: home,
	}
}

// DesiredState declares what should be true of one package. Zero-valued
// optional fields are defaulted during Resolve.
type DesiredState struct {
	AppName           string `yaml:"app_name"`
	PkgPath           string `yaml:"pkg_path,omitempty"`
	Creates           string `yaml:"creates,omitempty"`
	State             State  `yaml:"state,omitempty"`
	Target            string `yaml:"target,omitempty"`
	PackageID         string `yaml:"package_id,omitempty"`
	ConfidentToRemove bool   `yaml:"confident_to_remove,omitempty"`
}

// Resolved is a DesiredState after defaulting and validation, plus the
// inspection volume derived from the privilege context.
type Resolved struct {
	DesiredState
	Volume string
}

// Resolve applies privilege-dependent defaults and validates the declared
// state.
//
// Running as root, the inspection volume and default install target are the
// system root and installed applications are visible to all users. As an
// unprivileged user both default to the user's home, matching the per-user
// receipt database.
func (d DesiredState) Resolve(priv PrivilegeContext) (Resolved, error) {
	if d.AppName == "" {
		return Resolved{}, fmt.Errorf("app_name is required")
	}

	r := Resolved{DesiredState: d}

	if r.State == "" {
		r.State = StatePresent
	}
	switch r.State {
	case StatePresent, StateAbsent:
	default:
		return Resolved{}, fmt.Errorf("invalid state %q: must be present or absent", r.State)
	}

	if priv.Root {
		r.Volume = "/"
		if r.Target == "" {
			r.Target = "/"
		}
	} else {
		r.Volume = priv.Home
		if r.Target == "" {
			r.Target = "CurrentUserHomeDirectory"
		}
	}

	if r.Creates == "" {
		r.Creates = filepath.Join(r.Volume, "Applications", r.AppName+".app")
	}

	if r.State == StatePresent && r.PkgPath == "" {
		return Resolved{}, fmt.Errorf("missing pkg_path when state is present")
	}
	if r.State == StateAbsent && r.PackageID == "" {
		return Resolved{}, fmt.Errorf("missing package_id when state is absent")
	}

	return r, nil
}

// ShouldBePresent reports whether the declared state is present.
func (r Resolved) ShouldBePresent() bool {
	return r.State == StatePresent
}
