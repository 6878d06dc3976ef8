package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRootDefaults(t *testing.T) {
	d := DesiredState{AppName: "Tool", PkgPath: "/tmp/Tool.pkg"}

	r, err := d.Resolve(PrivilegeContext{Root: true, Home: "/var/root"})
	require.NoError(t, err)

	assert.Equal(t, "/", r.Volume)
	assert.Equal(t, "/", r.Target)
	assert.Equal(t, "/Applications/Tool.app", r.Creates)
	assert.Equal(t, StatePresent, r.State)
	assert.True(t, r.ShouldBePresent())
}

func TestResolveUserDefaults(t *testing.T) {
	d := DesiredState{AppName: "Tool", PkgPath: "/tmp/Tool.pkg"}

	r, err := d.Resolve(PrivilegeContext{Root: false, Home: "/Users/casey"})
	require.NoError(t, err)

	assert.Equal(t, "/Users/casey", r.Volume)
	assert.Equal(t, "CurrentUserHomeDirectory", r.Target)
	assert.Equal(t, "/Users/casey/Applications/Tool.app", r.Creates)
}

func TestResolveExplicitValuesKept(t *testing.T) {
	d := DesiredState{
		AppName: "Tool",
		PkgPath: "/tmp/Tool.pkg",
		Creates: "/Library/Java/jdk-9.0.1.jdk",
		Target:  "/Volumes/Other",
	}

	r, err := d.Resolve(PrivilegeContext{Root: true})
	require.NoError(t, err)

	assert.Equal(t, "/Library/Java/jdk-9.0.1.jdk", r.Creates)
	assert.Equal(t, "/Volumes/Other", r.Target)
}

func TestResolveValidation(t *testing.T) {
	tests := []struct {
		name    string
		desired DesiredState
		wantErr string
	}{
		{
			name:    "missing app name",
			desired: DesiredState{PkgPath: "/tmp/x.pkg"},
			wantErr: "app_name is required",
		},
		{
			name:    "invalid state",
			desired: DesiredState{AppName: "Tool", State: "installed"},
			wantErr: "invalid state",
		},
		{
			name:    "present without pkg_path",
			desired: DesiredState{AppName: "Tool", State: StatePresent},
			wantErr: "missing pkg_path",
		},
		{
			name:    "absent without package_id",
			desired: DesiredState{AppName: "Tool", State: StateAbsent},
			wantErr: "missing package_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.desired.Resolve(PrivilegeContext{Root: true})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestResolveAbsentNeedsNoPkgPath(t *testing.T) {
	d := DesiredState{AppName: "Tool", State: StateAbsent, PackageID: "com.example.tool"}

	r, err := d.Resolve(PrivilegeContext{Root: true})
	require.NoError(t, err)
	assert.False(t, r.ShouldBePresent())
}
