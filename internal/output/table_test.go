package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/blackwell-systems/pkgdrift/internal/journal"
	"github.com/blackwell-systems/pkgdrift/internal/pkgutil"
	"github.com/blackwell-systems/pkgdrift/internal/reconcile"
)

func TestRenderRecordPresent(t *testing.T) {
	rec := &pkgutil.PackageRecord{
		State:       pkgutil.StatePresent,
		PackageID:   "com.example.tool",
		Version:     "1.2.3",
		Volume:      "/",
		Location:    "opt/tool",
		RootDir:     "/opt/tool",
		InstallTime: 1700000000,
		InstalledAt: time.Unix(1700000000, 0),
	}

	out := RenderRecord(rec)

	for _, want := range []string{"com.example.tool", "1.2.3", "/opt/tool", "present"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderRecordAbsent(t *testing.T) {
	rec := &pkgutil.PackageRecord{State: pkgutil.StateAbsent, PackageID: "com.example.gone"}

	out := RenderRecord(rec)

	if !strings.Contains(out, "absent") {
		t.Errorf("output should say absent:\n%s", out)
	}
	if strings.Contains(out, "version") {
		t.Errorf("absent record should not render install metadata:\n%s", out)
	}
}

func TestRenderManifest(t *testing.T) {
	out := RenderManifest("com.example.tool", []string{"/opt/tool/bin", "/opt/tool/bin/tool"})

	if !strings.Contains(out, "/opt/tool/bin/tool") {
		t.Errorf("output missing file path:\n%s", out)
	}
	if !strings.Contains(out, "2 files owned by com.example.tool") {
		t.Errorf("output missing summary:\n%s", out)
	}
}

func TestRenderManifestEmpty(t *testing.T) {
	out := RenderManifest("com.example.tool", nil)
	if !strings.Contains(out, "owns no files") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestRenderHistory(t *testing.T) {
	runs := []journal.Run{
		{ID: "0123456789ab", StartedAt: time.Now(), AppName: "Tool", DesiredState: "present", Action: "install", Changed: true},
		{ID: "fedcba987654", StartedAt: time.Now(), AppName: "Other", DesiredState: "absent", Action: "none", Error: "not confident to remove"},
	}

	out := RenderHistory(runs)

	if !strings.Contains(out, "Tool") || !strings.Contains(out, "Other") {
		t.Errorf("output missing run rows:\n%s", out)
	}
	if !strings.Contains(out, "install") {
		t.Errorf("output missing action column:\n%s", out)
	}
	// Long ids are truncated for the table.
	if strings.Contains(out, "0123456789ab") {
		t.Errorf("run id should be truncated:\n%s", out)
	}
}

func TestRenderResultNotConfident(t *testing.T) {
	res := &reconcile.Result{
		Changed: true,
		Action:  reconcile.ActionNone,
		Message: "Running as root",
		Err: &reconcile.NotConfidentError{
			PackageID: "com.example.tool",
			Files:     []string{"/opt/tool/bin/tool"},
		},
	}

	out := RenderResult(res)

	if !strings.Contains(out, "Files that would be deleted:") {
		t.Errorf("refusal should list the reviewable files:\n%s", out)
	}
	if !strings.Contains(out, "/opt/tool/bin/tool") {
		t.Errorf("output missing manifest entry:\n%s", out)
	}
}

func TestRenderResultPlainFailure(t *testing.T) {
	res := &reconcile.Result{Err: errors.New("boom")}

	out := RenderResult(res)
	if !strings.Contains(out, "boom") {
		t.Errorf("output missing error:\n%s", out)
	}
}

func TestProgressNonTTYEmitsOnlyCompletion(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(3, "Reconciling entries")
	p.SetWriter(&buf)

	p.Increment()
	p.Increment()
	if buf.Len() != 0 {
		t.Errorf("non-TTY writer should stay quiet before completion, got %q", buf.String())
	}

	p.Increment()
	p.Finish()

	out := buf.String()
	if strings.Count(out, "100%") != 1 {
		t.Errorf("expected exactly one completion line, got %q", out)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"much-too-long-string", 8, "much-to…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestFormatRelativeTime(t *testing.T) {
	if got := formatRelativeTime(time.Time{}); got != "never" {
		t.Errorf("zero time = %q, want never", got)
	}
	if got := formatRelativeTime(time.Now().Add(-2 * time.Hour)); got != "2 hours ago" {
		t.Errorf("got %q, want 2 hours ago", got)
	}
	if got := formatRelativeTime(time.Now().Add(-3 * 24 * time.Hour)); got != "3 days ago" {
		t.Errorf("got %q, want 3 days ago", got)
	}
}
