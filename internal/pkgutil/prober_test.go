package pkgutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeResponse struct {
	rc     int
	stdout string
	stderr string
}

// fakeRunner returns scripted transcripts keyed by the joined argv and
// records every command it is asked to run.
type fakeRunner struct {
	responses map[string]fakeResponse
	calls     []string
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{responses: make(map[string]fakeResponse)}
}

func (f *fakeRunner) script(argv []string, resp fakeResponse) {
	f.responses[strings.Join(argv, " ")] = resp
}

func (f *fakeRunner) Run(argv []string, checkRC bool) (int, string, string, error) {
	key := strings.Join(argv, " ")
	f.calls = append(f.calls, key)

	resp, ok := f.responses[key]
	if !ok {
		return -1, "", "", fmt.Errorf("unscripted command: %s", key)
	}
	if checkRC && resp.rc != 0 {
		return resp.rc, resp.stdout, resp.stderr, &ProcessExecutionError{
			Argv:   argv,
			RC:     resp.rc,
			Stdout: resp.stdout,
			Stderr: resp.stderr,
		}
	}
	return resp.rc, resp.stdout, resp.stderr, nil
}

func (f *fakeRunner) ran(substr string) bool {
	for _, c := range f.calls {
		if strings.Contains(c, substr) {
			return true
		}
	}
	return false
}

const proberInfo = `package-id: com.example.pkg.tool
version: 1.2.3
volume: /
location: opt/tool
install-time: 1700000000
`

func TestProberInfoPresent(t *testing.T) {
	runner := newFakeRunner()
	tool := DefaultTool()
	runner.script(tool.InfoArgs("com.example.pkg.tool", "/"), fakeResponse{stdout: proberInfo})

	p := NewProber(runner, tool)
	rec, err := p.Info("com.example.pkg.tool", "/")
	if err != nil {
		t.Fatalf("Info() error: %v", err)
	}
	if !rec.Present() {
		t.Fatal("record should be present")
	}
	if rec.RootDir != "/opt/tool" {
		t.Errorf("root dir = %q, want /opt/tool", rec.RootDir)
	}
}

func TestProberInfoAbsent(t *testing.T) {
	runner := newFakeRunner()
	tool := DefaultTool()
	runner.script(tool.InfoArgs("com.example.gone", "/"), fakeResponse{rc: 1, stderr: "No receipt"})

	p := NewProber(runner, tool)
	rec, err := p.Info("com.example.gone", "/")
	if err != nil {
		t.Fatalf("a non-zero exit is the absent signal, not an error: %v", err)
	}
	if rec.Present() {
		t.Fatal("record should be absent")
	}
	if rec.PackageID != "com.example.gone" {
		t.Errorf("absent record should keep the probed id, got %q", rec.PackageID)
	}
}

func TestProberFiles(t *testing.T) {
	runner := newFakeRunner()
	tool := DefaultTool()
	runner.script(tool.InfoArgs("com.example.pkg.tool", "/"), fakeResponse{stdout: proberInfo})
	runner.script(tool.FilesArgs("com.example.pkg.tool", "/"), fakeResponse{stdout: "bin\nbin/tool\n\nApplications\n"})

	p := NewProber(runner, tool)
	files, err := p.Files("com.example.pkg.tool", "/")
	if err != nil {
		t.Fatalf("Files() error: %v", err)
	}

	want := []string{"/opt/tool/bin", "/opt/tool/bin/tool"}
	if len(files) != len(want) {
		t.Fatalf("got %d files, want %d: %v", len(files), len(want), files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("file[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestProberFilesAbsentPackage(t *testing.T) {
	runner := newFakeRunner()
	tool := DefaultTool()
	runner.script(tool.InfoArgs("com.example.gone", "/"), fakeResponse{rc: 1})

	p := NewProber(runner, tool)
	if _, err := p.Files("com.example.gone", "/"); err == nil {
		t.Fatal("files cannot be enumerated for an absent package")
	}
	if runner.ran("--files") {
		t.Error("files listing should not run when the package is absent")
	}
}

func TestProberPresencePackageIDPrecedence(t *testing.T) {
	// The creates path exists but the package-id probe says absent: the
	// package-id oracle must win and the filesystem must be ignored.
	dir := t.TempDir()

	runner := newFakeRunner()
	tool := DefaultTool()
	runner.script(tool.InfoArgs("com.example.gone", "/"), fakeResponse{rc: 1})

	p := NewProber(runner, tool)
	present, err := p.Presence(dir, "com.example.gone", "/")
	if err != nil {
		t.Fatalf("Presence() error: %v", err)
	}
	if present {
		t.Error("package-id oracle says absent; creates path must be ignored")
	}
}

func TestProberPresenceCreatesPath(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "Thing.app")
	if err := os.Mkdir(existing, 0755); err != nil {
		t.Fatal(err)
	}

	p := NewProber(newFakeRunner(), DefaultTool())

	present, err := p.Presence(existing, "", "/")
	if err != nil {
		t.Fatalf("Presence() error: %v", err)
	}
	if !present {
		t.Error("existing creates path should report present")
	}

	present, err = p.Presence(filepath.Join(dir, "Missing.app"), "", "/")
	if err != nil {
		t.Fatalf("Presence() error: %v", err)
	}
	if present {
		t.Error("missing creates path should report absent")
	}
}

func TestProberListAll(t *testing.T) {
	runner := newFakeRunner()
	tool := DefaultTool()
	runner.script(tool.PkgsArgs("/"), fakeResponse{stdout: "com.a\ncom.b\n\ncom.c\n"})

	p := NewProber(runner, tool)
	snap, err := p.ListAll("/")
	if err != nil {
		t.Fatalf("ListAll() error: %v", err)
	}

	want := []string{"com.a", "com.b", "com.c"}
	got := snap.Sorted()
	if len(got) != len(want) {
		t.Fatalf("got %d ids, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("id[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if snap.TakenAt.IsZero() {
		t.Error("snapshot should be stamped with its capture time")
	}
}

func TestProberListAllFailure(t *testing.T) {
	runner := newFakeRunner()
	tool := DefaultTool()
	runner.script(tool.PkgsArgs("/"), fakeResponse{rc: 2, stderr: "bad volume"})

	p := NewProber(runner, tool)
	_, err := p.ListAll("/")
	if err == nil {
		t.Fatal("expected error when listing fails")
	}

	var lf *ListingFailedError
	if !errors.As(err, &lf) {
		t.Fatalf("expected ListingFailedError, got %T", err)
	}
	if lf.RC != 2 || lf.Volume != "/" {
		t.Errorf("error fields = rc %d, volume %q", lf.RC, lf.Volume)
	}
}

func TestProberNewSince(t *testing.T) {
	runner := newFakeRunner()
	tool := DefaultTool()
	runner.script(tool.PkgsArgs("/"), fakeResponse{stdout: "com.e\ncom.a\ncom.d\ncom.c\ncom.b\n"})

	baseline := NewSnapshot([]string{"com.c", "com.a", "com.b"})

	p := NewProber(runner, tool)
	fresh, err := p.NewSince("/", baseline)
	if err != nil {
		t.Fatalf("NewSince() error: %v", err)
	}

	want := []string{"com.d", "com.e"}
	if len(fresh) != len(want) {
		t.Fatalf("got %v, want %v", fresh, want)
	}
	for i := range want {
		if fresh[i] != want[i] {
			t.Errorf("new[%d] = %q, want %q", i, fresh[i], want[i])
		}
	}
}
