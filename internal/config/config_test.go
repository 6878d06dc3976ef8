package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("missing config file should not be an error: %v", err)
	}

	tool := cfg.Tool()
	if tool.PkgutilPath != "/usr/sbin/pkgutil" {
		t.Errorf("pkgutil path = %q", tool.PkgutilPath)
	}
	if tool.InstallerPath != "/usr/sbin/installer" {
		t.Errorf("installer path = %q", tool.InstallerPath)
	}
	if cfg.Receipts() != "/var/db/receipts" {
		t.Errorf("receipts dir = %q", cfg.Receipts())
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	content := `pkgutil_path: /opt/local/bin/pkgutil
installer_path: /opt/local/bin/installer
db_path: /tmp/test.db
receipts_dir: /tmp/receipts
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	tool := cfg.Tool()
	if tool.PkgutilPath != "/opt/local/bin/pkgutil" {
		t.Errorf("pkgutil path = %q", tool.PkgutilPath)
	}
	if tool.InstallerPath != "/opt/local/bin/installer" {
		t.Errorf("installer path = %q", tool.InstallerPath)
	}
	if cfg.DBPath != "/tmp/test.db" {
		t.Errorf("db path = %q", cfg.DBPath)
	}
	if cfg.Receipts() != "/tmp/receipts" {
		t.Errorf("receipts dir = %q", cfg.Receipts())
	}
}

func TestLoadMalformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("{not yaml"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestDirRespectsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	dir, err := Dir()
	if err != nil {
		t.Fatalf("Dir() error: %v", err)
	}
	if dir != "/tmp/xdg/pkgdrift" {
		t.Errorf("dir = %q, want /tmp/xdg/pkgdrift", dir)
	}
}
