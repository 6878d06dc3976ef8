package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/blackwell-systems/pkgdrift/internal/config"
	"github.com/blackwell-systems/pkgdrift/internal/journal"
	"github.com/blackwell-systems/pkgdrift/internal/pkgutil"
)

// newLogger builds the CLI logger. Reports go to stdout; diagnostics go to
// stderr so piped output stays clean.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

// loadConfig reads the host config file, tolerating its absence.
func loadConfig() (*config.Config, error) {
	dir, err := config.Dir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate config directory: %w", err)
	}
	cfg, err := config.Load(dir)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadTool resolves external tool paths: defaults, then the config file,
// then explicit flags.
func loadTool(cfg *config.Config) pkgutil.Tool {
	tool := cfg.Tool()
	if flagPkgutil != "" {
		tool.PkgutilPath = flagPkgutil
	}
	if flagInstaller != "" {
		tool.InstallerPath = flagInstaller
	}
	return tool
}

// getDBPath returns the journal database path, creating its parent
// directory. Uses $HOME/.pkgdrift/pkgdrift.db unless overridden by the
// --db flag or the config file.
func getDBPath(cfg *config.Config) (string, error) {
	if flagDB != "" {
		return flagDB, nil
	}
	if cfg.DBPath != "" {
		return cfg.DBPath, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	dir := filepath.Join(home, ".pkgdrift")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return filepath.Join(dir, "pkgdrift.db"), nil
}

// openJournal opens the run journal at the resolved database path.
func openJournal(cfg *config.Config) (*journal.Journal, error) {
	path, err := getDBPath(cfg)
	if err != nil {
		return nil, err
	}
	j, err := journal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal at %s: %w", path, err)
	}
	return j, nil
}
