package pkgutil

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// KeyNotFoundError reports a transcript that is missing an expected key.
// The full transcript is carried for operator diagnosis.
type KeyNotFoundError struct {
	Key        string
	Transcript string
}

// Error implements the error interface.
func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("key %q not found in transcript", e.Key)
}

// MalformedTranscriptError reports a transcript field that was present but
// could not be converted to its expected type.
type MalformedTranscriptError struct {
	Field string
	Value string
	Err   error
}

// Error implements the error interface.
func (e *MalformedTranscriptError) Error() string {
	return fmt.Sprintf("malformed transcript field %q: %q: %v", e.Field, e.Value, e.Err)
}

func (e *MalformedTranscriptError) Unwrap() error { return e.Err }

// Value extracts the value for key from a flat "key: value" transcript.
//
// When a key occurs on more than one line the last occurrence wins. This is
// pinned deliberately: the historical matcher was a greedy leading wildcard,
// which consumes as much of the transcript as possible and therefore captures
// the final occurrence. Callers must not rely on keys being unique beyond
// that. A missing key is an error, never a default.
func Value(transcript, key string) (string, error) {
	prefix := key + ": "
	found := false
	var value string
	for _, line := range strings.Split(transcript, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.HasPrefix(line, prefix) {
			value = line[len(prefix):]
			found = true
		}
	}
	if !found {
		return "", &KeyNotFoundError{Key: key, Transcript: transcript}
	}
	return value, nil
}

// ParseRecord parses a pkg-info transcript into a PackageRecord tagged
// present. RootDir and InstalledAt are derived here; they are never
// independently settable.
func ParseRecord(transcript string) (*PackageRecord, error) {
	packageID, err := Value(transcript, "package-id")
	if err != nil {
		return nil, err
	}
	version, err := Value(transcript, "version")
	if err != nil {
		return nil, err
	}
	volume, err := Value(transcript, "volume")
	if err != nil {
		return nil, err
	}
	location, err := Value(transcript, "location")
	if err != nil {
		return nil, err
	}
	installTimeRaw, err := Value(transcript, "install-time")
	if err != nil {
		return nil, err
	}
	installTime, err := strconv.ParseInt(installTimeRaw, 10, 64)
	if err != nil {
		return nil, &MalformedTranscriptError{Field: "install-time", Value: installTimeRaw, Err: err}
	}

	return &PackageRecord{
		State:       StatePresent,
		PackageID:   packageID,
		Version:     version,
		Volume:      volume,
		Location:    location,
		RootDir:     resolveRoot(volume, location),
		InstallTime: installTime,
		InstalledAt: time.Unix(installTime, 0),
	}, nil
}

// resolveRoot joins a package location onto its volume with filesystem join
// semantics: an absolute location wins over the volume outright, not by
// string concatenation. The result is canonicalized through symlinks when
// the path exists and lexically otherwise, so parsing stays pure on hosts
// where the package root is not mounted.
func resolveRoot(volume, location string) string {
	joined := location
	if !filepath.IsAbs(location) {
		joined = filepath.Join(volume, location)
	}
	if resolved, err := filepath.EvalSymlinks(joined); err == nil {
		return resolved
	}
	return filepath.Clean(joined)
}

// ParseFileList converts a newline-separated listing of package-relative
// paths into absolute paths under rootDir.
//
// Two entries are excluded defensively even if the tool reports them: the
// empty string and the literal name "Applications". Without this a package
// whose listing names its parent directories would claim the whole volume
// root or Applications directory as a deletable leaf.
func ParseFileList(rootDir, transcript string) []string {
	var files []string
	for _, tail := range strings.Split(transcript, "\n") {
		tail = strings.TrimSuffix(tail, "\r")
		if tail == "" || tail == "Applications" {
			continue
		}
		files = append(files, filepath.Join(rootDir, tail))
	}
	return files
}
