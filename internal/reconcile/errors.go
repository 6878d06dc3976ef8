package reconcile

import (
	"errors"
	"fmt"
)

// PackageFileNotFoundError reports that the install source is not a regular
// file at the resolved path.
type PackageFileNotFoundError struct {
	Path string
}

// Error implements the error interface.
func (e *PackageFileNotFoundError) Error() string {
	return fmt.Sprintf("pkg file not found at %s", e.Path)
}

// NotConfidentError reports an uninstall blocked by the safety gate. It
// carries the full list of files that would have been deleted so the
// operator can review dependencies before retrying with the gate enabled.
type NotConfidentError struct {
	PackageID string
	Files     []string
}

// Error implements the error interface.
func (e *NotConfidentError) Error() string {
	return fmt.Sprintf("not confident to remove %s: review the %d files it owns and set confident_to_remove to continue",
		e.PackageID, len(e.Files))
}

// IsNotConfident reports whether err is a safety-gate refusal.
// Uses errors.As to handle wrapped errors.
func IsNotConfident(err error) bool {
	var nc *NotConfidentError
	return errors.As(err, &nc)
}

// IsPackageFileNotFound reports whether err is a missing install source.
func IsPackageFileNotFound(err error) bool {
	var nf *PackageFileNotFoundError
	return errors.As(err, &nf)
}
