package reconcile

// CheckRemoval is the safety gate in front of every uninstall. The file
// manifest has already been computed and attached to the report by the time
// this runs; if the operator has not set confident_to_remove the gate
// refuses with the full reviewable file list and nothing is deleted.
//
// This is a deliberate friction point: destructive action always requires
// an explicit, out-of-band confirmation flag. Some packages are depended on
// by other software, and only the operator can judge that.
func CheckRemoval(d Resolved, files []string) error {
	if d.ConfidentToRemove {
		return nil
	}
	return &NotConfidentError{
		PackageID: d.PackageID,
		Files:     files,
	}
}
