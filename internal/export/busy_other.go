//go:build !windows

package export

// isSharingViolation is Windows-only; other platforms do not refuse opens of
// a file another program holds.
func isSharingViolation(error) bool { return false }
