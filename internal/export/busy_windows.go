//go:build windows

package export

import (
	"errors"

	"golang.org/x/sys/windows"
)

// isSharingViolation matches the errors Windows returns when another program,
// typically Excel, has the file open without sharing it.
func isSharingViolation(err error) bool {
	return errors.Is(err, windows.ERROR_SHARING_VIOLATION) ||
		errors.Is(err, windows.ERROR_LOCK_VIOLATION)
}
