// Package export writes the Incidents spreadsheet to disk, waiting for the
// operator when the target file is held open by another program.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/incident-cli/internal/incident"
	"github.com/sells-group/incident-cli/internal/resilience"
)

// Format is an output file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Operator messages written to Writer.Out.
const (
	ClosePrompt    = "Please close whatever program has this file open."
	SuccessMessage = "Successfully written to file!"
)

// DefaultRetryInterval is the pause between attempts on a locked target.
const DefaultRetryInterval = 2 * time.Second

// ErrFileLocked means another program holds the target file.
var ErrFileLocked = eris.New("export: file is locked")

// ParseFormat validates a format name. Matching is case-insensitive.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", eris.Errorf("export: unsupported format %q", s)
	}
}

// FormatForPath picks the format from a file extension, CSV unless the path
// ends in .xlsx.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// Writer writes incidents to a file.
type Writer struct {
	// Format of the output. Empty means FormatForPath.
	Format Format
	// RetryInterval is the pause between attempts while the target is
	// locked. Zero means DefaultRetryInterval.
	RetryInterval time.Duration
	// Out receives the operator messages. Nil discards them.
	Out io.Writer
}

// Write encodes incidents and writes them to path. While the target is
// locked it prompts the operator and retries until the write succeeds or ctx
// is cancelled. Any other failure is returned immediately.
func (w *Writer) Write(ctx context.Context, path string, incidents []incident.Incident) error {
	format := w.Format
	if format == "" {
		format = FormatForPath(path)
	}

	data, err := encode(format, incidents)
	if err != nil {
		return err
	}

	out := w.Out
	if out == nil {
		out = io.Discard
	}

	interval := w.RetryInterval
	if interval <= 0 {
		interval = DefaultRetryInterval
	}

	cfg := resilience.UntilSuccess(interval, func(err error) bool {
		return errors.Is(err, ErrFileLocked)
	})
	cfg.OnRetry = func(attempt int, err error) {
		_, _ = fmt.Fprintln(out, ClosePrompt)
		zap.L().Warn("export: target locked, waiting",
			zap.String("path", path),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}

	if err := resilience.Do(ctx, cfg, func(_ context.Context) error {
		return writeLocked(path, data)
	}); err != nil {
		return eris.Wrapf(err, "export: write %s", path)
	}

	_, _ = fmt.Fprintln(out, SuccessMessage)
	zap.L().Info("export: wrote file",
		zap.String("path", path),
		zap.String("format", string(format)),
		zap.Int("rows", len(incidents)),
		zap.Int("bytes", len(data)),
	)
	return nil
}

func encode(format Format, incidents []incident.Incident) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatCSV:
		err = incident.WriteCSV(&buf, incidents)
	case FormatXLSX:
		err = incident.WriteXLSX(&buf, incidents)
	default:
		return nil, eris.Errorf("export: unsupported format %q", format)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "export: encode %s", format)
	}
	return buf.Bytes(), nil
}

// writeLocked writes data to path while holding the advisory lock on the
// <path>.lock sidecar. The sidecar stays on disk: unlinking it would let a
// waiter lock the orphaned inode while a newcomer locks a fresh file.
func writeLocked(path string, data []byte) error {
	lockPath := path + ".lock"
	lock := flock.New(lockPath)

	ok, err := lock.TryLock()
	if err != nil {
		if isBusy(err) {
			return eris.Wrapf(ErrFileLocked, "export: lock %s: %v", lockPath, err)
		}
		return eris.Wrapf(err, "export: lock %s", lockPath)
	}
	if !ok {
		return eris.Wrapf(ErrFileLocked, "export: %s held by another process", lockPath)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			zap.L().Debug("export: release lock", zap.String("path", lockPath), zap.Error(err))
		}
	}()

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		if isBusy(err) {
			return eris.Wrapf(ErrFileLocked, "export: open %s: %v", path, err)
		}
		return eris.Wrapf(err, "export: open %s", path)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return eris.Wrapf(err, "export: write %s", path)
	}
	return eris.Wrapf(f.Close(), "export: close %s", path)
}

// isBusy reports whether err means the file is held or protected by someone
// else. The operator can clear these by closing the other program.
func isBusy(err error) bool {
	return errors.Is(err, os.ErrPermission) ||
		errors.Is(err, syscall.EBUSY) ||
		errors.Is(err, syscall.ETXTBSY) ||
		errors.Is(err, syscall.EAGAIN) ||
		isSharingViolation(err)
}
