package pdftext

import (
	"fmt"
	"log/slog"
	"os"
)

const tempPattern = "pdfx-*.pdf"

// withTempFile writes data to a uniquely named file, hands its path to fn and removes the file
// afterwards, whether fn succeeds, fails or panics.
func withTempFile(dir string, data []byte, logger *slog.Logger, fn func(path string) error) error {
	f, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn("pdftext.tempfile.remove_failed", "path", path, "error", err)
		}
	}()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return fn(path)
}
