package orchestrator

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/atotto/clipboard"
	"github.com/spf13/afero"

	"vuetifyconf-cli/internal/interfaces"
)

// OutputHandler implements the OutputHandler interface
type OutputHandler struct {
	fs     afero.Fs
	stdout io.Writer
	// clipboardWrite is swapped in tests
	clipboardWrite func(string) error
}

// NewOutputHandler creates a new output handler writing files through fs
func NewOutputHandler(fs afero.Fs, stdout io.Writer) interfaces.OutputHandler {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	return &OutputHandler{
		fs:             fs,
		stdout:         stdout,
		clipboardWrite: clipboard.WriteAll,
	}
}

// WriteToClipboard copies content to the system clipboard
func (h *OutputHandler) WriteToClipboard(content string) error {
	return h.clipboardWrite(content)
}

// WriteToStdout writes content to standard output
func (h *OutputHandler) WriteToStdout(content string) error {
	_, err := fmt.Fprint(h.stdout, content)
	return err
}

// WriteToFile writes content to the specified file path. Files whose content
// is unchanged are left untouched so that their modification time stays put.
func (h *OutputHandler) WriteToFile(content string, path string) error {
	if existing, err := afero.ReadFile(h.fs, path); err == nil && string(existing) == content {
		return nil
	}
	if err := h.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	return afero.WriteFile(h.fs, path, []byte(content), 0644)
}
