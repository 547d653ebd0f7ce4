package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// ExportError reports an output artifact that could not be written.
type ExportError struct {
	Path string
	Err  error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export %q: %v", e.Path, e.Err)
}

func (e *ExportError) Unwrap() error { return e.Err }

// createFile makes the parent directory and opens the target for
// writing. Overwrite policy is the caller's job.
func createFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0777); err != nil {
		return nil, &ExportError{Path: path, Err: errors.Wrap(err, "mkdir")}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, &ExportError{Path: path, Err: err}
	}
	return f, nil
}
