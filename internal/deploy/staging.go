// Package deploy packages the Lambda function into an uploadable zip.
package deploy

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// WithStagingDir gives fn a fresh, empty directory at path. Any existing
// directory is removed first and the directory is removed again afterwards,
// whether or not fn succeeds.
func WithStagingDir(path string, fn func(dir string) error) (err error) {
	if err := removeTree(path); err != nil {
		return err
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}
	defer func() {
		if rmErr := removeTree(path); rmErr != nil && err == nil {
			err = rmErr
		}
	}()
	return fn(path)
}

// removeTree deletes path. When deletion is refused for lack of permission
// the offending entry and its parent are made 0o777 and the deletion is
// retried; an entry that is refused twice, or any other failure, is an
// error.
func removeTree(path string) error {
	repaired := map[string]bool{}
	for {
		err := os.RemoveAll(path)
		if err == nil {
			return nil
		}

		var pe *fs.PathError
		if !errors.Is(err, fs.ErrPermission) || !errors.As(err, &pe) || repaired[pe.Path] {
			return fmt.Errorf("failed to delete staging directory %s: %w", path, err)
		}
		repaired[pe.Path] = true

		_ = os.Chmod(filepath.Dir(pe.Path), 0o777)
		_ = os.Chmod(pe.Path, 0o777)
	}
}
