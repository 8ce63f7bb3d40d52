package sync

import (
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/sidkik/dirsync/pkg/errors"
)

// tempPrefix is prepended to the name of partially copied files. If a copy is
// interrupted, the leftover file is removed by the next Purge pass since it
// has no counterpart in the source.
const tempPrefix = ".dirsync-"

// copyFile copies the contents, permissions, and modification time of `src`
// to `dst`. The parent of `dst` must exist. Any existing file at `dst` is
// replaced, even if it's read-only.
func copyFile(fs afero.Fs, src, dst string) (err error) {
	srcFile, err := fs.Open(src)
	if err != nil {
		return errors.WithContext(err, "open source")
	}
	defer srcFile.Close()

	fileInfo, err := srcFile.Stat()
	if err != nil {
		return errors.WithContext(err, "stat")
	}

	tmpFile, err := afero.TempFile(fs, filepath.Dir(dst), tempPrefix+filepath.Base(dst))
	if err != nil {
		return errors.WithContext(err, "open destination")
	}
	tmpPath := tmpFile.Name()
	defer func() {
		if err != nil {
			fs.Remove(tmpPath)
		}
	}()

	if _, err := io.Copy(tmpFile, srcFile); err != nil {
		tmpFile.Close()
		return errors.WithContext(err, "copy")
	}

	if err := tmpFile.Close(); err != nil {
		return errors.WithContext(err, "close destination")
	}

	if err := fs.Chmod(tmpPath, fileInfo.Mode().Perm()); err != nil {
		return errors.WithContext(err, "set file mode")
	}

	// Change the modification time after all writes so that it doesn't get
	// reset.
	if err := fs.Chtimes(tmpPath, time.Now(), fileInfo.ModTime()); err != nil {
		return errors.WithContext(err, "set file modtime")
	}

	if err := fs.Rename(tmpPath, dst); err != nil {
		return errors.WithContext(err, "rename")
	}
	return nil
}
