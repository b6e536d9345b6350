package fsutil

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/TechXTT/internals/pkg/logger"
)

const (
	FileMode0644 = 0o644
	FileMode0755 = 0o755
)

// PathExists reports whether anything exists at path.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil || os.IsExist(err)
}

func IsDirectory(path string) bool {
	s, err := os.Stat(path)
	if err != nil {
		return false
	}
	return s.IsDir()
}

func IsFile(path string) bool {
	s, err := os.Stat(path)
	if err != nil {
		return false
	}
	return s.Mode().IsRegular()
}

// FindUp looks for name in from and each of its ancestors and returns the
// first match.
func FindUp(name, from string) (string, bool) {
	dir, err := filepath.Abs(from)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(dir, name)
		if PathExists(candidate) {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func EnsureDir(path string) error {
	if IsDirectory(path) {
		return nil
	}
	if err := os.MkdirAll(path, FileMode0755); err != nil {
		return errors.Wrapf(err, "failed to create directory %s", path)
	}
	return nil
}

// WriteFileAtomic writes data to a temp file in the target directory and
// renames it over path.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) (err error) {
	dir := filepath.Dir(path)
	if err = EnsureDir(dir); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".prisma-tmp-")
	if err != nil {
		return errors.Wrapf(err, "failed to create temp file in %s", dir)
	}
	defer func() {
		if err == nil {
			return
		}
		_ = tmp.Close()
		if rmErr := os.Remove(tmp.Name()); rmErr != nil && !os.IsNotExist(rmErr) {
			logger.Warnf("failed to remove temp file %s: %v", tmp.Name(), rmErr)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return errors.Wrapf(err, "failed to write %s", tmp.Name())
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), perm); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// IsCI reports whether the process runs on a CI provider.
func IsCI() bool {
	for _, key := range []string{"CI", "CONTINUOUS_INTEGRATION", "BUILD_NUMBER", "RUN_ID", "GITHUB_ACTIONS"} {
		if v, ok := os.LookupEnv(key); ok && v != "false" && v != "0" {
			return true
		}
	}
	return false
}
