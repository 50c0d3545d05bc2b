package common

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"syscall"
)

// SetupDataDir creates dataDir and its sub directories
func SetupDataDir(dataDir string, subDirs []string, perms fs.FileMode) error {
	if err := CreateDirSafe(dataDir, perms); err != nil {
		return fmt.Errorf("failed to create data dir (%s): %w", dataDir, err)
	}

	for _, subDir := range subDirs {
		path := filepath.Join(dataDir, subDir)
		if err := CreateDirSafe(path, perms); err != nil {
			return fmt.Errorf("failed to create dir (%s): %w", path, err)
		}
	}

	return nil
}

// CreateDirSafe creates the directory at path. An existing directory must be owned by
// the current user or by a user of the same group with perms permissions.
func CreateDirSafe(path string, perms fs.FileMode) error {
	info, err := stat(path)
	if err != nil {
		return err
	}

	if info == nil {
		return os.MkdirAll(path, perms)
	}

	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}

	return verifyOwnership(path, info, perms)
}

// SaveFileSafe writes data to path through a temporary file which replaces the target,
// so readers never observe partially written keystores. Ownership of an existing file is verified first.
func SaveFileSafe(path string, data []byte, perms fs.FileMode) error {
	info, err := stat(path)
	if err != nil {
		return err
	}

	if info != nil {
		if info.IsDir() {
			return fmt.Errorf("%s is a directory", path)
		}

		if err := verifyOwnership(path, info, perms); err != nil {
			return err
		}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}

	tmpPath := tmp.Name()

	_, err = tmp.Write(data)
	if err == nil {
		err = tmp.Sync()
	}

	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}

	if err == nil {
		err = os.Chmod(tmpPath, perms)
	}

	if err == nil {
		err = os.Rename(tmpPath, path)
	}

	if err != nil {
		_ = os.Remove(tmpPath)

		return fmt.Errorf("failed to save %s: %w", path, err)
	}

	return nil
}

// DirectoryExists checks if the directory at the specified path exists
func DirectoryExists(path string) bool {
	info, err := stat(path)

	return err == nil && info != nil && info.IsDir()
}

// FileExists checks if the regular file at the specified path exists
func FileExists(path string) bool {
	info, err := stat(path)

	return err == nil && info != nil && !info.IsDir()
}

// stat returns nil info without error if path does not exist
func stat(path string) (fs.FileInfo, error) {
	if path == "" {
		return nil, errors.New("empty path")
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, err
	}

	return info, nil
}

func verifyOwnership(path string, info fs.FileInfo, expectedPerms fs.FileMode) error {
	sysStat, ok := info.Sys().(*syscall.Stat_t)
	if !ok || sysStat == nil {
		return fmt.Errorf("failed to get stats of %s", path)
	}

	currUser, err := user.Current()
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}

	if currUser.Uid == strconv.FormatUint(uint64(sysStat.Uid), 10) {
		return nil
	}

	if currUser.Gid != strconv.FormatUint(uint64(sysStat.Gid), 10) {
		return fmt.Errorf("%s is owned by a user from a different group", path)
	}

	if info.Mode().Perm() != expectedPerms.Perm() {
		return fmt.Errorf("permissions of %s are set incorrectly by another user", path)
	}

	return nil
}
