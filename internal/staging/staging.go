package staging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/ftpdeploy/internal/logfields"
)

// Manager handles a fixed staging directory.
type Manager struct {
	path string
}

// NewManager returns a manager for the staging directory at path.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Path returns the staging directory.
func (m *Manager) Path() string {
	return m.path
}

// Reset removes everything inside the staging directory and makes sure it exists.
// The directory itself is kept so open shells and watchers are not disturbed.
func (m *Manager) Reset() error {
	if m.path == "" {
		return fmt.Errorf("staging directory not set")
	}
	if err := os.MkdirAll(m.path, 0o750); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	entries, err := os.ReadDir(m.path)
	if err != nil {
		return fmt.Errorf("failed to read staging directory: %w", err)
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(m.path, entry.Name())); err != nil {
			return fmt.Errorf("failed to clear staging directory: %w", err)
		}
	}
	slog.Debug("Cleared staging directory", logfields.Path(m.path), logfields.Count(len(entries)))
	return nil
}

// Mirror resets the staging directory and copies src into it.
func (m *Manager) Mirror(src string) error {
	if err := m.Reset(); err != nil {
		return err
	}
	if err := CopyDir(src, m.path); err != nil {
		return fmt.Errorf("failed to copy %s into staging: %w", src, err)
	}
	slog.Info("Staged build output", logfields.Path(m.path))
	return nil
}

// Overlay copies the named files from dir into the staging directory when
// they exist, replacing any staged copy. It returns the names copied.
func (m *Manager) Overlay(dir string, names ...string) ([]string, error) {
	var copied []string
	for _, name := range names {
		src := filepath.Join(dir, name)
		info, err := os.Stat(src)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return copied, fmt.Errorf("failed to stat overlay %s: %w", src, err)
		}
		if info.IsDir() {
			continue
		}
		if err := copyFile(src, filepath.Join(m.path, name)); err != nil {
			return copied, fmt.Errorf("failed to overlay %s: %w", name, err)
		}
		copied = append(copied, name)
	}
	if len(copied) > 0 {
		slog.Info("Applied staging overlay", logfields.Path(m.path), logfields.Count(len(copied)))
	}
	return copied, nil
}

// CopyDir recursively copies a directory tree.
func CopyDir(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !srcInfo.IsDir() {
		return fmt.Errorf("%s is not a directory", src)
	}

	if err := os.MkdirAll(dst, srcInfo.Mode().Perm()); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := CopyDir(srcPath, dstPath); err != nil {
				return err
			}
			continue
		}
		if entry.Type()&os.ModeSymlink != 0 {
			if info, err := os.Stat(srcPath); err != nil || info.IsDir() {
				slog.Debug("Skipping link while copying", logfields.Path(srcPath))
				continue
			}
		}
		if err := copyFile(srcPath, dstPath); err != nil {
			return err
		}
	}

	return nil
}

// copyFile copies a single file from src to dst, keeping its permissions.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		_ = srcFile.Close()
	}()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return err
	}
	if !srcInfo.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return err
	}
	if err := dstFile.Close(); err != nil {
		return err
	}
	return os.Chmod(dst, srcInfo.Mode().Perm())
}
