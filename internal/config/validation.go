package config

import (
	"os"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/ftpdeploy/internal/foundation/errors"
)

// InsideAppDir reports whether the local directory is the raw build workspace or below it.
func (c *Config) InsideAppDir() bool {
	app := canonical(c.AppDir())
	local := canonical(c.LocalDir)
	if local == app {
		return true
	}
	rel, err := filepath.Rel(app, local)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// CheckSafety refuses a local directory inside the raw build workspace unless AllowAppDir is set.
func (c *Config) CheckSafety() error {
	if c.AllowAppDir || !c.InsideAppDir() {
		return nil
	}
	return ferrors.ValidationError("refusing to deploy from inside './"+AppDirName+"'; export to a top-level folder (e.g. './"+DefaultLocalDir+"') or pass --allow-app-dir").
		WithContext("local_dir", c.LocalDir).
		Build()
}

// CheckLocalDir verifies the local directory exists and is a directory.
func (c *Config) CheckLocalDir() error {
	info, err := os.Stat(c.LocalDir)
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryValidation, "local directory '"+c.LocalDir+"' not found").
			Fatal().
			WithContext("local_dir", c.LocalDir).
			Build()
	}
	if !info.IsDir() {
		return ferrors.ValidationError("local directory '"+c.LocalDir+"' is not a directory").
			WithContext("local_dir", c.LocalDir).
			Build()
	}
	return nil
}

// Validate runs every pre-connection check.
func (c *Config) Validate() error {
	if err := c.CheckSafety(); err != nil {
		return err
	}
	return c.CheckLocalDir()
}

// canonical cleans p and resolves symlinks when the path exists.
func canonical(p string) string {
	p = filepath.Clean(p)
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved
	}
	return p
}
