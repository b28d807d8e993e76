package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/ftpdeploy/internal/foundation/errors"
)

func TestInsideAppDir(t *testing.T) {
	root := t.TempDir()
	cases := []struct {
		local  string
		inside bool
	}{
		{"app", true},
		{"app/out", true},
		{"app/out/nested", true},
		{"local/out", false},
		{"application/out", false},
		{"apps", false},
		{".", false},
	}
	for _, tc := range cases {
		cfg := (&Config{ProjectRoot: root}).WithLocalDir(tc.local)
		require.Equal(t, tc.inside, cfg.InsideAppDir(), "local dir %q", tc.local)
	}
}

func TestCheckSafety(t *testing.T) {
	root := t.TempDir()
	base := &Config{ProjectRoot: root}

	err := base.WithLocalDir("app/out").CheckSafety()
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))
	require.Equal(t, 2, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))

	allowed := base.WithLocalDir("app/out")
	allowed.AllowAppDir = true
	require.NoError(t, allowed.CheckSafety())

	require.NoError(t, base.WithLocalDir("local/out").CheckSafety())
}

func TestCheckLocalDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "local", "out"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "file.txt"), []byte("x"), 0o600))
	base := &Config{ProjectRoot: root}

	require.NoError(t, base.WithLocalDir("local/out").CheckLocalDir())

	err := base.WithLocalDir("missing").CheckLocalDir()
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryValidation))

	err = base.WithLocalDir("file.txt").CheckLocalDir()
	require.Error(t, err)
	require.Contains(t, err.Error(), "not a directory")
}

func TestWithLocalDirDoesNotMutate(t *testing.T) {
	root := t.TempDir()
	base := &Config{ProjectRoot: root, LocalDir: filepath.Join(root, "local", "out"), EnvFiles: []string{"a"}}
	derived := base.WithLocalDir("/srv/site")

	require.Equal(t, filepath.Join(root, "local", "out"), base.LocalDir)
	require.Equal(t, "/srv/site", derived.LocalDir)
	derived.EnvFiles[0] = "b"
	require.Equal(t, "a", base.EnvFiles[0])
}

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, "DEBUG", ParseLogLevel(true, "error").String())
	require.Equal(t, "WARN", ParseLogLevel(false, " Warning ").String())
	require.Equal(t, "INFO", ParseLogLevel(false, "bogus").String())
}

func TestTargetString(t *testing.T) {
	target := Target{Host: "ftp.example.com", Port: 21, User: "deploy", Password: "secret", RemoteDir: "/www", Secure: true}
	require.Equal(t, "ftps://deploy@ftp.example.com:21/www", target.String())
	require.NotContains(t, target.String(), "secret")
	require.Equal(t, "[::1]:2121", Target{Host: "::1", Port: 2121}.Address())
}
