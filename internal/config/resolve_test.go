package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/ftpdeploy/internal/foundation/errors"
)

func envFrom(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func completeFile() map[string]string {
	return map[string]string{
		KeyHost:      "file-host",
		KeyUser:      "file-user",
		KeyPassword:  "file-pass",
		KeyRemoteDir: "/public_html",
	}
}

func TestResolve_HostFromFileWhenFlagAbsent(t *testing.T) {
	cfg, err := Resolve(Overrides{ProjectRoot: t.TempDir()}, Sources{
		File: map[string]string{KeyHost: "h", KeyUser: "u", KeyPassword: "p", KeyRemoteDir: "/www"},
	})
	require.NoError(t, err)
	require.Equal(t, "h", cfg.Target.Host)
}

func TestResolve_Precedence(t *testing.T) {
	root := t.TempDir()
	env := envFrom(map[string]string{
		KeyHost:     "env-host",
		KeyUser:     "env-user",
		KeyPassword: "env-pass",
		KeyLocalDir: "env-out",
	})

	t.Run("override beats file and env", func(t *testing.T) {
		cfg, err := Resolve(Overrides{ProjectRoot: root, Host: "cli-host"}, Sources{File: completeFile(), Env: env})
		require.NoError(t, err)
		require.Equal(t, "cli-host", cfg.Target.Host)
		require.Equal(t, "file-user", cfg.Target.User)
	})

	t.Run("file beats env", func(t *testing.T) {
		cfg, err := Resolve(Overrides{ProjectRoot: root}, Sources{File: completeFile(), Env: env})
		require.NoError(t, err)
		require.Equal(t, "file-host", cfg.Target.Host)
		require.Equal(t, "file-pass", cfg.Target.Password)
	})

	t.Run("env fills gaps", func(t *testing.T) {
		file := map[string]string{KeyRemoteDir: "/www"}
		cfg, err := Resolve(Overrides{ProjectRoot: root}, Sources{File: file, Env: env})
		require.NoError(t, err)
		require.Equal(t, "env-host", cfg.Target.Host)
		require.Equal(t, "env-user", cfg.Target.User)
		require.Equal(t, filepath.Join(root, "env-out"), cfg.LocalDir)
	})

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Resolve(Overrides{ProjectRoot: root}, Sources{File: completeFile()})
		require.NoError(t, err)
		require.Equal(t, DefaultPort, cfg.Target.Port)
		require.Equal(t, DefaultTimeout, cfg.Target.Timeout)
		require.False(t, cfg.Target.Secure)
		require.Equal(t, filepath.Join(root, DefaultLocalDir), cfg.LocalDir)
	})
}

func TestResolve_Aliases(t *testing.T) {
	cfg, err := Resolve(Overrides{ProjectRoot: t.TempDir()}, Sources{
		File: map[string]string{KeyHost: "h", KeyUserAlias: "legacy-user"},
		Env:  envFrom(map[string]string{KeyPasswordAlias: "legacy-pass", KeyRemoteDirAlias: "site"}),
	})
	require.NoError(t, err)
	require.Equal(t, "legacy-user", cfg.Target.User)
	require.Equal(t, "legacy-pass", cfg.Target.Password)
	require.Equal(t, "/site", cfg.Target.RemoteDir)
}

func TestResolve_PrimaryKeyInEnvBeatsAliasInFile(t *testing.T) {
	cfg, err := Resolve(Overrides{ProjectRoot: t.TempDir()}, Sources{
		File: map[string]string{KeyHost: "h", KeyUserAlias: "alias-user", KeyPassword: "p", KeyRemoteDir: "/"},
		Env:  envFrom(map[string]string{KeyUser: "primary-user"}),
	})
	require.NoError(t, err)
	require.Equal(t, "primary-user", cfg.Target.User)
}

func TestResolve_MissingKeysAreReported(t *testing.T) {
	_, err := Resolve(Overrides{ProjectRoot: t.TempDir(), Host: "h"}, Sources{
		File: map[string]string{KeyUser: "   "},
	})
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	require.Contains(t, err.Error(), "--user or FTP_USER")
	require.Contains(t, err.Error(), "--password or FTP_PASSWORD")
	require.Contains(t, err.Error(), "--remote-dir or FTP_REMOTE_DIR")
	require.NotContains(t, err.Error(), "FTP_HOST")
	require.Equal(t, 2, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestResolve_SecureFlagOverridesEnvironmentBothWays(t *testing.T) {
	on, off := true, false

	file := completeFile()
	file[KeySecure] = "true"
	cfg, err := Resolve(Overrides{ProjectRoot: t.TempDir(), Secure: &off}, Sources{File: file})
	require.NoError(t, err)
	require.False(t, cfg.Target.Secure)

	file[KeySecure] = "false"
	cfg, err = Resolve(Overrides{ProjectRoot: t.TempDir(), Secure: &on}, Sources{File: file})
	require.NoError(t, err)
	require.True(t, cfg.Target.Secure)

	cfg, err = Resolve(Overrides{ProjectRoot: t.TempDir()}, Sources{File: file})
	require.NoError(t, err)
	require.False(t, cfg.Target.Secure)
}

func TestResolve_OptionalSettingsFromEnvironment(t *testing.T) {
	file := completeFile()
	file[KeyPort] = "2121"
	file[KeySecure] = "true"
	file[KeyDisableEPSV] = "1"
	file[KeyTimeout] = "5s"

	cfg, err := Resolve(Overrides{ProjectRoot: t.TempDir()}, Sources{File: file})
	require.NoError(t, err)
	require.Equal(t, 2121, cfg.Target.Port)
	require.True(t, cfg.Target.Secure)
	require.True(t, cfg.Target.DisableEPSV)
	require.Equal(t, 5*time.Second, cfg.Target.Timeout)

	cfg, err = Resolve(Overrides{ProjectRoot: t.TempDir(), Port: 990, Timeout: time.Minute}, Sources{File: file})
	require.NoError(t, err)
	require.Equal(t, 990, cfg.Target.Port)
	require.Equal(t, time.Minute, cfg.Target.Timeout)
}

func TestResolve_InvalidOptionalSettings(t *testing.T) {
	for key, raw := range map[string]string{KeyPort: "ftp", KeySecure: "maybe", KeyTimeout: "soon"} {
		t.Run(key, func(t *testing.T) {
			file := completeFile()
			file[key] = raw
			_, err := Resolve(Overrides{ProjectRoot: t.TempDir()}, Sources{File: file})
			require.Error(t, err)
			require.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
			require.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_ReadsEnvFilesUnderProjectRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "local"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(root, "local", ".env"),
		[]byte("FTP_HOST=h\nFTP_USER=u\nFTP_PASSWORD='p w'\nFTP_REMOTE_DIR=/www\n"), 0o600))

	cfg, err := Load(Overrides{ProjectRoot: root, DryRun: true})
	require.NoError(t, err)
	require.Equal(t, "h", cfg.Target.Host)
	require.Equal(t, "p w", cfg.Target.Password)
	require.True(t, cfg.DryRun)
	require.Equal(t, []string{filepath.Join(root, "local", ".env")}, cfg.EnvFiles)
}

func TestNormalizeRemoteDir(t *testing.T) {
	cases := map[string]string{
		"":               "",
		"  ":             "",
		"/":              "/",
		"public_html":    "/public_html",
		"/a/b/c/":        "/a/b/c",
		"//a//b":         "/a/b",
		"/public_html/.": "/public_html",
	}
	for in, want := range cases {
		require.Equal(t, want, NormalizeRemoteDir(in), "NormalizeRemoteDir(%q)", in)
	}
}
