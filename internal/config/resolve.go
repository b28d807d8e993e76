package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	ferrors "git.home.luguber.info/inful/ftpdeploy/internal/foundation/errors"
)

// Recognized environment keys. Aliases are consulted after the primary key.
const (
	KeyHost           = "FTP_HOST"
	KeyUser           = "FTP_USER"
	KeyUserAlias      = "FTPUSER"
	KeyPassword       = "FTP_PASSWORD"
	KeyPasswordAlias  = "FTPPASS"
	KeyRemoteDir      = "FTP_REMOTE_DIR"
	KeyRemoteDirAlias = "FTP_ROOTDIR"
	KeyLocalDir       = "LOCAL_DIR"
	KeyPort           = "FTP_PORT"
	KeySecure         = "FTP_SECURE"
	KeyDisableEPSV    = "FTP_DISABLE_EPSV"
	KeyTimeout        = "FTP_TIMEOUT"
)

// Overrides are explicit values, normally from command line flags. Zero values mean unset.
type Overrides struct {
	ProjectRoot string
	Host        string
	User        string
	Password    string
	RemoteDir   string
	LocalDir    string
	Port        int
	// Secure is nil unless a flag chose explicitly; false overrides FTP_SECURE=true.
	Secure  *bool
	Timeout time.Duration

	DryRun      bool
	AllowAppDir bool
	BuildExport bool
	ReportPath  string
	MetricsFile string
}

// Sources are the non-explicit configuration inputs.
type Sources struct {
	// File holds merged environment file values.
	File map[string]string
	// Env looks up the process environment; nil disables it.
	Env func(string) (string, bool)
	// EnvFiles names the files File was read from.
	EnvFiles []string
}

// lookup walks the keys in order, checking the environment files before the
// process environment for each. Empty values count as unset.
func (s Sources) lookup(keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(s.File[key]); v != "" {
			return v
		}
		if s.Env != nil {
			if v, ok := s.Env(key); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
	}
	return ""
}

// Load reads the environment files under o.ProjectRoot and resolves the
// configuration against the process environment.
func Load(o Overrides) (*Config, error) {
	return LoadWithEnv(o, os.LookupEnv)
}

// LoadWithEnv is Load with an explicit environment lookup.
func LoadWithEnv(o Overrides, env func(string) (string, bool)) (*Config, error) {
	root, err := projectRoot(o.ProjectRoot)
	if err != nil {
		return nil, err
	}
	o.ProjectRoot = root

	values, used, err := LoadEnvFiles(root)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read environment file").
			Fatal().
			Build()
	}
	return Resolve(o, Sources{File: values, Env: env, EnvFiles: used})
}

// Resolve merges o with src and validates the required connection settings.
func Resolve(o Overrides, src Sources) (*Config, error) {
	root, err := projectRoot(o.ProjectRoot)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ProjectRoot: root,
		DryRun:      o.DryRun,
		AllowAppDir: o.AllowAppDir,
		BuildExport: o.BuildExport,
		ReportPath:  o.ReportPath,
		MetricsFile: o.MetricsFile,
		EnvFiles:    append([]string(nil), src.EnvFiles...),
	}

	t := &cfg.Target
	t.Host = firstNonEmpty(o.Host, src.lookup(KeyHost))
	t.User = firstNonEmpty(o.User, src.lookup(KeyUser, KeyUserAlias))
	t.Password = firstNonEmpty(o.Password, src.lookup(KeyPassword, KeyPasswordAlias))
	t.RemoteDir = NormalizeRemoteDir(firstNonEmpty(o.RemoteDir, src.lookup(KeyRemoteDir, KeyRemoteDirAlias)))

	if t.Port, err = resolvePort(o.Port, src.lookup(KeyPort)); err != nil {
		return nil, err
	}
	if t.Secure, err = resolveBool(o.Secure, KeySecure, src.lookup(KeySecure)); err != nil {
		return nil, err
	}
	if t.DisableEPSV, err = resolveBool(nil, KeyDisableEPSV, src.lookup(KeyDisableEPSV)); err != nil {
		return nil, err
	}
	if t.Timeout, err = resolveTimeout(o.Timeout, src.lookup(KeyTimeout)); err != nil {
		return nil, err
	}

	cfg.LocalDir = resolvePath(root, firstNonEmpty(o.LocalDir, src.lookup(KeyLocalDir), DefaultLocalDir))

	if missing := missingKeys(t); len(missing) > 0 {
		return nil, ferrors.ConfigError("missing required configuration: "+strings.Join(missing, ", ")).
			WithContext("missing", missing).
			WithContext("hint", "create local/.env (preferred) or .env at the project root").
			Build()
	}

	return cfg, nil
}

func missingKeys(t *Target) []string {
	var missing []string
	if t.Host == "" {
		missing = append(missing, "--host or "+KeyHost)
	}
	if t.User == "" {
		missing = append(missing, "--user or "+KeyUser)
	}
	if t.Password == "" {
		missing = append(missing, "--password or "+KeyPassword)
	}
	if t.RemoteDir == "" {
		missing = append(missing, "--remote-dir or "+KeyRemoteDir)
	}
	return missing
}

func projectRoot(root string) (string, error) {
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryConfig, "cannot resolve project root").
			WithContext("path", root).
			Build()
	}
	return abs, nil
}

func resolvePort(override int, raw string) (int, error) {
	if override != 0 {
		if override < 0 || override > 65535 {
			return 0, invalidValue("--port", strconv.Itoa(override))
		}
		return override, nil
	}
	if raw == "" {
		return DefaultPort, nil
	}
	port, err := strconv.Atoi(raw)
	if err != nil || port <= 0 || port > 65535 {
		return 0, invalidValue(KeyPort, raw)
	}
	return port, nil
}

func resolveBool(override *bool, key, raw string) (bool, error) {
	if override != nil {
		return *override, nil
	}
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, invalidValue(key, raw)
	}
	return v, nil
}

func resolveTimeout(override time.Duration, raw string) (time.Duration, error) {
	if override > 0 {
		return override, nil
	}
	if raw == "" {
		return DefaultTimeout, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, invalidValue(KeyTimeout, raw)
	}
	return d, nil
}

func invalidValue(key, raw string) error {
	return ferrors.ConfigError(fmt.Sprintf("invalid value for %s: %q", key, raw)).
		WithContext("key", key).
		Build()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
