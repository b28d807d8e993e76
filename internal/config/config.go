package config

import (
	"net"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Defaults.
const (
	DefaultPort     = 21
	DefaultLocalDir = "local/out"
	DefaultTimeout  = 30 * time.Second

	// AppDirName is the raw build workspace under the project root. Deploying
	// from inside it is refused unless explicitly allowed.
	AppDirName = "app"
)

// Target identifies the remote endpoint of one run.
type Target struct {
	Host     string
	Port     int
	User     string
	Password string
	// RemoteDir is the absolute, slash separated remote base directory.
	RemoteDir string
	// Secure upgrades the control connection with explicit TLS and protects the data channel.
	Secure bool
	// DisableEPSV forces PASV instead of EPSV for passive data connections.
	DisableEPSV bool
	Timeout     time.Duration
}

// Address returns host:port.
func (t Target) Address() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// String renders the target without credentials.
func (t Target) String() string {
	scheme := "ftp"
	if t.Secure {
		scheme = "ftps"
	}
	return scheme + "://" + t.User + "@" + t.Address() + t.RemoteDir
}

// Config is the merged configuration for one deploy run.
type Config struct {
	Target Target

	// ProjectRoot is the absolute directory relative paths are resolved against.
	ProjectRoot string
	// LocalDir is the absolute directory whose contents are uploaded.
	LocalDir string

	DryRun      bool
	AllowAppDir bool
	BuildExport bool

	ReportPath  string
	MetricsFile string

	// EnvFiles lists the environment files that contributed values.
	EnvFiles []string
}

// AppDir returns the raw build workspace directory.
func (c *Config) AppDir() string {
	return filepath.Join(c.ProjectRoot, AppDirName)
}

// WithLocalDir returns a copy of c uploading from dir instead.
func (c *Config) WithLocalDir(dir string) *Config {
	clone := *c
	clone.EnvFiles = append([]string(nil), c.EnvFiles...)
	clone.LocalDir = resolvePath(c.ProjectRoot, dir)
	return &clone
}

func resolvePath(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}

// NormalizeRemoteDir turns a configured remote directory into an absolute slash path.
func NormalizeRemoteDir(dir string) string {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return ""
	}
	return path.Clean("/" + dir)
}
