package commands

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/ftpdeploy/internal/config"
	"git.home.luguber.info/inful/ftpdeploy/internal/export"
	"git.home.luguber.info/inful/ftpdeploy/internal/observability"
	"git.home.luguber.info/inful/ftpdeploy/internal/transfer"
)

// Global carries collaborators shared by the commands. Zero values select the real implementations.
type Global struct {
	Stdout    io.Writer
	Dialer    transfer.Dialer
	Runner    export.Runner
	LookupEnv func(string) (string, bool)
}

func (g *Global) stdout() io.Writer {
	if g == nil || g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

func (g *Global) dialer() transfer.Dialer {
	if g == nil || g.Dialer == nil {
		return transfer.FTPDialer{}
	}
	return g.Dialer
}

func (g *Global) runner() export.Runner {
	if g == nil || g.Runner == nil {
		return export.CommandRunner{}
	}
	return g.Runner
}

func (g *Global) lookupEnv() func(string) (string, bool) {
	if g == nil || g.LookupEnv == nil {
		return os.LookupEnv
	}
	return g.LookupEnv
}

// CLI definition & global flags.
type CLI struct {
	Verbose     bool             `short:"v" help:"Enable verbose logging"`
	Version     kong.VersionFlag `name:"version" help:"Show version and exit"`
	ProjectRoot string           `name:"project-root" help:"Project root holding app/, local/ and the .env files" default:"." type:"path"`

	Deploy DeployCmd `cmd:"" default:"withargs" help:"Mirror the local directory to the FTP server (default)"`
	Export ExportCmd `cmd:"" help:"Build the app and stage its static export in local/out"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := config.ParseLogLevel(c.Verbose, os.Getenv(config.LogLevelEnv))
	logger := slog.New(observability.NewHandler(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	slog.SetDefault(logger)
	return nil
}

// splitCommand turns a --build-command value into argv.
func splitCommand(raw string) []string {
	return strings.Fields(raw)
}
