// Package export builds the static web application and stages its output for deployment.
package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	ferrors "git.home.luguber.info/inful/ftpdeploy/internal/foundation/errors"
	"git.home.luguber.info/inful/ftpdeploy/internal/logfields"
	"git.home.luguber.info/inful/ftpdeploy/internal/staging"
)

const (
	// AppDir is the application workspace below the project root.
	AppDir = "app"
	// OutDir is where the build writes its static export, below AppDir.
	OutDir = "out"
	// LocalDir holds deployment-only files and the staging directory.
	LocalDir = "local"
)

// DefaultCommand builds the app with its package scripts.
var DefaultCommand = []string{"npm", "run", "build"}

// OverlayFiles are copied from <root>/local into the staging directory after
// mirroring so hosts that run a Node server find them next to the export.
var OverlayFiles = []string{"server.js", "package.json", ".htaccess"}

// Runner executes the build command.
type Runner interface {
	Run(ctx context.Context, dir string, argv []string) error
}

// CommandRunner runs the build as a child process, streaming its output.
type CommandRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

func (r CommandRunner) Run(ctx context.Context, dir string, argv []string) error {
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return ferrors.WrapError(err, ferrors.CategoryBuild, argv[0]+" not found in PATH").
			WithContext("command", argv[0]).
			Build()
	}
	// #nosec G204 -- the command comes from the operator's own flags
	cmd := exec.CommandContext(ctx, path, argv[1:]...)
	cmd.Dir = dir
	cmd.Stdout = orDefault(r.Stdout, os.Stdout)
	cmd.Stderr = orDefault(r.Stderr, os.Stderr)
	return cmd.Run()
}

func orDefault(w, fallback io.Writer) io.Writer {
	if w != nil {
		return w
	}
	return fallback
}

// Options configures Run.
type Options struct {
	ProjectRoot string
	// Command overrides DefaultCommand.
	Command []string
	// Runner overrides CommandRunner{}.
	Runner Runner
}

// Paths returns the app workspace, its export directory and the staging directory for root.
func Paths(root string) (app, out, stage string) {
	app = filepath.Join(root, AppDir)
	return app, filepath.Join(app, OutDir), filepath.Join(root, LocalDir, OutDir)
}

// Run builds the app under <root>/app, mirrors <root>/app/out into
// <root>/local/out and applies the overlay files. It returns the staging
// directory, which is what gets deployed.
//
// A failing build is returned as a build error carrying the command's exit
// status under the exit_code context key.
func Run(ctx context.Context, opts Options) (string, error) {
	appDir, outDir, stageDir := Paths(opts.ProjectRoot)

	if err := checkApp(appDir); err != nil {
		return "", err
	}

	argv := opts.Command
	if len(argv) == 0 {
		argv = DefaultCommand
	}
	runner := opts.Runner
	if runner == nil {
		runner = CommandRunner{}
	}

	start := time.Now()
	slog.InfoContext(ctx, "Running build", logfields.Command(strings.Join(argv, " ")), logfields.Path(appDir))
	if err := runner.Run(ctx, appDir, argv); err != nil {
		return "", buildFailure(err, argv)
	}
	slog.InfoContext(ctx, "Build finished", logfields.DurationMS(float64(time.Since(start).Milliseconds())))

	if info, err := os.Stat(outDir); err != nil || !info.IsDir() {
		return "", ferrors.BuildError("build did not produce './"+AppDir+"/"+OutDir+"'; ensure the app is configured for static export").
			WithContext("path", outDir).
			Build()
	}

	mgr := staging.NewManager(stageDir)
	if err := mgr.Mirror(outDir); err != nil {
		return "", ferrors.FileSystemError("stage build output failed").
			WithCause(err).
			WithContext("path", stageDir).
			Build()
	}
	if _, err := mgr.Overlay(filepath.Join(opts.ProjectRoot, LocalDir), OverlayFiles...); err != nil {
		return "", ferrors.FileSystemError("apply staging overlay failed").
			WithCause(err).
			WithContext("path", stageDir).
			Build()
	}
	return mgr.Path(), nil
}

func checkApp(appDir string) error {
	if info, err := os.Stat(appDir); err != nil || !info.IsDir() {
		return ferrors.BuildError("cannot build: './"+AppDir+"' directory not found").
			WithContext("path", appDir).
			Build()
	}
	if _, err := os.Stat(filepath.Join(appDir, "package.json")); err != nil {
		return ferrors.BuildError("cannot build: './"+AppDir+"/package.json' not found").
			WithContext("path", appDir).
			Build()
	}
	return nil
}

func buildFailure(err error, argv []string) error {
	if ferrors.IsClassified(err) {
		return err
	}
	msg := "build failed"
	b := ferrors.WrapError(err, ferrors.CategoryBuild, msg).
		Fatal().
		WithContext("command", strings.Join(argv, " "))
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		b = ferrors.WrapError(err, ferrors.CategoryBuild, fmt.Sprintf("%s with exit code %d", msg, exitErr.ExitCode())).
			Fatal().
			WithContext("command", strings.Join(argv, " ")).
			WithContext(ferrors.ContextExitCode, exitErr.ExitCode())
	}
	return b.Build()
}
