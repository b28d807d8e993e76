package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/ftpdeploy/internal/config"
	"git.home.luguber.info/inful/ftpdeploy/internal/deploy"
	"git.home.luguber.info/inful/ftpdeploy/internal/export"
	ferrors "git.home.luguber.info/inful/ftpdeploy/internal/foundation/errors"
	"git.home.luguber.info/inful/ftpdeploy/internal/git"
	"git.home.luguber.info/inful/ftpdeploy/internal/logfields"
	"git.home.luguber.info/inful/ftpdeploy/internal/manifest"
	"git.home.luguber.info/inful/ftpdeploy/internal/metrics"
	"git.home.luguber.info/inful/ftpdeploy/internal/observability"
	"git.home.luguber.info/inful/ftpdeploy/internal/version"
)

// StageExport names the build stage in metrics.
const StageExport = "export"

// DeployCmd implements the default 'deploy' command.
type DeployCmd struct {
	Host      string        `help:"FTP host (FTP_HOST)"`
	User      string        `help:"FTP user (FTP_USER or FTPUSER)"`
	Password  string        `help:"FTP password (FTP_PASSWORD or FTPPASS)"`
	RemoteDir string        `name:"remote-dir" help:"Remote base directory (FTP_REMOTE_DIR or FTP_ROOTDIR)"`
	LocalDir  string        `name:"local-dir" help:"Local directory to upload, relative to the project root (LOCAL_DIR, default local/out)"`
	Port      int           `help:"FTP port (FTP_PORT, default 21)"`
	Secure    bool          `help:"Use explicit FTPS: AUTH TLS before login and a protected data channel (FTP_SECURE)" xor:"secure"`
	NoSecure  bool          `name:"no-secure" help:"Use plain FTP even when FTP_SECURE is set" xor:"secure"`
	Timeout   time.Duration `help:"Dial and command timeout (FTP_TIMEOUT, default 30s)"`

	DryRun       bool   `name:"dry-run" help:"List uploads without creating directories or sending files"`
	BuildExport  bool   `name:"build-export" help:"Build the app and deploy the staged export"`
	BuildCommand string `name:"build-command" help:"Command run in app/ when --build-export is set" default:"npm run build"`
	AllowAppDir  bool   `name:"allow-app-dir" help:"Allow deploying from inside app/"`

	Report      string `help:"Write a deploy report (JSON, or YAML for .yaml/.yml)" type:"path"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics in textfile format" type:"path"`
}

func (d *DeployCmd) secure() *bool {
	switch {
	case d.Secure:
		return &d.Secure
	case d.NoSecure:
		off := false
		return &off
	default:
		return nil
	}
}

func (d *DeployCmd) overrides(root *CLI) config.Overrides {
	return config.Overrides{
		ProjectRoot: root.ProjectRoot,
		Host:        d.Host,
		User:        d.User,
		Password:    d.Password,
		RemoteDir:   d.RemoteDir,
		LocalDir:    d.LocalDir,
		Port:        d.Port,
		Secure:      d.secure(),
		Timeout:     d.Timeout,
		DryRun:      d.DryRun,
		AllowAppDir: d.AllowAppDir,
		BuildExport: d.BuildExport,
		ReportPath:  d.Report,
		MetricsFile: d.MetricsFile,
	}
}

func (d *DeployCmd) Run(ctx context.Context, g *Global, root *CLI) error {
	started := time.Now()
	runID := manifest.NewRunID()
	ctx = observability.WithRunID(ctx, runID)
	slog.InfoContext(ctx, "Starting ftpdeploy", slog.String("version", version.Version))

	// Connection settings are checked before anything is built.
	cfg, err := config.LoadWithEnv(d.overrides(root), g.lookupEnv())
	if err != nil {
		return err
	}
	if len(cfg.EnvFiles) > 0 {
		slog.DebugContext(ctx, "Loaded environment files", slog.Any("files", cfg.EnvFiles))
	}

	var (
		rec      metrics.Recorder = metrics.NoopRecorder{}
		registry *prom.Registry
	)
	if cfg.MetricsFile != "" {
		registry = prom.NewRegistry()
		rec = metrics.NewPrometheusRecorder(registry)
	}

	if cfg.BuildExport {
		exportStart := time.Now()
		dir, err := export.Run(observability.WithStage(ctx, StageExport), export.Options{
			ProjectRoot: cfg.ProjectRoot,
			Command:     splitCommand(d.BuildCommand),
			Runner:      g.runner(),
		})
		rec.ObserveStageDuration(StageExport, time.Since(exportStart))
		if err != nil {
			rec.IncDeployOutcome(metrics.OutcomeFailed)
			return record(ctx, cfg, runID, started, registry, nil, err)
		}
		cfg = cfg.WithLocalDir(dir)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Deploy target", logfields.Host(cfg.Target.Host), slog.String("target", cfg.Target.String()))
	res, runErr := deploy.Run(ctx, cfg, deploy.Options{
		Dialer:   g.dialer(),
		Recorder: rec,
		Out:      g.stdout(),
	})

	return record(ctx, cfg, runID, started, registry, res, runErr)
}

// record writes the report and metrics file when requested. A failed run
// keeps its own error; recording problems are only logged then.
func record(ctx context.Context, cfg *config.Config, runID string, started time.Time, registry *prom.Registry, res *deploy.Result, runErr error) error {
	var finishErrs []error
	if cfg.ReportPath != "" {
		finishErrs = append(finishErrs, writeReport(cfg, runID, started, res, runErr))
	}
	if registry != nil {
		finishErrs = append(finishErrs, metrics.WriteTextfile(cfg.MetricsFile, registry))
	}
	if runErr != nil {
		for _, ferr := range finishErrs {
			if ferr != nil {
				slog.WarnContext(ctx, "Failed to record run", logfields.Error(ferr))
			}
		}
		return runErr
	}
	if err := errors.Join(finishErrs...); err != nil {
		return ferrors.FileSystemError("deploy succeeded but recording it failed").WithCause(err).Build()
	}
	return nil
}

func writeReport(cfg *config.Config, runID string, started time.Time, res *deploy.Result, runErr error) error {
	report := manifest.New(runID, started)
	report.Version = version.Version
	report.Host = cfg.Target.Host
	report.Exported = cfg.BuildExport
	report.RemoteBase = cfg.Target.RemoteDir
	report.LocalDir = cfg.LocalDir
	report.DryRun = cfg.DryRun
	report.Complete(res, runErr)

	rev, err := git.ReadHead(cfg.ProjectRoot)
	switch {
	case err == nil:
		report.Revision = rev
	case errors.Is(err, git.ErrNotRepository):
	default:
		slog.Debug("Could not read project revision", logfields.Error(err))
	}

	if err := report.Write(cfg.ReportPath); err != nil {
		return err
	}
	attrs := []any{logfields.Path(cfg.ReportPath), slog.String("fingerprint", report.Hash())}
	if report.Revision != nil {
		attrs = append(attrs, slog.String("commit", report.Revision.Short()))
	}
	slog.Info("Wrote deploy report", attrs...)
	return nil
}
