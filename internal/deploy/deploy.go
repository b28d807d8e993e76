package deploy

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"git.home.luguber.info/inful/ftpdeploy/internal/config"
	ferrors "git.home.luguber.info/inful/ftpdeploy/internal/foundation/errors"
	"git.home.luguber.info/inful/ftpdeploy/internal/ignore"
	"git.home.luguber.info/inful/ftpdeploy/internal/logfields"
	"git.home.luguber.info/inful/ftpdeploy/internal/metrics"
	"git.home.luguber.info/inful/ftpdeploy/internal/observability"
	"git.home.luguber.info/inful/ftpdeploy/internal/transfer"
)

// Stage names used for metrics and logs.
const (
	StageConnect = "connect"
	StageSync    = "sync"
)

// Options carries the collaborators of a run. Zero values select defaults.
type Options struct {
	// Dialer opens the session; defaults to transfer.FTPDialer.
	Dialer transfer.Dialer
	// Recorder receives metrics; defaults to metrics.NoopRecorder.
	Recorder metrics.Recorder
	// Out receives the dry-run listing and the final "Done."; defaults to os.Stdout.
	Out io.Writer
}

// Upload is one file sent (or, in a dry run, listed).
type Upload struct {
	Local  string `json:"local" yaml:"local"`
	Remote string `json:"remote" yaml:"remote"`
	Size   int64  `json:"size" yaml:"size"`
}

// Result summarizes a run.
type Result struct {
	LocalDir   string
	RemoteBase string
	DryRun     bool
	Uploads    []Upload
	// Dirs lists remote directories created, or those a dry run would create.
	Dirs     []string
	Skipped  int
	Pruned   int
	Bytes    int64
	Duration time.Duration
}

// Run mirrors cfg.LocalDir to cfg.Target.RemoteDir.
//
// The local directory is checked before any network activity. The session is
// released on every path. The first failed upload aborts the walk.
func Run(ctx context.Context, cfg *config.Config, opts Options) (res *Result, err error) {
	start := time.Now()
	opts = opts.withDefaults()

	base := cfg.Target.RemoteDir
	if base == "" {
		base = "/"
	}
	res = &Result{LocalDir: cfg.LocalDir, RemoteBase: base, DryRun: cfg.DryRun}

	defer func() {
		res.Duration = time.Since(start)
		opts.Recorder.ObserveDeployDuration(res.Duration)
		opts.Recorder.IncDeployOutcome(outcome(ctx, cfg.DryRun, err))
	}()

	if err := cfg.CheckLocalDir(); err != nil {
		return res, err
	}
	matcher, err := ignore.ForDirectory(cfg.LocalDir)
	if err != nil {
		return res, err
	}

	slog.InfoContext(ctx, "Starting deploy",
		logfields.Path(cfg.LocalDir),
		logfields.Host(cfg.Target.Host),
		logfields.RemotePath(base),
		logfields.DryRun(cfg.DryRun),
		logfields.Count(len(matcher.Patterns())))

	connectStart := time.Now()
	session, err := opts.Dialer.Dial(observability.WithStage(ctx, StageConnect), cfg.Target)
	opts.Recorder.ObserveStageDuration(StageConnect, time.Since(connectStart))
	if err != nil {
		return res, err
	}
	defer func() {
		if rerr := transfer.Release(session); rerr != nil {
			slog.WarnContext(ctx, "Closing session did not complete cleanly", logfields.Error(rerr))
		}
	}()

	s := &syncer{
		ctx:     observability.WithStage(ctx, StageSync),
		dryRun:  cfg.DryRun,
		root:    cfg.LocalDir,
		base:    base,
		session: session,
		matcher: matcher,
		rec:     opts.Recorder,
		out:     opts.Out,
		known:   map[string]bool{},
		planned: map[string]bool{},
		result:  res,
	}

	syncStart := time.Now()
	err = s.run()
	opts.Recorder.ObserveStageDuration(StageSync, time.Since(syncStart))
	if err != nil {
		return res, err
	}

	_, _ = fmt.Fprintln(opts.Out, "Done.")
	slog.InfoContext(ctx, "Deploy complete",
		logfields.Count(len(res.Uploads)),
		logfields.Size(humanize.Bytes(uint64(res.Bytes))),
		slog.Int("skipped", res.Skipped),
		slog.Int("pruned", res.Pruned),
		slog.Int("dirs", len(res.Dirs)),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())),
		logfields.DryRun(cfg.DryRun))
	return res, nil
}

func (o Options) withDefaults() Options {
	if o.Dialer == nil {
		o.Dialer = transfer.FTPDialer{}
	}
	if o.Recorder == nil {
		o.Recorder = metrics.NoopRecorder{}
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	return o
}

func outcome(ctx context.Context, dryRun bool, err error) metrics.OutcomeLabel {
	switch {
	case err != nil && ctx.Err() != nil:
		return metrics.OutcomeCanceled
	case err != nil:
		return metrics.OutcomeFailed
	case dryRun:
		return metrics.OutcomeDryRun
	default:
		return metrics.OutcomeSuccess
	}
}

type syncer struct {
	ctx     context.Context
	dryRun  bool
	root    string
	base    string
	session transfer.Session
	matcher *ignore.Matcher
	rec     metrics.Recorder
	out     io.Writer

	// known holds remote directories confirmed to exist; planned those a dry run would create.
	known   map[string]bool
	planned map[string]bool
	result  *Result
}

func (s *syncer) run() error {
	if err := s.ensure(s.base); err != nil {
		return err
	}
	return filepath.WalkDir(s.root, s.visit)
}

func (s *syncer) visit(p string, d fs.DirEntry, walkErr error) error {
	if err := s.ctx.Err(); err != nil {
		return fmt.Errorf("deploy interrupted: %w", err)
	}
	if walkErr != nil {
		return ferrors.FileSystemError("walk local directory failed").
			WithCause(walkErr).
			WithContext("path", p).
			Build()
	}

	rel, err := filepath.Rel(s.root, p)
	if err != nil {
		return ferrors.InternalError("relative path").WithCause(err).Build()
	}
	if rel == "." {
		return nil
	}

	if d.IsDir() {
		if s.matcher.Match(rel) {
			slog.DebugContext(s.ctx, "Pruned directory", logfields.Path(rel))
			s.result.Pruned++
			s.rec.IncDirPruned()
			return fs.SkipDir
		}
		return nil
	}

	if s.matcher.Match(rel) {
		slog.DebugContext(s.ctx, "Skipped file", logfields.Path(rel))
		s.result.Skipped++
		s.rec.IncFile(metrics.FileSkipped)
		return nil
	}

	switch {
	case d.Type().IsRegular():
	case d.Type()&fs.ModeSymlink != 0:
		// Links are uploaded by content; links to directories are not followed.
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			slog.DebugContext(s.ctx, "Skipped link", logfields.Path(rel))
			return nil
		}
	default:
		slog.DebugContext(s.ctx, "Skipped special file", logfields.Path(rel))
		return nil
	}

	return s.upload(p, rel)
}

func (s *syncer) upload(local, rel string) error {
	remote := path.Join(s.base, filepath.ToSlash(rel))
	if err := s.ensure(path.Dir(remote)); err != nil {
		return err
	}

	f, err := os.Open(local)
	if err != nil {
		return ferrors.FileSystemError("open local file failed").
			WithCause(err).
			WithContext("path", local).
			Build()
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return ferrors.FileSystemError("stat local file failed").
			WithCause(err).
			WithContext("path", local).
			Build()
	}
	entry := Upload{Local: local, Remote: remote, Size: info.Size()}

	if s.dryRun {
		_, _ = fmt.Fprintf(s.out, "UPLOAD %s -> %s\n", local, remote)
		s.result.Uploads = append(s.result.Uploads, entry)
		s.rec.IncFile(metrics.FilePlanned)
		return nil
	}

	if err := s.session.Store(remote, f); err != nil {
		s.rec.IncFile(metrics.FileFailed)
		return ferrors.TransferError("upload "+rel+" failed").
			WithCause(err).
			WithContext("path", local).
			WithContext("remote_path", remote).
			WithContext("reply_code", transfer.ReplyCode(err)).
			Build()
	}

	slog.InfoContext(s.ctx, "Uploaded", logfields.Path(rel), logfields.RemotePath(remote), logfields.Size(humanize.Bytes(uint64(entry.Size))))
	s.result.Uploads = append(s.result.Uploads, entry)
	s.result.Bytes += entry.Size
	s.rec.IncFile(metrics.FileUploaded)
	s.rec.AddBytes(entry.Size)
	return nil
}

// ensure makes dir exist remotely, or in a dry run records what would be created.
func (s *syncer) ensure(dir string) error {
	if s.known[dir] || s.planned[dir] {
		return nil
	}
	if s.dryRun {
		return s.plan(dir)
	}

	created, err := transfer.MakeDirAll(s.session, dir)
	for _, c := range created {
		s.result.Dirs = append(s.result.Dirs, c)
		s.rec.IncDirCreated()
	}
	if err != nil {
		return err
	}
	s.known[dir] = true
	for _, p := range transfer.Prefixes(dir) {
		s.known[p] = true
	}
	return nil
}

func (s *syncer) plan(dir string) error {
	prefixes := transfer.Prefixes(dir)
	for i, p := range prefixes {
		if s.planned[p] {
			s.markPlanned(prefixes[i:])
			return nil
		}
	}

	missing, err := transfer.PlanDir(s.session, dir)
	if err != nil {
		return err
	}
	s.markPlanned(missing)
	s.known[dir] = !s.planned[dir]
	for _, p := range prefixes {
		if !s.planned[p] {
			s.known[p] = true
		}
	}
	return nil
}

func (s *syncer) markPlanned(dirs []string) {
	for _, d := range dirs {
		if s.planned[d] {
			continue
		}
		s.planned[d] = true
		s.result.Dirs = append(s.result.Dirs, d)
		slog.DebugContext(s.ctx, "Would create remote directory", logfields.RemotePath(d))
	}
}
