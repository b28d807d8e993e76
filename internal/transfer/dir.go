package transfer

import (
	"log/slog"
	"path"
	"strings"

	ferrors "git.home.luguber.info/inful/ftpdeploy/internal/foundation/errors"
	"git.home.luguber.info/inful/ftpdeploy/internal/logfields"
)

// DirState is the outcome of probing a remote directory.
type DirState int

const (
	// DirExists means CWD into the directory succeeded.
	DirExists DirState = iota
	// DirMissing means the server answered CWD with a permanent negative reply.
	DirMissing
	// DirFailed means the probe failed for any other reason.
	DirFailed
)

func (s DirState) String() string {
	switch s {
	case DirExists:
		return "exists"
	case DirMissing:
		return "missing"
	default:
		return "failed"
	}
}

// Probe changes into dir and classifies the result. The error is only
// returned for DirFailed.
func Probe(s Session, dir string) (DirState, error) {
	err := s.ChangeDir(dir)
	switch {
	case err == nil:
		return DirExists, nil
	case IsPermanent(err):
		return DirMissing, nil
	default:
		return DirFailed, err
	}
}

// Prefixes returns the cumulative absolute prefixes of dir: "/a/b" yields
// ["/a", "/a/b"]. The root yields nothing.
func Prefixes(dir string) []string {
	var out []string
	current := ""
	for _, segment := range strings.Split(dir, "/") {
		if segment == "" || segment == "." {
			continue
		}
		current = current + "/" + segment
		out = append(out, path.Clean(current))
	}
	return out
}

// EnsureDir makes sure every level of dir exists on the server, creating the
// missing ones, and leaves the working directory at dir.
func EnsureDir(s Session, dir string) error {
	_, err := MakeDirAll(s, dir)
	return err
}

// MakeDirAll is EnsureDir that also reports the directories it created.
func MakeDirAll(s Session, dir string) ([]string, error) {
	prefixes := Prefixes(dir)
	if len(prefixes) == 0 {
		if err := s.ChangeDir("/"); err != nil {
			return nil, dirError(err, "/", "change to remote root failed")
		}
		return nil, nil
	}

	var created []string
	for _, prefix := range prefixes {
		state, err := Probe(s, prefix)
		switch state {
		case DirExists:
			continue
		case DirFailed:
			return created, dirError(err, prefix, "probe remote directory failed")
		case DirMissing:
		}

		if mkErr := s.MakeDir(prefix); mkErr != nil {
			if !IsPermanent(mkErr) {
				return created, dirError(mkErr, prefix, "create remote directory failed")
			}
			// Someone else may have created it between the probe and MKD.
			if cwdErr := s.ChangeDir(prefix); cwdErr != nil {
				return created, dirError(mkErr, prefix, "create remote directory failed")
			}
			slog.Debug("Remote directory appeared concurrently", logfields.RemotePath(prefix))
			continue
		}
		if err := s.ChangeDir(prefix); err != nil {
			return created, dirError(err, prefix, "change to created remote directory failed")
		}
		slog.Debug("Created remote directory", logfields.RemotePath(prefix))
		created = append(created, prefix)
	}
	return created, nil
}

// PlanDir reports the directories EnsureDir would create without creating
// anything. Once a level is missing, deeper levels are not probed.
func PlanDir(s Session, dir string) ([]string, error) {
	prefixes := Prefixes(dir)
	for i, prefix := range prefixes {
		state, err := Probe(s, prefix)
		switch state {
		case DirExists:
			continue
		case DirFailed:
			return nil, dirError(err, prefix, "probe remote directory failed")
		case DirMissing:
			return append([]string(nil), prefixes[i:]...), nil
		}
	}
	return nil, nil
}

func dirError(err error, dir, msg string) error {
	return ferrors.TransferError(msg).
		WithCause(err).
		WithContext("remote_path", dir).
		WithContext("reply_code", ReplyCode(err)).
		Build()
}
