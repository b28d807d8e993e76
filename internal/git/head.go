// Package git reads revision information from the project checkout.
package git

import (
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Revision describes the checked-out commit of a working tree.
type Revision struct {
	Commit string `json:"commit" yaml:"commit"`
	Branch string `json:"branch,omitempty" yaml:"branch,omitempty"`
	Dirty  bool   `json:"dirty" yaml:"dirty"`
}

// ErrNotRepository is returned when no repository encloses the path.
var ErrNotRepository = errors.New("not a git repository")

// ReadHead returns the HEAD revision of the repository containing path.
// Parent directories are searched for the .git directory.
func ReadHead(path string) (*Revision, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, ErrNotRepository
	}
	if err != nil {
		return nil, fmt.Errorf("open repository at %s: %w", path, err)
	}

	head, err := repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, fmt.Errorf("repository at %s has no commits: %w", path, err)
		}
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}

	rev := &Revision{Commit: head.Hash().String()}
	if head.Name().IsBranch() {
		rev.Branch = head.Name().Short()
	}

	if wt, err := repo.Worktree(); err == nil {
		if status, err := wt.Status(); err == nil {
			rev.Dirty = !status.IsClean()
		}
	}
	return rev, nil
}

// Short returns the abbreviated commit hash.
func (r *Revision) Short() string {
	if r == nil {
		return ""
	}
	if len(r.Commit) > 12 {
		return r.Commit[:12]
	}
	return r.Commit
}
