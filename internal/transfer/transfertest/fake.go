// Package transfertest provides an in-memory transfer.Session for tests.
package transfertest

import (
	"context"
	"errors"
	"io"
	"net/textproto"
	"path"
	"sort"
	"strings"
	"sync"

	"git.home.luguber.info/inful/ftpdeploy/internal/config"
	"git.home.luguber.info/inful/ftpdeploy/internal/transfer"
)

// Call is one recorded session command.
type Call struct {
	Verb string
	Path string
}

func (c Call) String() string { return c.Verb + " " + c.Path }

// Server is a fake FTP server holding directories and files in memory.
// The root directory always exists.
type Server struct {
	mu    sync.Mutex
	dirs  map[string]bool
	files map[string][]byte
	calls []Call

	// MakeDirErr, when set for a path, is returned by MakeDir for that path.
	MakeDirErr map[string]error
	// CreateOnMakeDirErr makes a failing MakeDir still create the directory,
	// which models a concurrent creator winning the race.
	CreateOnMakeDirErr bool
	// StoreErr, when set for a path, is returned by Store for that path.
	StoreErr map[string]error
	// ChangeDirErr, when set for a path, is returned by ChangeDir for that path.
	ChangeDirErr map[string]error
	// QuitErr is returned by Quit.
	QuitErr error

	Dials  int
	Quits  int
	Closes int
}

// NewServer returns a server with the given directories already present.
func NewServer(dirs ...string) *Server {
	s := &Server{
		dirs:         map[string]bool{"/": true},
		files:        map[string][]byte{},
		MakeDirErr:   map[string]error{},
		StoreErr:     map[string]error{},
		ChangeDirErr: map[string]error{},
	}
	for _, d := range dirs {
		for _, p := range transfer.Prefixes(d) {
			s.dirs[p] = true
		}
	}
	return s
}

// Dialer returns a transfer.Dialer that hands out sessions on s.
func (s *Server) Dialer() transfer.Dialer {
	return transfer.DialerFunc(func(context.Context, config.Target) (transfer.Session, error) {
		s.mu.Lock()
		s.Dials++
		s.mu.Unlock()
		return &Session{server: s, cwd: "/"}, nil
	})
}

// Reply builds a server reply error with the given code.
func Reply(code int, msg string) error {
	return &textproto.Error{Code: code, Msg: msg}
}

// Dirs returns the existing directories, sorted.
func (s *Server) Dirs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.dirs))
	for d := range s.dirs {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Files returns the stored file contents by absolute path.
func (s *Server) Files() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.files))
	for p, b := range s.files {
		out[p] = string(b)
	}
	return out
}

// Calls returns the recorded commands.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// Count returns how many calls used verb.
func (s *Server) Count(verb string) int {
	n := 0
	for _, c := range s.Calls() {
		if c.Verb == verb {
			n++
		}
	}
	return n
}

// Session is a fake session bound to a Server.
type Session struct {
	server *Server
	cwd    string
}

var _ transfer.Session = (*Session)(nil)

// NewSession returns a session on s without going through a Dialer.
func (s *Server) NewSession() *Session {
	return &Session{server: s, cwd: "/"}
}

// Cwd returns the session's working directory.
func (c *Session) Cwd() string { return c.cwd }

func (c *Session) abs(p string) string {
	if strings.HasPrefix(p, "/") {
		return path.Clean(p)
	}
	return path.Join(c.cwd, p)
}

func (c *Session) record(verb, p string) {
	c.server.calls = append(c.server.calls, Call{Verb: verb, Path: p})
}

func (c *Session) ChangeDir(p string) error {
	s := c.server
	s.mu.Lock()
	defer s.mu.Unlock()
	p = c.abs(p)
	c.record("CWD", p)
	if err := s.ChangeDirErr[p]; err != nil {
		return err
	}
	if !s.dirs[p] {
		return Reply(550, p+": No such file or directory")
	}
	c.cwd = p
	return nil
}

func (c *Session) MakeDir(p string) error {
	s := c.server
	s.mu.Lock()
	defer s.mu.Unlock()
	p = c.abs(p)
	c.record("MKD", p)
	if err := s.MakeDirErr[p]; err != nil {
		if s.CreateOnMakeDirErr {
			s.dirs[p] = true
		}
		return err
	}
	if s.dirs[p] {
		return Reply(550, p+": File exists")
	}
	if !s.dirs[path.Dir(p)] {
		return Reply(550, path.Dir(p)+": No such file or directory")
	}
	s.dirs[p] = true
	return nil
}

func (c *Session) Store(p string, r io.Reader) error {
	s := c.server
	s.mu.Lock()
	defer s.mu.Unlock()
	p = c.abs(p)
	c.record("STOR", p)
	if err := s.StoreErr[p]; err != nil {
		return err
	}
	if !s.dirs[path.Dir(p)] {
		return Reply(553, p+": No such file or directory")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.files[p] = data
	return nil
}

func (c *Session) Quit() error {
	s := c.server
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Quits++
	c.record("QUIT", "")
	return s.QuitErr
}

func (c *Session) Close() error {
	s := c.server
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closes++
	return nil
}

// ErrBoom is a generic transient failure.
var ErrBoom = errors.New("boom")
