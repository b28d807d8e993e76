package transfer

import (
	"context"
	"crypto/tls"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/jlaffaye/ftp"

	"git.home.luguber.info/inful/ftpdeploy/internal/config"
	ferrors "git.home.luguber.info/inful/ftpdeploy/internal/foundation/errors"
	"git.home.luguber.info/inful/ftpdeploy/internal/logfields"
)

// Session is an authenticated connection able to navigate, create directories and upload.
type Session interface {
	ChangeDir(path string) error
	MakeDir(path string) error
	Store(path string, r io.Reader) error
	// Quit logs out gracefully and closes the connection.
	Quit() error
	// Close drops the connection without a protocol level goodbye.
	Close() error
}

// Dialer opens a Session to a target.
type Dialer interface {
	Dial(ctx context.Context, target config.Target) (Session, error)
}

// DialerFunc adapts a function to Dialer.
type DialerFunc func(ctx context.Context, target config.Target) (Session, error)

// Dial calls f.
func (f DialerFunc) Dial(ctx context.Context, target config.Target) (Session, error) {
	return f(ctx, target)
}

// FTPDialer connects with github.com/jlaffaye/ftp.
type FTPDialer struct {
	// TLSConfig is used when the target is secure. ServerName defaults to the target host.
	TLSConfig *tls.Config
}

// Dial connects to target, upgrades to TLS when requested and logs in.
func (d FTPDialer) Dial(ctx context.Context, target config.Target) (Session, error) {
	return Connect(ctx, target, d.TLSConfig)
}

// Connect establishes an authenticated session.
//
// When target.Secure is set the control connection is upgraded with AUTH TLS
// before any credentials are sent, and login then issues PBSZ 0 / PROT P so
// data connections are encrypted too.
func Connect(ctx context.Context, target config.Target, tlsConfig *tls.Config) (Session, error) {
	raw := &rawConn{}
	dialer := &net.Dialer{Timeout: target.Timeout}

	var secure *tls.Config
	if target.Secure {
		secure = secureConfig(tlsConfig, target.Host)
	}

	// A custom dial func replaces the library's dialing for both the control
	// and the data connections, so data connections are wrapped in TLS here.
	dial := func(network, address string) (net.Conn, error) {
		conn, err := dialer.DialContext(ctx, network, address)
		if err != nil {
			return nil, err
		}
		if raw.set(conn) || secure == nil {
			return conn, nil
		}
		return tls.Client(conn, secure), nil
	}

	options := []ftp.DialOption{
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(target.Timeout),
		ftp.DialWithDisabledEPSV(target.DisableEPSV),
		ftp.DialWithDialFunc(dial),
	}
	if secure != nil {
		options = append(options, ftp.DialWithExplicitTLS(secure))
	}

	slog.DebugContext(ctx, "Connecting", logfields.Host(target.Host), logfields.Port(target.Port), slog.Bool("secure", target.Secure))
	conn, err := ftp.Dial(target.Address(), options...)
	if err != nil {
		raw.close()
		return nil, ferrors.NetworkError("connect to "+target.Address()+" failed").
			WithCause(err).
			WithContext("host", target.Host).
			WithContext("port", target.Port).
			Build()
	}

	if err := conn.Login(target.User, target.Password); err != nil {
		if qerr := conn.Quit(); qerr != nil {
			raw.close()
		}
		return nil, ferrors.AuthError("login as "+target.User+" failed").
			WithCause(err).
			WithContext("host", target.Host).
			Build()
	}

	slog.InfoContext(ctx, "Connected", logfields.Host(target.Host), logfields.Port(target.Port), slog.Bool("secure", target.Secure))
	return &ftpSession{conn: conn, raw: raw}, nil
}

func secureConfig(base *tls.Config, host string) *tls.Config {
	var cfg *tls.Config
	if base != nil {
		cfg = base.Clone()
	} else {
		cfg = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	if cfg.ServerName == "" {
		cfg.ServerName = host
	}
	return cfg
}

// rawConn remembers the control connection's socket so it can be dropped
// without going through the protocol.
type rawConn struct {
	mu     sync.Mutex
	conn   net.Conn
	dialed bool
}

// set records c if it is the first connection and reports whether it was.
func (r *rawConn) set(c net.Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn != nil || r.dialed {
		return false
	}
	r.conn = c
	r.dialed = true
	return true
}

func (r *rawConn) close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conn == nil {
		return nil
	}
	err := r.conn.Close()
	r.conn = nil
	return err
}

type ftpSession struct {
	conn *ftp.ServerConn
	raw  *rawConn
}

func (s *ftpSession) ChangeDir(path string) error { return s.conn.ChangeDir(path) }
func (s *ftpSession) MakeDir(path string) error   { return s.conn.MakeDir(path) }

func (s *ftpSession) Store(path string, r io.Reader) error {
	return s.conn.Stor(path, r)
}

func (s *ftpSession) Quit() error {
	return s.conn.Quit()
}

func (s *ftpSession) Close() error {
	return s.raw.close()
}

// Release ends the session: a graceful Quit first, falling back to Close when
// the logout fails. The Quit error is returned so callers can log it.
func Release(s Session) error {
	if s == nil {
		return nil
	}
	qerr := s.Quit()
	if qerr == nil {
		return nil
	}
	slog.Debug("Logout failed, forcing close", logfields.Error(qerr))
	if cerr := s.Close(); cerr != nil {
		slog.Debug("Forced close failed", logfields.Error(cerr))
	}
	return qerr
}
