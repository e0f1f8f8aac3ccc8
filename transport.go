package submit

import (
	"bufio"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
	"time"
)

// errTimeout is returned internally by transport reads/connects that ran
// past the command timeout. The orchestrator maps it to a step-specific
// *Error before it ever reaches a caller.
var errTimeout = errors.New("submit: command timed out")

// secureUpgrader is the abstract secure-stream capability the core
// consumes. The package's only implementation wraps crypto/tls, but
// tests can substitute their own to exercise the orchestrator without a
// real TLS handshake.
type secureUpgrader interface {
	// dial performs a TCP connect followed immediately by a TLS
	// handshake, for the Forced transport mode.
	dial(ctx context.Context, network, addr, serverName string) (net.Conn, error)
	// upgrade wraps an already-connected plaintext conn in TLS, for the
	// Opportunistic transport mode's STARTTLS step.
	upgrade(conn net.Conn, serverName string) (net.Conn, error)
}

type cryptoTLS struct{ config *tls.Config }

func (u cryptoTLS) configFor(serverName string) *tls.Config {
	cfg := u.config
	if cfg == nil {
		cfg = &tls.Config{}
	} else {
		cfg = cfg.Clone()
	}
	if cfg.ServerName == "" {
		cfg.ServerName = serverName
	}
	return cfg
}

func (u cryptoTLS) dial(ctx context.Context, network, addr, serverName string) (net.Conn, error) {
	d := &tls.Dialer{Config: u.configFor(serverName)}
	return d.DialContext(ctx, network, addr)
}

func (u cryptoTLS) upgrade(conn net.Conn, serverName string) (net.Conn, error) {
	c := tls.Client(conn, u.configFor(serverName))
	if err := c.HandshakeContext(context.Background()); err != nil {
		return nil, err
	}
	return c, nil
}

// transport is the live socket for one session: TCP connect with
// timeout, blocking send/recv bounded by a per-command deadline, and an
// optional in-place TLS upgrade.
type transport struct {
	conn           net.Conn
	reader         *bufio.Reader
	commandTimeout time.Duration
	upgrader       secureUpgrader
	lastErrno      int
}

func newTransport(timeout time.Duration, upgrader secureUpgrader) *transport {
	if upgrader == nil {
		upgrader = cryptoTLS{}
	}
	return &transport{commandTimeout: timeout, upgrader: upgrader}
}

// connect opens a TCP connection to host:port. If forceTLS is set, the
// TLS handshake is performed as part of the same step and no cleartext
// byte is ever sent on the socket.
func (t *transport) connect(host string, port int, forceTLS bool) error {
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	ctx, cancel := context.WithTimeout(context.Background(), t.commandTimeout)
	defer cancel()

	var conn net.Conn
	var err error
	if forceTLS {
		conn, err = t.upgrader.dial(ctx, "tcp", addr, host)
	} else {
		conn, err = (&net.Dialer{}).DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		t.captureErrno(err)
		if errors.Is(err, context.DeadlineExceeded) {
			return &Error{Code: ErrConnectTimeout, Step: "connect"}
		}
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) {
			return &Error{Code: ErrAddressResolution, Step: "connect"}
		}
		return &Error{Code: ErrConnect, Step: "connect"}
	}
	t.conn = conn
	t.reader = bufio.NewReader(conn)
	return nil
}

// upgradeToTLS wraps the live connection in-place, preserving the
// session. Used by the Opportunistic facade after STARTTLS is accepted.
func (t *transport) upgradeToTLS(serverName string) error {
	upgraded, err := t.upgrader.upgrade(t.conn, serverName)
	if err != nil {
		return err
	}
	t.conn = upgraded
	t.reader = bufio.NewReader(upgraded)
	return nil
}

// send writes cmd in full. A short write is impossible with net.Conn (it
// either completes or returns an error), but the deadline still bounds
// how long the write may block.
func (t *transport) send(cmd string) error {
	if err := t.conn.SetWriteDeadline(time.Now().Add(t.commandTimeout)); err != nil {
		return err
	}
	_, err := t.conn.Write([]byte(cmd))
	if err != nil {
		t.captureErrno(err)
	}
	return err
}

// recvReply reads one complete SMTP reply — possibly several "NNN-..."
// continuation lines followed by a final "NNN ..." line — bounded by the
// command timeout. It returns the final line's status code, the full raw
// reply text (all lines, CRLF-terminated), and an error.
func (t *transport) recvReply() (code int, raw string, err error) {
	if err := t.conn.SetReadDeadline(time.Now().Add(t.commandTimeout)); err != nil {
		return 0, "", err
	}
	defer t.conn.SetReadDeadline(time.Time{})

	var b strings.Builder
	for {
		line, err := t.reader.ReadString('\n')
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				return 0, "", errTimeout
			}
			t.captureErrno(err)
			return 0, "", err
		}
		b.WriteString(line)
		trimmed := strings.TrimRight(line, "\r\n")
		code = extractStatusCode(trimmed)
		if !isContinuationLine(trimmed) {
			break
		}
	}
	return code, b.String(), nil
}

// captureErrno records the OS-level errno underlying err, when the
// platform exposes one, mirroring the original's LastSocketErrNo()
// accessor. Most net package errors do not carry one; 0 means none.
func (t *transport) captureErrno(err error) {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		t.lastErrno = int(errno)
		return
	}
	t.lastErrno = 0
}

// fd reports the underlying socket descriptor, when the live connection
// exposes one. ok is false once the transport has been closed (conn is
// nil) or if the conn type does not support raw access.
func (t *transport) fd() (fd uintptr, ok bool) {
	if t == nil || t.conn == nil {
		return 0, false
	}
	sc, isSyscallConn := t.conn.(syscall.Conn)
	if !isSyscallConn {
		return 0, false
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return 0, false
	}
	var descriptor uintptr
	err = raw.Control(func(d uintptr) { descriptor = d })
	if err != nil {
		return 0, false
	}
	return descriptor, true
}

func (t *transport) close() error {
	if t == nil || t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	t.reader = nil
	return err
}
