package submit

import (
	"fmt"
	"strings"
	"time"
)

const defaultCommandTimeout = 5 * time.Second

// Client sends one message per call to SendMail over a single SMTP
// conversation. A Client is reusable across calls (each call opens its
// own connection) but is not safe for concurrent use: callers that need
// concurrency should use one Client per goroutine.
type Client struct {
	serverName                string
	serverPort                uint
	mode                      transportMode
	commandTimeout            time.Duration
	cred                      Credential
	upgrader                  secureUpgrader
	keepUsingBaseSendCommands bool

	lastLog       *communicationLog
	lastResponse  string
	lastErrno     int
	lastTransport *transport
}

// newClient validates serverName the way the underlying conversation
// state machine requires: it may not be empty or all whitespace.
func newClient(serverName string, port uint, mode transportMode) (*Client, error) {
	if strings.TrimSpace(serverName) == "" {
		return nil, fmt.Errorf("submit: server name cannot be empty")
	}
	return &Client{
		serverName:     serverName,
		serverPort:     port,
		mode:           mode,
		commandTimeout: defaultCommandTimeout,
	}, nil
}

// NewCleartextClient builds a Client that never attempts TLS.
func NewCleartextClient(serverName string, port uint) (*Client, error) {
	return newClient(serverName, port, modeCleartext)
}

// NewOpportunisticClient builds a Client that upgrades to TLS via
// STARTTLS when the server advertises it, and otherwise proceeds in
// cleartext.
func NewOpportunisticClient(serverName string, port uint) (*Client, error) {
	return newClient(serverName, port, modeOpportunistic)
}

// NewForcedClient builds a Client that performs the TLS handshake before
// any SMTP command is sent; the server must speak TLS immediately on
// connect (commonly port 465).
func NewForcedClient(serverName string, port uint) (*Client, error) {
	return newClient(serverName, port, modeForced)
}

// SetServerName changes the host the next SendMail call connects to.
func (c *Client) SetServerName(serverName string) error {
	if strings.TrimSpace(serverName) == "" {
		return fmt.Errorf("submit: server name cannot be empty")
	}
	c.serverName = serverName
	return nil
}

// ServerName returns the host the client connects to.
func (c *Client) ServerName() string { return c.serverName }

// SetServerPort changes the port the next SendMail call connects to.
func (c *Client) SetServerPort(port uint) { c.serverPort = port }

// ServerPort returns the port the client connects to.
func (c *Client) ServerPort() uint { return c.serverPort }

// SetCommandTimeout bounds how long any single step of the conversation
// (connect, one command, one reply) may take.
func (c *Client) SetCommandTimeout(timeout time.Duration) { c.commandTimeout = timeout }

// CommandTimeout returns the current per-step timeout.
func (c *Client) CommandTimeout() time.Duration { return c.commandTimeout }

// SetCredentials configures AUTH PLAIN/LOGIN credentials for subsequent
// SendMail calls. Passing the zero Credential disables authentication.
func (c *Client) SetCredentials(cred Credential) { c.cred = cred }

// SetSecureUpgrader overrides the TLS implementation used for the
// Forced and Opportunistic transport modes. Intended for tests; the
// zero value uses crypto/tls.
func (c *Client) SetSecureUpgrader(upgrader secureUpgrader) { c.upgrader = upgrader }

// SetKeepUsingBaseSendCommands is a diagnostic-only toggle: when true,
// EHLO, STARTTLS, MAIL FROM, RCPT TO, DATA and the end-of-data marker
// are sent fire-and-forget instead of waiting for a reply. The AUTH
// exchange is not affected and still waits for each server reply. It is
// not expected to produce a successful SendMail; it exists for drivers
// that want to inspect raw protocol timing.
func (c *Client) SetKeepUsingBaseSendCommands(v bool) { c.keepUsingBaseSendCommands = v }

// CommunicationLog returns every command and reply exchanged during the
// most recent SendMail call. It survives until the next SendMail call
// overwrites it, and is empty before any call is made.
func (c *Client) CommunicationLog() string { return c.lastLog.String() }

// LastServerResponse returns the raw text of the last reply the server
// sent during the most recent SendMail call.
func (c *Client) LastServerResponse() string { return c.lastResponse }

// LastSocketErrNo returns the OS-level errno, if any, underlying the
// most recent SendMail call's transport failure. It is 0 when the last
// call succeeded or failed for a non-socket reason.
func (c *Client) LastSocketErrNo() int { return c.lastErrno }

// socketDescriptor exposes the raw socket descriptor of the most recent
// SendMail call's connection, for tests that assert the transport was
// released. ok is always false once SendMail has returned, since every
// conversation closes its connection before returning.
func (c *Client) socketDescriptor() (uintptr, bool) {
	return c.lastTransport.fd()
}

// SendMail opens one connection, runs the full EHLO/AUTH/MAIL/RCPT/DATA
// conversation for msg, and closes the connection. It returns nil on
// success or a *Error identifying which step failed.
func (c *Client) SendMail(msg Message) error {
	s := newSession(c.serverName, int(c.serverPort), c.mode, c.cred, c.commandTimeout, c.upgrader, c.keepUsingBaseSendCommands)
	err := s.run(msg)
	c.lastLog = s.log
	c.lastResponse = s.lastServerResponse
	c.lastErrno = s.tr.lastErrno
	c.lastTransport = s.tr
	return err
}
