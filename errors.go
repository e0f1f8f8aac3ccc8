package submit

import (
	"fmt"
	"strings"
)

// validateLine rejects any value a caller wants written onto the wire as
// its own line if it contains a CR or LF: an unescaped one would let the
// caller inject extra SMTP commands or header lines.
func validateLine(s string) error {
	if strings.ContainsAny(s, "\r\n") {
		return fmt.Errorf("submit: value must not contain CR or LF: %q", s)
	}
	return nil
}

// Error is returned by SendMail when a step of the SMTP conversation
// fails. Code is one of the constants below; a caller that needs to
// pattern-match on the exact failure (rather than just logging err)
// should use errors.As to recover it.
type Error struct {
	Code int
	Step string
}

func (e *Error) Error() string {
	return fmt.Sprintf("submit: %s: %s", e.Step, ErrorMessage(e.Code))
}

// Error code taxonomy. One category per conversation step; a step that
// can both fail and time out gets two adjacent codes.
const (
	ErrSocketCreation      = -1
	ErrAddressResolution   = -2
	ErrConnect             = -3
	ErrConnectTimeout      = -4
	ErrNonBlockingGet      = -5
	ErrNonBlockingSet      = -6
	ErrSocketOptionsGet    = -7
	ErrDelayedConnection   = -8
	ErrHostLookup          = -9
	ErrSendEHLO            = -10
	ErrEHLOTimeout         = -11
	ErrTLSHandshake        = -12
	ErrGreeting            = -13
	ErrAuthenticate        = -14
	ErrAuthenticateTimeout = -15
	ErrAuthMethodNotSupported = -16
	ErrMailFrom            = -17
	ErrMailFromTimeout     = -18
	ErrRcptTo              = -19
	ErrRcptToTimeout       = -20
	ErrData                = -21
	ErrDataTimeout         = -22
	ErrHeaderFrom          = -23
	ErrHeaderToAndCc       = -24
	ErrHeaderSubject       = -25
	ErrHeaderContentType   = -26
	ErrBody                = -27
	ErrBodyPart            = -28
	ErrEndOfData           = -29
	ErrEndOfDataTimeout    = -30
	ErrQuit                = -31

	// authNoNeed is a sentinel, not an error: it means no credentials were
	// configured, so the authentication step is simply skipped. It never
	// escapes the orchestrator as an *Error.
	authNoNeed = 0
)

var errorMessages = map[int]string{
	ErrSocketCreation:         "could not create the underlying socket",
	ErrAddressResolution:      "could not resolve the server address",
	ErrConnect:                "could not connect to the server",
	ErrConnectTimeout:         "timed out connecting to the server",
	ErrNonBlockingGet:         "could not read the socket's non-blocking flag",
	ErrNonBlockingSet:         "could not set the socket's non-blocking flag",
	ErrSocketOptionsGet:       "could not read the socket's pending error option",
	ErrDelayedConnection:      "the connection failed asynchronously after connect returned",
	ErrHostLookup:             "could not resolve the server host name",
	ErrSendEHLO:               "could not send the EHLO command",
	ErrEHLOTimeout:            "timed out waiting for the EHLO reply",
	ErrTLSHandshake:           "the TLS handshake failed",
	ErrGreeting:               "the server greeting was not 220",
	ErrAuthenticate:           "authentication was rejected by the server",
	ErrAuthenticateTimeout:    "timed out waiting for an authentication reply",
	ErrAuthMethodNotSupported: "the server does not support AUTH PLAIN or AUTH LOGIN",
	ErrMailFrom:               "the MAIL FROM command was rejected",
	ErrMailFromTimeout:        "timed out waiting for a reply to MAIL FROM",
	ErrRcptTo:                 "a RCPT TO command was rejected",
	ErrRcptToTimeout:          "timed out waiting for a reply to RCPT TO",
	ErrData:                   "the DATA command was rejected",
	ErrDataTimeout:            "timed out waiting for a reply to DATA",
	ErrHeaderFrom:             "could not send the From header",
	ErrHeaderToAndCc:          "could not send a To or Cc header",
	ErrHeaderSubject:          "could not send the Subject header",
	ErrHeaderContentType:      "could not send the Content-Type header",
	ErrBody:                   "could not send the message body",
	ErrBodyPart:               "could not send a chunk of the message body",
	ErrEndOfData:              "the end-of-data marker was rejected",
	ErrEndOfDataTimeout:       "timed out waiting for a reply to the end-of-data marker",
	ErrQuit:                   "could not send the QUIT command",
}

// ErrorMessage returns a stable, human-readable message for one of the
// error codes above. Unknown codes return a generic message rather than
// an empty string.
func ErrorMessage(code int) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return "unknown submit error"
}

// ErrorMessageInto writes ErrorMessage(code) into dst, truncating if
// necessary. It returns len(dst)-1 if the message was truncated, 0 if it
// fit untruncated, or -1 if dst is nil or empty.
func ErrorMessageInto(code int, dst []byte) int {
	if len(dst) == 0 {
		return -1
	}
	msg := ErrorMessage(code)
	maxLen := len(dst)
	if len(msg) > maxLen-1 {
		copy(dst, msg[:maxLen-1])
		return maxLen - 1
	}
	copy(dst, msg)
	return 0
}
