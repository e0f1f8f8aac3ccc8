package submit

import "strings"

// communicationLog is an append-only record of every command sent and
// every reply received during one sendMail call. It is reset at the
// start of each SendMail and survives past its return so callers can
// inspect it with Client.CommunicationLog.
type communicationLog struct {
	buf strings.Builder
}

func newCommunicationLog() *communicationLog {
	return &communicationLog{}
}

// client appends a command the client sent. Raw CRLF pairs are escaped to
// the two-character sequence \r\n so the log stays one line per entry;
// credentials must already be redacted by the caller before this is
// called.
func (l *communicationLog) client(payload string) {
	l.append("c", strings.ReplaceAll(payload, "\r\n", `\r\n`))
}

// server appends a reply the server sent, verbatim.
func (l *communicationLog) server(payload string) {
	l.append("s", payload)
}

func (l *communicationLog) append(prefix, payload string) {
	l.buf.WriteByte('\n')
	l.buf.WriteString(prefix)
	l.buf.WriteString(": ")
	l.buf.WriteString(payload)
}

func (l *communicationLog) String() string {
	if l == nil {
		return ""
	}
	return l.buf.String()
}
