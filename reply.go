package submit

import (
	"strconv"
	"strings"
)

// Status codes the orchestrator pattern-matches on. Any other code coming
// back from the server fails the current step with that step's own error
// code (for example ErrRcptTo); the server's status code itself is not
// part of the returned *Error.
const (
	statusServiceReady    = 220
	statusActionOK        = 250
	statusServerChallenge = 334
	statusStartMailInput  = 354
	statusAuthSuccess     = 235
)

// extractStatusCode reads the leading three ASCII digits of an SMTP reply
// line and parses them as a decimal status code. It returns -1 if the
// line has fewer than three bytes or does not start with three digits.
func extractStatusCode(line string) int {
	if len(line) < 3 {
		return -1
	}
	d := line[:3]
	for _, b := range []byte(d) {
		if b < '0' || b > '9' {
			return -1
		}
	}
	code, err := strconv.Atoi(d)
	if err != nil {
		return -1
	}
	return code
}

// isContinuationLine reports whether line is a non-final line of a
// multi-line reply, i.e. "NNN-...".
func isContinuationLine(line string) bool {
	return len(line) >= 4 && line[3] == '-'
}

// extractReplyText strips the leading "NNN-" or "NNN " prefix and
// trailing CRLF from a (possibly multi-line) raw reply, returning the
// text of its final line. Used to pull the base64 challenge out of a
// "334 ..." reply.
func extractReplyText(raw string) string {
	lines := strings.Split(strings.TrimRight(raw, "\r\n"), "\r\n")
	last := lines[len(lines)-1]
	if len(last) < 4 {
		return ""
	}
	return strings.TrimSpace(last[4:])
}
