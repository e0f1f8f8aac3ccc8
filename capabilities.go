package submit

import "strings"

// ServerCapabilities records which AUTH mechanisms the server advertised
// in its EHLO reply. The zero value means no AUTH line was found.
type ServerCapabilities struct {
	Plain            bool
	Login            bool
	XOAuth2          bool
	PlainClientToken bool
	OAuthBearer      bool
	XOAuth           bool
}

// parseCapabilities scans the complete EHLO reply for a "250-AUTH" (or
// "250 AUTH" if it is the final line) entry and records the mechanisms it
// lists. Unknown mechanisms are ignored; a missing AUTH line yields the
// zero value.
func parseCapabilities(ehloReply string) ServerCapabilities {
	var caps ServerCapabilities
	for _, line := range strings.Split(ehloReply, "\r\n") {
		if len(line) < 5 {
			continue
		}
		rest := strings.TrimSpace(line[4:])
		fields := strings.Fields(rest)
		if len(fields) < 1 || fields[0] != "AUTH" {
			continue
		}
		for _, mech := range fields[1:] {
			switch mech {
			case "PLAIN":
				caps.Plain = true
			case "LOGIN":
				caps.Login = true
			case "XOAUTH2":
				caps.XOAuth2 = true
			case "PLAIN-CLIENTTOKEN":
				caps.PlainClientToken = true
			case "OAUTHBEARER":
				caps.OAuthBearer = true
			case "XOAUTH":
				caps.XOAuth = true
			}
		}
		break
	}
	return caps
}

// hasExtension reports whether the EHLO reply advertises the named
// extension on its own line, e.g. "250-STARTTLS" or "250 STARTTLS".
func hasExtension(ehloReply, name string) bool {
	for _, line := range strings.Split(ehloReply, "\r\n") {
		if len(line) < 5 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(line[4:]), name) {
			return true
		}
	}
	return false
}
