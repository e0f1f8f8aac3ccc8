package submit

import (
	"errors"
	"fmt"
	"time"
)

// transportMode picks how (and when) TLS is applied during connection
// setup. It is fixed by which constructor produced the Client.
type transportMode int

const (
	modeCleartext transportMode = iota
	modeOpportunistic
	modeForced
)

// session drives exactly one SMTP conversation: connect, greet, EHLO,
// optionally upgrade to TLS, authenticate, envelope, frame the body, and
// quit. It is constructed fresh by Client.SendMail and discarded after.
type session struct {
	host string
	port int
	mode transportMode
	cred Credential

	// keepUsingBaseSendCommands, when set, makes sendWithFeedback return
	// without reading a reply; the AUTH exchange, which does not go
	// through sendWithFeedback, still reads its replies. It exists for
	// protocol-level diagnostics and is not expected to produce a
	// successful SendMail when enabled.
	keepUsingBaseSendCommands bool

	tr  *transport
	log *communicationLog

	lastServerResponse string
}

func newSession(host string, port int, mode transportMode, cred Credential, commandTimeout time.Duration, upgrader secureUpgrader, keepUsingBaseSendCommands bool) *session {
	return &session{
		host:                      host,
		port:                      port,
		mode:                      mode,
		cred:                      cred,
		keepUsingBaseSendCommands: keepUsingBaseSendCommands,
		log:                       newCommunicationLog(),
		tr:                        newTransport(commandTimeout, upgrader),
	}
}

// run executes the full conversation for msg and returns nil on success
// or a *Error identifying the failing step. The connection is always
// closed before run returns.
func (s *session) run(msg Message) error {
	defer s.tr.close()

	if err := s.connect(); err != nil {
		return err
	}
	if err := s.greet(); err != nil {
		return err
	}
	caps, ehloReply, err := s.ehlo()
	if err != nil {
		return err
	}
	if s.mode == modeOpportunistic && hasExtension(ehloReply, "STARTTLS") {
		caps, err = s.startTLS()
		if err != nil {
			return err
		}
	}
	if err := s.authenticate(caps); err != nil {
		return err
	}
	if err := s.envelope(msg); err != nil {
		return err
	}
	if err := s.frame(msg); err != nil {
		return err
	}
	return nil
}

func (s *session) connect() error {
	return s.tr.connect(s.host, s.port, s.mode == modeForced)
}

func (s *session) greet() error {
	code, raw, err := s.tr.recvReply()
	if err != nil {
		return s.wrap(err, ErrGreeting, ErrConnectTimeout, "greet")
	}
	s.log.server(raw)
	s.lastServerResponse = raw
	if code != statusServiceReady {
		return &Error{Code: ErrGreeting, Step: "greet"}
	}
	return nil
}

// ehlo sends "ehlo localhost" and returns both the parsed AUTH
// capabilities and the raw reply, since the Opportunistic facade also
// needs to check it for a STARTTLS line.
func (s *session) ehlo() (ServerCapabilities, string, error) {
	raw, err := s.sendWithFeedback("ehlo localhost\r\n", ErrSendEHLO, ErrEHLOTimeout)
	if err != nil {
		return ServerCapabilities{}, "", err
	}
	return parseCapabilities(raw), raw, nil
}

// startTLS upgrades the connection in place, then re-issues EHLO as RFC
// 3207 requires, since a fresh TLS session may offer a different
// capability set than the cleartext one did.
func (s *session) startTLS() (ServerCapabilities, error) {
	code, err := s.sendWithFeedbackCode("STARTTLS\r\n", ErrTLSHandshake, ErrTLSHandshake)
	if err != nil {
		return ServerCapabilities{}, err
	}
	if code != statusServiceReady {
		return ServerCapabilities{}, &Error{Code: ErrTLSHandshake, Step: "starttls"}
	}
	if err := s.tr.upgradeToTLS(s.host); err != nil {
		return ServerCapabilities{}, &Error{Code: ErrTLSHandshake, Step: "starttls"}
	}
	caps, _, err := s.ehlo()
	return caps, err
}

func (s *session) authenticate(caps ServerCapabilities) error {
	code := newAuthenticator(s.tr, s.log).authenticate(caps, s.cred)
	if code == authNoNeed {
		return nil
	}
	return &Error{Code: code, Step: "authenticate"}
}

func (s *session) envelope(msg Message) error {
	if err := validateLine(msg.From.Address); err != nil {
		return &Error{Code: ErrMailFrom, Step: "mail-from"}
	}
	mailFrom := fmt.Sprintf("MAIL FROM: <%s>\r\n", msg.From.Address)
	code, err := s.sendWithFeedbackCode(mailFrom, ErrMailFrom, ErrMailFromTimeout)
	if err != nil {
		return err
	}
	if code != statusActionOK {
		return &Error{Code: ErrMailFrom, Step: "mail-from"}
	}

	for _, addr := range msg.recipients() {
		if err := validateLine(addr.Address); err != nil {
			return &Error{Code: ErrRcptTo, Step: "rcpt-to"}
		}
		rcpt := fmt.Sprintf("RCPT TO: <%s>\r\n", addr.Address)
		code, err := s.sendWithFeedbackCode(rcpt, ErrRcptTo, ErrRcptToTimeout)
		if err != nil {
			return err
		}
		if code != statusActionOK {
			return &Error{Code: ErrRcptTo, Step: "rcpt-to"}
		}
	}
	return nil
}

func (s *session) frame(msg Message) error {
	code, err := s.sendWithFeedbackCode("DATA\r\n", ErrData, ErrDataTimeout)
	if err != nil {
		return err
	}
	if code != statusStartMailInput {
		return &Error{Code: ErrData, Step: "data"}
	}

	if err := validateLine(msg.From.Address); err != nil {
		return &Error{Code: ErrHeaderFrom, Step: "header-from"}
	}
	if err := validateLine(msg.From.DisplayName); err != nil {
		return &Error{Code: ErrHeaderFrom, Step: "header-from"}
	}
	if err := s.sendHeaderLine(fmt.Sprintf("From: \"%s\" <%s>\r\n", msg.From.DisplayName, msg.From.Address), ErrHeaderFrom); err != nil {
		return err
	}
	for _, addr := range append(append([]MessageAddress{}, msg.To...), msg.Cc...) {
		if err := validateLine(addr.Address); err != nil {
			return &Error{Code: ErrHeaderToAndCc, Step: "header-to-cc"}
		}
	}
	for _, addr := range msg.To {
		if err := s.sendHeaderLine(fmt.Sprintf("To: %s\r\n", addr.Address), ErrHeaderToAndCc); err != nil {
			return err
		}
	}
	for _, addr := range msg.Cc {
		if err := s.sendHeaderLine(fmt.Sprintf("Cc: %s\r\n", addr.Address), ErrHeaderToAndCc); err != nil {
			return err
		}
	}
	if err := validateLine(msg.Subject); err != nil {
		return &Error{Code: ErrHeaderSubject, Step: "header-subject"}
	}
	if err := s.sendHeaderLine(fmt.Sprintf("Subject: %s\r\n", msg.Subject), ErrHeaderSubject); err != nil {
		return err
	}
	if err := s.sendHeaderLine(fmt.Sprintf("Content-Type: multipart/mixed; boundary=%s\r\n\r\n", mimeBoundary), ErrHeaderContentType); err != nil {
		return err
	}

	body := emitBodyFrame(msg)
	chunks := chunkBody(body)
	bodyErrCode := ErrBody
	if len(chunks) > 1 {
		bodyErrCode = ErrBodyPart
	}
	for _, chunk := range chunks {
		if err := s.sendNoFeedback(string(chunk), bodyErrCode); err != nil {
			return err
		}
	}

	code, err = s.sendWithFeedbackCode("\r\n.\r\n", ErrEndOfData, ErrEndOfDataTimeout)
	if err != nil {
		return err
	}
	if code != statusActionOK {
		return &Error{Code: ErrEndOfData, Step: "end-of-data"}
	}

	return s.sendNoFeedback("QUIT\r\n", ErrQuit)
}

func (s *session) sendHeaderLine(line string, errCode int) error {
	return s.sendNoFeedback(line, errCode)
}

// sendNoFeedback sends cmd and does not wait for a reply, mirroring the
// conversation steps that the original protocol never acknowledges
// (individual headers, body chunks, QUIT).
func (s *session) sendNoFeedback(cmd string, errCode int) error {
	s.log.client(cmd)
	if err := s.tr.send(cmd); err != nil {
		return &Error{Code: errCode, Step: "send"}
	}
	return nil
}

// sendWithFeedback sends cmd and returns the raw reply text, mapping a
// transport error to errCode or timeoutCode.
func (s *session) sendWithFeedback(cmd string, errCode, timeoutCode int) (string, error) {
	s.log.client(cmd)
	if err := s.tr.send(cmd); err != nil {
		return "", &Error{Code: errCode, Step: "send"}
	}
	if s.keepUsingBaseSendCommands {
		return "", nil
	}
	_, raw, err := s.tr.recvReply()
	if err != nil {
		return "", s.wrap(err, errCode, timeoutCode, "recv")
	}
	s.log.server(raw)
	s.lastServerResponse = raw
	return raw, nil
}

// sendWithFeedbackCode is sendWithFeedback plus the parsed status code,
// for callers that branch on it directly.
func (s *session) sendWithFeedbackCode(cmd string, errCode, timeoutCode int) (int, error) {
	raw, err := s.sendWithFeedback(cmd, errCode, timeoutCode)
	if err != nil {
		return 0, err
	}
	return extractStatusCode(raw), nil
}

func (s *session) wrap(err error, errCode, timeoutCode int, step string) error {
	if errors.Is(err, errTimeout) {
		return &Error{Code: timeoutCode, Step: step}
	}
	return &Error{Code: errCode, Step: step}
}
