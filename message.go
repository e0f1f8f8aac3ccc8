package submit

// MessageAddress pairs an email address with an optional display name.
type MessageAddress struct {
	Address     string
	DisplayName string
}

// Attachment is a single MIME part attached to a Message. Payload must
// already be base64-encoded; loading it from disk and detecting its MIME
// type are the caller's job, not this package's.
type Attachment struct {
	Name     string
	MimeType string
	Payload  string // base64-encoded
}

// Message is the envelope and body of a single mail submission.
//
// At least one address must be present across To, Cc and Bcc. Bcc
// addresses are used as RCPT TO targets but are never written into a
// header line.
type Message struct {
	From MessageAddress
	To   []MessageAddress
	Cc   []MessageAddress
	Bcc  []MessageAddress

	Subject     string
	MimeType    string // e.g. "text/plain"
	Body        []byte
	Attachments []Attachment
}

// recipients returns every address the message should be RCPT TO'd to, in
// To, Cc, Bcc order.
func (m Message) recipients() []MessageAddress {
	all := make([]MessageAddress, 0, len(m.To)+len(m.Cc)+len(m.Bcc))
	all = append(all, m.To...)
	all = append(all, m.Cc...)
	all = append(all, m.Bcc...)
	return all
}

// Credential is a username/password pair used for AUTH PLAIN or AUTH
// LOGIN. The bytes are never written to the communication log.
type Credential struct {
	username []byte
	password []byte
}

// NewCredential builds a Credential from a username and password.
func NewCredential(username, password string) Credential {
	return Credential{username: []byte(username), password: []byte(password)}
}
