package submit

import (
	"testing"
	"time"

	"github.com/go-submit/submit/internal/subtest"
)

// Both tests below deliberately reject MAIL FROM right after a successful
// AUTH exchange: reaching ErrMailFrom (rather than ErrAuthenticate) is what
// proves the AUTH step itself succeeded.

func TestSendMailAuthPlainSuccess(t *testing.T) {
	srv := subtest.Start(t, "220 mail.example.com ready\r\n", subtest.Script{
		"250-mail.example.com\r\n250 AUTH PLAIN LOGIN\r\n",
		"235 Authentication successful\r\n",
		"550 Mailbox unavailable\r\n",
	})
	defer srv.Close()

	host, port := srv.HostPort(t)
	client, err := NewCleartextClient(host, port)
	if err != nil {
		t.Fatalf("NewCleartextClient: %v", err)
	}
	client.SetCommandTimeout(2 * time.Second)
	client.SetCredentials(NewCredential("alice", "s3cret"))

	err = client.SendMail(testMessage())
	var submitErr *Error
	if !asError(err, &submitErr) || submitErr.Code != ErrMailFrom {
		t.Fatalf("expected ErrMailFrom (AUTH PLAIN must have succeeded to get there), got %v", err)
	}
}

func TestSendMailAuthLoginSuccess(t *testing.T) {
	srv := subtest.Start(t, "220 mail.example.com ready\r\n", subtest.Script{
		"250-mail.example.com\r\n250 AUTH LOGIN\r\n",
		"334 VXNlcm5hbWU6\r\n",
		"334 UGFzc3dvcmQ6\r\n",
		"235 Authentication successful\r\n",
		"550 Mailbox unavailable\r\n",
	})
	defer srv.Close()

	host, port := srv.HostPort(t)
	client, err := NewCleartextClient(host, port)
	if err != nil {
		t.Fatalf("NewCleartextClient: %v", err)
	}
	client.SetCommandTimeout(2 * time.Second)
	client.SetCredentials(NewCredential("alice", "s3cret"))

	err = client.SendMail(testMessage())
	var submitErr *Error
	if !asError(err, &submitErr) || submitErr.Code != ErrMailFrom {
		t.Fatalf("expected ErrMailFrom (AUTH LOGIN must have succeeded to get there), got %v", err)
	}
}
