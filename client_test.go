package submit

import (
	"testing"
	"time"

	"github.com/go-submit/submit/internal/subtest"
)

func testMessage() Message {
	return Message{
		From:     MessageAddress{Address: "sender@example.com"},
		To:       []MessageAddress{{Address: "recipient@example.com"}},
		Subject:  "hello",
		MimeType: "text/plain",
		Body:     []byte("hi there"),
	}
}

func TestSendMailCleartextSuccess(t *testing.T) {
	srv := subtest.Start(t, "220 mail.example.com ready\r\n", subtest.Script{
		"250-mail.example.com\r\n250 AUTH PLAIN LOGIN\r\n",
		"250 OK\r\n",
		"250 OK\r\n",
		"354 Go ahead\r\n",
		"250 OK\r\n",
	})
	defer srv.Close()

	host, port := srv.HostPort(t)
	client, err := NewCleartextClient(host, port)
	if err != nil {
		t.Fatalf("NewCleartextClient: %v", err)
	}
	client.SetCommandTimeout(2 * time.Second)

	if err := client.SendMail(testMessage()); err != nil {
		t.Fatalf("SendMail: %v\nlog:\n%s", err, client.CommunicationLog())
	}
}

func TestSendMailRcptRejected(t *testing.T) {
	srv := subtest.Start(t, "220 mail.example.com ready\r\n", subtest.Script{
		"250-mail.example.com\r\n250 AUTH PLAIN LOGIN\r\n",
		"250 OK\r\n",
		"550 No such user\r\n",
	})
	defer srv.Close()

	host, port := srv.HostPort(t)
	client, err := NewCleartextClient(host, port)
	if err != nil {
		t.Fatalf("NewCleartextClient: %v", err)
	}
	client.SetCommandTimeout(2 * time.Second)

	err = client.SendMail(testMessage())
	var submitErr *Error
	if err == nil {
		t.Fatal("expected an error")
	}
	if !asError(err, &submitErr) || submitErr.Code != ErrRcptTo {
		t.Fatalf("expected ErrRcptTo, got %v", err)
	}
}

func TestSendMailGreetingTimeout(t *testing.T) {
	srv := subtest.Start(t, "", nil)
	defer srv.Close()

	host, port := srv.HostPort(t)
	client, err := NewCleartextClient(host, port)
	if err != nil {
		t.Fatalf("NewCleartextClient: %v", err)
	}
	client.SetCommandTimeout(200 * time.Millisecond)

	err = client.SendMail(testMessage())
	var submitErr *Error
	if !asError(err, &submitErr) || submitErr.Code != ErrConnectTimeout {
		t.Fatalf("expected ErrConnectTimeout (timed-out greeting maps to ErrConnectTimeout), got %v", err)
	}
}

func TestSendMailKeepUsingBaseSendCommandsSkipsFeedback(t *testing.T) {
	srv := subtest.Start(t, "220 mail.example.com ready\r\n", nil)
	defer srv.Close()

	host, port := srv.HostPort(t)
	client, err := NewCleartextClient(host, port)
	if err != nil {
		t.Fatalf("NewCleartextClient: %v", err)
	}
	client.SetCommandTimeout(2 * time.Second)
	client.SetKeepUsingBaseSendCommands(true)

	err = client.SendMail(testMessage())
	var submitErr *Error
	if !asError(err, &submitErr) || submitErr.Code != ErrMailFrom {
		t.Fatalf("expected ErrMailFrom (fire-and-forget sees no reply code), got %v", err)
	}
}

func asError(err error, target **Error) bool {
	se, ok := err.(*Error)
	if !ok {
		return false
	}
	*target = se
	return true
}
