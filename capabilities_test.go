package submit

import "testing"

func TestParseCapabilities(t *testing.T) {
	reply := "250-mail.example.com\r\n" +
		"250-AUTH LOGIN PLAIN\r\n" +
		"250-STARTTLS\r\n" +
		"250 8BITMIME\r\n"

	caps := parseCapabilities(reply)
	if !caps.Login || !caps.Plain {
		t.Fatalf("expected LOGIN and PLAIN, got %+v", caps)
	}
	if caps.XOAuth2 {
		t.Fatalf("did not expect XOAUTH2, got %+v", caps)
	}
}

func TestParseCapabilitiesNoAuth(t *testing.T) {
	reply := "250-mail.example.com\r\n250 8BITMIME\r\n"
	caps := parseCapabilities(reply)
	if caps != (ServerCapabilities{}) {
		t.Fatalf("expected zero value, got %+v", caps)
	}
}

func TestHasExtension(t *testing.T) {
	reply := "250-mail.example.com\r\n250-STARTTLS\r\n250 8BITMIME\r\n"
	if !hasExtension(reply, "STARTTLS") {
		t.Error("expected STARTTLS to be detected")
	}
	if hasExtension(reply, "PIPELINING") {
		t.Error("did not expect PIPELINING")
	}
}
