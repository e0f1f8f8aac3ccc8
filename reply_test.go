package submit

import "testing"

func TestExtractStatusCode(t *testing.T) {
	tests := []struct {
		line string
		want int
	}{
		{"250 OK", 250},
		{"250-PIPELINING", 250},
		{"220 mail.example.com ESMTP ready", 220},
		{"bad", -1},
		{"", -1},
		{"25 ", -1},
	}
	for _, tt := range tests {
		if got := extractStatusCode(tt.line); got != tt.want {
			t.Errorf("extractStatusCode(%q) = %d, want %d", tt.line, got, tt.want)
		}
	}
}

func TestIsContinuationLine(t *testing.T) {
	if !isContinuationLine("250-PIPELINING") {
		t.Error("expected continuation line to be detected")
	}
	if isContinuationLine("250 OK") {
		t.Error("expected final line not to be a continuation")
	}
	if isContinuationLine("x") {
		t.Error("short line must not be a continuation")
	}
}

func TestExtractReplyText(t *testing.T) {
	got := extractReplyText("334 VXNlcm5hbWU6\r\n")
	want := "VXNlcm5hbWU6"
	if got != want {
		t.Errorf("extractReplyText = %q, want %q", got, want)
	}
}
