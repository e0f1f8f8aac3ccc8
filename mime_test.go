package submit

import (
	"bytes"
	"strings"
	"testing"
)

func TestEmitBodyFrameNoAttachments(t *testing.T) {
	msg := Message{MimeType: "text/plain", Body: []byte("hello")}
	got := string(emitBodyFrame(msg))
	want := "--sep\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\nhello\r\n\r\n--sep--"
	if got != want {
		t.Errorf("emitBodyFrame = %q, want %q", got, want)
	}
}

func TestEmitBodyFrameWithAttachment(t *testing.T) {
	msg := Message{
		MimeType: "text/plain",
		Body:     []byte("hi"),
		Attachments: []Attachment{
			{Name: "a.txt", MimeType: "text/plain", Payload: "aGVsbG8="},
		},
	}
	got := string(emitBodyFrame(msg))
	if !strings.Contains(got, "--sep\r\nContent-Type: text/plain; file=\"a.txt\"\r\n") {
		t.Errorf("missing attachment header in %q", got)
	}
	if !strings.HasSuffix(got, "\r\n--sep--") {
		t.Errorf("expected closing boundary, got %q", got)
	}
}

func TestChunkBodySingleChunk(t *testing.T) {
	frame := bytes.Repeat([]byte("a"), 100)
	chunks := chunkBody(frame)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
}

func TestChunkBodyMultipleChunks(t *testing.T) {
	frame := bytes.Repeat([]byte("a"), bodyChunkSize*2+10)
	chunks := chunkBody(frame)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	var rebuilt []byte
	for _, c := range chunks {
		rebuilt = append(rebuilt, c...)
	}
	if !bytes.Equal(rebuilt, frame) {
		t.Error("chunks did not reassemble into the original frame")
	}
}
