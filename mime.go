package submit

import "fmt"

const mimeBoundary = "sep"

// bodyChunkSize is the maximum number of octets sent per DATA write once
// the body and attachments have been framed. Chunking keeps any single
// write bounded regardless of attachment size.
const bodyChunkSize = 512

// emitBodyFrame builds the multipart/mixed body: the text part, followed
// by one part per attachment, followed by the closing boundary. It is a
// pure function so the framing can be tested without a network
// connection.
func emitBodyFrame(msg Message) []byte {
	var b []byte
	b = append(b, fmt.Sprintf("--%s\r\nContent-Type: %s; charset=UTF-8\r\n\r\n", mimeBoundary, msg.MimeType)...)
	b = append(b, msg.Body...)
	b = append(b, "\r\n"...)

	b = append(b, emitAttachmentsFrame(msg.Attachments)...)
	return b
}

// emitAttachmentsFrame renders every attachment as its own MIME part and
// closes the multipart/mixed message with the final "--sep--" boundary.
func emitAttachmentsFrame(attachments []Attachment) []byte {
	var b []byte
	for _, a := range attachments {
		b = append(b, fmt.Sprintf("\r\n--%s\r\n", mimeBoundary)...)
		b = append(b, fmt.Sprintf("Content-Type: %s; file=\"%s\"\r\n", a.MimeType, a.Name)...)
		b = append(b, fmt.Sprintf("Content-Disposition: Inline; filename=\"%s\"\r\n", a.Name)...)
		b = append(b, "Content-Transfer-Encoding: base64\r\n\r\n"...)
		b = append(b, a.Payload...)
	}
	b = append(b, fmt.Sprintf("\r\n--%s--", mimeBoundary)...)
	return b
}

// chunkBody splits frame into bodyChunkSize-octet pieces for transmission.
// A frame no larger than one chunk is returned as a single-element slice,
// matching the original's choice to send short bodies as one write.
func chunkBody(frame []byte) [][]byte {
	if len(frame) <= bodyChunkSize {
		return [][]byte{frame}
	}
	chunks := make([][]byte, 0, (len(frame)/bodyChunkSize)+1)
	for start := 0; start < len(frame); start += bodyChunkSize {
		end := start + bodyChunkSize
		if end > len(frame) {
			end = len(frame)
		}
		chunks = append(chunks, frame[start:end])
	}
	return chunks
}
