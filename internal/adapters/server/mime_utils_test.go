package server

import (
	"bytes"
	"net/mail"
	"strings"
	"testing"
)

func parseMessage(t *testing.T, raw string) *mail.Message {
	t.Helper()
	msg, err := mail.ReadMessage(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("failed to parse message: %v", err)
	}
	return msg
}

func TestExtractScanTextPlainMessage(t *testing.T) {
	msg := parseMessage(t, "Subject: hello\r\n\r\nJust a plain body.\r\n")

	text, err := extractScanText(msg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "Just a plain body.") {
		t.Errorf("expected body content, got %q", text)
	}
}

func TestExtractScanTextMultipartPicksTextPlain(t *testing.T) {
	raw := "Subject: hello\r\n" +
		"Content-Type: multipart/alternative; boundary=xyz\r\n" +
		"\r\n" +
		"--xyz\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"visible text part\r\n" +
		"--xyz\r\n" +
		"Content-Type: text/html\r\n" +
		"\r\n" +
		"<p>html part</p>\r\n" +
		"--xyz--\r\n"

	text, err := extractScanText(parseMessage(t, raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "visible text part") {
		t.Errorf("expected plain part, got %q", text)
	}
	if strings.Contains(text, "html part") {
		t.Errorf("html part should be skipped, got %q", text)
	}
}

func TestExtractScanTextDecodesCharset(t *testing.T) {
	// "café" in ISO-8859-1: 0xE9 for é.
	var body bytes.Buffer
	body.WriteString("Subject: hello\r\n")
	body.WriteString("Content-Type: text/plain; charset=iso-8859-1\r\n")
	body.WriteString("\r\n")
	body.Write([]byte{'c', 'a', 'f', 0xE9, '\r', '\n'})

	text, err := extractScanText(parseMessage(t, body.String()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "café") {
		t.Errorf("expected decoded text, got %q", text)
	}
}

func TestDecodeHeaderEncodedWord(t *testing.T) {
	decoded := decodeHeader("=?UTF-8?B?dXJnZW50IGFwcGVhbA==?=")
	if decoded != "urgent appeal" {
		t.Errorf("expected decoded subject, got %q", decoded)
	}
}

func TestDecodeHeaderPlainValueUnchanged(t *testing.T) {
	if got := decodeHeader("regular subject"); got != "regular subject" {
		t.Errorf("expected unchanged value, got %q", got)
	}
}
