package server

import (
	"bytes"
	"io"
	"mime"
	"mime/multipart"
	"net/mail"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// extractScanText pulls the plain-text content out of a message for
// classification. Multipart messages contribute their text/plain parts;
// non-UTF-8 charsets are decoded before the text reaches the classifier.
func extractScanText(msg *mail.Message) (string, error) {
	contentType := msg.Header.Get("Content-Type")

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return readPart(msg.Body, params["charset"])
	}

	boundary, ok := params["boundary"]
	if !ok {
		return readPart(msg.Body, params["charset"])
	}

	mr := multipart.NewReader(msg.Body, boundary)

	var text bytes.Buffer
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Serve whatever text was collected before the malformed part.
			break
		}

		partType, partParams, err := mime.ParseMediaType(part.Header.Get("Content-Type"))
		if err != nil || partType != "text/plain" {
			continue
		}

		content, err := readPart(part, partParams["charset"])
		if err != nil {
			continue
		}
		text.WriteString(content)
		text.WriteString("\n")
	}

	if text.Len() == 0 {
		return "", nil
	}
	return text.String(), nil
}

// readPart reads a body reader, decoding the declared charset to UTF-8.
// Unknown or missing charsets are read as-is.
func readPart(r io.Reader, charset string) (string, error) {
	if charset != "" && !strings.EqualFold(charset, "utf-8") && !strings.EqualFold(charset, "us-ascii") {
		if enc, err := htmlindex.Get(charset); err == nil {
			r = transform.NewReader(r, enc.NewDecoder())
		}
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(content), nil
}

// decodeHeader decodes RFC 2047 encoded-words in a header value, falling
// back to the raw value when decoding fails.
func decodeHeader(value string) string {
	dec := mime.WordDecoder{
		CharsetReader: func(charset string, input io.Reader) (io.Reader, error) {
			enc, err := htmlindex.Get(charset)
			if err != nil {
				return nil, err
			}
			return transform.NewReader(input, enc.NewDecoder()), nil
		},
	}
	decoded, err := dec.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}
