package mailbox

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"github.com/emersion/go-imap"
)

// Multipart messages nest (alternative inside mixed inside related); anything
// deeper than this is noise.
const maxPartDepth = 8

// parseMessage converts a fetched IMAP message into a Message. Body decoding
// is best effort: a message whose body cannot be parsed still carries its
// envelope data and raw source.
func parseMessage(msg *imap.Message, section *imap.BodySectionName) (*Message, error) {
	if msg == nil {
		return nil, errors.New("nil imap message")
	}

	parsed := &Message{Date: msg.InternalDate}

	if env := msg.Envelope; env != nil {
		parsed.Subject = env.Subject
		if !env.Date.IsZero() {
			parsed.Date = env.Date
		}
		if len(env.From) > 0 && env.From[0] != nil {
			parsed.From = formatAddress(env.From[0])
		}
	}

	r := msg.GetBody(section)
	if r == nil {
		return parsed, nil
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return parsed, nil
	}
	parsed.Raw = string(raw)

	m, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return parsed, nil
	}

	plain, html := extractParts(
		m.Header.Get("Content-Type"),
		m.Header.Get("Content-Transfer-Encoding"),
		m.Body,
		0,
	)
	parsed.Text = plain
	parsed.HTML = html

	return parsed, nil
}

// formatAddress renders an envelope address as "Display Name <addr>" or a
// bare address when no display name is present.
func formatAddress(addr *imap.Address) string {
	address := addr.Address()
	name := strings.TrimSpace(addr.PersonalName)
	if name == "" {
		return address
	}
	return name + " <" + address + ">"
}

// extractParts walks a message body collecting the first text/plain and
// text/html variants it finds.
func extractParts(contentType, encoding string, body io.Reader, depth int) (plain, html string) {
	if depth > maxPartDepth {
		return "", ""
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = "text/plain"
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		mr := multipart.NewReader(body, params["boundary"])
		for {
			part, err := mr.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				break
			}

			p, h := extractParts(
				part.Header.Get("Content-Type"),
				part.Header.Get("Content-Transfer-Encoding"),
				part,
				depth+1,
			)
			if plain == "" {
				plain = p
			}
			if html == "" {
				html = h
			}
		}
		return plain, html
	}

	data, err := io.ReadAll(decodeBody(body, encoding))
	if err != nil {
		return "", ""
	}

	switch {
	case strings.HasPrefix(mediaType, "text/html"):
		return "", string(data)
	case strings.HasPrefix(mediaType, "text/"):
		return string(data), ""
	default:
		return "", ""
	}
}

// decodeBody unwraps the content-transfer-encoding of a body part.
func decodeBody(r io.Reader, encoding string) io.Reader {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "quoted-printable":
		return quotedprintable.NewReader(r)
	case "base64":
		return base64.NewDecoder(base64.StdEncoding, r)
	default:
		return r
	}
}
