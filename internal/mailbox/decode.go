package mailbox

import (
	"bytes"
	"io"
	"strings"
	"time"

	// Register extended charsets so non-UTF-8 parts decode instead of erroring.
	_ "github.com/emersion/go-message/charset"
	"github.com/emersion/go-message/mail"
)

// Decoded is the normalized form of one raw message. Every field is
// best-effort: header decoding, date parsing, and byte decoding all
// degrade to a fallback value instead of failing the message.
type Decoded struct {
	MessageID string
	Subject   string
	Sender    string
	To        []string
	Cc        []string

	// Date is zero when the header is missing or unparseable; the
	// caller substitutes ingestion time.
	Date time.Time

	// BodyText and BodyHTML are independently optional. A single-part
	// body always lands in one of them; in a multipart walk only
	// text/plain and text/html parts contribute, last of each wins.
	BodyText string
	BodyHTML string

	// Headers is the full header map, decoded where possible with the
	// raw value as fallback. Repeated headers keep the last value.
	Headers map[string]string
}

// Decode parses a raw message into its normalized form. It never fails:
// an unparseable message degrades to a plain-text body with no headers.
func Decode(raw []byte) *Decoded {
	d := &Decoded{Headers: map[string]string{}}

	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		d.BodyText = sanitize(raw)
		return d
	}
	defer mr.Close()

	h := mr.Header

	if subject, err := h.Subject(); err == nil {
		d.Subject = subject
	} else {
		d.Subject = h.Get("Subject")
	}

	if sender, err := h.Text("From"); err == nil {
		d.Sender = sender
	} else {
		d.Sender = h.Get("From")
	}

	d.To = addressStrings(&h, "To")
	d.Cc = addressStrings(&h, "Cc")

	if msgID, err := h.MessageID(); err == nil && msgID != "" {
		d.MessageID = msgID
	} else {
		d.MessageID = strings.TrimSpace(h.Get("Message-Id"))
	}

	if date, err := h.Date(); err == nil {
		d.Date = date
	}

	fields := h.Fields()
	for fields.Next() {
		text, err := fields.Text()
		if err != nil {
			text = fields.Value()
		}
		d.Headers[fields.Key()] = text
	}

	topType, _, _ := h.ContentType()
	multipart := strings.HasPrefix(topType, "multipart/")

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			break
		}

		inline, ok := part.Header.(*mail.InlineHeader)
		if !ok {
			// Attachment parts never contribute to the body.
			continue
		}

		contentType, _, _ := inline.ContentType()
		body, readErr := io.ReadAll(part.Body)
		if readErr != nil && len(body) == 0 {
			continue
		}

		// A single-part message always carries a body: anything that is
		// not HTML lands in BodyText regardless of its declared type.
		// Within a multipart walk only text/plain and text/html parts
		// contribute.
		switch {
		case strings.HasPrefix(contentType, "text/html"):
			d.BodyHTML = sanitize(body)
		case !multipart:
			d.BodyText = sanitize(body)
		case strings.HasPrefix(contentType, "text/plain"), contentType == "":
			d.BodyText = sanitize(body)
		}
	}

	return d
}

// BestBody returns the plain text body when present, else the HTML source.
func (d *Decoded) BestBody() string {
	if d.BodyText != "" {
		return d.BodyText
	}
	return d.BodyHTML
}

// addressStrings decodes an address list header, falling back to the
// raw header value as a single entry when parsing fails.
func addressStrings(h *mail.Header, key string) []string {
	addrs, err := h.AddressList(key)
	if err != nil {
		if raw := strings.TrimSpace(h.Get(key)); raw != "" {
			return []string{raw}
		}
		return nil
	}

	var out []string
	for _, addr := range addrs {
		out = append(out, addr.String())
	}
	return out
}

// sanitize converts a byte payload to text, dropping invalid sequences.
func sanitize(b []byte) string {
	return strings.ToValidUTF8(string(b), "")
}
