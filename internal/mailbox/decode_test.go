package mailbox

import (
	"strings"
	"testing"
)

// crlf joins lines with CRLF so raw fixtures read like wire messages.
func crlf(lines ...string) []byte {
	return []byte(strings.Join(lines, "\r\n"))
}

func TestDecodeSimpleMessage(t *testing.T) {
	raw := crlf(
		"From: Alice <alice@example.com>",
		"To: bob@example.com",
		"Cc: carol@example.com",
		"Subject: Hello",
		"Message-ID: <abc123@example.com>",
		"Date: Mon, 02 Jan 2006 15:04:05 -0700",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"Just checking in.",
	)

	d := Decode(raw)

	if d.Subject != "Hello" {
		t.Errorf("Subject = %q, want Hello", d.Subject)
	}
	if !strings.Contains(d.Sender, "alice@example.com") {
		t.Errorf("Sender = %q, want alice address", d.Sender)
	}
	if len(d.To) != 1 || !strings.Contains(d.To[0], "bob@example.com") {
		t.Errorf("To = %v, want bob address", d.To)
	}
	if len(d.Cc) != 1 {
		t.Errorf("Cc = %v, want one entry", d.Cc)
	}
	if d.MessageID != "abc123@example.com" {
		t.Errorf("MessageID = %q, want abc123@example.com", d.MessageID)
	}
	if d.Date.IsZero() {
		t.Error("Date is zero, want parsed header date")
	}
	if !strings.Contains(d.BodyText, "Just checking in.") {
		t.Errorf("BodyText = %q, want body", d.BodyText)
	}
	if d.BodyHTML != "" {
		t.Errorf("BodyHTML = %q, want empty", d.BodyHTML)
	}
	if got := d.Headers["Subject"]; got != "Hello" {
		t.Errorf("Headers[Subject] = %q, want Hello", got)
	}
}

func TestDecodeEncodedWordSubject(t *testing.T) {
	raw := crlf(
		"From: alice@example.com",
		"Subject: =?UTF-8?Q?H=C3=A9llo_there?=",
		"Content-Type: text/plain",
		"",
		"hi",
	)

	d := Decode(raw)
	if d.Subject != "Héllo there" {
		t.Errorf("Subject = %q, want decoded encoded-word", d.Subject)
	}
}

func TestDecodeUnparseableDateYieldsZero(t *testing.T) {
	raw := crlf(
		"From: alice@example.com",
		"Subject: x",
		"Date: not a real date",
		"Content-Type: text/plain",
		"",
		"hi",
	)

	d := Decode(raw)
	if !d.Date.IsZero() {
		t.Errorf("Date = %v, want zero time for unparseable header", d.Date)
	}
}

func TestDecodeMultipartLastPlainPartWins(t *testing.T) {
	raw := crlf(
		"From: alice@example.com",
		"Subject: multi",
		"MIME-Version: 1.0",
		`Content-Type: multipart/mixed; boundary="BOUNDARY"`,
		"",
		"--BOUNDARY",
		"Content-Type: text/plain",
		"",
		"first part",
		"--BOUNDARY",
		"Content-Type: text/html",
		"",
		"<p>html part</p>",
		"--BOUNDARY",
		"Content-Type: text/plain",
		"",
		"second part",
		"--BOUNDARY--",
		"",
	)

	d := Decode(raw)
	if !strings.Contains(d.BodyText, "second part") {
		t.Errorf("BodyText = %q, want the last text/plain part", d.BodyText)
	}
	if strings.Contains(d.BodyText, "first part") {
		t.Errorf("BodyText = %q, first part should have been overwritten", d.BodyText)
	}
	if !strings.Contains(d.BodyHTML, "html part") {
		t.Errorf("BodyHTML = %q, want html part", d.BodyHTML)
	}
}

func TestDecodeAttachmentsIgnored(t *testing.T) {
	raw := crlf(
		"From: alice@example.com",
		"Subject: with attachment",
		"MIME-Version: 1.0",
		`Content-Type: multipart/mixed; boundary="BOUNDARY"`,
		"",
		"--BOUNDARY",
		"Content-Type: text/plain",
		"",
		"body here",
		"--BOUNDARY",
		"Content-Type: text/plain",
		`Content-Disposition: attachment; filename="notes.txt"`,
		"",
		"attached text",
		"--BOUNDARY--",
		"",
	)

	d := Decode(raw)
	if !strings.Contains(d.BodyText, "body here") {
		t.Errorf("BodyText = %q, want inline part", d.BodyText)
	}
	if strings.Contains(d.BodyText, "attached text") {
		t.Errorf("BodyText = %q, attachment must not win", d.BodyText)
	}
}

func TestDecodeSinglePartNonTextTypeYieldsBodyText(t *testing.T) {
	raw := crlf(
		"From: alice@example.com",
		"Subject: payload",
		"Content-Type: application/json",
		"",
		`{"kind":"ping"}`,
	)

	d := Decode(raw)
	if !strings.Contains(d.BodyText, `"kind":"ping"`) {
		t.Errorf("BodyText = %q, want single-part payload regardless of type", d.BodyText)
	}
	if d.BodyHTML != "" {
		t.Errorf("BodyHTML = %q, want empty", d.BodyHTML)
	}
}

func TestDecodeMultipartIgnoresOtherTextTypes(t *testing.T) {
	raw := crlf(
		"From: alice@example.com",
		"Subject: report",
		"MIME-Version: 1.0",
		`Content-Type: multipart/mixed; boundary="BOUNDARY"`,
		"",
		"--BOUNDARY",
		"Content-Type: text/plain",
		"",
		"summary here",
		"--BOUNDARY",
		"Content-Type: text/csv",
		"",
		"a,b,c",
		"--BOUNDARY--",
		"",
	)

	d := Decode(raw)
	if !strings.Contains(d.BodyText, "summary here") {
		t.Errorf("BodyText = %q, want the text/plain part", d.BodyText)
	}
	if strings.Contains(d.BodyText, "a,b,c") {
		t.Errorf("BodyText = %q, a text/csv part must not win the body", d.BodyText)
	}
}

func TestDecodeGarbageFallsBackToPlainText(t *testing.T) {
	d := Decode([]byte("not an rfc822 message at all"))
	if d.BodyText == "" {
		t.Error("BodyText empty, want raw payload fallback")
	}
}

func TestBestBodyPrefersText(t *testing.T) {
	d := &Decoded{BodyText: "plain", BodyHTML: "<p>html</p>"}
	if d.BestBody() != "plain" {
		t.Errorf("BestBody = %q, want plain", d.BestBody())
	}
	d = &Decoded{BodyHTML: "<p>html</p>"}
	if d.BestBody() != "<p>html</p>" {
		t.Errorf("BestBody = %q, want html fallback", d.BestBody())
	}
}
