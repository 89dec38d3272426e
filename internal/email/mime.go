package email

import (
	"bytes"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Build renders msg as an RFC 5322 message. It returns the raw bytes and the
// Message-ID header value it assigned.
func Build(msg Message, now time.Time) ([]byte, string, error) {
	if len(msg.To) == 0 {
		return nil, "", fmt.Errorf("email: message has no recipient")
	}

	domain := "localhost"
	if at := strings.LastIndex(msg.From.Address, "@"); at >= 0 {
		domain = msg.From.Address[at+1:]
	}
	messageID := fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)

	var buf bytes.Buffer
	header := func(k, v string) {
		fmt.Fprintf(&buf, "%s: %s\r\n", k, v)
	}

	header("From", msg.From.String())
	header("To", strings.Join(msg.To, ", "))
	if len(msg.CC) > 0 {
		header("Cc", strings.Join(msg.CC, ", "))
	}
	if msg.ReplyTo != "" {
		header("Reply-To", msg.ReplyTo)
	}
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", now.Format(time.RFC1123Z))
	header("Message-ID", messageID)
	header("MIME-Version", "1.0")
	if msg.Priority == PriorityHigh {
		header("X-Priority", "1")
		header("Importance", "high")
	}

	keys := make([]string, 0, len(msg.Headers))
	for k := range msg.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		header(k, mime.QEncoding.Encode("utf-8", msg.Headers[k]))
	}

	switch {
	case msg.HTMLBody != "" && msg.TextBody != "":
		boundary := "alt_" + strings.ReplaceAll(uuid.NewString(), "-", "")
		header("Content-Type", fmt.Sprintf("multipart/alternative; boundary=%q", boundary))
		buf.WriteString("\r\n")
		if err := writePart(&buf, boundary, "text/plain", msg.TextBody); err != nil {
			return nil, "", err
		}
		if err := writePart(&buf, boundary, "text/html", msg.HTMLBody); err != nil {
			return nil, "", err
		}
		fmt.Fprintf(&buf, "--%s--\r\n", boundary)
	case msg.HTMLBody != "":
		if err := writeBody(&buf, "text/html", msg.HTMLBody); err != nil {
			return nil, "", err
		}
	default:
		if err := writeBody(&buf, "text/plain", msg.TextBody); err != nil {
			return nil, "", err
		}
	}

	return buf.Bytes(), messageID, nil
}

func writePart(buf *bytes.Buffer, boundary, contentType, body string) error {
	fmt.Fprintf(buf, "--%s\r\n", boundary)
	if err := writeBody(buf, contentType, body); err != nil {
		return err
	}
	buf.WriteString("\r\n")
	return nil
}

func writeBody(buf *bytes.Buffer, contentType, body string) error {
	fmt.Fprintf(buf, "Content-Type: %s; charset=UTF-8\r\n", contentType)
	buf.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")
	w := quotedprintable.NewWriter(buf)
	if _, err := w.Write([]byte(body)); err != nil {
		return fmt.Errorf("email: encode body: %w", err)
	}
	return w.Close()
}
