package mailbox

import (
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"mime"
	"net/smtp"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Sender sends application emails over SMTP with STARTTLS, optionally
// attaching a PDF resume.
type Sender struct {
	server   string
	port     int
	account  string
	password string
	logger   *zap.Logger
}

// NewSender creates an SMTP sender for the given account.
func NewSender(server string, port int, account, password string, logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sender{
		server:   server,
		port:     port,
		account:  account,
		password: password,
		logger:   logger,
	}
}

// Send delivers a plain-text message to a single recipient. When pdfPath is
// non-empty the file is attached as application/pdf.
func (s *Sender) Send(to, subject, body, pdfPath string) error {
	var attachment []byte
	if pdfPath != "" {
		data, err := os.ReadFile(pdfPath)
		if err != nil {
			return fmt.Errorf("reading attachment %q: %w", pdfPath, err)
		}
		attachment = data
	}

	message := s.buildMessage(to, subject, body, filepath.Base(pdfPath), attachment)

	addr := fmt.Sprintf("%s:%d", s.server, s.port)
	c, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", addr, err)
	}
	defer c.Close()

	if err := c.StartTLS(&tls.Config{ServerName: s.server}); err != nil {
		return fmt.Errorf("starttls: %w", err)
	}

	auth := smtp.PlainAuth("", s.account, s.password, s.server)
	if err := c.Auth(auth); err != nil {
		return fmt.Errorf("auth for %s: %w", s.account, err)
	}

	if err := c.Mail(s.account); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("rcpt to %s: %w", to, err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write([]byte(message)); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing message: %w", err)
	}

	s.logger.Info("email sent",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.Bool("attachment", attachment != nil),
	)

	return c.Quit()
}

// buildMessage renders the MIME message. With an attachment the message is
// multipart/mixed; without one it is a simple text/plain message.
func (s *Sender) buildMessage(to, subject, body, filename string, attachment []byte) string {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\r\n", s.account)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")

	if attachment == nil {
		b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
		b.WriteString("\r\n")
		b.WriteString(body)
		return b.String()
	}

	boundary := fmt.Sprintf("breadfinder-%d", time.Now().UnixNano())
	fmt.Fprintf(&b, "Content-Type: multipart/mixed; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: application/pdf\r\n")
	b.WriteString("Content-Transfer-Encoding: base64\r\n")
	fmt.Fprintf(&b, "Content-Disposition: attachment; filename=%q\r\n", filename)
	b.WriteString("\r\n")

	encoded := base64.StdEncoding.EncodeToString(attachment)
	for len(encoded) > 76 {
		b.WriteString(encoded[:76])
		b.WriteString("\r\n")
		encoded = encoded[76:]
	}
	b.WriteString(encoded)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return b.String()
}
