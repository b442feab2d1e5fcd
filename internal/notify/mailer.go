// Package notify renders and sends callback confirmation emails. Delivery is
// best effort: failures are logged and counted, never returned to callers
// of the intake pipeline.
package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	_ "embed"
	"errors"
	"fmt"
	"html"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"support-intake-go/internal/config"
	"support-intake-go/internal/logger"
	"support-intake-go/internal/types"
)

//go:embed templates/email_template.html
var emailTemplate string

// ErrNotConfigured is returned by Send when sender credentials or
// recipients are missing.
var ErrNotConfigured = errors.New("mail transport not configured")

// Notification is one email to the support recipients.
type Notification struct {
	Subject  string
	BodyHTML string
	Schedule *types.Schedule
}

// Sender delivers notifications.
type Sender interface {
	Send(ctx context.Context, n Notification) error
}

// Render substitutes the body and the optional schedule block into the
// email template.
func Render(bodyHTML string, s *types.Schedule) string {
	out := strings.ReplaceAll(emailTemplate, "{{EMAIL_BODY}}", bodyHTML)
	details := ""
	if s != nil {
		details = fmt.Sprintf(`<div style="background-color: #f5f5f5; padding: 15px; margin: 20px 0; border-left: 4px solid #4CAF50;">
  <h3>Your Callback Details:</h3>
  <p><strong>Date:</strong> %s</p>
  <p><strong>Time:</strong> %s</p>
  <p><strong>Priority:</strong> %s</p>
  <p><strong>Reference ID:</strong> %s</p>
</div>`, html.EscapeString(s.Date), html.EscapeString(s.Time),
			html.EscapeString(string(s.Priority)), html.EscapeString(s.ID))
	}
	return strings.ReplaceAll(out, "{{SCHEDULE_DETAILS}}", details)
}

// CallbackBody builds the HTML fragment for a scheduled callback. label is
// what the original input is called in the email ("Original Transcription"
// for audio, "Your message" for chat). User-supplied text is escaped.
func CallbackBody(reply, label, original string) string {
	return fmt.Sprintf("<p>Dear Customer,</p><p>%s</p><p>We have scheduled a callback for you.</p><p>%s: %s</p>",
		html.EscapeString(reply), label, html.EscapeString(original))
}

// dialFunc opens the implicit-TLS connection; replaced in tests.
type dialFunc func(ctx context.Context, addr string, cfg *tls.Config) (net.Conn, error)

// SMTPMailer sends through an implicit-TLS SMTP server with PLAIN auth.
type SMTPMailer struct {
	host       string
	port       int
	sender     string
	password   string
	recipients []string
	tlsConfig  *tls.Config
	dial       dialFunc
	now        func() time.Time
	log        *logger.Logger
}

func NewSMTPMailer(cfg config.MailConfig, log *logger.Logger) *SMTPMailer {
	return &SMTPMailer{
		host:       cfg.Host,
		port:       cfg.Port,
		sender:     cfg.Sender,
		password:   cfg.Password,
		recipients: cfg.Recipients,
		tlsConfig:  &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12},
		dial: func(ctx context.Context, addr string, c *tls.Config) (net.Conn, error) {
			d := &tls.Dialer{Config: c}
			return d.DialContext(ctx, "tcp", addr)
		},
		now: time.Now,
		log: log.Component("mailer"),
	}
}

// Configured reports whether Send can attempt delivery.
func (m *SMTPMailer) Configured() bool {
	return m.sender != "" && m.password != "" && len(m.recipients) > 0
}

func (m *SMTPMailer) Send(ctx context.Context, n Notification) error {
	if !m.Configured() {
		return ErrNotConfigured
	}
	msg, err := buildMessage(m.sender, m.recipients, n.Subject, Render(n.BodyHTML, n.Schedule), m.now())
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}

	addr := net.JoinHostPort(m.host, strconv.Itoa(m.port))
	conn, err := m.dial(ctx, addr, m.tlsConfig)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}
	c, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer c.Close()

	if err := c.Auth(smtp.PlainAuth("", m.sender, m.password, m.host)); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := c.Mail(m.sender); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	for _, r := range m.recipients {
		if err := c.Rcpt(r); err != nil {
			return fmt.Errorf("smtp RCPT TO %s: %w", r, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp end data: %w", err)
	}
	if err := c.Quit(); err != nil {
		m.log.WithError(err).Debug("smtp quit")
	}
	return nil
}

// buildMessage returns an RFC 5322 message with a single quoted-printable
// HTML part. Non-ASCII subjects are RFC 2047 encoded.
func buildMessage(from string, to []string, subject, htmlBody string, now time.Time) ([]byte, error) {
	var b bytes.Buffer
	header := func(k, v string) { b.WriteString(k + ": " + v + "\r\n") }
	header("From", from)
	header("To", strings.Join(to, ", "))
	header("Subject", mime.QEncoding.Encode("utf-8", subject))
	header("Date", now.Format(time.RFC1123Z))
	header("Message-ID", "<"+uuid.NewString()+"@"+senderDomain(from)+">")
	header("MIME-Version", "1.0")
	header("Content-Type", `text/html; charset="UTF-8"`)
	header("Content-Transfer-Encoding", "quoted-printable")
	b.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&b)
	if _, err := qp.Write([]byte(htmlBody)); err != nil {
		return nil, err
	}
	if err := qp.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

func senderDomain(addr string) string {
	if i := strings.LastIndex(addr, "@"); i >= 0 && i < len(addr)-1 {
		return strings.Trim(addr[i+1:], "> ")
	}
	return "localhost"
}
