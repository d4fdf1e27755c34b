// Package mailer sends invoice PDFs over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/textproto"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"gopkg.in/mail.v2"

	"github.com/mmynk/invoicer/internal/apperr"
	"github.com/mmynk/invoicer/internal/models"
)

const (
	// DefaultTimeout bounds dialing plus the whole SMTP conversation.
	DefaultTimeout = 30 * time.Second

	DefaultHost = "smtp.gmail.com"
	DefaultPort = 587

	authHint = "use an app password (not your regular password) and make sure two-factor authentication is enabled for the sending account"
)

// Credentials identify the SMTP account used to send.
type Credentials struct {
	Host     string
	Port     int
	Username string
	Password string
	// From defaults to Username.
	From string
}

func (c Credentials) from() string {
	if c.From != "" {
		return c.From
	}
	return c.Username
}

func (c Credentials) withDefaults() Credentials {
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	return c
}

// Dialer opens an authenticated SMTP session. *mail.Dialer implements it.
type Dialer interface {
	Dial() (mail.SendCloser, error)
}

// DialFunc builds a Dialer for the given account and timeout.
type DialFunc func(creds Credentials, timeout time.Duration) Dialer

// SMTPDialer is the production DialFunc. STARTTLS is mandatory; port 465
// uses implicit TLS instead.
func SMTPDialer(creds Credentials, timeout time.Duration) Dialer {
	d := mail.NewDialer(creds.Host, creds.Port, creds.Username, creds.Password)
	d.Timeout = timeout
	d.StartTLSPolicy = mail.MandatoryStartTLS
	if creds.Port == 465 {
		d.SSL = true
	}
	return d
}

// Sender sends invoices. It never retries; a failed send is reported once.
type Sender struct {
	timeout time.Duration
	dial    DialFunc
	now     func() time.Time
}

// Option configures a Sender.
type Option func(*Sender)

// WithTimeout overrides DefaultTimeout. Zero or negative keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(s *Sender) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithDialFunc replaces the SMTP dialer, e.g. with a fake in tests.
func WithDialFunc(f DialFunc) Option {
	return func(s *Sender) { s.dial = f }
}

// New returns a Sender.
func New(opts ...Option) *Sender {
	s := &Sender{timeout: DefaultTimeout, dial: SMTPDialer, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Invoice is one outgoing invoice email.
type Invoice struct {
	Snapshot *models.Snapshot
	PDFPath  string
	To       string
	// Subject and Body replace the defaults when non-empty.
	Subject string
	Body    string
}

// DefaultSubject returns "Invoice #<number> from <business>".
func DefaultSubject(snap *models.Snapshot) string {
	return fmt.Sprintf("Invoice #%s from %s", snap.InvoiceNumber, snap.BusinessInfo.Name)
}

// DefaultBody returns the standard cover letter.
func DefaultBody(snap *models.Snapshot, sender string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", snap.ClientInfo.Name)
	fmt.Fprintf(&b, "Thank you for your business! Please find attached invoice #%s.\n\n", snap.InvoiceNumber)
	b.WriteString("Invoice Details:\n")
	fmt.Fprintf(&b, "- Invoice Number: %s\n", snap.InvoiceNumber)
	fmt.Fprintf(&b, "- Business: %s\n\n", snap.BusinessInfo.Name)
	b.WriteString("If you have any questions about this invoice, please don't hesitate to contact us.\n\n")
	fmt.Fprintf(&b, "Best regards,\n%s\n%s", snap.BusinessInfo.Name, sender)
	return b.String()
}

// AttachmentName is the file name the PDF carries in the email.
func AttachmentName(number string) string {
	return fmt.Sprintf("invoice_%s.pdf", number)
}

// BuildMessage assembles the email for inv.
func (s *Sender) BuildMessage(creds Credentials, inv Invoice) (*mail.Message, error) {
	snap := inv.Snapshot
	if inv.To == "" {
		return nil, apperr.Validation("recipient_email", "is required")
	}
	if _, err := os.Stat(inv.PDFPath); err != nil {
		return nil, &apperr.Error{Kind: apperr.KindNotFound, Op: "send", Key: snap.InvoiceNumber, Msg: "invoice PDF not found", Err: err}
	}

	from := creds.from()
	subject := inv.Subject
	if subject == "" {
		subject = DefaultSubject(snap)
	}
	body := inv.Body
	if body == "" {
		body = DefaultBody(snap, from)
	}

	m := mail.NewMessage()
	m.SetAddressHeader("From", from, snap.BusinessInfo.Name)
	m.SetHeader("To", inv.To)
	m.SetHeader("Subject", subject)
	m.SetHeader("Message-ID", messageID(from))
	m.SetDateHeader("Date", s.now())
	m.SetBody("text/plain", body)
	m.Attach(inv.PDFPath, mail.Rename(AttachmentName(snap.InvoiceNumber)))
	return m, nil
}

// SendInvoice emails the invoice PDF to inv.To.
func (s *Sender) SendInvoice(ctx context.Context, creds Credentials, inv Invoice) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	creds = creds.withDefaults()

	m, err := s.BuildMessage(creds, inv)
	if err != nil {
		return err
	}

	number := inv.Snapshot.InvoiceNumber
	slog.Info("Sending invoice email",
		"invoice_number", number,
		"to", inv.To,
		"smtp_host", creds.Host,
		"smtp_port", creds.Port,
	)

	start := time.Now()
	conn, err := s.dial(creds, s.budget(ctx)).Dial()
	if err != nil {
		return Classify("send", number, err)
	}
	defer conn.Close()

	if err := mail.Send(conn, m); err != nil {
		return Classify("send", number, err)
	}

	slog.Info("Invoice email sent",
		"invoice_number", number,
		"to", inv.To,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// TestConnection dials and authenticates without sending anything.
func (s *Sender) TestConnection(ctx context.Context, creds Credentials) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("test connection: %w", err)
	}
	creds = creds.withDefaults()

	conn, err := s.dial(creds, s.budget(ctx)).Dial()
	if err != nil {
		return Classify("test_connection", "", err)
	}
	if err := conn.Close(); err != nil {
		return Classify("test_connection", "", err)
	}
	slog.Info("SMTP connection test succeeded", "smtp_host", creds.Host, "username", creds.Username)
	return nil
}

// budget returns the timeout, shortened to the context deadline if sooner.
func (s *Sender) budget(ctx context.Context) time.Duration {
	timeout := s.timeout
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout {
			timeout = left
		}
	}
	return timeout
}

// Classify maps an SMTP or network failure to a transport error kind.
func Classify(op, number string, err error) error {
	if err == nil {
		return nil
	}
	cause := err
	var sendErr *mail.SendError
	if errors.As(err, &sendErr) && sendErr.Cause != nil {
		cause = sendErr.Cause
	}

	kind := apperr.KindTransport
	hint := ""

	var tpErr *textproto.Error
	var netErr net.Error
	var tlsErr mail.StartTLSUnsupportedError
	switch {
	case errors.As(cause, &tpErr):
		switch tpErr.Code {
		case 530, 534, 535, 538:
			kind, hint = apperr.KindAuthFailed, authHint
		case 550, 551, 553:
			kind = apperr.KindRecipientRejected
		case 421:
			kind = apperr.KindConnectionLost
		}
	case errors.As(cause, &tlsErr):
		kind = apperr.KindTransport
	case errors.Is(cause, io.EOF), errors.Is(cause, io.ErrUnexpectedEOF),
		errors.Is(cause, syscall.ECONNRESET), errors.Is(cause, syscall.ECONNREFUSED),
		errors.Is(cause, syscall.EPIPE), errors.Is(cause, net.ErrClosed):
		kind = apperr.KindConnectionLost
	case errors.As(cause, &netErr):
		kind = apperr.KindConnectionLost
	}

	slog.Warn("SMTP failure", "op", op, "invoice_number", number, "kind", kind.String(), "error", cause)
	return &apperr.Error{Kind: kind, Op: op, Key: number, Hint: hint, Err: cause}
}

func messageID(from string) string {
	domain := "localhost"
	if at := strings.LastIndex(from, "@"); at >= 0 && at < len(from)-1 {
		domain = from[at+1:]
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}
