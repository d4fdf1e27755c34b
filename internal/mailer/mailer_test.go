package mailer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"gopkg.in/mail.v2"

	"github.com/mmynk/invoicer/internal/apperr"
	"github.com/mmynk/invoicer/internal/models"
)

type fakeConn struct {
	sendErr error
	sent    []string
	to      [][]string
	closed  bool
}

func (c *fakeConn) Send(from string, to []string, msg io.WriterTo) error {
	if c.sendErr != nil {
		return c.sendErr
	}
	var buf bytes.Buffer
	if _, err := msg.WriteTo(&buf); err != nil {
		return err
	}
	c.sent = append(c.sent, buf.String())
	c.to = append(c.to, to)
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

type fakeDialer struct {
	conn    *fakeConn
	dialErr error
}

func (d *fakeDialer) Dial() (mail.SendCloser, error) {
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	return d.conn, nil
}

func newFakeSender(d *fakeDialer, gotTimeout *time.Duration) *Sender {
	return New(WithTimeout(5*time.Second), WithDialFunc(func(_ Credentials, timeout time.Duration) Dialer {
		if gotTimeout != nil {
			*gotTimeout = timeout
		}
		return d
	}))
}

func testInvoice(t *testing.T) Invoice {
	t.Helper()
	pdfPath := filepath.Join(t.TempDir(), "invoice_INV-9.pdf")
	if err := os.WriteFile(pdfPath, []byte("%PDF-1.3 fake"), 0644); err != nil {
		t.Fatal(err)
	}
	return Invoice{
		Snapshot: &models.Snapshot{
			InvoiceNumber: "INV-9",
			BusinessInfo:  models.Party{Name: "Acme Studio"},
			ClientInfo:    models.Party{Name: "Globex"},
		},
		PDFPath: pdfPath,
		To:      "ap@globex.test",
	}
}

var creds = Credentials{Username: "billing@acme.test", Password: "app-password"}

func TestSendInvoice(t *testing.T) {
	t.Run("default subject body and attachment", func(t *testing.T) {
		conn := &fakeConn{}
		var timeout time.Duration
		s := newFakeSender(&fakeDialer{conn: conn}, &timeout)

		if err := s.SendInvoice(context.Background(), creds, testInvoice(t)); err != nil {
			t.Fatalf("SendInvoice failed: %v", err)
		}
		if timeout != 5*time.Second {
			t.Errorf("dial timeout = %v, want 5s", timeout)
		}
		if len(conn.sent) != 1 {
			t.Fatalf("sent %d messages, want 1", len(conn.sent))
		}
		if !conn.closed {
			t.Error("connection not closed")
		}
		if len(conn.to[0]) != 1 || conn.to[0][0] != "ap@globex.test" {
			t.Errorf("recipients = %v", conn.to[0])
		}

		msg := conn.sent[0]
		for _, want := range []string{
			"Subject: Invoice #INV-9 from Acme Studio",
			"Message-ID: <",
			"@acme.test>",
			"invoice_INV-9.pdf",
			"Dear Globex,",
			"Thank you for your business! Please find attached invoice #INV-9.",
		} {
			if !strings.Contains(msg, want) {
				t.Errorf("message missing %q", want)
			}
		}
	})

	t.Run("custom subject and body", func(t *testing.T) {
		conn := &fakeConn{}
		s := newFakeSender(&fakeDialer{conn: conn}, nil)
		inv := testInvoice(t)
		inv.Subject = "Your March invoice"
		inv.Body = "Hi there"

		if err := s.SendInvoice(context.Background(), creds, inv); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(conn.sent[0], "Subject: Your March invoice") || !strings.Contains(conn.sent[0], "Hi there") {
			t.Errorf("custom content not used:\n%s", conn.sent[0])
		}
	})

	t.Run("missing pdf", func(t *testing.T) {
		s := newFakeSender(&fakeDialer{conn: &fakeConn{}}, nil)
		inv := testInvoice(t)
		inv.PDFPath = filepath.Join(t.TempDir(), "nope.pdf")
		if err := s.SendInvoice(context.Background(), creds, inv); apperr.KindOf(err) != apperr.KindNotFound {
			t.Errorf("expected NotFound, got %v", err)
		}
	})

	t.Run("missing recipient", func(t *testing.T) {
		s := newFakeSender(&fakeDialer{conn: &fakeConn{}}, nil)
		inv := testInvoice(t)
		inv.To = ""
		if err := s.SendInvoice(context.Background(), creds, inv); apperr.KindOf(err) != apperr.KindValidation {
			t.Errorf("expected validation error, got %v", err)
		}
	})

	t.Run("auth failure carries hint", func(t *testing.T) {
		d := &fakeDialer{dialErr: &textproto.Error{Code: 535, Msg: "5.7.8 Username and Password not accepted"}}
		err := newFakeSender(d, nil).SendInvoice(context.Background(), creds, testInvoice(t))
		if apperr.KindOf(err) != apperr.KindAuthFailed {
			t.Fatalf("expected AuthFailed, got %v", err)
		}
		if !strings.Contains(apperr.HintOf(err), "app password") {
			t.Errorf("hint = %q", apperr.HintOf(err))
		}
	})

	t.Run("rejected recipient", func(t *testing.T) {
		conn := &fakeConn{sendErr: &textproto.Error{Code: 550, Msg: "5.1.1 no such user"}}
		err := newFakeSender(&fakeDialer{conn: conn}, nil).SendInvoice(context.Background(), creds, testInvoice(t))
		if apperr.KindOf(err) != apperr.KindRecipientRejected {
			t.Errorf("expected RecipientRejected, got %v", err)
		}
		if !conn.closed {
			t.Error("connection must be closed after a failed send")
		}
	})

	t.Run("deadline shortens timeout", func(t *testing.T) {
		var timeout time.Duration
		s := newFakeSender(&fakeDialer{conn: &fakeConn{}}, &timeout)
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := s.SendInvoice(ctx, creds, testInvoice(t)); err != nil {
			t.Fatal(err)
		}
		if timeout > time.Second {
			t.Errorf("timeout = %v, want at most 1s", timeout)
		}
	})
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperr.Kind
	}{
		{"auth 535", &textproto.Error{Code: 535}, apperr.KindAuthFailed},
		{"auth required 530", &textproto.Error{Code: 530}, apperr.KindAuthFailed},
		{"recipient 553 wrapped in SendError", &mail.SendError{Cause: &textproto.Error{Code: 553}}, apperr.KindRecipientRejected},
		{"server closing 421", &textproto.Error{Code: 421}, apperr.KindConnectionLost},
		{"eof", io.EOF, apperr.KindConnectionLost},
		{"connection refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, apperr.KindConnectionLost},
		{"starttls unsupported", mail.StartTLSUnsupportedError{Policy: mail.MandatoryStartTLS}, apperr.KindTransport},
		{"other", errors.New("boom"), apperr.KindTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Classify("send", "INV-1", tt.err)
			if got := apperr.KindOf(err); got != tt.want {
				t.Errorf("Classify() kind = %v, want %v", got, tt.want)
			}
			if !apperr.IsTransport(err) {
				t.Error("classified errors are transport errors")
			}
		})
	}

	if Classify("send", "", nil) != nil {
		t.Error("Classify(nil) should be nil")
	}
}

func TestTestConnection(t *testing.T) {
	conn := &fakeConn{}
	if err := newFakeSender(&fakeDialer{conn: conn}, nil).TestConnection(context.Background(), creds); err != nil {
		t.Fatalf("TestConnection failed: %v", err)
	}
	if !conn.closed || len(conn.sent) != 0 {
		t.Error("connection test must close without sending")
	}

	d := &fakeDialer{dialErr: io.EOF}
	if err := newFakeSender(d, nil).TestConnection(context.Background(), creds); apperr.KindOf(err) != apperr.KindConnectionLost {
		t.Errorf("expected ConnectionLost, got %v", err)
	}
}

func TestDefaultBody(t *testing.T) {
	snap := &models.Snapshot{InvoiceNumber: "7", BusinessInfo: models.Party{Name: "Acme"}, ClientInfo: models.Party{Name: "Bob"}}
	want := "Dear Bob,\n\n" +
		"Thank you for your business! Please find attached invoice #7.\n\n" +
		"Invoice Details:\n- Invoice Number: 7\n- Business: Acme\n\n" +
		"If you have any questions about this invoice, please don't hesitate to contact us.\n\n" +
		"Best regards,\nAcme\nbilling@acme.test"
	if got := DefaultBody(snap, "billing@acme.test"); got != want {
		t.Errorf("DefaultBody() = %q, want %q", got, want)
	}
}
