package notify

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"github.com/pkg/errors"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"strings"
)

const mimeBoundary = "planner-alternative-boundary"

// SMTPSender relays mail through an SMTP server, upgrading with STARTTLS
// when the server offers it.
type SMTPSender struct {
	host string
	port int
	user string
	pass string
	from mail.Address
}

func NewSMTPSender(host string, port int, user, pass, fromName, fromEmail string) *SMTPSender {
	return &SMTPSender{
		host: strings.TrimSpace(host),
		port: port,
		user: strings.TrimSpace(user),
		pass: pass,
		from: mail.Address{Name: fromName, Address: fromEmail},
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	to := strings.TrimSpace(msg.To.Email)
	if to == "" {
		return errors.New("empty recipient email")
	}

	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return errors.Wrap(err, "dial smtp")
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		_ = conn.Close()
		return errors.Wrap(err, "smtp handshake")
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err = c.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return errors.Wrap(err, "starttls")
		}
	}

	if s.user != "" {
		if err = c.Auth(smtp.PlainAuth("", s.user, s.pass, s.host)); err != nil {
			return errors.Wrap(err, "smtp auth")
		}
	}

	if err = c.Mail(s.from.Address); err != nil {
		return errors.Wrap(err, "smtp mail from")
	}
	if err = c.Rcpt(to); err != nil {
		return errors.Wrap(err, "smtp rcpt to")
	}

	w, err := c.Data()
	if err != nil {
		return errors.Wrap(err, "smtp data")
	}
	if _, err = w.Write(s.buildMessage(msg)); err != nil {
		return errors.Wrap(err, "smtp write")
	}
	if err = w.Close(); err != nil {
		return errors.Wrap(err, "smtp close data")
	}

	return c.Quit()
}

// buildMessage renders msg as a multipart/alternative MIME document.
func (s *SMTPSender) buildMessage(msg *Message) []byte {
	to := mail.Address{Name: msg.To.Name, Address: msg.To.Email}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", s.from.String())
	fmt.Fprintf(&buf, "To: %s\r\n", to.String())
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", mimeBoundary)

	fmt.Fprintf(&buf, "--%s\r\n", mimeBoundary)
	fmt.Fprintf(&buf, "Content-Type: text/plain; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&buf, "%s\r\n\r\n", msg.Text)

	fmt.Fprintf(&buf, "--%s\r\n", mimeBoundary)
	fmt.Fprintf(&buf, "Content-Type: text/html; charset=utf-8\r\n\r\n")
	fmt.Fprintf(&buf, "%s\r\n\r\n", msg.HTML)

	fmt.Fprintf(&buf, "--%s--\r\n", mimeBoundary)

	return buf.Bytes()
}
