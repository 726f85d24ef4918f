package notify

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	"github.com/wolfman30/clinic-booking-webhook/pkg/logging"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPConfig holds configuration for a plain SMTP relay.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTPSender sends multipart emails through an SMTP relay.
type SMTPSender struct {
	addr     string
	auth     smtp.Auth
	from     string
	fromName string
	sendMail sendMailFunc
	logger   *logging.Logger
}

// NewSMTPSender returns nil when no host is configured.
func NewSMTPSender(cfg SMTPConfig, logger *logging.Logger) *SMTPSender {
	if cfg.Host == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.FromName == "" {
		cfg.FromName = DefaultFromName
	}
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	var auth smtp.Auth
	if cfg.Username != "" {
		auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return &SMTPSender{
		addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		auth:     auth,
		from:     cfg.From,
		fromName: cfg.FromName,
		sendMail: smtp.SendMail,
		logger:   logger,
	}
}

// Send sends an email via SMTP. net/smtp has no context support, so ctx is
// only checked before dialling.
func (s *SMTPSender) Send(ctx context.Context, msg EmailMessage) error {
	if s.from == "" {
		return fmt.Errorf("notify: smtp sender address: %w", ErrMissingCredentials)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := s.compose(msg)
	if err != nil {
		return fmt.Errorf("notify: smtp compose: %w", err)
	}
	if err := s.sendMail(s.addr, s.auth, s.from, []string{msg.To}, raw); err != nil {
		s.logger.Error("smtp send failed", "error", err, "to", msg.To, "addr", s.addr)
		return fmt.Errorf("notify: smtp send failed: %w", err)
	}
	s.logger.Info("email sent via smtp", "to", msg.To, "subject", msg.Subject)
	return nil
}

func (s *SMTPSender) compose(msg EmailMessage) ([]byte, error) {
	var buf bytes.Buffer
	from := mail.Address{Name: s.fromName, Address: s.from}
	to := mail.Address{Name: msg.ToName, Address: msg.To}

	fmt.Fprintf(&buf, "From: %s\r\n", from.String())
	fmt.Fprintf(&buf, "To: %s\r\n", to.String())
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123Z))
	buf.WriteString("MIME-Version: 1.0\r\n")

	mw := multipart.NewWriter(&buf)
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", mw.Boundary())

	parts := []struct {
		contentType string
		body        string
	}{{"text/plain", msg.Body}}
	if msg.HTML != "" {
		parts = append(parts, struct {
			contentType string
			body        string
		}{"text/html", msg.HTML})
	}
	for _, p := range parts {
		header := textproto.MIMEHeader{}
		header.Set("Content-Type", p.contentType+"; charset=UTF-8")
		header.Set("Content-Transfer-Encoding", "quoted-printable")
		w, err := mw.CreatePart(header)
		if err != nil {
			return nil, err
		}
		qp := quotedprintable.NewWriter(w)
		if _, err := qp.Write([]byte(p.body)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
