// Package mailer delivers carrier images as e-mail attachments over an
// implicit-TLS SMTP connection.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"mime"
	"net"
	"net/smtp"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/rs/zerolog"
)

var (
	// ErrTransport wraps network and protocol failures while talking to the server.
	ErrTransport = errors.New("mail transport failure")
	// ErrAuth wraps credential lookup and SMTP authentication failures.
	ErrAuth = errors.New("mail authentication failed")
	// ErrInvalidMessage is returned before any connection is made.
	ErrInvalidMessage = errors.New("invalid mail message")
)

// DialFunc opens the connection to the SMTP server.
type DialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

type Config struct {
	Host     string
	Port     int
	Username string
	Password Secret
	Timeout  time.Duration
}

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Message struct {
	From        string
	To          []string
	Subject     string
	Body        string
	Attachments []Attachment
}

type Mailer struct {
	cfg    Config
	dial   DialFunc
	logger zerolog.Logger
}

type Option func(*Mailer)

// WithDialer replaces the default TLS dialer.
func WithDialer(dial DialFunc) Option {
	return func(m *Mailer) {
		m.dial = dial
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(m *Mailer) {
		m.logger = logger
	}
}

func New(cfg Config, opts ...Option) *Mailer {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	m := &Mailer{cfg: cfg, logger: zerolog.Nop()}
	m.dial = m.dialTLS
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Mailer) dialTLS(ctx context.Context, network, addr string) (net.Conn, error) {
	d := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: m.cfg.Timeout},
		Config: &tls.Config{
			ServerName: m.cfg.Host,
			MinVersion: tls.VersionTLS12,
		},
	}
	return d.DialContext(ctx, network, addr)
}

// AttachFile reads path into an attachment, guessing its content type from
// the extension.
func AttachFile(path string) (Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Attachment{}, err
	}
	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return Attachment{
		Filename:    filepath.Base(path),
		ContentType: contentType,
		Data:        data,
	}, nil
}

func (msg *Message) validate() error {
	if msg.From == "" {
		return fmt.Errorf("%w: sender address is required", ErrInvalidMessage)
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("%w: at least one recipient is required", ErrInvalidMessage)
	}
	for _, addr := range append([]string{msg.From}, msg.To...) {
		if _, err := mail.ParseAddress(addr); err != nil {
			return fmt.Errorf("%w: %q: %v", ErrInvalidMessage, addr, err)
		}
	}
	return nil
}

// Build writes msg as a multipart MIME message: a plain text part followed by
// the attachments.
func Build(w io.Writer, msg *Message) error {
	if err := msg.validate(); err != nil {
		return err
	}

	var h mail.Header
	h.SetDate(time.Now())
	h.SetSubject(msg.Subject)
	h.SetAddressList("From", []*mail.Address{{Address: msg.From}})
	to := make([]*mail.Address, 0, len(msg.To))
	for _, addr := range msg.To {
		to = append(to, &mail.Address{Address: addr})
	}
	h.SetAddressList("To", to)

	mw, err := mail.CreateWriter(w, h)
	if err != nil {
		return err
	}

	tw, err := mw.CreateInline()
	if err != nil {
		return err
	}
	var th mail.InlineHeader
	th.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	th.Set("Content-Transfer-Encoding", "quoted-printable")
	pw, err := tw.CreatePart(th)
	if err != nil {
		return err
	}
	if _, err := io.WriteString(pw, msg.Body); err != nil {
		return err
	}
	if err := pw.Close(); err != nil {
		return err
	}
	if err := tw.Close(); err != nil {
		return err
	}

	for _, a := range msg.Attachments {
		var ah mail.AttachmentHeader
		ah.SetContentType(a.ContentType, nil)
		ah.Set("Content-Transfer-Encoding", "base64")
		ah.SetFilename(a.Filename)
		aw, err := mw.CreateAttachment(ah)
		if err != nil {
			return err
		}
		if _, err := aw.Write(a.Data); err != nil {
			return err
		}
		if err := aw.Close(); err != nil {
			return err
		}
	}

	return mw.Close()
}

// Send delivers msg. Authentication happens only when a username is set.
func (m *Mailer) Send(ctx context.Context, msg *Message) error {
	var body bytes.Buffer
	if err := Build(&body, msg); err != nil {
		return err
	}

	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	m.logger.Debug().Str("server", addr).Strs("to", msg.To).Msg("Connecting to mail server")

	conn, err := m.dial(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %v", ErrTransport, addr, err)
	}
	deadline := time.Now().Add(m.cfg.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetDeadline(deadline)
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer c.Close()

	if m.cfg.Username != "" {
		if err := m.authenticate(c); err != nil {
			return err
		}
	}

	if err := c.Mail(msg.From); err != nil {
		return fmt.Errorf("%w: MAIL FROM: %v", ErrTransport, err)
	}
	for _, rcpt := range msg.To {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("%w: RCPT TO %s: %v", ErrTransport, rcpt, err)
		}
	}

	size := body.Len()
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("%w: DATA: %v", ErrTransport, err)
	}
	if _, err := body.WriteTo(w); err != nil {
		return fmt.Errorf("%w: writing message: %v", ErrTransport, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%w: message rejected: %v", ErrTransport, err)
	}
	if err := c.Quit(); err != nil {
		return fmt.Errorf("%w: QUIT: %v", ErrTransport, err)
	}

	m.logger.Info().Strs("to", msg.To).Int("bytes", size).Msg("Mail delivered")
	return nil
}

func (m *Mailer) authenticate(c *smtp.Client) error {
	if m.cfg.Password == nil {
		return fmt.Errorf("%w: %w", ErrAuth, ErrNoSecret)
	}
	password, err := m.cfg.Password.Resolve()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAuth, err)
	}
	auth := smtp.PlainAuth("", m.cfg.Username, string(password), m.cfg.Host)
	Wipe(password)

	if err := c.Auth(auth); err != nil {
		return fmt.Errorf("%w: %v", ErrAuth, err)
	}
	return nil
}
