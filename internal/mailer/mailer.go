// internal/mailer/mailer.go
package mailer

import (
	"gopkg.in/gomail.v2"

	"github.com/saintgrid/bulkmail-backend/internal/model"
)

// Sender is the SMTP capability: a one-shot handshake check and a
// per-batch session. Credentials arrive with each call; the sender itself
// holds no state.
type Sender interface {
	Verify(cfg model.SMTPConfig) error
	Open(cfg model.SMTPConfig) (Session, error)
}

// Session is one open SMTP connection. The worker opens one per batch and
// pushes every recipient's message through it.
type Session interface {
	Send(from, to, subject, html string) error
	Close() error
}

type SMTPSender struct{}

func NewSMTPSender() *SMTPSender {
	return &SMTPSender{}
}

func dialer(cfg model.SMTPConfig) *gomail.Dialer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	// Implicit TLS on 465, otherwise the dialer negotiates STARTTLS itself.
	d.SSL = cfg.Secure()
	return d
}

// Verify performs the connectivity/auth handshake and hangs up.
func (s *SMTPSender) Verify(cfg model.SMTPConfig) error {
	sc, err := dialer(cfg).Dial()
	if err != nil {
		return err
	}
	return sc.Close()
}

// Open dials the relay and returns the live session.
func (s *SMTPSender) Open(cfg model.SMTPConfig) (Session, error) {
	sc, err := dialer(cfg).Dial()
	if err != nil {
		return nil, err
	}
	return &smtpSession{sc: sc}, nil
}

type smtpSession struct {
	sc gomail.SendCloser
}

func (s *smtpSession) Send(from, to, subject, html string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)
	return gomail.Send(s.sc, msg)
}

func (s *smtpSession) Close() error {
	return s.sc.Close()
}
