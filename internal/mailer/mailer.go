package mailer

import (
	"fmt"
	"log"

	"gopkg.in/gomail.v2"
)

// Mailer dispatches the two transactional emails the auth flow needs.
// Sends are fire-and-complete: the caller awaits full success or gets the
// error back, no retry happens here.
type Mailer interface {
	SendOTP(to, otp string) error
	SendPasswordReset(to, resetURL string) error
}

type smtpMailer struct {
	host string
	port int
	user string
	pass string
	from string
}

// NewSMTP returns a Mailer that delivers through the configured SMTP relay.
func NewSMTP(host string, port int, user, pass, from string) Mailer {
	return &smtpMailer{host: host, port: port, user: user, pass: pass, from: from}
}

func (m *smtpMailer) SendOTP(to, otp string) error {
	body := fmt.Sprintf(
		"<p>Enter <b>%s</b> in the app to verify your email address.</p><p>This code expires in 1 hour.</p>",
		otp,
	)
	return m.send(to, "Verify your email", body)
}

func (m *smtpMailer) SendPasswordReset(to, resetURL string) error {
	body := fmt.Sprintf(
		"<p>We heard you lost your password. Use the link below to reset it.</p><p>This link expires in 1 hour.</p><p><a href=%q>%s</a></p>",
		resetURL, resetURL,
	)
	return m.send(to, "Password reset", body)
}

func (m *smtpMailer) send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	dialer := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send %q to %s: %w", subject, to, err)
	}
	return nil
}

type logMailer struct{}

// NewLogMailer returns a Mailer that only logs, for local development when
// SMTP is not configured.
func NewLogMailer() Mailer {
	return logMailer{}
}

func (logMailer) SendOTP(to, otp string) error {
	log.Printf("[MAIL] [INFO] (dev) OTP for %s: %s", to, otp)
	return nil
}

func (logMailer) SendPasswordReset(to, resetURL string) error {
	log.Printf("[MAIL] [INFO] (dev) password reset for %s: %s", to, resetURL)
	return nil
}
