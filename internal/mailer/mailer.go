package mailer

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"net/url"

	"github.com/microblog-app/backend/internal/config"
	"github.com/microblog-app/backend/internal/models"
)

// Mailer delivers account lifecycle emails. Delivery is fire-and-forget from
// the caller's perspective: a failed send never rolls back the token issuance
// that triggered it.
type Mailer interface {
	SendActivationEmail(user *models.User, token string) error
	SendPasswordResetEmail(user *models.User, token string) error
}

// New returns an SMTP mailer when SMTP is configured, otherwise a log-only
// mailer (development, tests).
func New(cfg *config.Config) Mailer {
	if cfg.MailEnabled {
		return &SMTPMailer{cfg: cfg}
	}
	return &LogMailer{baseURL: cfg.AppBaseURL}
}

// SMTPMailer sends emails through a plain SMTP relay.
type SMTPMailer struct {
	cfg *config.Config
}

func (m *SMTPMailer) SendActivationEmail(user *models.User, token string) error {
	link := activationLink(m.cfg.AppBaseURL, user.Email, token)
	body := fmt.Sprintf("Hi %s,\r\n\r\nWelcome! Click the link below to activate your account:\r\n\r\n%s\r\n", user.Name, link)
	return m.send(user.Email, "Account activation", body)
}

func (m *SMTPMailer) SendPasswordResetEmail(user *models.User, token string) error {
	link := resetLink(m.cfg.AppBaseURL, user.Email, token)
	body := fmt.Sprintf("Hi %s,\r\n\r\nTo reset your password click the link below:\r\n\r\n%s\r\n\r\nThis link will expire in two hours. If you did not request a password reset, please ignore this email.\r\n", user.Name, link)
	return m.send(user.Email, "Password reset", body)
}

func (m *SMTPMailer) send(to, subject, body string) error {
	msg := []byte("From: " + m.cfg.MailFrom + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body)

	addr := m.cfg.SMTPHost + ":" + m.cfg.SMTPPort
	var auth smtp.Auth
	if m.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.MailFrom, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}

// LogMailer logs the links instead of sending anything.
type LogMailer struct {
	baseURL string
}

func (m *LogMailer) SendActivationEmail(user *models.User, token string) error {
	slog.Info("activation email", "to", user.Email, "link", activationLink(m.baseURL, user.Email, token))
	return nil
}

func (m *LogMailer) SendPasswordResetEmail(user *models.User, token string) error {
	slog.Info("password reset email", "to", user.Email, "link", resetLink(m.baseURL, user.Email, token))
	return nil
}

func activationLink(baseURL, email, token string) string {
	return fmt.Sprintf("%s/api/account_activations/%s?email=%s", baseURL, token, url.QueryEscape(email))
}

func resetLink(baseURL, email, token string) string {
	return fmt.Sprintf("%s/api/password_resets/%s?email=%s", baseURL, token, url.QueryEscape(email))
}
