// Package mail sends the student-ID notification email after registration.
//
// Delivery is strictly best-effort: registration has already committed by
// the time Send is called, and the generated ID is also returned in the
// HTTP response, so a delivery failure is logged and reported to the client
// as emailSent:false — never as an error that undoes the account.
package mail

import (
	"fmt"
	"log/slog"

	gomail "gopkg.in/gomail.v2"
)

// Config holds the SMTP settings, typically from SMTP_* env vars.
// An empty Host disables sending entirely (local development default).
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends transactional mail over SMTP.
type Mailer struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Mailer. When cfg.Host is empty the mailer is disabled:
// Send logs and reports failure without attempting a connection.
func New(cfg Config, logger *slog.Logger) *Mailer {
	if cfg.Host == "" {
		logger.Warn("SMTP host not configured — student ID emails are disabled")
	}
	return &Mailer{cfg: cfg, logger: logger}
}

// Enabled reports whether the mailer has SMTP settings to work with.
func (m *Mailer) Enabled() bool {
	return m.cfg.Host != ""
}

// SendStudentID emails the newly generated student identifier to a fresh
// registrant. Returns an error on delivery failure; callers treat that as
// non-fatal.
func (m *Mailer) SendStudentID(to, username, studentID string) error {
	if !m.Enabled() {
		return fmt.Errorf("mail: SMTP is not configured")
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Your Student Records Account")
	msg.SetBody("text/html", fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
			<h2>Student Records</h2>
			<p>Hello %s,</p>
			<p>Your account has been created. Your student ID is:</p>
			<h3>%s</h3>
			<p>Keep this ID safe — you will need it to find your dashboard
			and to recover your account.</p>
			<p style="color: #6c757d; font-size: 12px;">
				This is an automated message. Please do not reply.
			</p>
		</div>`, username, studentID))

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("mail: sending student ID to %s: %w", to, err)
	}

	m.logger.Info("student ID email sent",
		slog.String("to", to),
		slog.String("studentID", studentID),
	)
	return nil
}
