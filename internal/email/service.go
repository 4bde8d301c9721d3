package email

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"text/template"

	"github.com/redmonkez12/go-blog/internal/config"
	"github.com/redmonkez12/go-blog/internal/logging"
)

// sendFunc matches smtp.SendMail
type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type Service struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	fromEmail    string
	baseURL      string
	send         sendFunc
}

func NewService(cfg config.EmailConfig) *Service {
	from := cfg.FromAddress
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Service{
		smtpHost:     cfg.SMTPHost,
		smtpPort:     cfg.SMTPPort,
		smtpUser:     cfg.SMTPUser,
		smtpPassword: cfg.SMTPPassword,
		fromEmail:    from,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		send:         smtp.SendMail,
	}
}

var registrationTemplate = template.Must(template.New("registration").Parse(
	`To create your account please visit the following link:
{{.Link}}

If you did not make this request then simply ignore this e-mail.
`))

var passwordResetTemplate = template.Must(template.New("passwordReset").Parse(
	`To reset your password visit the following link:
{{.Link}}

If you did not make this request then simply ignore this e-mail.
`))

// SendRegistrationEmail sends the account confirmation link
func (s *Service) SendRegistrationEmail(ctx context.Context, toEmail, token string) error {
	return s.sendLink(ctx, "registration", toEmail, "Register your blog account", registrationTemplate, "/verify_account/"+token)
}

// SendPasswordResetEmail sends a password reset link to the user
func (s *Service) SendPasswordResetEmail(ctx context.Context, toEmail, token string) error {
	return s.sendLink(ctx, "password reset", toEmail, "Password reset request", passwordResetTemplate, "/reset_password/"+token)
}

func (s *Service) sendLink(ctx context.Context, kind, toEmail, subject string, tmpl *template.Template, path string) error {
	logger := logging.GetLoggerFromContext(ctx)

	var body bytes.Buffer
	if err := tmpl.Execute(&body, struct{ Link string }{Link: s.baseURL + path}); err != nil {
		logger.Error("failed to render email template", "kind", kind, "error", err)
		return fmt.Errorf("render template: %w", err)
	}

	if err := s.sendEmail(toEmail, subject, body.String()); err != nil {
		logger.Error("failed to send email", "kind", kind, "email", toEmail, "error", err)
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("email sent", "kind", kind, "email", toEmail)
	return nil
}

func (s *Service) sendEmail(to, subject, body string) error {
	var auth smtp.Auth
	if s.smtpUser != "" {
		auth = smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		s.fromEmail, to, subject, strings.ReplaceAll(body, "\n", "\r\n"),
	))

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	return s.send(addr, auth, s.fromEmail, []string{to}, msg)
}
