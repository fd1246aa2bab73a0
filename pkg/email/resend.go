package email

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/resendlabs/resend-go"
	"go.uber.org/zap"
)

type EmailService struct {
	client       *resend.Client
	from         string
	fromName     string
	templatesDir string
	log          *zap.Logger
}

func NewEmailService(log *zap.Logger) *EmailService {
	if log == nil {
		log = zap.NewNop()
	}
	return &EmailService{
		client:       resend.NewClient(os.Getenv("RESEND_API_KEY")),
		from:         os.Getenv("EMAIL_FROM_ADDRESS"),
		fromName:     os.Getenv("EMAIL_FROM_NAME"),
		templatesDir: "pkg/email/templates",
		log:          log,
	}
}

func (s *EmailService) SendWelcomeEmail(email, fullName string) error {
	html, err := s.parseTemplate("welcome.html", map[string]interface{}{
		"FullName": fullName,
		"Email":    email,
		"Year":     time.Now().Year(),
	})
	if err != nil {
		return err
	}
	return s.send(email, "Welcome to Kadraly!", html)
}

func (s *EmailService) SendPasswordResetEmail(email, resetToken string) error {
	html, err := s.parseTemplate("reset-password.html", map[string]interface{}{
		"ResetLink": os.Getenv("FRONTEND_URL") + "/reset-password?token=" + resetToken,
		"Email":     email,
		"Year":      time.Now().Year(),
	})
	if err != nil {
		return err
	}
	return s.send(email, "Reset Your Password - Kadraly", html)
}

func (s *EmailService) SendEmailChangeEmail(newEmail, token string) error {
	html, err := s.parseTemplate("verify-email.html", map[string]interface{}{
		"VerifyLink": os.Getenv("FRONTEND_URL") + "/verify-email?token=" + token,
		"Email":      newEmail,
		"Year":       time.Now().Year(),
	})
	if err != nil {
		return err
	}
	return s.send(newEmail, "Confirm Your New Email - Kadraly", html)
}

func (s *EmailService) send(to, subject, html string) error {
	resp, err := s.client.Emails.Send(&resend.SendEmailRequest{
		From:    s.fromName + " <" + s.from + ">",
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		s.log.Error("failed to send email", zap.String("to", to), zap.String("subject", subject), zap.Error(err))
		return err
	}
	s.log.Info("email sent", zap.String("to", to), zap.String("subject", subject), zap.String("id", resp.Id))
	return nil
}

func (s *EmailService) parseTemplate(name string, data interface{}) (string, error) {
	tmpl, err := template.ParseFiles(filepath.Join(s.templatesDir, name))
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return body.String(), nil
}
