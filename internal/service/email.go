package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"

	"github.com/dreamwise/dreamwise/internal/model"
)

// Mailer delivers account emails. Delivery failures never undo the
// operation that triggered them.
type Mailer interface {
	SendVerificationCode(ctx context.Context, email, code string, purpose model.Purpose, ttl time.Duration) error
	SendWelcomeEmail(ctx context.Context, email, username string) error
	SendPasswordChangedEmail(ctx context.Context, email, username string) error
}

type EmailService struct {
	client    *resend.Client
	fromEmail string
	isDev     bool
	appURL    string
	appName   string
}

func NewEmailService(apiKey, fromEmail, appURL, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		isDev:     isDev,
		appURL:    appURL,
		appName:   appName,
	}
}

func (s *EmailService) SendVerificationCode(ctx context.Context, email, code string, purpose model.Purpose, ttl time.Duration) error {
	subject, body := verificationCodeEmailTemplate(code, purpose, ttl, s.appName)

	if s.isDev {
		// Dev mode prints the code so flows can be completed without a mail provider
		slog.Info("email sent (dev mode)", "type", "verification_code", "purpose", purpose, "to", email, "code", code)
		return nil
	}

	return s.send(ctx, "verification_code", email, subject, body)
}

func (s *EmailService) SendWelcomeEmail(ctx context.Context, email, username string) error {
	subject, body := welcomeEmailTemplate(username, s.appURL, s.appName)

	if s.isDev {
		slog.Info("email sent (dev mode)", "type", "welcome", "to", email, "subject", subject)
		return nil
	}

	return s.send(ctx, "welcome", email, subject, body)
}

func (s *EmailService) SendPasswordChangedEmail(ctx context.Context, email, username string) error {
	subject, body := passwordChangedEmailTemplate(username, s.appName)

	if s.isDev {
		slog.Info("email sent (dev mode)", "type", "password_changed", "to", email, "subject", subject)
		return nil
	}

	return s.send(ctx, "password_changed", email, subject, body)
}

func (s *EmailService) send(ctx context.Context, kind, to, subject, body string) error {
	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send %s email: %w", kind, err)
	}

	slog.Info("email sent", "type", kind, "to", to)
	return nil
}
