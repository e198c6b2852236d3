// utils/email.go
package utils

import (
	"fmt"
	"os"

	"github.com/keighl/postmark"
)

// EmailSender sends transactional email. Sends are fire-and-forget from the
// caller's point of view; a failure never fails the originating request.
type EmailSender interface {
	SendWelcomeEmail(toEmail, name string) error
}

// EmailService handles sending emails using Postmark
type EmailService struct {
	client *postmark.Client
}

// NewEmailService initializes and returns a new EmailService instance
func NewEmailService() *EmailService {
	apiToken := os.Getenv("POSTMARK_API_TOKEN")
	if apiToken == "" {
		panic("POSTMARK_API_TOKEN is not set in environment variables")
	}
	client := postmark.NewClient(apiToken, "")
	return &EmailService{
		client: client,
	}
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, subject, htmlContent string) error {
	_, err := es.client.SendEmail(postmark.Email{
		From:     os.Getenv("EMAIL_SENDER"),
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: htmlContent,
	})

	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// SendWelcomeEmail greets a newly registered user
func (es *EmailService) SendWelcomeEmail(toEmail, name string) error {
	subject := "Welcome to MyStore"
	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Your account has been created successfully. Happy shopping!",
		name,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}
