// utils/email.go
package utils

import (
	"fmt"
	"os"

	"github.com/keighl/postmark"
)

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

// SendVerificationEmail sends an email verification link to the user
func (es *EmailService) SendVerificationEmail(toEmail, token string) error {
	subject := "Verify Your Email"
	verificationLink := fmt.Sprintf("%s/verify?token=%s", os.Getenv("BASE_URL"), token)
	htmlContent := fmt.Sprintf(
		"<strong>Please verify your email by clicking on the following link:</strong> <a href=\"%s\">Verify Email</a>",
		verificationLink,
	)

	return es.SendEmail(toEmail, subject, htmlContent)
}

// SendBookingConfirmationEmail confirms a booking after payment
func (es *EmailService) SendBookingConfirmationEmail(toEmail, name, orderNo string, total float64) error {
	subject := "Booking Confirmation - HealthLab"
	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Your booking (Order No: %s) has been placed successfully. The partner lab(s) will contact you to collect samples.<br><br>Total Amount: <strong>%.2f</strong><br><br>Thank you for choosing HealthLab!",
		name, orderNo, total,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}

// SendReportReadyEmail notifies the user that a test report is available
func (es *EmailService) SendReportReadyEmail(toEmail, name, testName string) error {
	subject := "Your Report Is Ready - HealthLab"
	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>The report for <strong>%s</strong> is now available in your orders page.<br><br>Thank you for choosing HealthLab!",
		name, testName,
	)
	return es.SendEmail(toEmail, subject, htmlContent)
}

// SendQueryResponseEmail notifies the user that support answered their query
func (es *EmailService) SendQueryResponseEmail(toEmail, name, subject, response string) error {
	htmlContent := fmt.Sprintf(
		"<strong>Dear %s,</strong><br><br>Our team has responded to your query \"%s\":<br><br>%s<br><br>HealthLab Support",
		name, subject, response,
	)
	return es.SendEmail(toEmail, "Re: "+subject, htmlContent)
}
