package utils

import (
	"academy/config"
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendTemplateEmail sends a transactional email through a dynamic template.
func SendTemplateEmail(templateID, email, name string, params map[string]interface{}) error {
	if config.AppConfig.SendgridAPIKey == "" || templateID == "" {
		log.Printf("Email skipped (no API key or template): to=%s template=%s", email, templateID)
		return nil
	}

	m := mail.NewV3Mail()
	m.SetFrom(mail.NewEmail("Academy", config.AppConfig.EmailSender))
	m.SetTemplateID(templateID)

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail(name, email))
	for key, value := range params {
		p.SetDynamicTemplateData(key, value)
	}
	m.AddPersonalizations(p)

	client := sendgrid.NewSendClient(config.AppConfig.SendgridAPIKey)
	resp, err := client.Send(m)
	if err != nil {
		log.Printf("Error sending email to %s: %v", email, err)
		return err
	}
	if resp.StatusCode >= 400 {
		log.Printf("Email to %s rejected: %d %s", email, resp.StatusCode, resp.Body)
		return fmt.Errorf("email rejected with status %d", resp.StatusCode)
	}
	return nil
}

// --- Triggers ---

// SendVerificationEmail sends the account verification link after signup.
func SendVerificationEmail(email, name, token string) {
	link := config.AppConfig.FrontendBaseURL + "/verify-user/" + token
	go SendTemplateEmail(config.AppConfig.SignupTemplateID, email, name, map[string]interface{}{
		"name":             name,
		"verification_url": link,
	})
}

// SendPasswordResetEmail sends the password reset link.
func SendPasswordResetEmail(email, name, token string) {
	link := config.AppConfig.FrontendBaseURL + "/reset-password/" + token
	go SendTemplateEmail(config.AppConfig.ResetTemplateID, email, name, map[string]interface{}{
		"name":             name,
		"verification_url": link,
	})
}

// SendCertificateEmail notifies the user that a course certificate was issued.
func SendCertificateEmail(email, name, courseTitle, certificateURL string) {
	go SendTemplateEmail(config.AppConfig.CertificateTemplateID, email, name, map[string]interface{}{
		"name":            name,
		"course_title":    courseTitle,
		"certificate_url": certificateURL,
	})
}
