package services

import (
	"fmt"
	"log"
	"time"

	"gopkg.in/gomail.v2"

	"numbersapi/internal/models"
)

// CodeSender delivers a verification code out-of-band.
type CodeSender interface {
	SendVerificationCode(email, code string, purpose models.Purpose, ttl time.Duration) error
}

type emailService struct {
	dialer *gomail.Dialer
	from   string
	dryRun bool
}

// NewEmailService returns an SMTP sender. With an empty host it runs in
// dry-run mode and only logs the message.
func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) CodeSender {
	if smtpHost == "" {
		return &emailService{from: fromEmail, dryRun: true}
	}
	return &emailService{
		dialer: gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword),
		from:   fromEmail,
	}
}

func (s *emailService) SendVerificationCode(email, code string, purpose models.Purpose, ttl time.Duration) error {
	subject := "Your sign-in code"
	if purpose == models.PurposeRegister {
		subject = "Confirm your registration"
	}

	if s.dryRun {
		log.Printf("[email][dry-run] to=%s subject=%q code=%s", email, subject, code)
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", subject)

	body := fmt.Sprintf(`
		<h3>%s</h3>
		<p>Your verification code is: <strong>%s</strong></p>
		<p>The code expires in %d minutes and can be used once.</p>
		<p>If you did not request it, you can ignore this email.</p>
	`, subject, code, int(ttl.Minutes()))
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}
