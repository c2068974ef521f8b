package mailer

import (
	"fmt"
	"log"
	"net/url"
	"time"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendResetToken(toEmail, token string, expiresIn time.Duration) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
	frontendURL string
}

func NewEmailService(host string, port int, username, password, senderName, frontendURL string) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: username,
		senderName:  senderName,
		frontendURL: frontendURL,
	}
}

// ResetLink builds the frontend URL the reset email points at.
func ResetLink(frontendURL, token string) string {
	return fmt.Sprintf("%s/reset-password?token=%s", frontendURL, url.QueryEscape(token))
}

func (s *emailService) SendResetToken(toEmail, token string, expiresIn time.Duration) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Reset your CouncellorX password")

	resetLink := ResetLink(s.frontendURL, token)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Password Reset Request</h2>
			<p>We received a request to reset your password. Click the button below to continue:</p>
			<a href="%s" style="background-color: #1F3A5F; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Reset Password</a>
			<p>Or copy this link:</p>
			<p>%s</p>
			<p>This link will expire in %d minutes.</p>
			<p>If you didn't request this, you can ignore this email.</p>
		</div>
	`, resetLink, resetLink, int(expiresIn.Minutes()))

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		log.Printf("[MAILER ERROR] Failed to send reset token to %s: %v", toEmail, err)
		return err
	}

	log.Printf("[MAILER] Reset token sent to %s", toEmail)
	return nil
}
