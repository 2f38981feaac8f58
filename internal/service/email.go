package service

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"bliss-balance-backend/internal/logger"
)

type emailService struct {
	apiKey     string
	fromEmail  string
	fromName   string
	adminEmail string
}

func NewEmailService(apiKey, fromEmail, fromName, adminEmail string) EmailService {
	return &emailService{
		apiKey:     apiKey,
		fromEmail:  fromEmail,
		fromName:   fromName,
		adminEmail: adminEmail,
	}
}

func (s *emailService) send(to, toName, subject, plainText string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d, body: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *emailService) SendPurchaseReceipt(ctx context.Context, email, name, merchantName string, gross, commission int64) error {
	subject := "Purchase confirmation"
	body := fmt.Sprintf("Hello %s,\n\nYour purchase of $%d at %s was completed successfully.\n\nBest regards,\nThe BLISS Team",
		name, gross, merchantName)
	if err := s.send(email, name, subject, body); err != nil {
		logger.Warn("Failed to send purchase receipt", "email", email, "error", err)
		return err
	}
	return nil
}

func (s *emailService) SendRechargeReceipt(ctx context.Context, email, name string, amount, newBalance int64) error {
	subject := "Balance recharge confirmation"
	body := fmt.Sprintf("Hello %s,\n\nYour balance was recharged with $%d. Your new balance is $%d.\n\nBest regards,\nThe BLISS Team",
		name, amount, newBalance)
	if err := s.send(email, name, subject, body); err != nil {
		logger.Warn("Failed to send recharge receipt", "email", email, "error", err)
		return err
	}
	return nil
}

func (s *emailService) SendPayoutNotice(ctx context.Context, email, name string, amount int64) error {
	subject := "Payout processed"
	body := fmt.Sprintf("Hello %s,\n\nA payout of $%d was debited from your merchant balance.\n\nBest regards,\nThe BLISS Team",
		name, amount)
	if err := s.send(email, name, subject, body); err != nil {
		logger.Warn("Failed to send payout notice", "email", email, "error", err)
		return err
	}
	return nil
}

func (s *emailService) SendAccountDeactivatedNotice(ctx context.Context, email, name string) error {
	subject := "Account deactivated"
	body := fmt.Sprintf("Hello %s,\n\nYour BLISS account has been deactivated. Contact the administration for details.\n\nBest regards,\nThe BLISS Team",
		name)
	if err := s.send(email, name, subject, body); err != nil {
		logger.Warn("Failed to send deactivation notice", "email", email, "error", err)
		return err
	}
	return nil
}

func (s *emailService) SendAdminAlert(ctx context.Context, subject, message string) error {
	if s.adminEmail == "" {
		return nil
	}
	if err := s.send(s.adminEmail, "Administrator", subject, message); err != nil {
		logger.Warn("Failed to send admin alert", "error", err)
		return err
	}
	return nil
}
