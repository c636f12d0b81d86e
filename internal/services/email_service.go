package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendMail(ctx context.Context, to, subject, text string) error
}

type emailService struct {
	send   func(m *gomail.Message) error
	from   string
	dryRun bool
	log    *zap.Logger
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string, dryRun bool, log *zap.Logger) EmailService {
	dialer := gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword)
	return &emailService{
		send:   func(m *gomail.Message) error { return dialer.DialAndSend(m) },
		from:   fromEmail,
		dryRun: dryRun,
		log:    log,
	}
}

// newEmailServiceWithSender routes messages through s instead of SMTP.
func newEmailServiceWithSender(s gomail.Sender, fromEmail string, log *zap.Logger) *emailService {
	return &emailService{
		send: func(m *gomail.Message) error { return gomail.Send(s, m) },
		from: fromEmail,
		log:  log,
	}
}

func (s *emailService) SendMail(ctx context.Context, to, subject, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", text)

	if s.dryRun {
		s.log.Info("[mail][send] dry run, message not delivered", zap.String("to", to), zap.String("subject", subject))
		return nil
	}
	if err := s.send(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	s.log.Debug("[mail][send] delivered", zap.String("to", to))
	return nil
}
