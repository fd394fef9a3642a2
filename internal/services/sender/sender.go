// Package sender отправляет пользователям письма о скором окончании подписки.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/leafcare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/leafcare-backend/internal/lib/smtp"
	"github.com/magabrotheeeer/leafcare-backend/internal/models"
)

// Service читает сообщения из очереди рассылки и отправляет письма по SMTP.
type Service struct {
	transport smtp.MailTransport
	log       *slog.Logger
}

// New создает новый экземпляр Service.
func New(transport smtp.MailTransport, log *slog.Logger) *Service {
	return &Service{
		transport: transport,
		log:       log,
	}
}

// SendSubscriptionExpiryEmail отправляет письмо о скором окончании подписки.
func (s *Service) SendSubscriptionExpiryEmail(body []byte) error {
	var message models.SubscriptionExpiryInfo
	if err := json.Unmarshal(body, &message); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{message.Email}
	subject := "Уведомление о скором окончании подписки LeafCare"
	bodyText := fmt.Sprintf("Здравствуйте, %s!\n\nВаша подписка %s заканчивается %s.\n\nПродлите её заранее, чтобы не потерять доступ к диагностике растений.",
		message.Username, message.PlanName, message.EndDate.Format("02.01.2006"))

	return s.sendEmail(to, subject, bodyText)
}

func (s *Service) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.From(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() { _ = client.Close() }()

	if err := client.Mail(s.transport.From()); err != nil {
		s.log.Error("failed to set MAIL FROM", "from", s.transport.From(), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", "recipient", addr, sl.Err(err))
			return err
		}
	}

	wc, err := client.Data()
	if err != nil {
		s.log.Error("failed to get data writer", sl.Err(err))
		return err
	}

	if _, err = wc.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write email body", sl.Err(err))
		return err
	}

	if err = wc.Close(); err != nil {
		s.log.Error("failed to close data writer", sl.Err(err))
		return err
	}

	if err = client.Quit(); err != nil {
		s.log.Error("failed to quit SMTP client", sl.Err(err))
		return err
	}

	s.log.Info("email sent successfully", "to", to)
	return nil
}
