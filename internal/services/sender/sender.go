// Package services содержит обработку событий из очереди уведомлений:
// создание записей уведомлений и отправку писем адресатам.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/training-platform/internal/lib/sl"
	"github.com/magabrotheeeer/training-platform/internal/lib/smtp"
	"github.com/magabrotheeeer/training-platform/internal/models"
)

// NotificationRepository определяет методы хранилища, нужные воркеру уведомлений.
type NotificationRepository interface {
	// CreateNotification сохраняет уведомление и возвращает его ID.
	CreateNotification(ctx context.Context, n models.Notification) (int, error)
	// GetAccount возвращает учётную запись по UUID.
	GetAccount(ctx context.Context, accountUUID string) (*models.Account, error)
}

// SenderService превращает события очереди в уведомления и письма.
type SenderService struct {
	repo      NotificationRepository
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(repo NotificationRepository, transport smtp.TransportInterface, log *slog.Logger) *SenderService {
	return &SenderService{
		repo:      repo,
		transport: transport,
		log:       log,
	}
}

// HandleEvent обрабатывает событие очереди: для адресата с учётной записью
// создает запись уведомления, при известной почте отправляет письмо.
// События сброса пароля не сохраняются: их содержимое — одноразовый токен.
func (s *SenderService) HandleEvent(body []byte) error {
	var event models.NotificationEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal event body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	ctx := context.Background()

	if event.AccountUUID != "" && event.NType != models.NotificationResetToken {
		_, err := s.repo.CreateNotification(ctx, models.Notification{
			AccountUUID: event.AccountUUID,
			NType:       event.NType,
			Title:       event.Title,
			Message:     event.Message,
		})
		if err != nil {
			s.log.Error("failed to store notification", sl.Err(err))
			return err
		}
	}

	email := event.Email
	if email == "" && event.AccountUUID != "" {
		account, err := s.repo.GetAccount(ctx, event.AccountUUID)
		if err != nil {
			s.log.Error("failed to resolve addressee", sl.Err(err))
			return err
		}
		email = account.Email
	}
	if email == "" {
		s.log.Warn("event has no addressee email", slog.String("ntype", event.NType))
		return nil
	}

	return s.sendEmail([]string{email}, event.Title, s.bodyFor(event))
}

// bodyFor строит текст письма по типу события.
func (s *SenderService) bodyFor(event models.NotificationEvent) string {
	switch event.NType {
	case models.NotificationInvitation:
		return fmt.Sprintf("Здравствуйте!\n\nВас пригласили в компанию на платформе обучения.\n\nТокен приглашения: %s", event.Message)
	case models.NotificationResetToken:
		return fmt.Sprintf("Здравствуйте!\n\nВы запросили сброс пароля.\n\nТокен сброса: %s\n\nЕсли это были не вы, проигнорируйте письмо.", event.Message)
	default:
		return fmt.Sprintf("Здравствуйте!\n\n%s", event.Message)
	}
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
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
	defer client.Close()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("recipient", addr), sl.Err(err))
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
