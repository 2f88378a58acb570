// Package services содержит бизнес-логику уведомлений: просмотр,
// отметку о прочтении и скрытие. Все действия закреплены за адресатом.
package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/magabrotheeeer/training-platform/internal/authz"
	"github.com/magabrotheeeer/training-platform/internal/errs"
	"github.com/magabrotheeeer/training-platform/internal/lib/sl"
	"github.com/magabrotheeeer/training-platform/internal/metrics"
	"github.com/magabrotheeeer/training-platform/internal/models"
)

// NotificationRepository определяет методы для работы с уведомлениями в хранилище.
type NotificationRepository interface {
	// GetNotification возвращает уведомление по ID.
	GetNotification(ctx context.Context, id int) (*models.Notification, error)
	// ListNotifications возвращает уведомления учётной записи.
	ListNotifications(ctx context.Context, accountUUID string) ([]*models.Notification, error)
	// MarkNotificationRead отмечает уведомление прочитанным.
	MarkNotificationRead(ctx context.Context, id int) error
	// DeleteNotification удаляет уведомление.
	DeleteNotification(ctx context.Context, id int) error
}

// NotificationService реализует бизнес-логику уведомлений.
type NotificationService struct {
	repo NotificationRepository
	log  *slog.Logger
}

// NewNotificationService создает новый экземпляр NotificationService.
func NewNotificationService(repo NotificationRepository, log *slog.Logger) *NotificationService {
	return &NotificationService{
		repo: repo,
		log:  log,
	}
}

// List возвращает уведомления актора.
func (s *NotificationService) List(ctx context.Context, actor authz.Actor) ([]*models.Notification, error) {
	return s.repo.ListNotifications(ctx, actor.UUID)
}

// MarkRead отмечает уведомление прочитанным. Доступно только адресату.
func (s *NotificationService) MarkRead(ctx context.Context, actor authz.Actor, id int) error {
	if err := s.decideAddressee(ctx, actor, authz.ActionNotificationRead, id); err != nil {
		return err
	}
	return s.repo.MarkNotificationRead(ctx, id)
}

// Dismiss скрывает уведомление. Доступно только адресату.
func (s *NotificationService) Dismiss(ctx context.Context, actor authz.Actor, id int) error {
	if err := s.decideAddressee(ctx, actor, authz.ActionNotificationDismiss, id); err != nil {
		return err
	}
	return s.repo.DeleteNotification(ctx, id)
}

// decideAddressee проверяет действие, закреплённое за адресатом уведомления.
func (s *NotificationService) decideAddressee(ctx context.Context, actor authz.Actor, action authz.Action, id int) error {
	notification, err := s.repo.GetNotification(ctx, id)
	res := authz.Resource{Kind: "notification", Missing: errors.Is(err, errs.ErrNotFound)}
	if err != nil && !res.Missing {
		return err
	}
	if notification != nil {
		res.OwnerUUID = notification.AccountUUID
	}

	if d := authz.Decide(actor, action, res); !d.Allowed {
		s.log.Warn("access denied", sl.Reason(string(d.Reason)))
		metrics.RecordDenial(string(d.Reason))
		return d.Err()
	}
	return nil
}
