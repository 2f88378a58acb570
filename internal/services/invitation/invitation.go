// Package services содержит бизнес-логику жизненного цикла приглашений:
// выпуск, просмотр и принятие с созданием учётной записи.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/training-platform/internal/authz"
	"github.com/magabrotheeeer/training-platform/internal/errs"
	"github.com/magabrotheeeer/training-platform/internal/lib/password"
	"github.com/magabrotheeeer/training-platform/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/training-platform/internal/lib/sl"
	"github.com/magabrotheeeer/training-platform/internal/metrics"
	"github.com/magabrotheeeer/training-platform/internal/models"
)

// InvitationRepository определяет методы для работы с приглашениями в хранилище.
type InvitationRepository interface {
	// CreateInvitation сохраняет приглашение и возвращает его токен.
	CreateInvitation(ctx context.Context, inv models.Invitation) (string, error)
	// GetInvitation возвращает приглашение по токену.
	GetInvitation(ctx context.Context, token string) (*models.Invitation, error)
	// ListInvitations возвращает приглашения компании.
	ListInvitations(ctx context.Context, companyUUID string) ([]*models.Invitation, error)
	// AcceptInvitation атомарно принимает приглашение и создает учётную запись.
	AcceptInvitation(ctx context.Context, token, passwordHash string) (string, error)
	// CountCompanySeats возвращает занятые места: учётные записи плюс живые приглашения.
	CountCompanySeats(ctx context.Context, companyUUID string) (int, error)
	// GetSubscription возвращает подписку компании.
	GetSubscription(ctx context.Context, companyUUID string) (*models.Subscription, error)
}

// Entitlements описывает предикат доступности платных операций компании.
type Entitlements interface {
	IsEntitled(ctx context.Context, companyUUID string) (bool, error)
}

// EventPublisher публикует события платформы в очередь уведомлений.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// InvitationService реализует бизнес-логику приглашений.
type InvitationService struct {
	repo          InvitationRepository
	entitlements  Entitlements
	publisher     EventPublisher
	invitationTTL time.Duration
	log           *slog.Logger
}

// NewInvitationService создает новый экземпляр InvitationService.
func NewInvitationService(repo InvitationRepository, entitlements Entitlements,
	publisher EventPublisher, invitationTTL time.Duration, log *slog.Logger) *InvitationService {
	return &InvitationService{
		repo:          repo,
		entitlements:  entitlements,
		publisher:     publisher,
		invitationTTL: invitationTTL,
		log:           log,
	}
}

// Create выпускает приглашение в компанию. Требует активной подписки
// и свободного места: живые приглашения резервируют места наравне
// с учётными записями.
//
// Проверка места здесь предварительная, последнее слово остаётся за
// хранилищем: вставка перепроверяет лимит под блокировкой строки подписки,
// гонку одновременных выпусков на одну почту закрывает частичный
// уникальный индекс.
func (s *InvitationService) Create(ctx context.Context, actor authz.Actor, companyUUID string, req models.DummyInvitation) (string, error) {
	entitled, err := s.entitlements.IsEntitled(ctx, companyUUID)
	if err != nil {
		return "", err
	}

	res := authz.Resource{Kind: "invitation", CompanyUUID: companyUUID, Entitled: entitled}
	if d := authz.Decide(actor, authz.ActionInvitationCreate, res); !d.Allowed {
		s.log.Warn("access denied", sl.Reason(string(d.Reason)))
		metrics.RecordDenial(string(d.Reason))
		return "", d.Err()
	}

	sub, err := s.repo.GetSubscription(ctx, companyUUID)
	if err != nil {
		return "", err
	}
	seats, err := s.repo.CountCompanySeats(ctx, companyUUID)
	if err != nil {
		return "", err
	}
	if seats >= sub.SeatLimit {
		return "", fmt.Errorf("seat limit %d reached: %w", sub.SeatLimit, errs.ErrConflict)
	}

	inv := models.Invitation{
		Email:       req.Email,
		Role:        req.Role,
		CompanyUUID: companyUUID,
		IssuedBy:    actor.UUID,
		ExpiresAt:   time.Now().Add(s.invitationTTL),
	}
	token, err := s.repo.CreateInvitation(ctx, inv)
	if err != nil {
		return "", err
	}
	s.log.Info("created new invitation", slog.String("company", companyUUID))

	event := models.NotificationEvent{
		Email:   req.Email,
		NType:   models.NotificationInvitation,
		Title:   "Приглашение в компанию",
		Message: token,
	}
	if err := s.publisher.Publish(rabbitmq.RoutingInvitation, event); err != nil {
		s.log.Error("failed to publish invitation event", sl.Err(err))
	}
	return token, nil
}

// List возвращает приглашения компании с производными статусами.
func (s *InvitationService) List(ctx context.Context, actor authz.Actor, companyUUID string) ([]*models.Invitation, error) {
	res := authz.Resource{Kind: "invitation", CompanyUUID: companyUUID}
	if d := authz.Decide(actor, authz.ActionInvitationList, res); !d.Allowed {
		s.log.Warn("access denied", sl.Reason(string(d.Reason)))
		metrics.RecordDenial(string(d.Reason))
		return nil, d.Err()
	}
	return s.repo.ListInvitations(ctx, companyUUID)
}

// Accept принимает приглашение по токену и создает учётную запись
// с ролью и компанией из приглашения. Действие открыто для
// неаутентифицированных: учётной записи ещё не существует.
//
// Решение политики принимается по загруженному состоянию, но последнее
// слово остаётся за атомарным условным обновлением в хранилище: из двух
// одновременных принятий успехом завершается ровно одно.
func (s *InvitationService) Accept(ctx context.Context, req models.DummyInvitationAccept) (string, error) {
	inv, err := s.repo.GetInvitation(ctx, req.Token)
	res := authz.Resource{Kind: "invitation"}
	switch {
	case errors.Is(err, errs.ErrNotFound):
		res.Missing = true
	case err != nil:
		return "", err
	default:
		res.CompanyUUID = inv.CompanyUUID
		switch inv.Status(time.Now()) {
		case "accepted":
			res.Stale = true
		case "expired":
			res.Missing = true
		}
	}

	if d := authz.Decide(authz.Actor{}, authz.ActionInvitationAccept, res); !d.Allowed {
		s.log.Warn("access denied", sl.Reason(string(d.Reason)))
		metrics.RecordDenial(string(d.Reason))
		return "", d.Err()
	}

	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return "", err
	}
	accountUUID, err := s.repo.AcceptInvitation(ctx, req.Token, hashed)
	if err != nil {
		return "", err
	}
	s.log.Info("invitation accepted", slog.String("account", accountUUID))
	return accountUUID, nil
}
