// Package services содержит логику бизнес-уровня для работы с учётными
// записями и аутентификацией.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/training-platform/internal/authz"
	"github.com/magabrotheeeer/training-platform/internal/errs"
	"github.com/magabrotheeeer/training-platform/internal/lib/jwt"
	"github.com/magabrotheeeer/training-platform/internal/lib/password"
	"github.com/magabrotheeeer/training-platform/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/training-platform/internal/lib/sl"
	"github.com/magabrotheeeer/training-platform/internal/metrics"
	"github.com/magabrotheeeer/training-platform/internal/models"
)

// AccountRepository описывает контракт для работы с учётными записями в базе данных.
type AccountRepository interface {
	// CreateAccount сохраняет новую учётную запись и возвращает её UUID.
	CreateAccount(ctx context.Context, account models.Account) (string, error)

	// GetAccountByEmail возвращает учётную запись по почте или ошибку, если не найдена.
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)

	// CreatePasswordReset выпускает токен сброса пароля и возвращает его.
	CreatePasswordReset(ctx context.Context, accountUUID string, expiresAt time.Time) (string, error)

	// ConsumePasswordReset атомарно гасит токен сброса и меняет пароль.
	ConsumePasswordReset(ctx context.Context, token, passwordHash string) error
}

// EventPublisher публикует события платформы в очередь уведомлений.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// AuthService отвечает за регистрацию, авторизацию, валидацию JWT
// и сброс пароля.
type AuthService struct {
	accounts  AccountRepository
	jwtMaker  jwt.Maker
	publisher EventPublisher
	resetTTL  time.Duration
	log       *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(accounts AccountRepository, jwtMaker jwt.Maker,
	publisher EventPublisher, resetTTL time.Duration, log *slog.Logger) *AuthService {
	return &AuthService{
		accounts:  accounts,
		jwtMaker:  jwtMaker,
		publisher: publisher,
		resetTTL:  resetTTL,
		log:       log,
	}
}

// Register создает новую учётную запись с хэшированием пароля.
// Самостоятельная регистрация открыта только консультантам и авторам курсов:
// сотрудники и администраторы компаний появляются через приглашения.
func (s *AuthService) Register(ctx context.Context, req models.DummyRegister) (string, error) {
	if req.Role != models.RoleConsultant && req.Role != models.RoleAuthor {
		return "", fmt.Errorf("role %s is not open for self-registration: %w", req.Role, errs.ErrInvalid)
	}
	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return "", err
	}
	account := models.Account{
		Email:        req.Email,
		PasswordHash: hashed,
		Role:         req.Role,
	}
	return s.accounts.CreateAccount(ctx, account)
}

// Login проверяет пароль учётной записи и генерирует JWT.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (token, role string, err error) {
	account, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return "", "", fmt.Errorf("invalid credentials: %w", errs.ErrUnauthenticated)
		}
		return "", "", err
	}
	if err := password.CompareHash(account.PasswordHash, rawPassword); err != nil {
		return "", "", fmt.Errorf("invalid credentials: %w", errs.ErrUnauthenticated)
	}

	var companyUUID string
	if account.CompanyUUID != nil {
		companyUUID = *account.CompanyUUID
	}
	token, err = s.jwtMaker.GenerateToken(account.UUID, account.Role, companyUUID)
	if err != nil {
		return "", "", err
	}

	metrics.LoginCounter.Inc()
	return token, account.Role, nil
}

// ValidateToken проверяет JWT и возвращает актора для политики доступа.
func (s *AuthService) ValidateToken(_ context.Context, token string) (authz.Actor, error) {
	claims, err := s.jwtMaker.ParseToken(token)
	if err != nil {
		return authz.Actor{}, fmt.Errorf("invalid token: %w", errs.ErrUnauthenticated)
	}
	return authz.Actor{
		UUID:        claims.Subject,
		Role:        claims.Role,
		CompanyUUID: claims.CompanyUUID,
	}, nil
}

// RequestPasswordReset выпускает токен сброса пароля и публикует событие
// для отправки письма. Для неизвестной почты возвращает успех, не раскрывая
// существование учётной записи.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	account, err := s.accounts.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			s.log.Info("password reset requested for unknown email")
			return nil
		}
		return err
	}

	token, err := s.accounts.CreatePasswordReset(ctx, account.UUID, time.Now().Add(s.resetTTL))
	if err != nil {
		return err
	}

	event := models.NotificationEvent{
		AccountUUID: account.UUID,
		Email:       account.Email,
		NType:       models.NotificationResetToken,
		Title:       "Сброс пароля",
		Message:     token,
	}
	if err := s.publisher.Publish(rabbitmq.RoutingPasswordKey, event); err != nil {
		s.log.Error("failed to publish password reset event", sl.Err(err))
		return err
	}
	s.log.Info("password reset token issued", slog.String("account", account.UUID))
	return nil
}

// ConfirmPasswordReset меняет пароль по одноразовому токену сброса.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, req models.DummyPasswordResetConfirm) error {
	hashed, err := password.GetHash(req.Password)
	if err != nil {
		return err
	}
	return s.accounts.ConsumePasswordReset(ctx, req.Token, hashed)
}
