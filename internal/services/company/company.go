// Package services содержит бизнес-логику для управления компаниями,
// их подписками и кешированным предикатом доступности.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/training-platform/internal/authz"
	"github.com/magabrotheeeer/training-platform/internal/errs"
	"github.com/magabrotheeeer/training-platform/internal/lib/sl"
	"github.com/magabrotheeeer/training-platform/internal/metrics"
	"github.com/magabrotheeeer/training-platform/internal/models"
)

// CompanyRepository определяет методы для работы с компаниями и подписками в хранилище.
type CompanyRepository interface {
	// CreateCompany создает компанию вместе с подпиской и возвращает UUID.
	CreateCompany(ctx context.Context, company models.Company, plan string, seatLimit int) (string, error)
	// GetCompany возвращает компанию по UUID.
	GetCompany(ctx context.Context, companyUUID string) (*models.Company, error)
	// GetSubscription возвращает подписку компании.
	GetSubscription(ctx context.Context, companyUUID string) (*models.Subscription, error)
	// UpdateSubscriptionStatus обновляет статус подписки по событию провайдера.
	UpdateSubscriptionStatus(ctx context.Context, event models.Subscription) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(ctx context.Context, key string) error
}

// entitlementTTL — время жизни кешированного статуса подписки.
const entitlementTTL = 5 * time.Minute

// CompanyService реализует бизнес-логику работы с компаниями и подписками.
type CompanyService struct {
	repo  CompanyRepository
	cache Cache
	log   *slog.Logger
}

// NewCompanyService создает новый экземпляр CompanyService.
func NewCompanyService(repo CompanyRepository, cache Cache, log *slog.Logger) *CompanyService {
	return &CompanyService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// Create создает новую компанию с подпиской в статусе unpaid.
func (s *CompanyService) Create(ctx context.Context, actor authz.Actor, req models.DummyCompany) (string, error) {
	if d := authz.Decide(actor, authz.ActionCompanyCreate, authz.Resource{Kind: "company"}); !d.Allowed {
		s.log.Warn("access denied", sl.Reason(string(d.Reason)))
		metrics.RecordDenial(string(d.Reason))
		return "", d.Err()
	}

	company := models.Company{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
	}
	companyUUID, err := s.repo.CreateCompany(ctx, company, req.Plan, req.SeatLimit)
	if err != nil {
		return "", err
	}
	s.log.Info("created new company", slog.String("company", companyUUID))
	return companyUUID, nil
}

// Read возвращает компанию вместе с её подпиской.
func (s *CompanyService) Read(ctx context.Context, actor authz.Actor, companyUUID string) (*models.Company, *models.Subscription, error) {
	company, err := s.repo.GetCompany(ctx, companyUUID)
	res := authz.Resource{Kind: "company", CompanyUUID: companyUUID, Missing: isNotFound(err)}
	if err != nil && !res.Missing {
		return nil, nil, err
	}

	if d := authz.Decide(actor, authz.ActionCompanyRead, res); !d.Allowed {
		s.log.Warn("access denied", sl.Reason(string(d.Reason)))
		metrics.RecordDenial(string(d.Reason))
		return nil, nil, d.Err()
	}

	sub, err := s.repo.GetSubscription(ctx, companyUUID)
	if err != nil {
		return nil, nil, err
	}
	return company, sub, nil
}

// HandleSubscriptionEvent применяет событие платёжного провайдера:
// обновляет статус подписки и сбрасывает кешированный предикат доступности.
// Провайдер присылает последний известный статус, событие идемпотентно.
func (s *CompanyService) HandleSubscriptionEvent(ctx context.Context, req models.DummySubscriptionEvent) error {
	periodStart, err := time.Parse("02-01-2006", req.PeriodStart)
	if err != nil {
		return fmt.Errorf("invalid period start: %w", errs.ErrInvalid)
	}
	periodEnd, err := time.Parse("02-01-2006", req.PeriodEnd)
	if err != nil {
		return fmt.Errorf("invalid period end: %w", errs.ErrInvalid)
	}

	event := models.Subscription{
		CompanyUUID: req.CompanyUUID,
		Status:      req.Status,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	}
	if err := s.repo.UpdateSubscriptionStatus(ctx, event); err != nil {
		return err
	}
	s.log.Info("subscription status updated",
		slog.String("company", req.CompanyUUID), slog.String("status", req.Status))

	cacheKey := entitlementKey(req.CompanyUUID)
	if err := s.cache.Invalidate(ctx, cacheKey); err != nil {
		s.log.Warn("failed to invalidate subscription status", slog.String("key", cacheKey), sl.Err(err))
	}
	return nil
}

// IsEntitled сообщает, активна ли подписка компании. Читает кешированный
// статус, при промахе обращается к хранилищу и заполняет кеш.
func (s *CompanyService) IsEntitled(ctx context.Context, companyUUID string) (bool, error) {
	if companyUUID == "" {
		return false, nil
	}

	cacheKey := entitlementKey(companyUUID)
	var status string
	found, err := s.cache.Get(ctx, cacheKey, &status)
	if err != nil {
		s.log.Warn("failed to read subscription status from cache", slog.String("key", cacheKey), sl.Err(err))
	}
	if found {
		return status == models.SubscriptionActive, nil
	}

	sub, err := s.repo.GetSubscription(ctx, companyUUID)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}

	if err := s.cache.Set(ctx, cacheKey, sub.Status, entitlementTTL); err != nil {
		s.log.Warn("failed to cache subscription status", slog.String("key", cacheKey), sl.Err(err))
	}
	return sub.Status == models.SubscriptionActive, nil
}

func entitlementKey(companyUUID string) string {
	return fmt.Sprintf("subscription:status:%s", companyUUID)
}

func isNotFound(err error) bool {
	return errors.Is(err, errs.ErrNotFound)
}
