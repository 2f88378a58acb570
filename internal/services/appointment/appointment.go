// Package services содержит бизнес-логику консультаций: запись сотрудника
// к консультанту, решения по заявке, завершение и отзыв.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/training-platform/internal/authz"
	"github.com/magabrotheeeer/training-platform/internal/errs"
	"github.com/magabrotheeeer/training-platform/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/training-platform/internal/lib/sl"
	"github.com/magabrotheeeer/training-platform/internal/metrics"
	"github.com/magabrotheeeer/training-platform/internal/models"
)

// AppointmentRepository определяет методы для работы с консультациями в хранилище.
type AppointmentRepository interface {
	// CreateAppointment вставляет новую консультацию и возвращает её ID.
	CreateAppointment(ctx context.Context, a models.Appointment) (int, error)
	// GetAppointment возвращает консультацию по ID.
	GetAppointment(ctx context.Context, id int) (*models.Appointment, error)
	// TransitionAppointment выполняет условный переход статуса консультации.
	TransitionAppointment(ctx context.Context, id int, from, to string) error
	// ListAppointmentsByAccount возвращает консультации участника.
	ListAppointmentsByAccount(ctx context.Context, accountUUID string) ([]*models.Appointment, error)
	// ListAppointmentsByCompany возвращает консультации компании.
	ListAppointmentsByCompany(ctx context.Context, companyUUID string) ([]*models.Appointment, error)
	// CreateFeedback сохраняет отзыв о завершённой консультации.
	CreateFeedback(ctx context.Context, f models.Feedback) (int, error)
	// GetAccount возвращает учётную запись по UUID.
	GetAccount(ctx context.Context, accountUUID string) (*models.Account, error)
}

// EventPublisher публикует события платформы в очередь уведомлений.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// AppointmentService реализует бизнес-логику консультаций.
type AppointmentService struct {
	repo      AppointmentRepository
	publisher EventPublisher
	log       *slog.Logger
}

// NewAppointmentService создает новый экземпляр AppointmentService.
func NewAppointmentService(repo AppointmentRepository, publisher EventPublisher, log *slog.Logger) *AppointmentService {
	return &AppointmentService{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// Create создает заявку на консультацию в статусе pending.
func (s *AppointmentService) Create(ctx context.Context, actor authz.Actor, req models.DummyAppointment) (int, error) {
	startsAt, err := time.Parse("02-01-2006 15:04", req.StartsAt)
	if err != nil {
		return 0, fmt.Errorf("invalid start time: %w", errs.ErrInvalid)
	}

	consultant, err := s.repo.GetAccount(ctx, req.ConsultantUUID)
	if err != nil {
		return 0, err
	}
	if consultant.Role != models.RoleConsultant {
		return 0, fmt.Errorf("account is not a consultant: %w", errs.ErrInvalid)
	}

	res := authz.Resource{Kind: "appointment", CompanyUUID: actor.CompanyUUID}
	if d := authz.Decide(actor, authz.ActionAppointmentCreate, res); !d.Allowed {
		s.log.Warn("access denied", sl.Reason(string(d.Reason)))
		metrics.RecordDenial(string(d.Reason))
		return 0, d.Err()
	}

	id, err := s.repo.CreateAppointment(ctx, models.Appointment{
		EmployeeUUID:   actor.UUID,
		ConsultantUUID: req.ConsultantUUID,
		CompanyUUID:    actor.CompanyUUID,
		StartsAt:       startsAt,
		Topic:          req.Topic,
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("created new appointment", slog.Int("id", id))
	return id, nil
}

// Approve подтверждает заявку на консультацию. Решение принимает
// назначенный консультант либо администратор компании сотрудника.
func (s *AppointmentService) Approve(ctx context.Context, actor authz.Actor, id int) error {
	return s.decide(ctx, actor, authz.ActionAppointmentApprove, id, models.AppointmentConfirmed)
}

// Reject отклоняет заявку на консультацию.
func (s *AppointmentService) Reject(ctx context.Context, actor authz.Actor, id int) error {
	return s.decide(ctx, actor, authz.ActionAppointmentReject, id, models.AppointmentRejected)
}

// decide выполняет переход pending -> confirmed | rejected. Из двух
// одновременных решений по одной заявке успехом завершается ровно одно:
// переход в хранилище условный. Сотрудник получает уведомление о решении.
func (s *AppointmentService) decide(ctx context.Context, actor authz.Actor, action authz.Action, id int, to string) error {
	appointment, err := s.repo.GetAppointment(ctx, id)
	res := authz.Resource{Kind: "appointment", Missing: errors.Is(err, errs.ErrNotFound)}
	if err != nil && !res.Missing {
		return err
	}
	if appointment != nil {
		res.CompanyUUID = appointment.CompanyUUID
		res.OwnerUUID = appointment.ConsultantUUID
		res.Stale = appointment.Status != models.AppointmentPending
	}

	if d := authz.Decide(actor, action, res); !d.Allowed {
		s.log.Warn("access denied", sl.Reason(string(d.Reason)))
		metrics.RecordDenial(string(d.Reason))
		return d.Err()
	}

	if err := s.repo.TransitionAppointment(ctx, id, models.AppointmentPending, to); err != nil {
		return err
	}
	s.log.Info("appointment decision recorded", slog.Int("id", id), slog.String("status", to))

	event := models.NotificationEvent{
		AccountUUID: appointment.EmployeeUUID,
		NType:       models.NotificationDecision,
		Title:       "Решение по консультации",
		Message:     fmt.Sprintf("Заявка на консультацию «%s»: %s", appointment.Topic, decisionWord(to)),
	}
	if err := s.publisher.Publish(rabbitmq.RoutingDecision, event); err != nil {
		s.log.Error("failed to publish decision event", sl.Err(err))
	}
	return nil
}

// Complete отмечает подтверждённую консультацию проведённой.
// Действие закреплено за консультантом.
func (s *AppointmentService) Complete(ctx context.Context, actor authz.Actor, id int) error {
	appointment, err := s.repo.GetAppointment(ctx, id)
	res := authz.Resource{Kind: "appointment", Missing: errors.Is(err, errs.ErrNotFound)}
	if err != nil && !res.Missing {
		return err
	}
	if appointment != nil {
		res.CompanyUUID = appointment.CompanyUUID
		res.OwnerUUID = appointment.ConsultantUUID
		res.Stale = appointment.Status != models.AppointmentConfirmed
	}

	if d := authz.Decide(actor, authz.ActionAppointmentComplete, res); !d.Allowed {
		s.log.Warn("access denied", sl.Reason(string(d.Reason)))
		metrics.RecordDenial(string(d.Reason))
		return d.Err()
	}
	return s.repo.TransitionAppointment(ctx, id, models.AppointmentConfirmed, models.AppointmentCompleted)
}

// Feedback сохраняет отзыв сотрудника о завершённой консультации.
// Отзыв оставляет только участник-сотрудник, не более одного на консультацию.
func (s *AppointmentService) Feedback(ctx context.Context, actor authz.Actor, id int, req models.DummyFeedback) (int, error) {
	appointment, err := s.repo.GetAppointment(ctx, id)
	res := authz.Resource{Kind: "appointment", Missing: errors.Is(err, errs.ErrNotFound)}
	if err != nil && !res.Missing {
		return 0, err
	}
	if appointment != nil {
		res.CompanyUUID = appointment.CompanyUUID
		res.OwnerUUID = appointment.EmployeeUUID
		res.Stale = appointment.Status != models.AppointmentCompleted
	}

	if d := authz.Decide(actor, authz.ActionAppointmentFeedback, res); !d.Allowed {
		s.log.Warn("access denied", sl.Reason(string(d.Reason)))
		metrics.RecordDenial(string(d.Reason))
		return 0, d.Err()
	}

	return s.repo.CreateFeedback(ctx, models.Feedback{
		AppointmentID: id,
		Rating:        req.Rating,
		Satisfied:     req.Satisfied,
		Recommend:     req.Recommend,
	})
}

// List возвращает консультации в зависимости от роли актора:
// администратор видит консультации своей компании, остальные — свои.
func (s *AppointmentService) List(ctx context.Context, actor authz.Actor) ([]*models.Appointment, error) {
	if actor.Role == models.RoleCompanyAdmin {
		return s.repo.ListAppointmentsByCompany(ctx, actor.CompanyUUID)
	}
	return s.repo.ListAppointmentsByAccount(ctx, actor.UUID)
}

func decisionWord(status string) string {
	if status == models.AppointmentConfirmed {
		return "подтверждена"
	}
	return "отклонена"
}
