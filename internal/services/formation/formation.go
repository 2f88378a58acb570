// Package services содержит бизнес-логику курсов: создание и редактирование
// авторами, активацию суперадминистратором и назначение сотрудникам.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/training-platform/internal/authz"
	"github.com/magabrotheeeer/training-platform/internal/errs"
	"github.com/magabrotheeeer/training-platform/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/training-platform/internal/lib/sl"
	"github.com/magabrotheeeer/training-platform/internal/metrics"
	"github.com/magabrotheeeer/training-platform/internal/models"
)

// FormationRepository определяет методы для работы с курсами в хранилище.
type FormationRepository interface {
	// CreateFormation вставляет новый курс и возвращает его ID.
	CreateFormation(ctx context.Context, f models.Formation) (int, error)
	// GetFormation возвращает курс по ID.
	GetFormation(ctx context.Context, id int) (*models.Formation, error)
	// UpdateFormation обновляет название и описание курса.
	UpdateFormation(ctx context.Context, f models.Formation) error
	// SetFormationActive переключает доступность курса для назначения.
	SetFormationActive(ctx context.Context, id int, active bool) error
	// AddSection вставляет секцию курса и возвращает её ID.
	AddSection(ctx context.Context, sec models.Section) (int, error)
	// AddLesson вставляет урок секции и возвращает его ID.
	AddLesson(ctx context.Context, l models.Lesson) (int, error)
	// GetSectionFormation возвращает ID курса, которому принадлежит секция.
	GetSectionFormation(ctx context.Context, sectionID int) (int, error)
	// ListFormationsByAuthor возвращает курсы автора.
	ListFormationsByAuthor(ctx context.Context, authorUUID string) ([]*models.Formation, error)
	// ListActiveFormations возвращает курсы, доступные для назначения.
	ListActiveFormations(ctx context.Context) ([]*models.Formation, error)
	// ListAllFormations возвращает все курсы платформы.
	ListAllFormations(ctx context.Context) ([]*models.Formation, error)
	// CreateEnrollment записывает сотрудника на курс и возвращает ID записи.
	CreateEnrollment(ctx context.Context, e models.Enrollment) (int, error)
	// GetAccount возвращает учётную запись по UUID.
	GetAccount(ctx context.Context, accountUUID string) (*models.Account, error)
}

// Entitlements описывает предикат доступности платных операций компании.
type Entitlements interface {
	IsEntitled(ctx context.Context, companyUUID string) (bool, error)
}

// EventPublisher публикует события платформы в очередь уведомлений.
type EventPublisher interface {
	Publish(routingKey string, message any) error
}

// FormationService реализует бизнес-логику курсов.
type FormationService struct {
	repo         FormationRepository
	entitlements Entitlements
	publisher    EventPublisher
	log          *slog.Logger
}

// NewFormationService создает новый экземпляр FormationService.
func NewFormationService(repo FormationRepository, entitlements Entitlements,
	publisher EventPublisher, log *slog.Logger) *FormationService {
	return &FormationService{
		repo:         repo,
		entitlements: entitlements,
		publisher:    publisher,
		log:          log,
	}
}

// Create создает новый курс. Курс появляется неактивным,
// доступность для назначения включает суперадминистратор.
func (s *FormationService) Create(ctx context.Context, actor authz.Actor, req models.DummyFormation) (int, error) {
	if d := authz.Decide(actor, authz.ActionFormationCreate, authz.Resource{Kind: "formation"}); !d.Allowed {
		s.log.Warn("access denied", sl.Reason(string(d.Reason)))
		metrics.RecordDenial(string(d.Reason))
		return 0, d.Err()
	}

	formation := models.Formation{
		Title:       req.Title,
		Description: req.Description,
		AuthorUUID:  actor.UUID,
		IsActive:    false,
	}
	id, err := s.repo.CreateFormation(ctx, formation)
	if err != nil {
		return 0, err
	}
	s.log.Info("created new formation", slog.Int("id", id))
	return id, nil
}

// Update обновляет название и описание курса. Доступно только автору,
// включая случай суперадминистратора: содержимое курса закреплено за владельцем.
func (s *FormationService) Update(ctx context.Context, actor authz.Actor, id int, req models.DummyFormation) error {
	if err := s.decideOwnership(ctx, actor, authz.ActionFormationUpdate, id); err != nil {
		return err
	}
	return s.repo.UpdateFormation(ctx, models.Formation{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
	})
}

// ToggleActive переключает доступность курса для назначения.
// После переключения автор получает уведомление.
func (s *FormationService) ToggleActive(ctx context.Context, actor authz.Actor, id int, active bool) error {
	formation, err := s.repo.GetFormation(ctx, id)
	res := authz.Resource{Kind: "formation", Missing: errors.Is(err, errs.ErrNotFound)}
	if err != nil && !res.Missing {
		return err
	}

	if d := authz.Decide(actor, authz.ActionFormationToggle, res); !d.Allowed {
		s.log.Warn("access denied", sl.Reason(string(d.Reason)))
		metrics.RecordDenial(string(d.Reason))
		return d.Err()
	}

	if err := s.repo.SetFormationActive(ctx, id, active); err != nil {
		return err
	}
	s.log.Info("formation availability toggled", slog.Int("id", id), slog.Bool("active", active))

	event := models.NotificationEvent{
		AccountUUID: formation.AuthorUUID,
		NType:       models.NotificationActivated,
		Title:       "Статус курса изменён",
		Message:     fmt.Sprintf("Курс «%s» теперь %s", formation.Title, availabilityWord(active)),
	}
	if err := s.publisher.Publish(rabbitmq.RoutingActivated, event); err != nil {
		s.log.Error("failed to publish activation event", sl.Err(err))
	}
	return nil
}

// AddSection добавляет секцию в курс. Структура курса закреплена за автором.
func (s *FormationService) AddSection(ctx context.Context, actor authz.Actor, formationID int, req models.DummySection) (int, error) {
	if err := s.decideOwnership(ctx, actor, authz.ActionFormationUpdate, formationID); err != nil {
		return 0, err
	}
	return s.repo.AddSection(ctx, models.Section{
		FormationID: formationID,
		Title:       req.Title,
		Position:    req.Position,
	})
}

// AddLesson добавляет урок в секцию курса.
func (s *FormationService) AddLesson(ctx context.Context, actor authz.Actor, req models.DummyLesson) (int, error) {
	formationID, err := s.repo.GetSectionFormation(ctx, req.SectionID)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			if d := authz.Decide(actor, authz.ActionFormationUpdate,
				authz.Resource{Kind: "formation", Missing: true}); !d.Allowed {
				s.log.Warn("access denied", sl.Reason(string(d.Reason)))
				metrics.RecordDenial(string(d.Reason))
				return 0, d.Err()
			}
		}
		return 0, err
	}
	if err := s.decideOwnership(ctx, actor, authz.ActionFormationUpdate, formationID); err != nil {
		return 0, err
	}
	return s.repo.AddLesson(ctx, models.Lesson{
		SectionID:   req.SectionID,
		Title:       req.Title,
		LessonType:  req.LessonType,
		Position:    req.Position,
		IsPublished: req.IsPublished,
	})
}

// List возвращает курсы в зависимости от роли актора: автор видит свои,
// суперадминистратор — все, остальные — активные.
func (s *FormationService) List(ctx context.Context, actor authz.Actor) ([]*models.Formation, error) {
	switch actor.Role {
	case models.RoleAuthor:
		return s.repo.ListFormationsByAuthor(ctx, actor.UUID)
	case models.RoleSuperAdmin:
		return s.repo.ListAllFormations(ctx)
	default:
		return s.repo.ListActiveFormations(ctx)
	}
}

// Assign назначает активный курс сотруднику своей компании. Требует
// активной подписки. Повторное назначение того же курса возвращает conflict.
func (s *FormationService) Assign(ctx context.Context, actor authz.Actor, formationID int, req models.DummyAssign) (int, error) {
	target, err := s.repo.GetAccount(ctx, req.AccountUUID)
	if err != nil {
		return 0, err
	}
	if target.Role != models.RoleEmployee || target.CompanyUUID == nil {
		return 0, fmt.Errorf("formations are assigned to employees only: %w", errs.ErrInvalid)
	}

	entitled, err := s.entitlements.IsEntitled(ctx, *target.CompanyUUID)
	if err != nil {
		return 0, err
	}

	formation, err := s.repo.GetFormation(ctx, formationID)
	res := authz.Resource{
		Kind:        "formation",
		CompanyUUID: *target.CompanyUUID,
		Entitled:    entitled,
		Missing:     errors.Is(err, errs.ErrNotFound),
	}
	if err != nil && !res.Missing {
		return 0, err
	}
	if formation != nil && !formation.IsActive {
		res.Stale = true
	}

	if d := authz.Decide(actor, authz.ActionFormationAssign, res); !d.Allowed {
		s.log.Warn("access denied", sl.Reason(string(d.Reason)))
		metrics.RecordDenial(string(d.Reason))
		return 0, d.Err()
	}

	id, err := s.repo.CreateEnrollment(ctx, models.Enrollment{
		AccountUUID: req.AccountUUID,
		FormationID: formationID,
		AssignedBy:  actor.UUID,
	})
	if err != nil {
		return 0, err
	}
	s.log.Info("formation assigned",
		slog.Int("formation", formationID), slog.String("account", req.AccountUUID))

	event := models.NotificationEvent{
		AccountUUID: req.AccountUUID,
		Email:       target.Email,
		NType:       models.NotificationAssigned,
		Title:       "Назначен новый курс",
		Message:     fmt.Sprintf("Вам назначен курс «%s»", formation.Title),
	}
	if err := s.publisher.Publish(rabbitmq.RoutingAssigned, event); err != nil {
		s.log.Error("failed to publish assignment event", sl.Err(err))
	}
	return id, nil
}

// decideOwnership загружает курс и проверяет действие, закреплённое за автором.
func (s *FormationService) decideOwnership(ctx context.Context, actor authz.Actor, action authz.Action, formationID int) error {
	formation, err := s.repo.GetFormation(ctx, formationID)
	res := authz.Resource{Kind: "formation", Missing: errors.Is(err, errs.ErrNotFound)}
	if err != nil && !res.Missing {
		return err
	}
	if formation != nil {
		res.OwnerUUID = formation.AuthorUUID
	}

	if d := authz.Decide(actor, action, res); !d.Allowed {
		s.log.Warn("access denied", sl.Reason(string(d.Reason)))
		metrics.RecordDenial(string(d.Reason))
		return d.Err()
	}
	return nil
}

func availabilityWord(active bool) string {
	if active {
		return "доступен для назначения"
	}
	return "скрыт"
}
