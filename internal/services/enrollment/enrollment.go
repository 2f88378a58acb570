// Package services содержит бизнес-логику записей на курсы:
// просмотр назначений и монотонное обновление прогресса.
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

// EnrollmentRepository определяет методы для работы с записями на курсы в хранилище.
type EnrollmentRepository interface {
	// GetEnrollment возвращает запись на курс по ID.
	GetEnrollment(ctx context.Context, id int) (*models.Enrollment, error)
	// ListEnrollments возвращает записи на курсы одной учётной записи.
	ListEnrollments(ctx context.Context, accountUUID string) ([]*models.Enrollment, error)
	// UpdateProgress выполняет условное монотонное обновление прогресса.
	UpdateProgress(ctx context.Context, id, progress int) error
}

// EnrollmentService реализует бизнес-логику записей на курсы.
type EnrollmentService struct {
	repo EnrollmentRepository
	log  *slog.Logger
}

// NewEnrollmentService создает новый экземпляр EnrollmentService.
func NewEnrollmentService(repo EnrollmentRepository, log *slog.Logger) *EnrollmentService {
	return &EnrollmentService{
		repo: repo,
		log:  log,
	}
}

// List возвращает записи на курсы учётной записи. Сотрудник видит только свои.
func (s *EnrollmentService) List(ctx context.Context, actor authz.Actor, accountUUID string) ([]*models.Enrollment, error) {
	res := authz.Resource{Kind: "enrollment", OwnerUUID: accountUUID}
	if d := authz.Decide(actor, authz.ActionEnrollmentList, res); !d.Allowed {
		s.log.Warn("access denied", sl.Reason(string(d.Reason)))
		metrics.RecordDenial(string(d.Reason))
		return nil, d.Err()
	}
	return s.repo.ListEnrollments(ctx, accountUUID)
}

// UpdateProgress обновляет прогресс прохождения курса. Прогресс может
// только расти, отметка о завершении выставляется один раз при достижении
// 100. Действие закреплено за владельцем записи: даже суперадминистратор
// не отмечает чужой прогресс.
//
// Решение политики принимается по загруженному состоянию, монотонность
// гарантирует условное обновление в хранилище.
func (s *EnrollmentService) UpdateProgress(ctx context.Context, actor authz.Actor, id int, req models.DummyProgress) error {
	enrollment, err := s.repo.GetEnrollment(ctx, id)
	res := authz.Resource{Kind: "enrollment", Missing: errors.Is(err, errs.ErrNotFound)}
	if err != nil && !res.Missing {
		return err
	}
	if enrollment != nil {
		res.OwnerUUID = enrollment.AccountUUID
	}

	if d := authz.Decide(actor, authz.ActionProgressUpdate, res); !d.Allowed {
		s.log.Warn("access denied", sl.Reason(string(d.Reason)))
		metrics.RecordDenial(string(d.Reason))
		return d.Err()
	}

	if err := s.repo.UpdateProgress(ctx, id, req.Progress); err != nil {
		return err
	}
	s.log.Info("progress updated", slog.Int("enrollment", id), slog.Int("progress", req.Progress))
	return nil
}
