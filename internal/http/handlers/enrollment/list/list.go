// Package list реализует HTTP-обработчик просмотра записей обучения сотрудника.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/training-platform/internal/authz"
	"github.com/magabrotheeeer/training-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/training-platform/internal/http/response"
	"github.com/magabrotheeeer/training-platform/internal/lib/sl"
	"github.com/magabrotheeeer/training-platform/internal/models"
)

// Handler обрабатывает запросы на получение записей обучения.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка записей обучения.
type Service interface {
	List(ctx context.Context, actor authz.Actor, accountUUID string) ([]*models.Enrollment, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Записи обучения сотрудника
// @Description Возвращает назначенные сотруднику курсы с прогрессом. Сотрудник видит только свои записи.
// @Tags Enrollments
// @Produce  json
// @Param uuid path string true "UUID сотрудника"
// @Success 200 {object} map[string]any "Список записей обучения"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Нет прав на просмотр чужих записей"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /accounts/{uuid}/enrollments [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.enrollment.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	actor, ok := middlewarectx.Actor(r.Context())
	if !ok {
		log.Error("actor not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	accountUUID := chi.URLParam(r, "uuid")
	enrollments, err := h.service.List(r.Context(), actor, accountUUID)
	if err != nil {
		log.Error("failed to list enrollments", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("success to list enrollments", slog.Int("count", len(enrollments)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"enrollments": enrollments,
	}))
}
