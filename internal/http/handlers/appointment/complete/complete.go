// Package complete реализует HTTP-обработчик завершения консультации.
// Завершить консультацию может только проведший её консультант.
package complete

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/training-platform/internal/authz"
	"github.com/magabrotheeeer/training-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/training-platform/internal/http/response"
	"github.com/magabrotheeeer/training-platform/internal/lib/sl"
)

// Handler управляет HTTP-запросами на завершение консультаций.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики завершения консультации.
type Service interface {
	Complete(ctx context.Context, actor authz.Actor, id int) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Завершить консультацию
// @Description Переводит подтверждённую консультацию в завершённые. Доступно только проведшему её консультанту.
// @Tags Appointments
// @Produce  json
// @Param id path int true "ID консультации"
// @Success 200 {object} map[string]any "Консультация завершена"
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Нет прав на завершение"
// @Failure 404 {object} response.ErrorResponse "Консультация не найдена"
// @Failure 409 {object} response.ErrorResponse "Консультация не подтверждена"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /appointments/{id}/complete [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.appointment.complete"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	actor, ok := middlewarectx.Actor(r.Context())
	if !ok {
		log.Error("actor not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.Complete(r.Context(), actor, id); err != nil {
		log.Error("failed to complete appointment", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("success to complete appointment", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id": id,
	}))
}
