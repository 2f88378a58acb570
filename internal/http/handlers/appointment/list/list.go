// Package list реализует HTTP-обработчик списка консультаций.
//
// Администратор компании видит консультации всей компании,
// остальные — только свои.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/training-platform/internal/authz"
	"github.com/magabrotheeeer/training-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/training-platform/internal/http/response"
	"github.com/magabrotheeeer/training-platform/internal/lib/sl"
	"github.com/magabrotheeeer/training-platform/internal/models"
)

// Handler обрабатывает запросы на получение списка консультаций.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка консультаций.
type Service interface {
	List(ctx context.Context, actor authz.Actor) ([]*models.Appointment, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список консультаций
// @Description Возвращает консультации актора: администратору компании — всей компании, остальным — их собственные.
// @Tags Appointments
// @Produce  json
// @Success 200 {object} map[string]any "Список консультаций"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /appointments [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.appointment.list"
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

	appointments, err := h.service.List(r.Context(), actor)
	if err != nil {
		log.Error("failed to list appointments", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("success to list appointments", slog.Int("count", len(appointments)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"appointments": appointments,
	}))
}
