// Package create реализует HTTP-обработчик бронирования консультаций.
//
// Сотрудник бронирует время у консультанта, запись создается
// в статусе ожидания решения.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/magabrotheeeer/training-platform/internal/authz"
	"github.com/magabrotheeeer/training-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/training-platform/internal/http/response"
	"github.com/magabrotheeeer/training-platform/internal/lib/sl"
	"github.com/magabrotheeeer/training-platform/internal/models"
)

// Handler управляет HTTP-запросами на бронирование консультаций.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики бронирования консультации.
type Service interface {
	Create(ctx context.Context, actor authz.Actor, req models.DummyAppointment) (int, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Забронировать консультацию
// @Description Создает запись консультации у выбранного консультанта в статусе ожидания.
// @Tags Appointments
// @Accept  json
// @Produce  json
// @Param request body models.DummyAppointment true "Данные консультации"
// @Success 200 {object} map[string]any "ID созданной консультации"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Нет прав на бронирование"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /appointments [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.appointment.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyAppointment
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.String("topic", req.Topic))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	log.Info("all fields are validated")

	actor, ok := middlewarectx.Actor(r.Context())
	if !ok {
		log.Error("actor not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	id, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		log.Error("failed to create appointment", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("success to create appointment", slog.Int("id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id": id,
	}))
}
