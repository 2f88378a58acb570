// Package feedback реализует HTTP-обработчик отзыва о консультации.
// Отзыв оставляет только участвовавший сотрудник и только после завершения.
package feedback

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/magabrotheeeer/training-platform/internal/authz"
	"github.com/magabrotheeeer/training-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/training-platform/internal/http/response"
	"github.com/magabrotheeeer/training-platform/internal/lib/sl"
	"github.com/magabrotheeeer/training-platform/internal/models"
)

// Handler управляет HTTP-запросами на отзывы о консультациях.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики отзыва о консультации.
type Service interface {
	Feedback(ctx context.Context, actor authz.Actor, id int, req models.DummyFeedback) (int, error)
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
// @Summary Оставить отзыв о консультации
// @Description Сохраняет отзыв участника о завершённой консультации. Повторный отзыв отклоняется.
// @Tags Appointments
// @Accept  json
// @Produce  json
// @Param id path int true "ID консультации"
// @Param request body models.DummyFeedback true "Оценка и отзыв"
// @Success 200 {object} map[string]any "ID созданного отзыва"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Отзыв может оставить только участник"
// @Failure 404 {object} response.ErrorResponse "Консультация не найдена"
// @Failure 409 {object} response.ErrorResponse "Консультация не завершена или отзыв уже есть"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /appointments/{id}/feedback [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.appointment.feedback"
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

	var req models.DummyFeedback
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

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

	feedbackID, err := h.service.Feedback(r.Context(), actor, id, req)
	if err != nil {
		log.Error("failed to create feedback", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("success to create feedback", slog.Int("feedback_id", feedbackID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"feedback_id": feedbackID,
	}))
}
