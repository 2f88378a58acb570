// Package request реализует HTTP-обработчик запроса сброса пароля.
//
// Обработчик всегда отвечает успехом при валидной почте: факт существования
// учётной записи не раскрывается.
package request

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/magabrotheeeer/training-platform/internal/http/response"
	"github.com/magabrotheeeer/training-platform/internal/lib/sl"
	"github.com/magabrotheeeer/training-platform/internal/models"
)

// Handler обрабатывает запросы на выдачу токена сброса пароля.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики сброса пароля.
type Service interface {
	RequestPasswordReset(ctx context.Context, email string) error
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
// @Summary Запросить сброс пароля
// @Description Выдает одноразовый токен сброса и отправляет его на почту. Ответ не раскрывает существование учётной записи.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.DummyPasswordResetRequest true "Почта учётной записи"
// @Success 200 {object} map[string]any "Запрос принят"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /password-reset/request [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.passwordreset.request"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyPasswordResetRequest
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

	if err := h.service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		log.Error("failed to request password reset", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("password reset requested", slog.String("email", req.Email))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "if the account exists, a reset token was sent",
	}))
}
