// Package confirm реализует HTTP-обработчик подтверждения сброса пароля:
// одноразовый токен обменивается на новый пароль учётной записи.
package confirm

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

// Handler обрабатывает подтверждение сброса пароля.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики подтверждения сброса.
type Service interface {
	ConfirmPasswordReset(ctx context.Context, req models.DummyPasswordResetConfirm) error
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
// @Summary Подтвердить сброс пароля
// @Description Устанавливает новый пароль по одноразовому токену сброса. Использованный или просроченный токен отклоняется.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body models.DummyPasswordResetConfirm true "Токен сброса и новый пароль"
// @Success 200 {object} map[string]any "Пароль обновлён"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Токен не найден или просрочен"
// @Failure 409 {object} response.ErrorResponse "Токен уже использован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /password-reset/confirm [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.passwordreset.confirm"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyPasswordResetConfirm
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

	if err := h.service.ConfirmPasswordReset(r.Context(), req); err != nil {
		log.Error("failed to confirm password reset", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("password reset confirmed")
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "password updated",
	}))
}
