// Package accept реализует HTTP-обработчик принятия приглашения.
//
// Операция открыта без аутентификации: приглашённый ещё не имеет учётной
// записи, его право подтверждается самим токеном приглашения.
package accept

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

// Handler обрабатывает принятие приглашений.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики принятия приглашения.
type Service interface {
	Accept(ctx context.Context, req models.DummyInvitationAccept) (string, error)
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
// @Summary Принять приглашение
// @Description Создает учётную запись по токену приглашения. Просроченный или использованный токен отклоняется.
// @Tags Invitations
// @Accept  json
// @Produce  json
// @Param request body models.DummyInvitationAccept true "Токен приглашения и пароль"
// @Success 200 {object} map[string]any "UUID созданной учётной записи"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 404 {object} response.ErrorResponse "Токен не найден или просрочен"
// @Failure 409 {object} response.ErrorResponse "Приглашение уже принято"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /invitations/accept [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.invitation.accept"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyInvitationAccept
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

	accountUUID, err := h.service.Accept(r.Context(), req)
	if err != nil {
		log.Error("failed to accept invitation", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("success to accept invitation", slog.String("account_uuid", accountUUID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"account_uuid": accountUUID,
	}))
}
