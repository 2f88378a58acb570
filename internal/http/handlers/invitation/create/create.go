// Package create реализует HTTP-обработчик выпуска приглашений в компанию.
//
// Handler принимает JSON-запрос с почтой и ролью приглашаемого, валидирует
// его, извлекает актора из контекста и делегирует выпуск приглашения
// бизнес-логике. Отказ по подписке, лимиту мест или правам доступа
// транслируется в соответствующий HTTP-статус.
package create

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

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

// Handler управляет HTTP-запросами на выпуск приглашений.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики приглашений
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики выпуска приглашения.
type Service interface {
	Create(ctx context.Context, actor authz.Actor, companyUUID string, req models.DummyInvitation) (string, error)
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
// @Summary Пригласить участника в компанию
// @Description Выпускает приглашение с ролью для новой учётной записи. Требует оплаченной подписки и свободного места.
// @Tags Invitations
// @Accept  json
// @Produce  json
// @Param uuid path string true "UUID компании"
// @Param request body models.DummyInvitation true "Почта и роль приглашаемого"
// @Success 200 {object} map[string]any "Токен приглашения"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Подписка не оплачена или нет прав"
// @Failure 409 {object} response.ErrorResponse "Лимит мест исчерпан или приглашение уже выпущено"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /companies/{uuid}/invitations [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.invitation.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyInvitation
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.String("email", req.Email))

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

	companyUUID := chi.URLParam(r, "uuid")
	token, err := h.service.Create(r.Context(), actor, companyUUID, req)
	if err != nil {
		log.Error("failed to create invitation", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("success to create invitation", slog.String("company_uuid", companyUUID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"token": token,
	}))
}
