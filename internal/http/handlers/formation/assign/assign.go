// Package assign реализует HTTP-обработчик назначения курса сотруднику.
//
// Назначение создает запись обучения и требует активного курса
// и оплаченной подписки компании сотрудника.
package assign

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

// Handler управляет HTTP-запросами на назначение курсов.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает интерфейс бизнес-логики назначения курса.
type Service interface {
	Assign(ctx context.Context, actor authz.Actor, formationID int, req models.DummyAssign) (int, error)
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
// @Summary Назначить курс сотруднику
// @Description Создает запись обучения сотрудника по активному курсу. Требует оплаченной подписки компании.
// @Tags Formations
// @Accept  json
// @Produce  json
// @Param id path int true "ID курса"
// @Param request body models.DummyAssign true "UUID сотрудника"
// @Success 200 {object} map[string]any "ID записи обучения"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Подписка не оплачена или нет прав"
// @Failure 404 {object} response.ErrorResponse "Курс или сотрудник не найдены"
// @Failure 409 {object} response.ErrorResponse "Курс неактивен или уже назначен"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /formations/{id}/assign [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.formation.assign"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	formationID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		log.Error("failed to decode id from url", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	var req models.DummyAssign
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

	id, err := h.service.Assign(r.Context(), actor, formationID, req)
	if err != nil {
		log.Error("failed to assign formation", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("success to assign formation", slog.Int("enrollment_id", id))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"enrollment_id": id,
	}))
}
