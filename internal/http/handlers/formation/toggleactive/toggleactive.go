// Package toggleactive реализует HTTP-обработчик активации и деактивации курса.
//
// Деактивация скрывает курс из каталога, но не трогает существующие
// назначения: сотрудники продолжают начатое обучение.
package toggleactive

import (
	"context"
	"encoding/json"
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

// Request — структура входных данных для смены статуса курса.
type Request struct {
	Active bool `json:"active"`
}

// Handler управляет HTTP-запросами на смену статуса курса.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики активации курса.
type Service interface {
	ToggleActive(ctx context.Context, actor authz.Actor, id int, active bool) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Активировать или деактивировать курс
// @Description Меняет видимость курса в каталоге. Доступно только суперадминистратору.
// @Tags Formations
// @Accept  json
// @Produce  json
// @Param id path int true "ID курса"
// @Param request body Request true "Новый статус курса"
// @Success 200 {object} map[string]any "Статус обновлён"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Нет прав на смену статуса"
// @Failure 404 {object} response.ErrorResponse "Курс не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /formations/{id}/active [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.formation.toggleactive"
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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	actor, ok := middlewarectx.Actor(r.Context())
	if !ok {
		log.Error("actor not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	if err := h.service.ToggleActive(r.Context(), actor, id, req.Active); err != nil {
		log.Error("failed to toggle formation", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("success to toggle formation", slog.Int("id", id), slog.Bool("active", req.Active))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"id":     id,
		"active": req.Active,
	}))
}
