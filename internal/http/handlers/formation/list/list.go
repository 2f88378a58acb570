// Package list реализует HTTP-обработчик каталога курсов.
//
// Автор видит свои курсы, суперадминистратор — все, остальные — активные.
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

// Handler обрабатывает запросы на получение каталога курсов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики каталога курсов.
type Service interface {
	List(ctx context.Context, actor authz.Actor) ([]*models.Formation, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Каталог курсов
// @Description Возвращает курсы, видимые актору: авторам — их собственные, остальным — активные.
// @Tags Formations
// @Produce  json
// @Success 200 {object} map[string]any "Список курсов"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /formations [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.formation.list"
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

	formations, err := h.service.List(r.Context(), actor)
	if err != nil {
		log.Error("failed to list formations", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("success to list formations", slog.Int("count", len(formations)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"formations": formations,
	}))
}
