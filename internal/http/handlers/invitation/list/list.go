// Package list реализует HTTP-обработчик просмотра приглашений компании.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/training-platform/internal/authz"
	"github.com/magabrotheeeer/training-platform/internal/http/middlewarectx"
	"github.com/magabrotheeeer/training-platform/internal/http/response"
	"github.com/magabrotheeeer/training-platform/internal/lib/sl"
	"github.com/magabrotheeeer/training-platform/internal/models"
)

// Handler обрабатывает запросы на получение списка приглашений.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики списка приглашений.
type Service interface {
	List(ctx context.Context, actor authz.Actor, companyUUID string) ([]*models.Invitation, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список приглашений компании
// @Description Возвращает приглашения компании. Доступно администратору компании и суперадминистратору.
// @Tags Invitations
// @Produce  json
// @Param uuid path string true "UUID компании"
// @Success 200 {object} map[string]any "Список приглашений"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Компания недоступна"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /companies/{uuid}/invitations [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.invitation.list"
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

	companyUUID := chi.URLParam(r, "uuid")
	invitations, err := h.service.List(r.Context(), actor, companyUUID)
	if err != nil {
		log.Error("failed to list invitations", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("success to list invitations", slog.Int("count", len(invitations)))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"invitations": invitations,
	}))
}
