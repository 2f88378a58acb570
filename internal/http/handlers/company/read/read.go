// Package read реализует HTTP-обработчик просмотра компании и её подписки.
package read

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

// Handler обрабатывает запросы на получение компании по UUID.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения компании.
type Service interface {
	Read(ctx context.Context, actor authz.Actor, companyUUID string) (*models.Company, *models.Subscription, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить компанию
// @Description Возвращает компанию и состояние её подписки. Чужая компания отвечает 404.
// @Tags Companies
// @Produce  json
// @Param uuid path string true "UUID компании"
// @Success 200 {object} map[string]any "Компания и подписка"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Компания недоступна"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /companies/{uuid} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.company.read"
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
	company, subscription, err := h.service.Read(r.Context(), actor, companyUUID)
	if err != nil {
		log.Error("failed to read company", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("success to read company", slog.String("company_uuid", companyUUID))
	render.JSON(w, r, response.OKWithData(map[string]any{
		"company":      company,
		"subscription": subscription,
	}))
}
