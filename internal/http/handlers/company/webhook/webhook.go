// Package webhook реализует HTTP-обработчик вебхука платёжного провайдера.
//
// Провайдер присылает последний известный статус подписки компании.
// Подлинность запроса подтверждается HMAC-подписью в заголовке
// X-Api-Signature, неподписанные запросы отклоняются.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/magabrotheeeer/training-platform/internal/http/response"
	"github.com/magabrotheeeer/training-platform/internal/lib/sl"
	"github.com/magabrotheeeer/training-platform/internal/models"
)

// Handler обрабатывает вебхуки платёжного провайдера.
type Handler struct {
	log           *slog.Logger
	service       Service
	validate      *validator.Validate
	webhookSecret string // Секрет для проверки подписи
}

// Service описывает интерфейс бизнес-логики обработки события подписки.
type Service interface {
	HandleSubscriptionEvent(ctx context.Context, req models.DummySubscriptionEvent) error
}

// New создает новый Handler с переданными логгером, сервисом и секретом подписи.
func New(log *slog.Logger, service Service, secret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		validate:      validator.New(),
		webhookSecret: secret,
	}
}

// verifySignature проверяет HMAC-подпись тела запроса.
func (h *Handler) verifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(h.webhookSecret))
	mac.Write(body)
	expectedSig := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expectedSig), []byte(signature))
}

// ServeHTTP godoc
// @Summary Вебхук статуса подписки
// @Description Принимает событие платёжного провайдера и обновляет статус подписки компании. Запрос должен быть подписан HMAC.
// @Tags Companies
// @Accept  json
// @Produce  json
// @Param request body models.DummySubscriptionEvent true "Событие подписки"
// @Success 200 {object} map[string]any "Событие обработано"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Подпись отсутствует или неверна"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /webhooks/subscription [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.company.webhook"
	log := h.log.With(slog.String("op", op))

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	defer func() { _ = r.Body.Close() }()

	signature := r.Header.Get("X-Api-Signature")
	if signature == "" || !h.verifySignature(body, signature) {
		log.Error("invalid or missing webhook signature")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("invalid or missing webhook signature"))
		return
	}

	var req models.DummySubscriptionEvent
	if err := json.Unmarshal(body, &req); err != nil {
		log.Error("failed to unmarshal webhook payload", sl.Err(err))
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

	if err := h.service.HandleSubscriptionEvent(r.Context(), req); err != nil {
		log.Error("failed to process subscription event", sl.Err(err))
		response.RenderError(w, r, err)
		return
	}

	log.Info("subscription event processed",
		slog.String("company_uuid", req.CompanyUUID),
		slog.String("status", req.Status),
	)
	render.JSON(w, r, response.OKWithData(map[string]any{
		"message": "event processed",
	}))
}
