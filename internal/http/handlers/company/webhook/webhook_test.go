package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/training-platform/internal/errs"
	"github.com/magabrotheeeer/training-platform/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) HandleSubscriptionEvent(ctx context.Context, req models.DummySubscriptionEvent) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestWebhookHandler_ServeHTTP(t *testing.T) {
	const secret = "webhook-secret"

	event := models.DummySubscriptionEvent{
		CompanyUUID: "0b37c6f1-9c1c-4a5e-a111-3c7c1f3b9a10",
		Status:      models.SubscriptionActive,
		PeriodStart: "01-08-2026",
		PeriodEnd:   "01-09-2026",
	}
	validBody, err := json.Marshal(event)
	require.NoError(t, err)

	tests := []struct {
		name           string
		body           []byte
		signature      string
		setupMocks     func(s *ServiceMock)
		wantStatusCode int
	}{
		{
			name:      "valid signed event",
			body:      validBody,
			signature: signBody(secret, validBody),
			setupMocks: func(s *ServiceMock) {
				s.On("HandleSubscriptionEvent", mock.Anything, event).Return(nil).Once()
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing signature",
			body:           validBody,
			signature:      "",
			setupMocks:     func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "wrong signature",
			body:           validBody,
			signature:      signBody("another-secret", validBody),
			setupMocks:     func(_ *ServiceMock) {},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "signed but invalid json",
			body:           []byte("not a json"),
			signature:      signBody(secret, []byte("not a json")),
			setupMocks:     func(_ *ServiceMock) {},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:      "service rejects event",
			body:      validBody,
			signature: signBody(secret, validBody),
			setupMocks: func(s *ServiceMock) {
				s.On("HandleSubscriptionEvent", mock.Anything, event).Return(errs.ErrInvalid).Once()
			},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			serviceMock := new(ServiceMock)
			tt.setupMocks(serviceMock)
			handler := New(newNoopLogger(), serviceMock, secret)

			req := httptest.NewRequest(http.MethodPost, "/webhooks/subscription", bytes.NewReader(tt.body))
			if tt.signature != "" {
				req.Header.Set("X-Api-Signature", tt.signature)
			}

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			require.Equal(t, tt.wantStatusCode, rr.Code)
			serviceMock.AssertExpectations(t)
		})
	}
}
