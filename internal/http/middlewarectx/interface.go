package middlewarectx

import (
	"context"

	"github.com/magabrotheeeer/training-platform/internal/authz"
)

// Service описывает интерфейс сервиса для валидации JWT токена.
type Service interface {
	ValidateToken(ctx context.Context, token string) (authz.Actor, error)
}
