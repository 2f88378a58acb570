package authz

import "github.com/magabrotheeeer/training-platform/internal/errs"

// Err переводит отказ в ошибку общей таксономии.
// Для разрешённого решения возвращает nil.
//
// Отказ cross-tenant намеренно отображается в not found: ответы для чужой
// компании не должны отличаться от ответов о несуществующем ресурсе.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case ReasonUnauthenticated:
		return errs.ErrUnauthenticated
	case ReasonNotFound, ReasonCrossTenant:
		return errs.ErrNotFound
	case ReasonStaleState:
		return errs.ErrConflict
	default:
		return errs.ErrForbidden
	}
}
