// Package errs определяет общую таксономию ошибок сервиса.
// Сервисы возвращают обёрнутые sentinel-ошибки, HTTP-слой переводит их
// в статусы ответов в одном месте, не изобретая новых категорий.
package errs

import (
	"errors"
	"net/http"
)

// Sentinel-ошибки таксономии.
var (
	// ErrUnauthenticated — запрос без действующей учётной записи.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden — отказ по роли, компании или владению ресурсом.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound — ресурс отсутствует или считается отсутствующим,
	// чтобы не раскрывать факт его существования.
	ErrNotFound = errors.New("not found")
	// ErrConflict — попытка перехода из устаревшего состояния.
	ErrConflict = errors.New("conflict")
	// ErrInvalid — некорректные входные данные вне вопросов авторизации.
	ErrInvalid = errors.New("invalid request")
)

// HTTPStatus возвращает HTTP-статус для ошибки таксономии.
// Неизвестные ошибки считаются внутренними.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
