// Package sl содержит вспомогательные атрибуты slog, общие для сервисов
// платформы: единообразный вывод ошибок и причин отказа в доступе.
package sl

import "log/slog"

// Err возвращает slog.Attr с ключом "error" и значением текста ошибки.
//
// Пример:
//
//	log.Error("failed to do something", sl.Err(err))
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// Reason возвращает slog.Attr с ключом "reason". Используется при
// логировании отказов вычислителя политики доступа: в ответ клиенту
// уходит обобщённый статус, точная причина остаётся в логе.
func Reason(reason string) slog.Attr {
	return slog.Attr{
		Key:   "reason",
		Value: slog.StringValue(reason),
	}
}
