package storage

import (
	"context"
	"strings"
)

// PubStore определяет интерфейс хранилища списка изданий.
// Список упорядочен и заменяется целиком.
type PubStore interface {
	// GetPubs возвращает текущий список изданий.
	GetPubs(ctx context.Context) ([]string, error)
	// SetPubs заменяет список изданий новым.
	SetPubs(ctx context.Context, pubs []string) error
}

// Clean отрезает пробелы и выбрасывает пустые записи,
// сохраняя порядок остальных.
func Clean(pubs []string) []string {
	out := make([]string, 0, len(pubs))
	for _, p := range pubs {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
