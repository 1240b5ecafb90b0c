package repositories

import (
	"context"
	"fmt"

	"github.com/Totarae/AdLinker/internal/database"
	"github.com/Totarae/AdLinker/internal/storage"
)

// PubRepository реализует storage.PubStore поверх PostgreSQL.
// Список изданий хранится строками с позицией для сохранения порядка.
type PubRepository struct {
	DB database.DBInterface
}

var _ storage.PubStore = (*PubRepository)(nil)

// NewPubRepository создаёт новый экземпляр PubRepository.
func NewPubRepository(db database.DBInterface) *PubRepository {
	return &PubRepository{DB: db}
}

// GetPubs возвращает список изданий в сохранённом порядке.
func (r *PubRepository) GetPubs(ctx context.Context) ([]string, error) {
	query := `SELECT name FROM publications ORDER BY position`
	rows, err := r.DB.(*database.DB).Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query publications: %w", err)
	}
	defer rows.Close()

	var pubs []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		pubs = append(pubs, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read publications: %w", err)
	}

	return pubs, nil
}

// SetPubs заменяет список изданий в рамках транзакции.
func (r *PubRepository) SetPubs(ctx context.Context, pubs []string) error {
	clean := storage.Clean(pubs)

	tx, err := r.DB.(*database.DB).Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM publications`); err != nil {
		return fmt.Errorf("failed to clear publications: %w", err)
	}

	query := `INSERT INTO publications (position, name) VALUES ($1, $2)`
	for i, name := range clean {
		if _, err := tx.Exec(ctx, query, i, name); err != nil {
			return fmt.Errorf("failed to insert publication: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
