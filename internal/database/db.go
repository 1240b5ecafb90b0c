package database

import (
	"context"
	"errors"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type DBInterface interface {
	Ping(ctx context.Context) error
	Close()
}

// DB представляет подключение к БД
type DB struct {
	Pool   *pgxpool.Pool
	Logger *zap.Logger
}

// NewDB создает новое подключение к БД
func NewDB(dsn string, logger *zap.Logger) (*DB, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	return &DB{Pool: pool, Logger: logger}, nil
}

// RunMigrations применяет миграции из каталога migrationsPath
func RunMigrations(migrationsPath, dsn string, logger *zap.Logger) error {
	m, err := migrate.New("file://"+migrationsPath, dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	logger.Info("migrations applied", zap.String("path", migrationsPath))
	return nil
}

// Ping проверяет соединение с БД
func (db *DB) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	return db.Pool.Ping(ctx)
}

// Close закрывает соединение с БД
func (db *DB) Close() {
	db.Pool.Close()
}
