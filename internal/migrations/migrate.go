package migrations

import (
	"embed"
	"errors"
	"fmt"

	"activityTracker/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed *.sql
var files embed.FS

func newMigrator(databaseURL string) (*migrate.Migrate, error) {
	src, err := iofs.New(files, ".")
	if err != nil {
		return nil, fmt.Errorf("чтение встроенных миграций: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("инициализация мигратора: %w", err)
	}
	return m, nil
}

func Up(databaseURL string) error {
	logger.Info("Применение миграций")

	m, err := newMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Миграции не применились", err)
		return fmt.Errorf("применение миграций: %w", err)
	}

	logger.Info("Миграции применены")
	return nil
}

func Down(databaseURL string) error {
	logger.Info("Откат миграций")

	m, err := newMigrator(databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Error("Откат миграций не удался", err)
		return fmt.Errorf("откат миграций: %w", err)
	}

	logger.Info("Миграции откачены")
	return nil
}
