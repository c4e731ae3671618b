package postgres

import (
	"context"
	"errors"
	"fmt"

	"activityTracker/internal/logger"
	"activityTracker/internal/models/directory"
	repo "activityTracker/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Storage - справочники пользователей и продуктов.
// Пул переиспользуется из подключения репозитория активностей.
type Storage struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// --- пользователи ---

func (s *Storage) ListUsers(ctx context.Context) ([]*directory.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, full_name, is_active FROM users ORDER BY full_name`)
	if err != nil {
		logger.Error("Repository: Не удалось получить пользователей", err)
		return nil, fmt.Errorf("получение пользователей: %w", err)
	}
	defer rows.Close()

	users := []*directory.User{}
	for rows.Next() {
		u := &directory.User{}
		if err := rows.Scan(&u.ID, &u.FullName, &u.IsActive); err != nil {
			return nil, fmt.Errorf("сканирование пользователя: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *Storage) CreateUser(ctx context.Context, fullName string) (*directory.User, error) {
	u := &directory.User{}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (full_name) VALUES ($1) RETURNING id, full_name, is_active`,
		fullName,
	).Scan(&u.ID, &u.FullName, &u.IsActive)
	if err != nil {
		logger.Error("Repository: Не удалось создать пользователя", err)
		return nil, fmt.Errorf("создание пользователя: %w", err)
	}
	return u, nil
}

// FindUserByName - точное совпадение имени без учёта регистра.
func (s *Storage) FindUserByName(ctx context.Context, name string) (*directory.User, error) {
	u := &directory.User{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, full_name, is_active FROM users WHERE LOWER(full_name) = LOWER($1)`,
		name,
	).Scan(&u.ID, &u.FullName, &u.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("поиск пользователя: %w", err)
	}
	return u, nil
}

func (s *Storage) UpdateUser(ctx context.Context, id int64, patch directory.UserPatch) (*directory.User, error) {
	u := &directory.User{}
	err := s.pool.QueryRow(ctx,
		`UPDATE users
			SET full_name = COALESCE($1, full_name),
				is_active = COALESCE($2, is_active)
			WHERE id = $3
			RETURNING id, full_name, is_active`,
		patch.FullName, patch.IsActive, id,
	).Scan(&u.ID, &u.FullName, &u.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось обновить пользователя", err)
		return nil, fmt.Errorf("обновление пользователя: %w", err)
	}
	return u, nil
}

// мягкое удаление: запись остаётся, is_active = false
func (s *Storage) DeactivateUser(ctx context.Context, id int64) (*directory.User, error) {
	u := &directory.User{}
	err := s.pool.QueryRow(ctx,
		`UPDATE users SET is_active = false WHERE id = $1 RETURNING id, full_name, is_active`,
		id,
	).Scan(&u.ID, &u.FullName, &u.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("деактивация пользователя: %w", err)
	}
	return u, nil
}

// --- продукты ---

// ListProducts: q - частичный поиск по имени, all - включить неактивные.
func (s *Storage) ListProducts(ctx context.Context, q string, all bool) ([]*directory.Product, error) {
	query := `SELECT id, name, COALESCE(description, ''), is_active FROM products`
	where := []string{}
	params := []any{}

	if !all {
		where = append(where, "is_active = true")
	}
	if q != "" {
		params = append(params, "%"+q+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(params)))
	}
	for i, clause := range where {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY name LIMIT 50"

	rows, err := s.pool.Query(ctx, query, params...)
	if err != nil {
		logger.Error("Repository: Не удалось получить продукты", err)
		return nil, fmt.Errorf("получение продуктов: %w", err)
	}
	defer rows.Close()

	products := []*directory.Product{}
	for rows.Next() {
		p := &directory.Product{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.IsActive); err != nil {
			return nil, fmt.Errorf("сканирование продукта: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// CreateProduct - прямое создание, дубликат имени отдаёт ErrConflict.
func (s *Storage) CreateProduct(ctx context.Context, name, description string) (*directory.Product, error) {
	p := &directory.Product{}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO products (name, description) VALUES ($1, $2)
			RETURNING id, name, COALESCE(description, ''), is_active`,
		name, description,
	).Scan(&p.ID, &p.Name, &p.Description, &p.IsActive)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repo.ErrConflict
		}
		logger.Error("Repository: Не удалось создать продукт", err)
		return nil, fmt.Errorf("создание продукта: %w", err)
	}
	return p, nil
}

func (s *Storage) FindProductByName(ctx context.Context, name string) (*directory.Product, error) {
	p := &directory.Product{}
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, COALESCE(description, ''), is_active
			FROM products WHERE LOWER(name) = LOWER($1)`,
		name,
	).Scan(&p.ID, &p.Name, &p.Description, &p.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("поиск продукта: %w", err)
	}
	return p, nil
}

func (s *Storage) UpdateProduct(ctx context.Context, id int64, patch directory.ProductPatch) (*directory.Product, error) {
	p := &directory.Product{}
	err := s.pool.QueryRow(ctx,
		`UPDATE products
			SET name = COALESCE($1, name),
				description = COALESCE($2, description),
				is_active = COALESCE($3, is_active)
			WHERE id = $4
			RETURNING id, name, COALESCE(description, ''), is_active`,
		patch.Name, patch.Description, patch.IsActive, id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, repo.ErrConflict
		}
		logger.Error("Repository: Не удалось обновить продукт", err)
		return nil, fmt.Errorf("обновление продукта: %w", err)
	}
	return p, nil
}

func (s *Storage) DeactivateProduct(ctx context.Context, id int64) (*directory.Product, error) {
	p := &directory.Product{}
	err := s.pool.QueryRow(ctx,
		`UPDATE products SET is_active = false WHERE id = $1
			RETURNING id, name, COALESCE(description, ''), is_active`,
		id,
	).Scan(&p.ID, &p.Name, &p.Description, &p.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, fmt.Errorf("деактивация продукта: %w", err)
	}
	return p, nil
}
