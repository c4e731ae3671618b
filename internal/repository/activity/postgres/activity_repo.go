package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"activityTracker/internal/logger"
	"activityTracker/internal/models/activity"
	"activityTracker/internal/models/week"
	repo "activityTracker/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Storage struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, connString string, maxConns, minConns int32, idleTimeout time.Duration) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	config.MaxConns = maxConns
	config.MinConns = minConns
	config.MaxConnIdleTime = idleTimeout

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &Storage{pool: pool}, nil
}

func (s *Storage) Pool() *pgxpool.Pool {
	return s.pool
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

const activityColumns = `a.id,
				a.user_id,
				a.product_id,
				a.category,
				a.status,
				a.ref_id,
				a.criticality,
				a.subject,
				a.description,
				a.weekly_data,
				a.version,
				a.created_at,
				a.updated_at`

func scanActivity(row pgx.Row, a *activity.Activity, withNames bool) error {
	dest := []any{
		&a.ID,
		&a.UserID,
		&a.ProductID,
		&a.Category,
		&a.Status,
		&a.RefID,
		&a.Criticality,
		&a.Subject,
		&a.Description,
		&a.WeeklyData,
		&a.Version,
		&a.CreatedAt,
		&a.UpdatedAt,
	}
	if withNames {
		dest = append(dest, &a.UserName, &a.ProductName)
	}
	return row.Scan(dest...)
}

func (s *Storage) Create(ctx context.Context, toCreate *activity.Activity) error {
	start := time.Now()

	query := `INSERT INTO activities
				(user_id, product_id, category, status, ref_id, criticality, subject, description, weekly_data)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				RETURNING id, version, created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		toCreate.UserID,
		toCreate.ProductID,
		toCreate.Category,
		toCreate.Status,
		toCreate.RefID,
		toCreate.Criticality,
		toCreate.Subject,
		toCreate.Description,
		toCreate.WeeklyData,
	).Scan(&toCreate.ID, &toCreate.Version, &toCreate.CreatedAt, &toCreate.UpdatedAt)

	if err != nil {
		logger.Error("Repository: Не удалось добавить активность", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление активности: %w", err)
	}

	if time.Since(start) > time.Millisecond*50 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id int64) (*activity.Activity, error) {
	start := time.Now()

	query := `SELECT ` + activityColumns + `,
				COALESCE(u.full_name, ''),
				COALESCE(p.name, '')
				FROM activities a
				LEFT JOIN users u ON a.user_id = u.id
				LEFT JOIN products p ON a.product_id = p.id
				WHERE a.id = $1`

	a := &activity.Activity{}
	err := scanActivity(s.pool.QueryRow(ctx, query, id), a, true)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить активность", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение активности: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}
	return a, nil
}

// Update - compare-and-swap по колонке version: проигравший гонку вызов
// получает ErrVersionConflict, а не молча перетирает чужие изменения.
func (s *Storage) Update(ctx context.Context, toUpdate *activity.Activity) error {
	start := time.Now()

	query := `UPDATE activities
			SET status = $1,
				category = $2,
				ref_id = $3,
				criticality = $4,
				subject = $5,
				description = $6,
				weekly_data = $7,
				version = version + 1,
				updated_at = NOW()
			WHERE id = $8 AND version = $9
			RETURNING version, updated_at`

	err := s.pool.QueryRow(ctx, query,
		toUpdate.Status,
		toUpdate.Category,
		toUpdate.RefID,
		toUpdate.Criticality,
		toUpdate.Subject,
		toUpdate.Description,
		toUpdate.WeeklyData,
		toUpdate.ID,
		toUpdate.Version,
	).Scan(&toUpdate.Version, &toUpdate.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logger.Warn("Repository: Конфликт версий при обновлении активности",
				zap.Int64("activity_id", toUpdate.ID),
				zap.Int("expected_version", toUpdate.Version))
			return repo.ErrVersionConflict
		}
		logger.Error("Repository: Не удалось обновить активность", err)
		return fmt.Errorf("обновление активности: %w", err)
	}

	if time.Since(start) > time.Millisecond*100 {
		logger.Warn("Repository: Медленная операция", zap.Duration("ms", time.Since(start)))
	}
	return nil
}

// колонки сортировки: только значения из белого списка попадают в текст запроса,
// пользовательский ввод в SQL не конкатенируется
var sortColumns = map[activity.SortKey]string{
	activity.SortUpdatedAt:   "a.updated_at",
	activity.SortUserName:    "u.full_name",
	activity.SortProductName: "p.name",
	activity.SortCategory:    "a.category",
	activity.SortStatus:      "a.status",
	activity.SortSubject:     "a.subject",
	activity.SortCriticality: "a.criticality",
}

// List возвращает страницу активностей и общее число совпадений по тем же фильтрам.
func (s *Storage) List(ctx context.Context, q activity.ListQuery) ([]*activity.Activity, int, error) {
	start := time.Now()

	where := []string{}
	params := []any{}

	if q.UserID != nil {
		params = append(params, *q.UserID)
		where = append(where, fmt.Sprintf("a.user_id = $%d", len(params)))
	}
	if q.ProductID != nil {
		params = append(params, *q.ProductID)
		where = append(where, fmt.Sprintf("a.product_id = $%d", len(params)))
	}
	if q.Week != "" {
		params = append(params, q.Week)
		where = append(where, fmt.Sprintf(
			`EXISTS (SELECT 1 FROM jsonb_object_keys(a.weekly_data) AS wk(key)
				WHERE wk.key ILIKE '%%' || $%d || '%%')`, len(params)))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	countQuery := `SELECT COUNT(*) FROM activities a` + whereClause

	total := 0
	if err := s.pool.QueryRow(ctx, countQuery, params...).Scan(&total); err != nil {
		logger.Error("Repository: Не удалось посчитать активности", err)
		return nil, 0, fmt.Errorf("подсчёт активностей: %w", err)
	}

	orderBy, params := orderClause(q, params)

	params = append(params, q.Limit)
	limitIdx := len(params)
	params = append(params, (q.Page-1)*q.Limit)
	offsetIdx := len(params)

	query := `SELECT ` + activityColumns + `,
				COALESCE(u.full_name, ''),
				COALESCE(p.name, '')
				FROM activities a
				LEFT JOIN users u ON a.user_id = u.id
				LEFT JOIN products p ON a.product_id = p.id` +
		whereClause + orderBy +
		" LIMIT $" + strconv.Itoa(limitIdx) + " OFFSET $" + strconv.Itoa(offsetIdx)

	rows, err := s.pool.Query(ctx, query, params...)
	if err != nil {
		logger.Error("Repository: Не удалось получить активности", err, zap.Duration("ms", time.Since(start)))
		return nil, 0, fmt.Errorf("получение активностей: %w", err)
	}
	defer rows.Close()

	activities := []*activity.Activity{}
	for rows.Next() {
		a := &activity.Activity{}
		if err := scanActivity(rows, a, true); err != nil {
			logger.Warn("Repository: Ошибка сканирования активности", zap.Error(err))
			continue
		}
		activities = append(activities, a)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, 0, fmt.Errorf("итерация по строкам: %w", err)
	}

	if time.Since(start) > time.Millisecond*50+time.Millisecond*10*time.Duration(q.Limit) {
		logger.Warn("Repository: Медленный запрос", zap.Duration("ms", time.Since(start)))
	}

	return activities, total, nil
}

// orderClause строит ORDER BY из белого списка колонок.
// Сортировка по effort берёт число из записи конкретной недели;
// активности без записи на эту неделю идут в конец при любом направлении.
func orderClause(q activity.ListQuery, params []any) (string, []any) {
	dir := "DESC"
	if q.Order == activity.OrderAsc {
		dir = "ASC"
	}

	if q.Sort == activity.SortEffort {
		params = append(params, q.Week)
		expr := fmt.Sprintf("(a.weekly_data -> $%d ->> 'effort')::numeric", len(params))
		return fmt.Sprintf(" ORDER BY %s %s NULLS LAST, a.id DESC", expr, dir), params
	}

	col, ok := sortColumns[q.Sort]
	if !ok {
		col = "a.updated_at"
	}
	return fmt.Sprintf(" ORDER BY %s %s, a.id DESC", col, dir), params
}

// LatestWeek - максимальный ключ недели по всем активностям.
// Нулевая заполненность строки сравнения даёт хронологический максимум.
func (s *Storage) LatestWeek(ctx context.Context) (week.Key, bool, error) {
	query := `SELECT COALESCE(MAX(k), '')
				FROM activities a, jsonb_object_keys(a.weekly_data) AS k`

	var raw string
	if err := s.pool.QueryRow(ctx, query).Scan(&raw); err != nil {
		logger.Error("Repository: Не удалось получить последнюю неделю", err)
		return "", false, fmt.Errorf("получение последней недели: %w", err)
	}
	if raw == "" {
		return "", false, nil
	}
	return week.Key(raw), true, nil
}
