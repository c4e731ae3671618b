package postgres

import (
	"context"
	"fmt"
	"time"

	"activityTracker/internal/logger"
	"activityTracker/internal/models/stats"

	"go.uber.org/zap"
)

// Dashboard считает агрегаты по всем неделям всех активностей области видимости.
// Все суммы приводятся к ::numeric и сканируются в числа - наружу никогда
// не уходят строковые суммы из jsonb.
func (s *Storage) Dashboard(ctx context.Context, scope stats.Scope) (*stats.Dashboard, error) {
	start := time.Now()
	d := &stats.Dashboard{
		EffortByPerson:       []stats.PersonEffort{},
		StatusDistribution:   []stats.StatusCount{},
		CategoryDistribution: []stats.CategoryCount{},
		TopProducts:          []stats.ProductEffort{},
		HeatmapData:          []stats.HeatmapPoint{},
	}

	if err := s.totalEffort(ctx, scope, d); err != nil {
		return nil, err
	}
	if err := s.effortByPerson(ctx, scope, d); err != nil {
		return nil, err
	}
	if err := s.statusDistribution(ctx, scope, d); err != nil {
		return nil, err
	}
	if err := s.categoryDistribution(ctx, scope, d); err != nil {
		return nil, err
	}
	if err := s.topProducts(ctx, scope, d); err != nil {
		return nil, err
	}
	if err := s.heatmap(ctx, scope, d); err != nil {
		return nil, err
	}

	if time.Since(start) > time.Millisecond*200 {
		logger.Warn("Repository: Медленный расчёт дашборда", zap.Duration("ms", time.Since(start)))
	}
	return d, nil
}

func scopeFilter(scope stats.Scope, column string) (string, []any) {
	if scope.UserID == nil {
		return "", nil
	}
	return fmt.Sprintf(" WHERE %s = $1", column), []any{*scope.UserID}
}

// суммарный эфор за всё время, не за одну неделю
func (s *Storage) totalEffort(ctx context.Context, scope stats.Scope, d *stats.Dashboard) error {
	clause, params := scopeFilter(scope, "a.user_id")
	query := `SELECT COALESCE(sum((w.value->>'effort')::numeric), 0)
				FROM activities a, jsonb_each(a.weekly_data) w` + clause

	if err := s.pool.QueryRow(ctx, query, params...).Scan(&d.TotalEffort); err != nil {
		logger.Error("Repository: Не удалось посчитать суммарный эфор", err)
		return fmt.Errorf("суммарный эфор: %w", err)
	}
	return nil
}

func (s *Storage) effortByPerson(ctx context.Context, scope stats.Scope, d *stats.Dashboard) error {
	query := `SELECT u.full_name, COALESCE(sum((w.value->>'effort')::numeric), 0) AS effort
				FROM users u
				LEFT JOIN activities a ON a.user_id = u.id
				LEFT JOIN LATERAL jsonb_each(a.weekly_data) w ON true
				WHERE u.is_active = true`
	params := []any{}
	if scope.UserID != nil {
		params = append(params, *scope.UserID)
		query += " AND u.id = $1"
	}
	query += ` GROUP BY u.full_name ORDER BY effort DESC`

	rows, err := s.pool.Query(ctx, query, params...)
	if err != nil {
		logger.Error("Repository: Не удалось посчитать эфор по людям", err)
		return fmt.Errorf("эфор по людям: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pe stats.PersonEffort
		if err := rows.Scan(&pe.FullName, &pe.Effort); err != nil {
			logger.Warn("Repository: Ошибка сканирования эфора", zap.Error(err))
			continue
		}
		d.EffortByPerson = append(d.EffortByPerson, pe)
	}
	return rows.Err()
}

func (s *Storage) statusDistribution(ctx context.Context, scope stats.Scope, d *stats.Dashboard) error {
	clause, params := scopeFilter(scope, "a.user_id")
	query := `SELECT a.status, COUNT(*)
				FROM activities a` + clause + `
				GROUP BY a.status
				ORDER BY COUNT(*) DESC`

	rows, err := s.pool.Query(ctx, query, params...)
	if err != nil {
		logger.Error("Repository: Не удалось посчитать распределение статусов", err)
		return fmt.Errorf("распределение статусов: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sc stats.StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			logger.Warn("Repository: Ошибка сканирования статуса", zap.Error(err))
			continue
		}
		d.StatusDistribution = append(d.StatusDistribution, sc)
	}
	return rows.Err()
}

func (s *Storage) categoryDistribution(ctx context.Context, scope stats.Scope, d *stats.Dashboard) error {
	clause, params := scopeFilter(scope, "a.user_id")
	query := `SELECT a.category, COUNT(*)
				FROM activities a` + clause + `
				GROUP BY a.category
				ORDER BY COUNT(*) DESC`

	rows, err := s.pool.Query(ctx, query, params...)
	if err != nil {
		logger.Error("Repository: Не удалось посчитать распределение категорий", err)
		return fmt.Errorf("распределение категорий: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cc stats.CategoryCount
		if err := rows.Scan(&cc.Category, &cc.Count); err != nil {
			logger.Warn("Repository: Ошибка сканирования категории", zap.Error(err))
			continue
		}
		d.CategoryDistribution = append(d.CategoryDistribution, cc)
	}
	return rows.Err()
}

func (s *Storage) topProducts(ctx context.Context, scope stats.Scope, d *stats.Dashboard) error {
	query := `SELECT p.name, COALESCE(sum((w.value->>'effort')::numeric), 0) AS effort
				FROM products p
				JOIN activities a ON a.product_id = p.id
				LEFT JOIN LATERAL jsonb_each(a.weekly_data) w ON true`
	params := []any{}
	if scope.UserID != nil {
		params = append(params, *scope.UserID)
		query += " WHERE a.user_id = $1"
	}
	query += ` GROUP BY p.name ORDER BY effort DESC LIMIT 5`

	rows, err := s.pool.Query(ctx, query, params...)
	if err != nil {
		logger.Error("Repository: Не удалось посчитать топ продуктов", err)
		return fmt.Errorf("топ продуктов: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pe stats.ProductEffort
		if err := rows.Scan(&pe.Name, &pe.Effort); err != nil {
			logger.Warn("Repository: Ошибка сканирования продукта", zap.Error(err))
			continue
		}
		d.TopProducts = append(d.TopProducts, pe)
	}
	return rows.Err()
}

// heatmap - плотность касаний системы по календарным датам updated_at,
// последние 60 дат. К неделям из weekly_data отношения не имеет.
func (s *Storage) heatmap(ctx context.Context, scope stats.Scope, d *stats.Dashboard) error {
	clause, params := scopeFilter(scope, "a.user_id")
	query := `SELECT to_char(a.updated_at::date, 'YYYY-MM-DD') AS day, COUNT(*)
				FROM activities a` + clause + `
				GROUP BY a.updated_at::date
				ORDER BY a.updated_at::date DESC
				LIMIT 60`

	rows, err := s.pool.Query(ctx, query, params...)
	if err != nil {
		logger.Error("Repository: Не удалось посчитать тепловую карту", err)
		return fmt.Errorf("тепловая карта: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var hp stats.HeatmapPoint
		if err := rows.Scan(&hp.Day, &hp.Count); err != nil {
			logger.Warn("Repository: Ошибка сканирования тепловой карты", zap.Error(err))
			continue
		}
		d.HeatmapData = append(d.HeatmapData, hp)
	}
	return rows.Err()
}

func (s *Storage) Overview(ctx context.Context) (*stats.Overview, error) {
	o := &stats.Overview{SystemMetrics: "All systems operational"}

	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE is_active = true`).Scan(&o.TeamSize); err != nil {
		logger.Error("Repository: Не удалось посчитать размер команды", err)
		return nil, fmt.Errorf("размер команды: %w", err)
	}
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM activities`).Scan(&o.TotalActivities); err != nil {
		logger.Error("Repository: Не удалось посчитать активности", err)
		return nil, fmt.Errorf("число активностей: %w", err)
	}
	return o, nil
}
