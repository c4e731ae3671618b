package service

import (
	"context"
	"fmt"
	"time"

	"activityTracker/internal/logger"
	"activityTracker/internal/models/stats"

	"go.uber.org/zap"
)

type StatsService struct {
	repo StatsRepository
}

func NewStatsService(statsRepo StatsRepository) StatsService {
	return StatsService{repo: statsRepo}
}

// Dashboard - агрегаты по всей команде либо по одному пользователю.
// Считается синхронно на каждый запрос, без кэша.
func (s *StatsService) Dashboard(ctx context.Context, scope stats.Scope) (*stats.Dashboard, error) {
	start := time.Now()

	d, err := s.repo.Dashboard(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("расчёт дашборда: %w", err)
	}

	logger.Info("Service: Дашборд посчитан",
		zap.Bool("personal", scope.Personal()),
		zap.Duration("ms", time.Since(start)))
	return d, nil
}

func (s *StatsService) Overview(ctx context.Context) (*stats.Overview, error) {
	o, err := s.repo.Overview(ctx)
	if err != nil {
		return nil, fmt.Errorf("общая статистика: %w", err)
	}
	return o, nil
}
