package inmemory

import (
	"context"
	"sort"

	"activityTracker/internal/models/activity"
	"activityTracker/internal/models/stats"
)

// Dashboard считает те же агрегаты, что и SQL-вариант, но в памяти.
func (s *Storage) Dashboard(ctx context.Context, scope stats.Scope) (*stats.Dashboard, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	d := &stats.Dashboard{
		EffortByPerson:       []stats.PersonEffort{},
		StatusDistribution:   []stats.StatusCount{},
		CategoryDistribution: []stats.CategoryCount{},
		TopProducts:          []stats.ProductEffort{},
		HeatmapData:          []stats.HeatmapPoint{},
	}

	inScope := func(a *activity.Activity) bool {
		return scope.UserID == nil || a.UserID == *scope.UserID
	}

	effortByUser := map[int64]float64{}
	effortByProduct := map[int64]float64{}
	statusCounts := map[string]int64{}
	categoryCounts := map[string]int64{}
	dayCounts := map[string]int64{}

	for _, id := range s.ids {
		a := s.storage[id]
		if !inScope(a) {
			continue
		}

		// эфор за всё время, по всем неделям записи
		var lifetime float64
		for _, rec := range a.WeeklyData {
			lifetime += rec.Effort
		}
		d.TotalEffort += lifetime
		effortByUser[a.UserID] += lifetime
		if a.ProductID != nil {
			effortByProduct[*a.ProductID] += lifetime
		}

		statusCounts[string(a.Status)]++
		categoryCounts[a.Category]++
		dayCounts[a.UpdatedAt.Format("2006-01-02")]++
	}

	for _, u := range s.directory.ActiveUsers() {
		if scope.UserID != nil && u.ID != *scope.UserID {
			continue
		}
		d.EffortByPerson = append(d.EffortByPerson, stats.PersonEffort{
			FullName: u.FullName,
			Effort:   effortByUser[u.ID],
		})
	}
	sort.SliceStable(d.EffortByPerson, func(i, j int) bool {
		return d.EffortByPerson[i].Effort > d.EffortByPerson[j].Effort
	})

	for status, count := range statusCounts {
		d.StatusDistribution = append(d.StatusDistribution, stats.StatusCount{Status: status, Count: count})
	}
	sort.SliceStable(d.StatusDistribution, func(i, j int) bool {
		return d.StatusDistribution[i].Count > d.StatusDistribution[j].Count
	})

	for category, count := range categoryCounts {
		d.CategoryDistribution = append(d.CategoryDistribution, stats.CategoryCount{Category: category, Count: count})
	}
	sort.SliceStable(d.CategoryDistribution, func(i, j int) bool {
		return d.CategoryDistribution[i].Count > d.CategoryDistribution[j].Count
	})

	for productID, effort := range effortByProduct {
		d.TopProducts = append(d.TopProducts, stats.ProductEffort{
			Name:   s.directory.ProductName(productID),
			Effort: effort,
		})
	}
	sort.SliceStable(d.TopProducts, func(i, j int) bool {
		return d.TopProducts[i].Effort > d.TopProducts[j].Effort
	})
	if len(d.TopProducts) > 5 {
		d.TopProducts = d.TopProducts[:5]
	}

	for day, count := range dayCounts {
		d.HeatmapData = append(d.HeatmapData, stats.HeatmapPoint{Day: day, Count: count})
	}
	// последние 60 дат, самые свежие первыми
	sort.SliceStable(d.HeatmapData, func(i, j int) bool {
		return d.HeatmapData[i].Day > d.HeatmapData[j].Day
	})
	if len(d.HeatmapData) > 60 {
		d.HeatmapData = d.HeatmapData[:60]
	}

	return d, nil
}

func (s *Storage) Overview(ctx context.Context) (*stats.Overview, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return &stats.Overview{
		TeamSize:        int64(len(s.directory.ActiveUsers())),
		TotalActivities: int64(len(s.ids)),
		SystemMetrics:   "All systems operational",
	}, nil
}
