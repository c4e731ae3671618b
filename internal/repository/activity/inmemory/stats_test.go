package inmemory_test

import (
	"context"
	"testing"

	"activityTracker/internal/models/activity"
	"activityTracker/internal/models/stats"
	"activityTracker/internal/models/week"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStorage_Dashboard - глобальные агрегаты: суммарный эфор считается
// по всем неделям всех активностей, разбивка по людям сходится с итогом.
func TestStorage_Dashboard(t *testing.T) {
	s, dir := newStorage(t)
	ctx := context.Background()

	ivan, err := dir.CreateUser(ctx, "Иван Петров")
	require.NoError(t, err)
	anna, err := dir.CreateUser(ctx, "Анна Сидорова")
	require.NoError(t, err)

	billing, err := dir.CreateProduct(ctx, "Billing", "")
	require.NoError(t, err)
	crm, err := dir.CreateProduct(ctx, "CRM", "")
	require.NoError(t, err)

	mustCreate(t, s, &activity.Activity{
		UserID: ivan.ID, ProductID: &billing.ID,
		Category: "Proje ID (Zorunlu)", Status: activity.StatusCompleted, Subject: "a",
		WeeklyData: week.Store{
			"2025-W06": {Effort: 3},
			"2025-W07": {Effort: 2},
		},
	})
	mustCreate(t, s, &activity.Activity{
		UserID: ivan.ID, ProductID: &crm.ID,
		Category: "Diğer", Status: activity.StatusInProgress, Subject: "b",
		WeeklyData: week.Store{"2025-W07": {Effort: 4}},
	})
	mustCreate(t, s, &activity.Activity{
		UserID: anna.ID, ProductID: &billing.ID,
		Category: "Diğer", Status: activity.StatusInProgress, Subject: "c",
		WeeklyData: week.Store{"2025-W07": {Effort: 6}},
	})

	d, err := s.Dashboard(ctx, stats.Global())
	require.NoError(t, err)

	assert.Equal(t, 15.0, d.TotalEffort)

	// разбивка по людям сходится с итогом
	var sum float64
	for _, p := range d.EffortByPerson {
		sum += p.Effort
	}
	assert.Equal(t, d.TotalEffort, sum)

	require.Len(t, d.EffortByPerson, 2)
	assert.Equal(t, "Иван Петров", d.EffortByPerson[0].FullName)
	assert.Equal(t, 9.0, d.EffortByPerson[0].Effort)
	assert.Equal(t, 6.0, d.EffortByPerson[1].Effort)

	require.Len(t, d.StatusDistribution, 2)
	assert.Equal(t, string(activity.StatusInProgress), d.StatusDistribution[0].Status)
	assert.Equal(t, int64(2), d.StatusDistribution[0].Count)

	require.Len(t, d.CategoryDistribution, 2)
	assert.Equal(t, "Diğer", d.CategoryDistribution[0].Category)
	assert.Equal(t, int64(2), d.CategoryDistribution[0].Count)

	require.Len(t, d.TopProducts, 2)
	assert.Equal(t, "Billing", d.TopProducts[0].Name)
	assert.Equal(t, 11.0, d.TopProducts[0].Effort)
	assert.Equal(t, "CRM", d.TopProducts[1].Name)
	assert.Equal(t, 4.0, d.TopProducts[1].Effort)

	require.NotEmpty(t, d.HeatmapData)
	var heat int64
	for _, p := range d.HeatmapData {
		heat += p.Count
	}
	assert.Equal(t, int64(3), heat)
}

// TestStorage_Dashboard_PersonalScope - персональный дашборд считает
// только активности одного пользователя.
func TestStorage_Dashboard_PersonalScope(t *testing.T) {
	s, dir := newStorage(t)
	ctx := context.Background()

	ivan, err := dir.CreateUser(ctx, "Иван Петров")
	require.NoError(t, err)
	anna, err := dir.CreateUser(ctx, "Анна Сидорова")
	require.NoError(t, err)

	mustCreate(t, s, &activity.Activity{
		UserID: ivan.ID, Category: "Diğer", Status: activity.StatusNew, Subject: "a",
		WeeklyData: week.Store{"2025-W07": {Effort: 5}},
	})
	mustCreate(t, s, &activity.Activity{
		UserID: anna.ID, Category: "Diğer", Status: activity.StatusNew, Subject: "b",
		WeeklyData: week.Store{"2025-W07": {Effort: 7}},
	})

	d, err := s.Dashboard(ctx, stats.Personal(anna.ID))
	require.NoError(t, err)

	assert.Equal(t, 7.0, d.TotalEffort)
	require.Len(t, d.EffortByPerson, 1)
	assert.Equal(t, "Анна Сидорова", d.EffortByPerson[0].FullName)

	// сумма персональных итогов равна глобальному
	global, err := s.Dashboard(ctx, stats.Global())
	require.NoError(t, err)
	personal, err := s.Dashboard(ctx, stats.Personal(ivan.ID))
	require.NoError(t, err)
	assert.Equal(t, global.TotalEffort, personal.TotalEffort+d.TotalEffort)
}

func TestStorage_Overview(t *testing.T) {
	s, dir := newStorage(t)
	ctx := context.Background()

	u, err := dir.CreateUser(ctx, "Иван Петров")
	require.NoError(t, err)
	_, err = dir.CreateUser(ctx, "Анна Сидорова")
	require.NoError(t, err)

	mustCreate(t, s, &activity.Activity{UserID: u.ID, Status: activity.StatusNew, Subject: "a"})

	o, err := s.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), o.TeamSize)
	assert.Equal(t, int64(1), o.TotalActivities)

	// деактивированный пользователь выпадает из размера команды
	_, err = dir.DeactivateUser(ctx, u.ID)
	require.NoError(t, err)

	o, err = s.Overview(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), o.TeamSize)
}
