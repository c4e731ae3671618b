package inmemory_test

import (
	"context"
	"fmt"
	"testing"

	"activityTracker/internal/models/activity"
	"activityTracker/internal/models/week"
	repo "activityTracker/internal/repository"
	"activityTracker/internal/repository/activity/inmemory"
	directoryinmem "activityTracker/internal/repository/directory/inmemory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorage(t *testing.T) (*inmemory.Storage, *directoryinmem.Storage) {
	t.Helper()
	dir := directoryinmem.NewStorage()
	return inmemory.NewStorage(dir), dir
}

func mustCreate(t *testing.T, s *inmemory.Storage, a *activity.Activity) *activity.Activity {
	t.Helper()
	require.NoError(t, s.Create(context.Background(), a))
	return a
}

func TestStorage_CreateAndGetByID(t *testing.T) {
	s, dir := newStorage(t)
	ctx := context.Background()

	user, err := dir.CreateUser(ctx, "Иван Петров")
	require.NoError(t, err)

	created := mustCreate(t, s, &activity.Activity{
		UserID:   user.ID,
		Category: "Diğer",
		Status:   activity.StatusNew,
		Subject:  "первичный анализ",
		WeeklyData: week.Store{
			"2025-W07": {Progress: "начато", Effort: 3},
		},
	})

	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, 1, created.Version)

	got, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "первичный анализ", got.Subject)
	assert.Equal(t, "Иван Петров", got.UserName)

	_, err = s.GetByID(ctx, 999)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

// TestStorage_Update_VersionConflict - обновление со старой версией
// отклоняется, с актуальной проходит и инкрементирует версию.
func TestStorage_Update_VersionConflict(t *testing.T) {
	s, _ := newStorage(t)
	ctx := context.Background()

	created := mustCreate(t, s, &activity.Activity{
		UserID:  1,
		Status:  activity.StatusNew,
		Subject: "тема",
	})

	first, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	second, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)

	first.Subject = "тема из первого запроса"
	require.NoError(t, s.Update(ctx, first))
	assert.Equal(t, 2, first.Version)

	// второй запрос несёт версию 1, а в хранилище уже 2
	second.Subject = "тема из второго запроса"
	err = s.Update(ctx, second)
	assert.ErrorIs(t, err, repo.ErrVersionConflict)

	got, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "тема из первого запроса", got.Subject)
}

func TestStorage_Update_NotFound(t *testing.T) {
	s, _ := newStorage(t)

	err := s.Update(context.Background(), &activity.Activity{ID: 42, Version: 1})
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

// TestStorage_List_WeekFilter - фильтр по неделе частичный: "2025"
// находит активности с любой неделей 2025 года.
func TestStorage_List_WeekFilter(t *testing.T) {
	s, _ := newStorage(t)
	ctx := context.Background()

	mustCreate(t, s, &activity.Activity{
		UserID: 1, Status: activity.StatusNew, Subject: "a",
		WeeklyData: week.Store{"2025-W01": {Effort: 1}},
	})
	mustCreate(t, s, &activity.Activity{
		UserID: 1, Status: activity.StatusNew, Subject: "b",
		WeeklyData: week.Store{"2025-W30": {Effort: 2}},
	})
	mustCreate(t, s, &activity.Activity{
		UserID: 1, Status: activity.StatusNew, Subject: "c",
		WeeklyData: week.Store{"2026-W01": {Effort: 3}},
	})

	items, total, err := s.List(ctx, activity.ListQuery{
		Week: "2025", Sort: activity.SortUpdatedAt, Order: activity.OrderDesc, Page: 1, Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, items, 2)
	for _, it := range items {
		assert.True(t, it.WeeklyData.AnyKey(func(k week.Key) bool { return k.ContainsFold("2025") }))
	}

	// точная неделя тоже работает как частичное совпадение
	items, total, err = s.List(ctx, activity.ListQuery{
		Week: "2026-W01", Sort: activity.SortUpdatedAt, Order: activity.OrderDesc, Page: 1, Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "c", items[0].Subject)
}

func TestStorage_List_UserAndProductFilters(t *testing.T) {
	s, dir := newStorage(t)
	ctx := context.Background()

	product, err := dir.CreateProduct(ctx, "Billing", "")
	require.NoError(t, err)

	mustCreate(t, s, &activity.Activity{UserID: 1, ProductID: &product.ID, Status: activity.StatusNew, Subject: "a"})
	mustCreate(t, s, &activity.Activity{UserID: 1, Status: activity.StatusNew, Subject: "b"})
	mustCreate(t, s, &activity.Activity{UserID: 2, Status: activity.StatusNew, Subject: "c"})

	userID := int64(1)
	_, total, err := s.List(ctx, activity.ListQuery{
		UserID: &userID, Sort: activity.SortUpdatedAt, Order: activity.OrderDesc, Page: 1, Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	items, total, err := s.List(ctx, activity.ListQuery{
		ProductID: &product.ID, Sort: activity.SortUpdatedAt, Order: activity.OrderDesc, Page: 1, Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, "Billing", items[0].ProductName)
}

// TestStorage_List_Pagination - total отражает все совпадения,
// страница за пределами данных возвращает пустой срез.
func TestStorage_List_Pagination(t *testing.T) {
	s, _ := newStorage(t)
	ctx := context.Background()

	for i := 0; i < 23; i++ {
		mustCreate(t, s, &activity.Activity{
			UserID: 1, Status: activity.StatusNew,
			Subject: fmt.Sprintf("активность %02d", i),
		})
	}

	items, total, err := s.List(ctx, activity.ListQuery{
		Sort: activity.SortSubject, Order: activity.OrderAsc, Page: 3, Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 23, total)
	assert.Len(t, items, 3)

	items, total, err = s.List(ctx, activity.ListQuery{
		Sort: activity.SortSubject, Order: activity.OrderAsc, Page: 5, Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, 23, total)
	assert.Empty(t, items)
}

// TestStorage_List_EffortSort - сортировка по эфору выбранной недели,
// активности без записи на эту неделю в конце при обоих направлениях.
func TestStorage_List_EffortSort(t *testing.T) {
	s, _ := newStorage(t)
	ctx := context.Background()

	mustCreate(t, s, &activity.Activity{
		UserID: 1, Status: activity.StatusNew, Subject: "low",
		WeeklyData: week.Store{"2025-W07": {Effort: 1}},
	})
	mustCreate(t, s, &activity.Activity{
		UserID: 1, Status: activity.StatusNew, Subject: "high",
		WeeklyData: week.Store{"2025-W07": {Effort: 9}},
	})
	mustCreate(t, s, &activity.Activity{
		UserID: 1, Status: activity.StatusNew, Subject: "other-week",
		WeeklyData: week.Store{"2025-W08": {Effort: 100}},
	})

	items, _, err := s.List(ctx, activity.ListQuery{
		Week: "2025-W07", Sort: activity.SortEffort, Order: activity.OrderDesc, Page: 1, Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, items, 2, "фильтр недели частичный, W08 не совпадает с W07")
	assert.Equal(t, "high", items[0].Subject)
	assert.Equal(t, "low", items[1].Subject)

	items, _, err = s.List(ctx, activity.ListQuery{
		Week: "2025-W07", Sort: activity.SortEffort, Order: activity.OrderAsc, Page: 1, Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "low", items[0].Subject)
	assert.Equal(t, "high", items[1].Subject)
}

func TestStorage_LatestWeek(t *testing.T) {
	s, _ := newStorage(t)
	ctx := context.Background()

	_, ok, err := s.LatestWeek(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "пустое хранилище - недели нет")

	mustCreate(t, s, &activity.Activity{
		UserID: 1, Status: activity.StatusNew, Subject: "a",
		WeeklyData: week.Store{"2024-W52": {}, "2025-W01": {}},
	})
	mustCreate(t, s, &activity.Activity{
		UserID: 1, Status: activity.StatusNew, Subject: "b",
		WeeklyData: week.Store{"2026-W03": {}},
	})

	k, ok, err := s.LatestWeek(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, week.Key("2026-W03"), k)
}
