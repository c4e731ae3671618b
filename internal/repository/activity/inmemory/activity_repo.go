package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"activityTracker/internal/models/activity"
	"activityTracker/internal/models/week"
	repo "activityTracker/internal/repository"
	directoryinmem "activityTracker/internal/repository/directory/inmemory"
)

// Storage - in-memory вариант репозитория активностей.
// Справочник нужен для подстановки имён пользователя и продукта,
// которые в postgres-варианте приходят join-ом.
type Storage struct {
	mtx       *sync.RWMutex
	storage   map[int64]*activity.Activity
	ids       []int64
	nextID    int64
	directory *directoryinmem.Storage
}

func NewStorage(dir *directoryinmem.Storage) *Storage {
	return &Storage{
		mtx:       &sync.RWMutex{},
		storage:   make(map[int64]*activity.Activity),
		ids:       []int64{},
		nextID:    1,
		directory: dir,
	}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	return nil
}

func (s *Storage) Create(ctx context.Context, toCreate *activity.Activity) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := time.Now()
	toCreate.ID = s.nextID
	toCreate.Version = 1
	toCreate.CreatedAt = now
	toCreate.UpdatedAt = now
	if toCreate.WeeklyData == nil {
		toCreate.WeeklyData = week.Store{}
	}

	s.storage[toCreate.ID] = toCreate
	s.ids = append(s.ids, toCreate.ID)
	s.nextID++
	return nil
}

func (s *Storage) GetByID(ctx context.Context, id int64) (*activity.Activity, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	a, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}

	copied := *a
	s.fillNames(&copied)
	return &copied, nil
}

// Update - тот же compare-and-swap по версии, что и в postgres-варианте.
func (s *Storage) Update(ctx context.Context, toUpdate *activity.Activity) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[toUpdate.ID]
	if !ok {
		return repo.ErrNotFound
	}
	if existing.Version != toUpdate.Version {
		return repo.ErrVersionConflict
	}

	copied := *toUpdate
	copied.Version = existing.Version + 1
	copied.UpdatedAt = time.Now()
	copied.CreatedAt = existing.CreatedAt
	s.storage[copied.ID] = &copied

	toUpdate.Version = copied.Version
	toUpdate.UpdatedAt = copied.UpdatedAt
	return nil
}

func (s *Storage) fillNames(a *activity.Activity) {
	a.UserName = s.directory.UserName(a.UserID)
	if a.ProductID != nil {
		a.ProductName = s.directory.ProductName(*a.ProductID)
	}
}

func matches(a *activity.Activity, q activity.ListQuery) bool {
	if q.UserID != nil && a.UserID != *q.UserID {
		return false
	}
	if q.ProductID != nil && (a.ProductID == nil || *a.ProductID != *q.ProductID) {
		return false
	}
	if q.Week != "" {
		if !a.WeeklyData.AnyKey(func(k week.Key) bool { return k.ContainsFold(q.Week) }) {
			return false
		}
	}
	return true
}

// таблица компараторов вместо динамических строк сортировки
var comparators = map[activity.SortKey]func(a, b *activity.Activity) int{
	activity.SortUpdatedAt:   func(a, b *activity.Activity) int { return a.UpdatedAt.Compare(b.UpdatedAt) },
	activity.SortUserName:    func(a, b *activity.Activity) int { return strings.Compare(a.UserName, b.UserName) },
	activity.SortProductName: func(a, b *activity.Activity) int { return strings.Compare(a.ProductName, b.ProductName) },
	activity.SortCategory:    func(a, b *activity.Activity) int { return strings.Compare(a.Category, b.Category) },
	activity.SortStatus:      func(a, b *activity.Activity) int { return strings.Compare(string(a.Status), string(b.Status)) },
	activity.SortSubject:     func(a, b *activity.Activity) int { return strings.Compare(a.Subject, b.Subject) },
	activity.SortCriticality: func(a, b *activity.Activity) int { return strings.Compare(a.Criticality, b.Criticality) },
}

// List повторяет контракт postgres-репозитория: фильтры, сортировка из
// таблицы компараторов, пагинация и общее число совпадений.
func (s *Storage) List(ctx context.Context, q activity.ListQuery) ([]*activity.Activity, int, error) {
	s.mtx.RLock()

	matched := []*activity.Activity{}
	for _, id := range s.ids {
		a := s.storage[id]
		if !matches(a, q) {
			continue
		}
		copied := *a
		s.fillNames(&copied)
		matched = append(matched, &copied)
	}
	s.mtx.RUnlock()

	s.sortActivities(matched, q)

	total := len(matched)
	offset := (q.Page - 1) * q.Limit
	if offset >= len(matched) {
		return []*activity.Activity{}, total, nil
	}
	end := offset + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (s *Storage) sortActivities(items []*activity.Activity, q activity.ListQuery) {
	asc := q.Order == activity.OrderAsc

	if q.Sort == activity.SortEffort {
		// сортировка по эфору конкретной недели: активности без записи
		// на эту неделю уходят в конец при любом направлении
		wk := week.Key(q.Week)
		sort.SliceStable(items, func(i, j int) bool {
			ri, iok := items[i].WeeklyData.Get(wk)
			rj, jok := items[j].WeeklyData.Get(wk)
			if iok != jok {
				return iok
			}
			if !iok {
				return items[i].UpdatedAt.After(items[j].UpdatedAt)
			}
			if asc {
				return ri.Effort < rj.Effort
			}
			return ri.Effort > rj.Effort
		})
		return
	}

	cmp, ok := comparators[q.Sort]
	if !ok {
		cmp = comparators[activity.SortUpdatedAt]
	}
	sort.SliceStable(items, func(i, j int) bool {
		c := cmp(items[i], items[j])
		if asc {
			return c < 0
		}
		return c > 0
	})
}

func (s *Storage) LatestWeek(ctx context.Context) (week.Key, bool, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	stores := make([]week.Store, 0, len(s.ids))
	for _, id := range s.ids {
		stores = append(stores, s.storage[id].WeeklyData)
	}
	k, ok := week.LatestOf(stores...)
	return k, ok, nil
}
