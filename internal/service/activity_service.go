package service

import (
	"context"
	"errors"
	"fmt"

	"activityTracker/internal/logger"
	"activityTracker/internal/models/activity"
	"activityTracker/internal/models/week"
	repo "activityTracker/internal/repository"

	"go.uber.org/zap"
)

type ActivityService struct {
	repo      ActivityRepository
	directory DirectoryRepository
}

func NewActivityService(activityRepo ActivityRepository, directoryRepo DirectoryRepository) ActivityService {
	return ActivityService{
		repo:      activityRepo,
		directory: directoryRepo,
	}
}

func (s *ActivityService) HealthCheck(ctx context.Context) error {
	return s.repo.HealthCheck(ctx)
}

type CreateActivityInput struct {
	UserID      int64
	ProductName string
	Category    string
	Status      activity.Status
	RefID       string
	Criticality string
	Subject     string
	Description string
	Week        string
	Progress    string
	Effort      float64
}

// WeeklyPatch - обновление записи одной недели: nil-поле сохраняет
// прежнее значение, недостающая неделя создаётся с пустыми значениями.
type WeeklyPatch struct {
	Week     string
	Progress *string
	Effort   *float64
}

func (s *ActivityService) CreateActivity(ctx context.Context, in CreateActivityInput) (*activity.Activity, error) {
	if !activity.ValidStatus(in.Status) {
		return nil, NewValidationError("status", fmt.Sprintf("неизвестный статус %q", in.Status))
	}
	if in.Category != "" && !activity.ValidCategory(in.Category) {
		return nil, NewValidationError("category", fmt.Sprintf("неизвестная категория %q", in.Category))
	}
	// инвариант: категория "(Zorunlu)" обязана иметь непустой ref_id
	if activity.CategoryRequiresRef(in.Category) && in.RefID == "" {
		return nil, NewValidationError("ref_id", "обязателен для категории "+in.Category)
	}
	if in.Effort < 0 {
		return nil, NewValidationError("effort", "эфор не может быть отрицательным")
	}

	store := week.Store{}
	if in.Week != "" {
		// на путях записи формат недели строгий
		key, err := week.Parse(in.Week)
		if err != nil {
			return nil, NewValidationError("week", err.Error())
		}
		store = store.Upsert(key, week.RecordPatch{Progress: &in.Progress, Effort: &in.Effort})
	}

	a := &activity.Activity{
		UserID:      in.UserID,
		Category:    in.Category,
		Status:      in.Status,
		Criticality: in.Criticality,
		Subject:     in.Subject,
		Description: in.Description,
		WeeklyData:  store,
	}
	if in.RefID != "" {
		a.RefID = &in.RefID
	}

	if in.ProductName != "" {
		product, err := s.resolveProduct(ctx, in.ProductName)
		if err != nil {
			return nil, fmt.Errorf("разрешение продукта: %w", err)
		}
		a.ProductID = &product
		a.ProductName = in.ProductName
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("создание активности: %w", err)
	}
	return a, nil
}

// resolveProduct - поиск продукта по точному имени без учёта регистра,
// отсутствующий создаётся. Повторный вызов с тем же именем переиспользует
// строку и никогда не отдаёт конфликт.
func (s *ActivityService) resolveProduct(ctx context.Context, name string) (int64, error) {
	product, err := s.directory.FindProductByName(ctx, name)
	if err == nil {
		return product.ID, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return 0, err
	}

	created, err := s.directory.CreateProduct(ctx, name, "")
	if err == nil {
		return created.ID, nil
	}
	if errors.Is(err, repo.ErrConflict) {
		// параллельный запрос успел создать продукт первым
		existing, findErr := s.directory.FindProductByName(ctx, name)
		if findErr != nil {
			return 0, findErr
		}
		return existing.ID, nil
	}
	return 0, err
}

// ListActivities нормализует запрос перед репозиторием: неизвестный ключ
// сортировки молча откатывается на updated_at, сортировка по эфору без
// фильтра недели тоже (эфор без недели не определён).
func (s *ActivityService) ListActivities(ctx context.Context, q activity.ListQuery) ([]*activity.Activity, int, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if !activity.ValidSortKey(q.Sort) {
		q.Sort = activity.SortUpdatedAt
	}
	if q.Sort == activity.SortEffort && q.Week == "" {
		q.Sort = activity.SortUpdatedAt
	}
	if q.Order != activity.OrderAsc {
		q.Order = activity.OrderDesc
	}

	activities, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, 0, fmt.Errorf("получение активностей: %w", err)
	}
	return activities, total, nil
}

func (s *ActivityService) UpdateActivity(ctx context.Context, id int64, weekly *WeeklyPatch, options ...activity.Option) (*activity.Activity, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Info("Service: Активность не найдена", zap.Int64("target_id", id))
			return nil, NewNotFound("активность", id)
		}
		return nil, fmt.Errorf("получение активности: %w", err)
	}

	if weekly != nil {
		key, err := week.Parse(weekly.Week)
		if err != nil {
			return nil, NewValidationError("week", err.Error())
		}
		if weekly.Effort != nil && *weekly.Effort < 0 {
			return nil, NewValidationError("effort", "эфор не может быть отрицательным")
		}
		a.WeeklyData = a.WeeklyData.Upsert(key, week.RecordPatch{
			Progress: weekly.Progress,
			Effort:   weekly.Effort,
		})
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(a)
	}

	if a.Category != "" && !activity.ValidCategory(a.Category) {
		return nil, NewValidationError("category", fmt.Sprintf("неизвестная категория %q", a.Category))
	}
	if activity.CategoryRequiresRef(a.Category) && (a.RefID == nil || *a.RefID == "") {
		return nil, NewValidationError("ref_id", "обязателен для категории "+a.Category)
	}

	if err := s.repo.Update(ctx, a); err != nil {
		if errors.Is(err, repo.ErrVersionConflict) {
			return nil, NewVersionConflict("активность", id)
		}
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound("активность", id)
		}
		return nil, fmt.Errorf("обновление активности: %w", err)
	}
	return a, nil
}

// LatestWeek - максимальная неделя по всем активностям; используется для
// выбора разумной недели по умолчанию, когда на текущую ещё нет данных.
func (s *ActivityService) LatestWeek(ctx context.Context) (week.Key, bool, error) {
	key, ok, err := s.repo.LatestWeek(ctx)
	if err != nil {
		return "", false, fmt.Errorf("получение последней недели: %w", err)
	}
	return key, ok, nil
}
