package service

import (
	"context"

	"activityTracker/internal/models/activity"
	"activityTracker/internal/models/directory"
	"activityTracker/internal/models/stats"
	"activityTracker/internal/models/week"
)

type ActivityRepository interface {
	Create(ctx context.Context, a *activity.Activity) error
	GetByID(ctx context.Context, id int64) (*activity.Activity, error)
	Update(ctx context.Context, a *activity.Activity) error
	List(ctx context.Context, q activity.ListQuery) ([]*activity.Activity, int, error)
	LatestWeek(ctx context.Context) (week.Key, bool, error)
	HealthCheck(ctx context.Context) error
}

type DirectoryRepository interface {
	ListUsers(ctx context.Context) ([]*directory.User, error)
	CreateUser(ctx context.Context, fullName string) (*directory.User, error)
	FindUserByName(ctx context.Context, name string) (*directory.User, error)
	UpdateUser(ctx context.Context, id int64, patch directory.UserPatch) (*directory.User, error)
	DeactivateUser(ctx context.Context, id int64) (*directory.User, error)

	ListProducts(ctx context.Context, q string, all bool) ([]*directory.Product, error)
	CreateProduct(ctx context.Context, name, description string) (*directory.Product, error)
	FindProductByName(ctx context.Context, name string) (*directory.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch directory.ProductPatch) (*directory.Product, error)
	DeactivateProduct(ctx context.Context, id int64) (*directory.Product, error)
}

type StatsRepository interface {
	Dashboard(ctx context.Context, scope stats.Scope) (*stats.Dashboard, error)
	Overview(ctx context.Context) (*stats.Overview, error)
}
