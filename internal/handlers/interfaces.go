package handlers

import (
	"context"

	"activityTracker/internal/models/activity"
	"activityTracker/internal/models/directory"
	"activityTracker/internal/models/stats"
	"activityTracker/internal/models/week"
	"activityTracker/internal/service"
)

type ActivityService interface {
	HealthCheck(ctx context.Context) error
	CreateActivity(ctx context.Context, in service.CreateActivityInput) (*activity.Activity, error)
	ListActivities(ctx context.Context, q activity.ListQuery) ([]*activity.Activity, int, error)
	UpdateActivity(ctx context.Context, id int64, weekly *service.WeeklyPatch, options ...activity.Option) (*activity.Activity, error)
	LatestWeek(ctx context.Context) (week.Key, bool, error)
}

type DirectoryService interface {
	ListUsers(ctx context.Context) ([]*directory.User, error)
	CreateUser(ctx context.Context, fullName string) (*directory.User, error)
	UpdateUser(ctx context.Context, id int64, patch directory.UserPatch) (*directory.User, error)
	DeactivateUser(ctx context.Context, id int64) (*directory.User, error)

	ListProducts(ctx context.Context, q string, all bool) ([]*directory.Product, error)
	CreateProduct(ctx context.Context, name, description string) (*directory.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch directory.ProductPatch) (*directory.Product, error)
	DeactivateProduct(ctx context.Context, id int64) (*directory.Product, error)
}

type StatsService interface {
	Dashboard(ctx context.Context, scope stats.Scope) (*stats.Dashboard, error)
	Overview(ctx context.Context) (*stats.Overview, error)
}
