package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"activityTracker/internal/logger"
	"activityTracker/internal/migrations"
	"activityTracker/internal/models/activity"
	"activityTracker/internal/models/stats"
	"activityTracker/internal/models/week"
	repo "activityTracker/internal/repository"
	"activityTracker/internal/repository/activity/postgres"
	directorypg "activityTracker/internal/repository/directory/postgres"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestMain(m *testing.M) {
	if err := logger.Init(true); err != nil {
		os.Exit(1)
	}
	os.Exit(m.Run())
}

// PostgresTestSuite для интеграционных тестов с PostgreSQL
type PostgresTestSuite struct {
	suite.Suite
	container testcontainers.Container
	storage   *postgres.Storage
	directory *directorypg.Storage
	ctx       context.Context

	userID    int64
	productID int64
}

// SetupSuite запускается один раз перед всеми тестами
func (s *PostgresTestSuite) SetupSuite() {
	s.ctx = context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(30 * time.Second),
	}

	container, err := testcontainers.GenericContainer(s.ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(s.T(), err)
	s.container = container

	host, err := container.Host(s.ctx)
	require.NoError(s.T(), err)

	port, err := container.MappedPort(s.ctx, "5432")
	require.NoError(s.T(), err)

	connString := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())

	s.storage, err = postgres.New(s.ctx, connString, 5, 1, time.Minute)
	require.NoError(s.T(), err)

	// схема накатывается теми же миграциями, что и в бою
	require.NoError(s.T(), migrations.Up(connString))

	s.directory = directorypg.New(s.storage.Pool())
}

// TearDownSuite очищает после всех тестов
func (s *PostgresTestSuite) TearDownSuite() {
	if s.storage != nil {
		s.storage.Close()
	}
	if s.container != nil {
		s.container.Terminate(s.ctx)
	}
}

// SetupTest чистит таблицы и заводит базовый справочник
func (s *PostgresTestSuite) SetupTest() {
	_, err := s.storage.Pool().Exec(s.ctx,
		`TRUNCATE activities, users, products RESTART IDENTITY CASCADE`)
	require.NoError(s.T(), err)

	user, err := s.directory.CreateUser(s.ctx, "Иван Петров")
	require.NoError(s.T(), err)
	s.userID = user.ID

	product, err := s.directory.CreateProduct(s.ctx, "Billing", "биллинг")
	require.NoError(s.T(), err)
	s.productID = product.ID
}

func TestPostgresTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Пропускаем интеграционные тесты в коротком режиме")
	}
	suite.Run(t, new(PostgresTestSuite))
}

func (s *PostgresTestSuite) newActivity(subject string, store week.Store) *activity.Activity {
	return &activity.Activity{
		UserID:     s.userID,
		ProductID:  &s.productID,
		Category:   "Diğer",
		Status:     activity.StatusNew,
		Subject:    subject,
		WeeklyData: store,
	}
}

// TestStorage_CreateAndGet тестирует создание и чтение с join-ом имён
func (s *PostgresTestSuite) TestStorage_CreateAndGet() {
	ctx := context.Background()

	toCreate := s.newActivity("миграция биллинга", week.Store{
		"2025-W07": {Progress: "начато", Effort: 3.5},
	})

	err := s.storage.Create(ctx, toCreate)
	require.NoError(s.T(), err)
	assert.NotZero(s.T(), toCreate.ID)
	assert.Equal(s.T(), 1, toCreate.Version)
	assert.False(s.T(), toCreate.CreatedAt.IsZero())

	got, err := s.storage.GetByID(ctx, toCreate.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "миграция биллинга", got.Subject)
	assert.Equal(s.T(), "Иван Петров", got.UserName)
	assert.Equal(s.T(), "Billing", got.ProductName)

	rec, ok := got.WeeklyData.Get("2025-W07")
	require.True(s.T(), ok)
	assert.Equal(s.T(), "начато", rec.Progress)
	assert.Equal(s.T(), 3.5, rec.Effort)

	_, err = s.storage.GetByID(ctx, 9999)
	assert.ErrorIs(s.T(), err, repo.ErrNotFound)
}

// TestStorage_Update_WeeklyDataPersists - merge делается в сервисе,
// репозиторий должен сохранить и вернуть jsonb как есть
func (s *PostgresTestSuite) TestStorage_Update_WeeklyDataPersists() {
	ctx := context.Background()

	toCreate := s.newActivity("тема", week.Store{
		"2025-W06": {Progress: "прошлая неделя", Effort: 2},
	})
	require.NoError(s.T(), s.storage.Create(ctx, toCreate))

	toCreate.WeeklyData = toCreate.WeeklyData.Upsert("2025-W07",
		week.RecordPatch{Progress: ptrStr("новая неделя"), Effort: ptrF64(4)})
	toCreate.Status = activity.StatusInProgress

	require.NoError(s.T(), s.storage.Update(ctx, toCreate))
	assert.Equal(s.T(), 2, toCreate.Version)

	got, err := s.storage.GetByID(ctx, toCreate.ID)
	require.NoError(s.T(), err)
	assert.Len(s.T(), got.WeeklyData, 2)

	old, ok := got.WeeklyData.Get("2025-W06")
	require.True(s.T(), ok)
	assert.Equal(s.T(), "прошлая неделя", old.Progress)

	fresh, ok := got.WeeklyData.Get("2025-W07")
	require.True(s.T(), ok)
	assert.Equal(s.T(), 4.0, fresh.Effort)
}

// TestStorage_Update_VersionConflict тестирует конфликт версий
func (s *PostgresTestSuite) TestStorage_Update_VersionConflict() {
	ctx := context.Background()

	toCreate := s.newActivity("тема", week.Store{})
	require.NoError(s.T(), s.storage.Create(ctx, toCreate))

	first, err := s.storage.GetByID(ctx, toCreate.ID)
	require.NoError(s.T(), err)
	second, err := s.storage.GetByID(ctx, toCreate.ID)
	require.NoError(s.T(), err)

	first.Subject = "обновлено первым"
	require.NoError(s.T(), s.storage.Update(ctx, first))

	second.Subject = "обновлено вторым"
	err = s.storage.Update(ctx, second)
	assert.ErrorIs(s.T(), err, repo.ErrVersionConflict)
}

// TestStorage_List_WeekFilter - частичный фильтр по ключам jsonb
func (s *PostgresTestSuite) TestStorage_List_WeekFilter() {
	ctx := context.Background()

	require.NoError(s.T(), s.storage.Create(ctx, s.newActivity("a",
		week.Store{"2025-W01": {Effort: 1}})))
	require.NoError(s.T(), s.storage.Create(ctx, s.newActivity("b",
		week.Store{"2025-W30": {Effort: 2}})))
	require.NoError(s.T(), s.storage.Create(ctx, s.newActivity("c",
		week.Store{"2026-W01": {Effort: 3}})))

	items, total, err := s.storage.List(ctx, activity.ListQuery{
		Week: "2025", Sort: activity.SortUpdatedAt, Order: activity.OrderDesc, Page: 1, Limit: 10,
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 2, total)
	assert.Len(s.T(), items, 2)

	items, total, err = s.storage.List(ctx, activity.ListQuery{
		Week: "2026-W01", Sort: activity.SortUpdatedAt, Order: activity.OrderDesc, Page: 1, Limit: 10,
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 1, total)
	require.Len(s.T(), items, 1)
	assert.Equal(s.T(), "c", items[0].Subject)
}

// TestStorage_List_EffortSort - сортировка по числу из jsonb конкретной недели
func (s *PostgresTestSuite) TestStorage_List_EffortSort() {
	ctx := context.Background()

	require.NoError(s.T(), s.storage.Create(ctx, s.newActivity("low",
		week.Store{"2025-W07": {Effort: 1}})))
	require.NoError(s.T(), s.storage.Create(ctx, s.newActivity("high",
		week.Store{"2025-W07": {Effort: 9}})))
	require.NoError(s.T(), s.storage.Create(ctx, s.newActivity("mid",
		week.Store{"2025-W07": {Effort: 5}})))

	items, _, err := s.storage.List(ctx, activity.ListQuery{
		Week: "2025-W07", Sort: activity.SortEffort, Order: activity.OrderDesc, Page: 1, Limit: 10,
	})
	require.NoError(s.T(), err)
	require.Len(s.T(), items, 3)
	assert.Equal(s.T(), "high", items[0].Subject)
	assert.Equal(s.T(), "mid", items[1].Subject)
	assert.Equal(s.T(), "low", items[2].Subject)

	items, _, err = s.storage.List(ctx, activity.ListQuery{
		Week: "2025-W07", Sort: activity.SortEffort, Order: activity.OrderAsc, Page: 1, Limit: 10,
	})
	require.NoError(s.T(), err)
	require.Len(s.T(), items, 3)
	assert.Equal(s.T(), "low", items[0].Subject)
}

// TestStorage_List_Pagination - total считается по всем совпадениям
func (s *PostgresTestSuite) TestStorage_List_Pagination() {
	ctx := context.Background()

	for i := 0; i < 23; i++ {
		require.NoError(s.T(), s.storage.Create(ctx,
			s.newActivity(fmt.Sprintf("активность %02d", i), week.Store{})))
	}

	items, total, err := s.storage.List(ctx, activity.ListQuery{
		Sort: activity.SortSubject, Order: activity.OrderAsc, Page: 3, Limit: 10,
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 23, total)
	assert.Len(s.T(), items, 3)

	items, total, err = s.storage.List(ctx, activity.ListQuery{
		Sort: activity.SortSubject, Order: activity.OrderAsc, Page: 10, Limit: 10,
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 23, total)
	assert.Empty(s.T(), items)
}

// TestStorage_LatestWeek - максимум по ключам jsonb всех строк
func (s *PostgresTestSuite) TestStorage_LatestWeek() {
	ctx := context.Background()

	_, ok, err := s.storage.LatestWeek(ctx)
	require.NoError(s.T(), err)
	assert.False(s.T(), ok)

	require.NoError(s.T(), s.storage.Create(ctx, s.newActivity("a",
		week.Store{"2024-W52": {}, "2025-W01": {}})))
	require.NoError(s.T(), s.storage.Create(ctx, s.newActivity("b",
		week.Store{"2026-W03": {}})))

	k, ok, err := s.storage.LatestWeek(ctx)
	require.NoError(s.T(), err)
	require.True(s.T(), ok)
	assert.Equal(s.T(), week.Key("2026-W03"), k)
}

// TestStorage_Dashboard тестирует SQL-агрегаты поверх jsonb_each
func (s *PostgresTestSuite) TestStorage_Dashboard() {
	ctx := context.Background()

	anna, err := s.directory.CreateUser(ctx, "Анна Сидорова")
	require.NoError(s.T(), err)
	crm, err := s.directory.CreateProduct(ctx, "CRM", "")
	require.NoError(s.T(), err)

	a1 := s.newActivity("a", week.Store{
		"2025-W06": {Effort: 3},
		"2025-W07": {Effort: 2},
	})
	a1.Status = activity.StatusCompleted
	require.NoError(s.T(), s.storage.Create(ctx, a1))

	a2 := &activity.Activity{
		UserID: anna.ID, ProductID: &crm.ID,
		Category: "Diğer", Status: activity.StatusInProgress, Subject: "b",
		WeeklyData: week.Store{"2025-W07": {Effort: 6}},
	}
	require.NoError(s.T(), s.storage.Create(ctx, a2))

	d, err := s.storage.Dashboard(ctx, stats.Global())
	require.NoError(s.T(), err)

	assert.Equal(s.T(), 11.0, d.TotalEffort)

	var sum float64
	for _, p := range d.EffortByPerson {
		sum += p.Effort
	}
	assert.Equal(s.T(), d.TotalEffort, sum)

	require.NotEmpty(s.T(), d.TopProducts)
	assert.Equal(s.T(), "CRM", d.TopProducts[0].Name)
	assert.Equal(s.T(), 6.0, d.TopProducts[0].Effort)

	// персональная область - только активности Анны
	personal, err := s.storage.Dashboard(ctx, stats.Personal(anna.ID))
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 6.0, personal.TotalEffort)
}

// TestStorage_Overview тестирует сводку по системе
func (s *PostgresTestSuite) TestStorage_Overview() {
	ctx := context.Background()

	require.NoError(s.T(), s.storage.Create(ctx, s.newActivity("a", week.Store{})))

	o, err := s.storage.Overview(ctx)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), int64(1), o.TeamSize)
	assert.Equal(s.T(), int64(1), o.TotalActivities)
}

// TestDirectory_ProductConflict - уникальность имени продукта на уровне базы
func (s *PostgresTestSuite) TestDirectory_ProductConflict() {
	ctx := context.Background()

	_, err := s.directory.CreateProduct(ctx, "Billing", "")
	assert.ErrorIs(s.T(), err, repo.ErrConflict)
}

// TestDirectory_SoftDelete - деактивация не трогает ссылающиеся активности
func (s *PostgresTestSuite) TestDirectory_SoftDelete() {
	ctx := context.Background()

	toCreate := s.newActivity("тема", week.Store{})
	require.NoError(s.T(), s.storage.Create(ctx, toCreate))

	user, err := s.directory.DeactivateUser(ctx, s.userID)
	require.NoError(s.T(), err)
	assert.False(s.T(), user.IsActive)

	got, err := s.storage.GetByID(ctx, toCreate.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Иван Петров", got.UserName)
}

func (s *PostgresTestSuite) TestStorage_HealthCheck() {
	require.NoError(s.T(), s.storage.HealthCheck(context.Background()))
}

func ptrStr(v string) *string   { return &v }
func ptrF64(v float64) *float64 { return &v }

// Unit тесты (без базы данных)
func TestStorage_New_BadConnString(t *testing.T) {
	ctx := context.Background()

	_, err := postgres.New(ctx, "invalid", 5, 1, time.Minute)
	assert.Error(t, err)
}
