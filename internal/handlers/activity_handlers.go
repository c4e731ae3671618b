package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"activityTracker/internal/handlers/dto"
	"activityTracker/internal/logger"
	"activityTracker/internal/models/activity"
	"activityTracker/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ActivityHandler struct {
	ActivityService ActivityService
}

func NewActivityHandler(activityService ActivityService) ActivityHandler {
	return ActivityHandler{
		ActivityService: activityService,
	}
}

func (h *ActivityHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := h.ActivityService.HealthCheck(r.Context()); err != nil {
		responseWithError(w, http.StatusServiceUnavailable, "хранилище недоступно")
		return
	}
	healthCheck(w)
}

// GetActivities - листинг с фильтрами userId/productId/week, сортировкой и
// пагинацией. meta.total - число всех совпадений, не только страницы.
func (h *ActivityHandler) GetActivities(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	q := activity.ListQuery{
		Week:  r.URL.Query().Get("week"),
		Sort:  activity.SortKey(r.URL.Query().Get("sort")),
		Order: activity.Order(r.URL.Query().Get("order")),
	}

	userID, ok := optionalInt64Param(w, r, "userId")
	if !ok {
		return
	}
	q.UserID = userID

	productID, ok := optionalInt64Param(w, r, "productId")
	if !ok {
		return
	}
	q.ProductID = productID

	page, ok := optionalIntParam(w, r, "page", 1)
	if !ok {
		return
	}
	q.Page = page

	limit, ok := optionalIntParam(w, r, "limit", 10)
	if !ok {
		return
	}
	q.Limit = limit

	activities, total, err := h.ActivityService.ListActivities(r.Context(), q)
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "list_activities"),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Активности получены",
		zap.Int("count", len(activities)),
		zap.Int("total", total),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK,
		toPayload("data", activities),
		toPayload("meta", dto.ListMeta{Total: total, Page: q.Page, Limit: q.Limit}),
	)
}

func (h *ActivityHandler) PostActivity(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.CreateActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса:"+err.Error())
		return
	}

	if request.Subject == "" {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "subject"),
			zap.String("error", "empty_field"),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "тема не может быть пустой")
		return
	}

	if request.UserID == 0 {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "user_id"),
			zap.String("error", "empty_field"),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "user_id должен быть задан")
		return
	}

	created, err := h.ActivityService.CreateActivity(r.Context(), service.CreateActivityInput{
		UserID:      request.UserID,
		ProductName: request.ProductName,
		Category:    request.Category,
		Status:      activity.Status(request.Status),
		RefID:       request.RefID,
		Criticality: request.Criticality,
		Subject:     request.Subject,
		Description: request.Description,
		Week:        request.Week,
		Progress:    request.Progress,
		Effort:      request.Effort,
	})
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "create_activity"),
			zap.String("client_ip", r.RemoteAddr),
			zap.Duration("ms", time.Since(start)))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Активность создана",
		zap.Int64("activity_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithBody(w, http.StatusCreated, created)
}

func (h *ActivityHandler) UpdateActivityByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var request dto.UpdateActivityRequest
	decoder := json.NewDecoder(r.Body)
	defer r.Body.Close()

	if err := decoder.Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверно переданы параметры обновления:"+err.Error())
		return
	}

	options := []activity.Option{}
	if request.Status != nil {
		status := activity.Status(*request.Status)
		if !activity.ValidStatus(status) {
			responseWithError(w, http.StatusBadRequest, "неизвестный статус "+*request.Status)
			return
		}
		options = append(options, activity.WithStatus(status))
	}
	if request.Category != nil {
		options = append(options, activity.WithCategory(*request.Category))
	}
	if request.Criticality != nil {
		options = append(options, activity.WithCriticality(*request.Criticality))
	}
	if request.Subject != nil {
		options = append(options, activity.WithSubject(*request.Subject))
	}
	if request.Description != nil {
		options = append(options, activity.WithDescription(*request.Description))
	}
	if request.RefID != nil {
		options = append(options, activity.WithRefID(*request.RefID))
	}

	// progress/effort без week молча игнорируются - записи нет к чему привязать
	var weekly *service.WeeklyPatch
	if request.Week != nil {
		weekly = &service.WeeklyPatch{
			Week:     *request.Week,
			Progress: request.Progress,
			Effort:   request.Effort,
		}
	}

	updated, err := h.ActivityService.UpdateActivity(r.Context(), id, weekly, options...)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: ошибка в Service", err,
			zap.String("operation", "update_activity"),
			zap.String("client_addr", r.RemoteAddr))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Активность обновлена",
		zap.Int64("activity_id", updated.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, updated)
}

// GetLatestWeek - неделя по умолчанию для интерфейса: максимальный ключ
// по всем активностям, null если данных ещё нет.
func (h *ActivityHandler) GetLatestWeek(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	key, found, err := h.ActivityService.LatestWeek(r.Context())
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "latest_week"),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if !found {
		responseWithJSON(w, http.StatusOK, toPayload("week", nil))
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("week", string(key)))
}

func idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id < 1 {
		logger.Warn("HTTP: Не удалось получить id",
			zap.String("raw", idStr),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверный id")
		return 0, false
	}
	return id, true
}

func optionalInt64Param(w http.ResponseWriter, r *http.Request, name string) (*int64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	val, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		logger.Warn("HTTP: Неверное значение параметра",
			zap.String("query", name),
			zap.String("raw", raw),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверное значение "+name)
		return nil, false
	}
	return &val, true
}

func optionalIntParam(w http.ResponseWriter, r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 1 {
		logger.Warn("HTTP: Неверное значение параметра",
			zap.String("query", name),
			zap.String("raw", raw),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверное значение "+name)
		return 0, false
	}
	return val, true
}
