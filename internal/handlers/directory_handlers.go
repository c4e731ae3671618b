package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"activityTracker/internal/handlers/dto"
	"activityTracker/internal/logger"
	"activityTracker/internal/models/directory"

	"go.uber.org/zap"
)

type DirectoryHandler struct {
	DirectoryService DirectoryService
}

func NewDirectoryHandler(directoryService DirectoryService) DirectoryHandler {
	return DirectoryHandler{
		DirectoryService: directoryService,
	}
}

// --- пользователи ---

func (h *DirectoryHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	users, err := h.DirectoryService.ListUsers(r.Context())
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "list_users"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	responseWithBody(w, http.StatusOK, users)
}

func (h *DirectoryHandler) PostUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса:"+err.Error())
		return
	}

	user, err := h.DirectoryService.CreateUser(r.Context(), request.FullName)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "create_user"),
			zap.Duration("ms", time.Since(start)))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Пользователь создан",
		zap.Int64("user_id", user.ID),
		zap.Int("http_status", http.StatusCreated))
	responseWithBody(w, http.StatusCreated, user)
}

func (h *DirectoryHandler) UpdateUserByID(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var patch directory.UserPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса:"+err.Error())
		return
	}

	user, err := h.DirectoryService.UpdateUser(r.Context(), id, patch)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "update_user"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	responseWithBody(w, http.StatusOK, user)
}

// мягкое удаление: пользователь уходит из активных, строки остаются
func (h *DirectoryHandler) DeleteUserByID(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := idParam(w, r)
	if !ok {
		return
	}

	user, err := h.DirectoryService.DeactivateUser(r.Context(), id)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "deactivate_user"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("message", "Пользователь деактивирован"),
		toPayload("user", user),
	)
}

// --- продукты ---

func (h *DirectoryHandler) GetProducts(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	q := r.URL.Query().Get("q")
	all := r.URL.Query().Get("all") != ""

	products, err := h.DirectoryService.ListProducts(r.Context(), q, all)
	if err != nil {
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "list_products"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	responseWithBody(w, http.StatusOK, products)
}

func (h *DirectoryHandler) PostProduct(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.CreateProductRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса:"+err.Error())
		return
	}

	product, err := h.DirectoryService.CreateProduct(r.Context(), request.Name, request.Description)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "create_product"),
			zap.Duration("ms", time.Since(start)))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	logger.Info("HTTP_OUT: Продукт создан",
		zap.Int64("product_id", product.ID),
		zap.Int("http_status", http.StatusCreated))
	responseWithBody(w, http.StatusCreated, product)
}

func (h *DirectoryHandler) UpdateProductByID(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := idParam(w, r)
	if !ok {
		return
	}

	var patch directory.ProductPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса:"+err.Error())
		return
	}

	product, err := h.DirectoryService.UpdateProduct(r.Context(), id, patch)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "update_product"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	responseWithBody(w, http.StatusOK, product)
}

func (h *DirectoryHandler) DeleteProductByID(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP_IN:")

	id, ok := idParam(w, r)
	if !ok {
		return
	}

	product, err := h.DirectoryService.DeactivateProduct(r.Context(), id)
	if err != nil {
		if handleBusinessError(w, err) {
			return
		}
		logger.Error("HTTP: Ошибка Service", err,
			zap.String("operation", "deactivate_product"))
		responseWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("message", "Продукт деактивирован"),
		toPayload("product", product),
	)
}
