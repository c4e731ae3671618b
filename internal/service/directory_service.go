package service

import (
	"context"
	"errors"
	"fmt"

	"activityTracker/internal/models/directory"
	repo "activityTracker/internal/repository"
)

type DirectoryService struct {
	repo DirectoryRepository
}

func NewDirectoryService(directoryRepo DirectoryRepository) DirectoryService {
	return DirectoryService{repo: directoryRepo}
}

func (s *DirectoryService) ListUsers(ctx context.Context) ([]*directory.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("получение пользователей: %w", err)
	}
	return users, nil
}

func (s *DirectoryService) CreateUser(ctx context.Context, fullName string) (*directory.User, error) {
	if fullName == "" {
		return nil, NewValidationError("full_name", "имя не может быть пустым")
	}
	user, err := s.repo.CreateUser(ctx, fullName)
	if err != nil {
		return nil, fmt.Errorf("создание пользователя: %w", err)
	}
	return user, nil
}

func (s *DirectoryService) UpdateUser(ctx context.Context, id int64, patch directory.UserPatch) (*directory.User, error) {
	user, err := s.repo.UpdateUser(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound("пользователь", id)
		}
		return nil, fmt.Errorf("обновление пользователя: %w", err)
	}
	return user, nil
}

func (s *DirectoryService) DeactivateUser(ctx context.Context, id int64) (*directory.User, error) {
	user, err := s.repo.DeactivateUser(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound("пользователь", id)
		}
		return nil, fmt.Errorf("деактивация пользователя: %w", err)
	}
	return user, nil
}

func (s *DirectoryService) ListProducts(ctx context.Context, q string, all bool) ([]*directory.Product, error) {
	products, err := s.repo.ListProducts(ctx, q, all)
	if err != nil {
		return nil, fmt.Errorf("получение продуктов: %w", err)
	}
	return products, nil
}

// CreateProduct - прямой эндпоинт создания: в отличие от find-or-create
// при создании активности, дубликат имени здесь - ошибка CONFLICT.
func (s *DirectoryService) CreateProduct(ctx context.Context, name, description string) (*directory.Product, error) {
	if name == "" {
		return nil, NewValidationError("name", "имя не может быть пустым")
	}
	product, err := s.repo.CreateProduct(ctx, name, description)
	if err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, NewConflict("продукт", "имя уже существует")
		}
		return nil, fmt.Errorf("создание продукта: %w", err)
	}
	return product, nil
}

func (s *DirectoryService) UpdateProduct(ctx context.Context, id int64, patch directory.ProductPatch) (*directory.Product, error) {
	product, err := s.repo.UpdateProduct(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound("продукт", id)
		}
		if errors.Is(err, repo.ErrConflict) {
			return nil, NewConflict("продукт", "имя уже существует")
		}
		return nil, fmt.Errorf("обновление продукта: %w", err)
	}
	return product, nil
}

func (s *DirectoryService) DeactivateProduct(ctx context.Context, id int64) (*directory.Product, error) {
	product, err := s.repo.DeactivateProduct(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, NewNotFound("продукт", id)
		}
		return nil, fmt.Errorf("деактивация продукта: %w", err)
	}
	return product, nil
}
