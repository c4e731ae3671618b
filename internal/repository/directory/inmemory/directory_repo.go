package inmemory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"activityTracker/internal/models/directory"
	repo "activityTracker/internal/repository"
)

type Storage struct {
	mtx      *sync.RWMutex
	users    map[int64]*directory.User
	products map[int64]*directory.Product
	nextUser int64
	nextProd int64
}

func NewStorage() *Storage {
	return &Storage{
		mtx:      &sync.RWMutex{},
		users:    make(map[int64]*directory.User),
		products: make(map[int64]*directory.Product),
		nextUser: 1,
		nextProd: 1,
	}
}

// --- пользователи ---

func (s *Storage) ListUsers(ctx context.Context) ([]*directory.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	users := make([]*directory.User, 0, len(s.users))
	for _, u := range s.users {
		copied := *u
		users = append(users, &copied)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].FullName < users[j].FullName })
	return users, nil
}

func (s *Storage) CreateUser(ctx context.Context, fullName string) (*directory.User, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	u := &directory.User{ID: s.nextUser, FullName: fullName, IsActive: true}
	s.users[u.ID] = u
	s.nextUser++

	copied := *u
	return &copied, nil
}

func (s *Storage) FindUserByName(ctx context.Context, name string) (*directory.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.FullName, name) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *Storage) UpdateUser(ctx context.Context, id int64, patch directory.UserPatch) (*directory.User, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if patch.FullName != nil {
		u.FullName = *patch.FullName
	}
	if patch.IsActive != nil {
		u.IsActive = *patch.IsActive
	}

	copied := *u
	return &copied, nil
}

func (s *Storage) DeactivateUser(ctx context.Context, id int64) (*directory.User, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	u.IsActive = false

	copied := *u
	return &copied, nil
}

// UserName - имя для join-а в листинге активностей.
func (s *Storage) UserName(id int64) string {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	if u, ok := s.users[id]; ok {
		return u.FullName
	}
	return ""
}

// ActiveUsers - срез активных пользователей для агрегаций.
func (s *Storage) ActiveUsers() []*directory.User {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	users := []*directory.User{}
	for _, u := range s.users {
		if u.IsActive {
			copied := *u
			users = append(users, &copied)
		}
	}
	return users
}

// --- продукты ---

func (s *Storage) ListProducts(ctx context.Context, q string, all bool) ([]*directory.Product, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	products := []*directory.Product{}
	for _, p := range s.products {
		if !all && !p.IsActive {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(q)) {
			continue
		}
		copied := *p
		products = append(products, &copied)
	}
	sort.Slice(products, func(i, j int) bool { return products[i].Name < products[j].Name })
	if len(products) > 50 {
		products = products[:50]
	}
	return products, nil
}

func (s *Storage) CreateProduct(ctx context.Context, name, description string) (*directory.Product, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, p := range s.products {
		if strings.EqualFold(p.Name, name) {
			return nil, repo.ErrConflict
		}
	}

	p := &directory.Product{ID: s.nextProd, Name: name, Description: description, IsActive: true}
	s.products[p.ID] = p
	s.nextProd++

	copied := *p
	return &copied, nil
}

func (s *Storage) FindProductByName(ctx context.Context, name string) (*directory.Product, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for _, p := range s.products {
		if strings.EqualFold(p.Name, name) {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *Storage) UpdateProduct(ctx context.Context, id int64, patch directory.ProductPatch) (*directory.Product, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if patch.Name != nil {
		for _, other := range s.products {
			if other.ID != id && strings.EqualFold(other.Name, *patch.Name) {
				return nil, repo.ErrConflict
			}
		}
		p.Name = *patch.Name
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}

	copied := *p
	return &copied, nil
}

func (s *Storage) DeactivateProduct(ctx context.Context, id int64) (*directory.Product, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	p, ok := s.products[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	p.IsActive = false

	copied := *p
	return &copied, nil
}

// ProductName - имя для join-а в листинге активностей.
func (s *Storage) ProductName(id int64) string {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	if p, ok := s.products[id]; ok {
		return p.Name
	}
	return ""
}
