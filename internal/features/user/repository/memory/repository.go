// Package memory provides an in-memory UserRepository used by unit tests and
// local runs without Redis.
package memory

import (
	"context"
	"sort"
	"sync"

	"deskwarrior-backend/internal/features/user/models"
	"deskwarrior-backend/internal/features/user/repository"
)

type userRepository struct {
	mu    sync.RWMutex
	users map[int64]models.User
}

func NewUserRepository() repository.UserRepository {
	return &userRepository{users: make(map[int64]models.User)}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copy := user
	return &copy, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.Create(ctx, user)
}

func (r *userRepository) ListActiveIDs(ctx context.Context) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var ids []int64
	for id, user := range r.users {
		if user.Active() {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
