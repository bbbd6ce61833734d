package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"deskwarrior-backend/internal/features/user/models"
	"deskwarrior-backend/internal/features/user/repository"
)

const keyActiveUsers = "users:active"

type userRepository struct {
	client *redis.Client
}

func NewUserRepository(client *redis.Client) repository.UserRepository {
	return &userRepository{
		client: client,
	}
}

func makeUserKey(id int64) string {
	return fmt.Sprintf("user:%d", id)
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	userJSON, err := json.Marshal(user)
	if err != nil {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, makeUserKey(user.ID), userJSON, 0)
	if user.Active() {
		pipe.SAdd(ctx, keyActiveUsers, user.ID)
	} else {
		pipe.SRem(ctx, keyActiveUsers, user.ID)
	}
	_, err = pipe.Exec(ctx)
	return err
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	userJSON, err := r.client.Get(ctx, makeUserKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, repository.ErrUserNotFound
		}
		return nil, err
	}

	var user models.User
	if err := json.Unmarshal(userJSON, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	// Same write path as Create: full JSON blob plus active-set membership.
	return r.Create(ctx, user)
}

func (r *userRepository) ListActiveIDs(ctx context.Context) ([]int64, error) {
	members, err := r.client.SMembers(ctx, keyActiveUsers).Result()
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
