package memory

import (
	"context"
	"sync"

	"github.com/NordCoder/Classbell/internal/domain/user"
)

var _ user.Directory = (*UserRepo)(nil)

type UserRepo struct {
	mu    sync.RWMutex
	users map[int64]user.User
}

func NewUserRepo(users ...user.User) *UserRepo {
	r := &UserRepo{users: make(map[int64]user.User, len(users))}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *UserRepo) Put(u user.User) {
	r.mu.Lock()
	r.users[u.ID] = u
	r.mu.Unlock()
}

func (r *UserRepo) Remove(id int64) {
	r.mu.Lock()
	delete(r.users, id)
	r.mu.Unlock()
}

func (r *UserRepo) GetByID(_ context.Context, id int64) (*user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	return &u, nil
}
