package users

import (
	"context"
	"sync"

	"github.com/primesecret/authgate/internal/common"
	"github.com/primesecret/authgate/internal/server/models"
)

// InMemoryRepository is a mutex-guarded in-process user store. The id counter
// is owned by the repository and never exposed; ids are monotonic.
type InMemoryRepository struct {
	mu     sync.RWMutex
	byID   map[int64]*models.User
	nextID int64
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byID:   make(map[int64]*models.User),
		nextID: 1,
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.byID {
		if u.Email == user.Email {
			return nil, common.ErrEmailTaken
		}
	}

	stored := *user
	stored.ID = r.nextID
	r.nextID++
	r.byID[stored.ID] = &stored

	out := stored
	return &out, nil
}

func (r *InMemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *InMemoryRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := *u
	return &out, nil
}
