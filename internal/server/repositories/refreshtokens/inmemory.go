package refreshtokens

import (
	"context"
	"sync"
	"time"

	"github.com/primesecret/authgate/internal/common"
	"github.com/primesecret/authgate/internal/server/models"
)

// InMemoryRepository is a mutex-guarded in-process token store keyed by token
// value. It is the reference backing for development and tests; the Postgres
// repository provides the durable one.
type InMemoryRepository struct {
	mu     sync.Mutex
	tokens map[string]*models.RefreshToken
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{tokens: make(map[string]*models.RefreshToken)}
}

func (r *InMemoryRepository) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens[token] = &models.RefreshToken{Token: token, UserID: userID, ExpiresAt: expiresAt}
	return nil
}

func (r *InMemoryRepository) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.tokens[token]
	if !ok {
		return nil, common.ErrNotFound
	}
	out := *rec
	return &out, nil
}

func (r *InMemoryRepository) Delete(ctx context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[token]; !ok {
		return false, nil
	}
	delete(r.tokens, token)
	return true, nil
}

// Len reports the number of live records; used by tests to assert that
// expired and rotated tokens do not accumulate.
func (r *InMemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tokens)
}
