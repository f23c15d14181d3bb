package repomanager

import (
	"context"

	"github.com/primesecret/authgate/internal/server/repositories/refreshtokens"
	"github.com/primesecret/authgate/internal/server/repositories/users"
)

// InMemoryManager backs both repositories with in-process maps.
type InMemoryManager struct {
	users  *users.InMemoryRepository
	tokens *refreshtokens.InMemoryRepository
}

func NewInMemoryManager() *InMemoryManager {
	return &InMemoryManager{
		users:  users.NewInMemoryRepository(),
		tokens: refreshtokens.NewInMemoryRepository(),
	}
}

func (m *InMemoryManager) Users() users.Repository                 { return m.users }
func (m *InMemoryManager) RefreshTokens() refreshtokens.Repository { return m.tokens }

func (m *InMemoryManager) WithinTx(ctx context.Context, fn func(ctx context.Context, tokens refreshtokens.Repository) error) error {
	return fn(ctx, m.tokens)
}

func (m *InMemoryManager) Close() error { return nil }
