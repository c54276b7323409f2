package users

import (
	"context"
	"sync"
	"testing"

	"github.com/dmitrijs2005/chatserver/internal/common"
	"github.com/dmitrijs2005/chatserver/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_CreateAndFind(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	u, err := r.Create(ctx, newAlice())
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	got, err := r.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "$argon2id$hash", got.PasswordHash)

	got.FullName = "Mallory"
	again, _ := r.FindByEmail(ctx, "alice@example.com")
	assert.Equal(t, "Alice", again.FullName, "returned users are copies")
}

func TestMemoryRepository_Errors(t *testing.T) {
	r := NewMemoryRepository()
	ctx := context.Background()

	_, err := r.FindByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	_, err = r.Create(ctx, newAlice())
	require.NoError(t, err)
	_, err = r.Create(ctx, newAlice())
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = r.FindByEmail(cancelled, "alice@example.com")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryRepository_ConcurrentSameEmail(t *testing.T) {
	r := NewMemoryRepository()

	const n = 32
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Create(context.Background(), &models.User{Email: "race@example.com"})
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
}
