package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/namancryu/TravelPMS/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertion)
var _ core.SessionStore = (*InMemoryStore)(nil)

func TestInMemoryStore_GetOrCreateLazily(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	sess, err := store.GetOrCreate(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", sess.ID)
	assert.Equal(t, core.StateGreeting, sess.State)
	assert.Equal(t, 1, store.Len())

	again, err := store.GetOrCreate(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
	assert.NotSame(t, sess, again, "store hands out clones")
}

func TestInMemoryStore_SaveRoundTrip(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	sess, _ := store.GetOrCreate(ctx, "s2")
	sess.MessageCount = 3
	sess.Context.BudgetAmount = 5000000
	require.NoError(t, store.Save(ctx, sess))

	sess.MessageCount = 99 // mutation after save must not leak
	got, _ := store.GetOrCreate(ctx, "s2")
	assert.Equal(t, 3, got.MessageCount)
	assert.Equal(t, int64(5000000), got.Context.BudgetAmount)

	assert.Error(t, store.Save(ctx, &core.Session{}))
}

func TestInMemoryStore_LockSerializesSameSession(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	const turns = 50
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := store.Lock(ctx, "shared")
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()
			sess, _ := store.GetOrCreate(ctx, "shared")
			sess.MessageCount++
			_ = store.Save(ctx, sess)
		}()
	}
	wg.Wait()

	sess, _ := store.GetOrCreate(ctx, "shared")
	assert.Equal(t, turns, sess.MessageCount)
}

func TestInMemoryStore_LockHonoursContext(t *testing.T) {
	store := NewInMemoryStore()
	unlock, err := store.Lock(context.Background(), "busy")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = store.Lock(ctx, "busy")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	other, err := store.Lock(context.Background(), "other")
	require.NoError(t, err, "locks are per session id")
	other()
}

func TestInMemoryStore_UnlockIsIdempotent(t *testing.T) {
	store := NewInMemoryStore()
	unlock, err := store.Lock(context.Background(), "s")
	require.NoError(t, err)
	unlock()
	unlock()

	again, err := store.Lock(context.Background(), "s")
	require.NoError(t, err)
	again()
}
