package storage

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/hybrid-guild-bot/internal/domain"
)

func openTestRepo(t *testing.T, dir string) (*GuildStateRepo, *DB) {
	t.Helper()
	ctx := context.Background()
	db, err := OpenSQLite(ctx, dir)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(ctx))
	return NewGuildStateRepo(db, nil, nil), db
}

func increment(st *domain.GuildState) error {
	st.Counter++
	return nil
}

func TestGetDefaultsWithoutWriting(t *testing.T) {
	repo, db := openTestRepo(t, t.TempDir())
	defer db.Close()
	ctx := context.Background()

	st, err := repo.Get(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, domain.GuildState{GuildID: "42"}, st)

	var n int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM guild_state`).Scan(&n))
	assert.Zero(t, n, "Get must not create records")
}

func TestUpdateSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	repo, db := openTestRepo(t, dir)
	_, err := repo.Update(ctx, "42", increment)
	require.NoError(t, err)
	st, err := repo.Update(ctx, "42", func(st *domain.GuildState) error {
		st.Locked = true
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, domain.GuildState{GuildID: "42", Counter: 1, Locked: true}, st)
	require.NoError(t, db.Close())

	repo, db = openTestRepo(t, dir)
	defer db.Close()
	st, err = repo.Get(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, domain.GuildState{GuildID: "42", Counter: 1, Locked: true}, st)
}

func TestConcurrentIncrementsAreNotLost(t *testing.T) {
	repo, db := openTestRepo(t, t.TempDir())
	defer db.Close()
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Update(ctx, "7", increment)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	st, err := repo.Get(ctx, "7")
	require.NoError(t, err)
	assert.EqualValues(t, n, st.Counter)
}

func TestUpdatesApplyInSubmissionOrder(t *testing.T) {
	repo, db := openTestRepo(t, t.TempDir())
	defer db.Close()
	ctx := context.Background()

	gate := make(chan struct{})
	var (
		mu    sync.Mutex
		order []int
		wg    sync.WaitGroup
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := repo.Update(ctx, "g", func(st *domain.GuildState) error {
			<-gate
			st.Counter++
			return nil
		})
		assert.NoError(t, err)
	}()
	tail := waitForNewTail(t, repo.locks, "g", nil)

	const n = 10
	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Update(ctx, "g", func(st *domain.GuildState) error {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
				st.Counter++
				return nil
			})
			assert.NoError(t, err)
		}(i)
		tail = waitForNewTail(t, repo.locks, "g", tail)
	}
	close(gate)
	wg.Wait()

	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, order)
	st, err := repo.Get(ctx, "g")
	require.NoError(t, err)
	assert.EqualValues(t, n+1, st.Counter)
}

func TestMutationErrorAbortsWithoutWriting(t *testing.T) {
	repo, db := openTestRepo(t, t.TempDir())
	defer db.Close()
	ctx := context.Background()

	boom := errors.New("boom")
	_, err := repo.Update(ctx, "1", func(st *domain.GuildState) error {
		st.Counter = 99
		return boom
	})
	assert.ErrorIs(t, err, boom)

	st, err := repo.Get(ctx, "1")
	require.NoError(t, err)
	assert.Zero(t, st.Counter)
}

func TestCommitFailureIsReported(t *testing.T) {
	repo, db := openTestRepo(t, t.TempDir())
	require.NoError(t, db.Close())

	_, err := repo.Update(context.Background(), "1", increment)
	assert.ErrorIs(t, err, domain.ErrStoreCommit)
}

func TestOtherGuildsDoNotWait(t *testing.T) {
	repo, db := openTestRepo(t, t.TempDir())
	defer db.Close()
	ctx := context.Background()

	unlock, err := repo.locks.lock(ctx, "busy")
	require.NoError(t, err)
	defer unlock()

	done := make(chan error, 1)
	go func() {
		_, err := repo.Update(ctx, "free", increment)
		done <- err
	}()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("update for another guild blocked on a held lock")
	}
}

// waitForNewTail spins until a new waiter has queued behind prev.
func waitForNewTail(t *testing.T, k *keyedFIFO, key string, prev chan struct{}) chan struct{} {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		k.mu.Lock()
		cur := k.tails[key]
		k.mu.Unlock()
		if cur != nil && cur != prev {
			return cur
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("no new waiter on %q", key)
	return nil
}
