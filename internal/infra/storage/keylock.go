package storage

import (
	"context"
	"sync"
)

// keyedFIFO is a lock partitioned by key. Holders of the same key are served
// in the order they called lock; different keys never wait on each other.
type keyedFIFO struct {
	mu    sync.Mutex
	tails map[string]chan struct{}
}

func newKeyedFIFO() *keyedFIFO {
	return &keyedFIFO{tails: make(map[string]chan struct{})}
}

func (k *keyedFIFO) lock(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	prev := k.tails[key]
	mine := make(chan struct{})
	k.tails[key] = mine
	k.mu.Unlock()

	release := func() {
		k.mu.Lock()
		if k.tails[key] == mine {
			delete(k.tails, key)
		}
		k.mu.Unlock()
		close(mine)
	}

	if prev == nil {
		return release, nil
	}
	select {
	case <-prev:
		return release, nil
	case <-ctx.Done():
		// keep our place in the chain so later holders are not released early
		go func() {
			<-prev
			release()
		}()
		return nil, ctx.Err()
	}
}
