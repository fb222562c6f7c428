package discord

import (
	"context"
	"sync"
)

// intake runs jobs one at a time per key, in submission order. Different
// keys run concurrently. A key with no pending work holds no goroutine.
type intake struct {
	mu     sync.Mutex
	queues map[string][]func()
	closed bool
	wg     sync.WaitGroup
}

func newIntake() *intake {
	return &intake{queues: make(map[string][]func())}
}

// Submit enqueues job behind every earlier job for key. It returns false once
// the intake is closed.
func (in *intake) Submit(key string, job func()) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	if in.closed {
		return false
	}
	q, draining := in.queues[key]
	in.queues[key] = append(q, job)
	if !draining {
		in.wg.Add(1)
		go in.drain(key)
	}
	return true
}

// Closed reports whether Close has been called.
func (in *intake) Closed() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.closed
}

func (in *intake) drain(key string) {
	defer in.wg.Done()
	for {
		in.mu.Lock()
		q := in.queues[key]
		if len(q) == 0 {
			delete(in.queues, key)
			in.mu.Unlock()
			return
		}
		job := q[0]
		q[0] = nil
		in.queues[key] = q[1:]
		in.mu.Unlock()

		job()
	}
}

// Close stops accepting jobs and waits for queued ones to finish or ctx to end.
func (in *intake) Close(ctx context.Context) error {
	in.mu.Lock()
	in.closed = true
	in.mu.Unlock()

	done := make(chan struct{})
	go func() {
		in.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
