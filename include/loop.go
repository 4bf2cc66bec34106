package include

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Loop is a single threaded task queue. Host document is only touched by the
// goroutine which calls Run (or by its owner before Run is called), blocking
// work is moved off loop with Go and its continuation comes back as a task.
type Loop struct {
	ctx         context.Context
	sem         *semaphore.Weighted
	done        chan func()
	outstanding int
}

// NewLoop creates loop which runs at most concurrency pieces of off-loop work
// at the same time. Cancelling ctx aborts Run and everything Go started.
func NewLoop(ctx context.Context, concurrency int64) *Loop {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Loop{
		ctx:  ctx,
		sem:  semaphore.NewWeighted(concurrency),
		done: make(chan func()),
	}
}

// Go runs work on separate goroutine. Continuation work returns is executed
// later on the loop. Must be called from loop goroutine.
func (l *Loop) Go(work func(ctx context.Context) func()) {
	l.outstanding++
	go func() {
		if err := l.sem.Acquire(l.ctx, 1); err != nil {
			return
		}
		cont := work(l.ctx)
		l.sem.Release(1)

		select {
		case l.done <- cont:
		case <-l.ctx.Done():
		}
	}()
}

// Pending returns number of continuations loop is still waiting for.
func (l *Loop) Pending() int {
	return l.outstanding
}

// Run executes continuations until nothing is outstanding. Returns context
// error if loop context was cancelled first.
func (l *Loop) Run() error {
	for l.outstanding > 0 {
		if err := l.ctx.Err(); err != nil {
			return err
		}
		select {
		case <-l.ctx.Done():
			return l.ctx.Err()
		case cont := <-l.done:
			l.outstanding--
			if cont != nil {
				cont()
			}
		}
	}
	return l.ctx.Err()
}
