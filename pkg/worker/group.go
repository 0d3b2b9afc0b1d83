package worker

import (
	"context"
	"sync"
)

type ErrorJob func(context.Context) error

type Group interface {
	Do(ErrorJob)
	Wait() error
}

// group keeps the first reported error. A fail-fast group cancels the shared
// context as soon as any job fails.
type group struct {
	ctx                 context.Context
	ctxCancel           context.CancelFunc
	cancelCtxAfterError bool

	errOnce   *sync.Once
	errResult error
	pool      Pool
}

func NewFailFastGroup(ctx context.Context) (context.Context, Group) {
	return newGroup(ctx, NewPool(MaxWorkersCountUnlimited), true)
}

func NewFailSafeGroup(ctx context.Context) (context.Context, Group) {
	return newGroup(ctx, NewPool(MaxWorkersCountUnlimited), false)
}

func newGroup(ctx context.Context, pool Pool, cancelCtxAfterError bool) (context.Context, Group) {
	ctx, ctxCancel := context.WithCancel(ctx)
	return ctx, &group{
		ctx:                 ctx,
		ctxCancel:           ctxCancel,
		cancelCtxAfterError: cancelCtxAfterError,
		errOnce:             &sync.Once{},
		pool:                pool,
	}
}

func (g *group) Do(job ErrorJob) {
	g.pool.Do(func() {
		err := job(g.ctx)
		if err == nil {
			return
		}

		g.errOnce.Do(func() {
			g.errResult = err
			if g.cancelCtxAfterError {
				g.ctxCancel()
			}
		})
	})
}

func (g *group) Wait() error {
	g.pool.Wait()
	g.ctxCancel()
	return g.errResult
}
