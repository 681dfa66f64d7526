package worker

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

type Task[T any] func(ctx context.Context) (T, error)

// Pool bounds how many tasks run at once. It carries no state between runs.
type Pool struct {
	workers int
}

func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

func (p *Pool) Workers() int {
	if p == nil {
		return 1
	}
	return p.workers
}

// Run executes every task and returns results in task order. The first task
// error cancels the remaining ones and is returned.
func Run[T any](ctx context.Context, p *Pool, tasks []Task[T]) ([]T, error) {
	out := make([]T, len(tasks))
	if len(tasks) == 0 {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.Workers())

	for i, t := range tasks {
		if t == nil {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := t(gctx)
			if err != nil {
				return err
			}
			out[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
