package scan

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// scheduler runs n independent units of work. Units return an error only for
// cancellation; recoverable failures are recorded in the result instead.
type scheduler interface {
	run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error
}

// groupScheduler fans units out with a bounded concurrency limit.
type groupScheduler struct {
	limit int
}

func (s groupScheduler) run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limit)

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, i)
		})
	}

	return g.Wait()
}

// serialScheduler runs units one at a time in order, for deterministic
// sequential execution.
type serialScheduler struct{}

func (serialScheduler) run(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(ctx, i); err != nil {
			return err
		}
	}
	return nil
}
