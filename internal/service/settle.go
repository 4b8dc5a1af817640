package service

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// settle runs every task concurrently and waits for all of them. A failing
// task never cancels its siblings. errs[i] is the outcome of tasks[i].
func settle(ctx context.Context, tasks ...func(context.Context) error) []error {
	errs := make([]error, len(tasks))

	var g errgroup.Group
	for i, task := range tasks {
		g.Go(func() error {
			errs[i] = task(ctx)
			return nil
		})
	}
	_ = g.Wait()

	return errs
}
