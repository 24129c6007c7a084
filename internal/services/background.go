package services

import (
	"context"
	"fmt"
	"sync"

	applog "storefront/internal/log"
)

// Background runs fire-and-forget side effects. A failing or panicking
// task is logged and never reaches the request that started it.
type Background struct {
	wg sync.WaitGroup
}

func NewBackground() *Background { return &Background{} }

// Go runs fn detached from ctx's cancellation so a finished request does
// not abort its notifications; fn is expected to bound its own I/O.
func (b *Background) Go(ctx context.Context, action string, fields map[string]any, fn func(context.Context) error) {
	ctx = context.WithoutCancel(ctx)
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				applog.Error(nil, action+".panic", fmt.Errorf("%v", r), fields)
			}
		}()
		if err := fn(ctx); err != nil {
			applog.Warn(nil, action+".fail", err, fields)
		}
	}()
}

// Drain waits for running tasks or until ctx is done.
func (b *Background) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
