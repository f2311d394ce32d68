package app

import (
	"context"
	"sync/atomic"

	"pagewatch/internal/render"
	"pagewatch/internal/watch"
)

// swapSource lets a config reload replace the renderer between runs.
type swapSource struct {
	cur atomic.Pointer[watch.Source]
}

func newSwapSource(src watch.Source) *swapSource {
	s := &swapSource{}
	s.Set(src)
	return s
}

func (s *swapSource) Set(src watch.Source) { s.cur.Store(&src) }

func (s *swapSource) Render(ctx context.Context) render.Result {
	p := s.cur.Load()
	if p == nil || *p == nil {
		return render.Unavailable("no renderer configured")
	}
	return (*p).Render(ctx)
}
