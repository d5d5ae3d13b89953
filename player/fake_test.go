package player

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/mo"
	"github.com/vidplay/vidplay/config"
	"github.com/vidplay/vidplay/engine"
	"github.com/vidplay/vidplay/media"
	"github.com/vidplay/vidplay/source"
)

// registry hands out recording adapters and keeps a shared journal of
// attach and detach calls across all of them.
type registry struct {
	mu      sync.Mutex
	created []*adapter
	journal []string

	// block, when set, holds the next attach until closed.
	block chan struct{}
	// ignoreCancel makes a blocked attach wait for block even if cancelled.
	ignoreCancel bool
	attachErr    error
}

func (r *registry) engines() engine.Registry {
	return engine.Registry{
		Native:   func() engine.Adapter { return r.add(engine.Native) },
		Adaptive: func() engine.Adapter { return r.add(engine.Adaptive) },
		Dash:     func() engine.Adapter { return reloading{r.add(engine.Dash)} },
	}
}

func (r *registry) add(kind engine.Kind) *adapter {
	r.mu.Lock()
	defer r.mu.Unlock()

	a := &adapter{reg: r, kind: kind, id: len(r.created) + 1, block: r.block, ignoreCancel: r.ignoreCancel, attachErr: r.attachErr}
	r.block = nil
	r.created = append(r.created, a)
	return a
}

// failAttaches makes every adapter created from now on fail to attach.
func (r *registry) failAttaches(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attachErr = err
}

func (r *registry) log(entry string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.journal = append(r.journal, entry)
}

func (r *registry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.created)
}

func (r *registry) get(i int) *adapter {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created[i]
}

func (r *registry) last() *adapter {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created[len(r.created)-1]
}

func (r *registry) entries() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.journal...)
}

type adapter struct {
	reg          *registry
	kind         engine.Kind
	id           int
	block        chan struct{}
	ignoreCancel bool
	attachErr    error

	mu       sync.Mutex
	src      source.Source
	attaches int
	detaches int
	reloads  int
	starts   []mo.Option[float64]
	stops    int
	handlers []func(engine.ErrorEvent)
}

func (a *adapter) Kind() engine.Kind { return a.kind }

func (a *adapter) Attach(ctx context.Context, el media.Element, src source.Source, _ config.Options) error {
	if a.block != nil {
		select {
		case <-a.block:
		case <-ctx.Done():
			if !a.ignoreCancel {
				return ctx.Err()
			}
			<-a.block
		}
	}

	if a.attachErr != nil {
		return a.attachErr
	}

	a.mu.Lock()
	a.attaches++
	a.src = src
	a.mu.Unlock()
	a.reg.log(fmt.Sprintf("attach:%d", a.id))

	return el.Load(ctx, src.URL, src.StartTime)
}

func (a *adapter) Detach(context.Context) error {
	a.mu.Lock()
	a.detaches++
	a.mu.Unlock()
	a.reg.log(fmt.Sprintf("detach:%d", a.id))
	return nil
}

func (a *adapter) StartLoad(from mo.Option[float64]) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.starts = append(a.starts, from)
}

func (a *adapter) StopLoad() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stops++
}

func (a *adapter) OnError(fn func(engine.ErrorEvent)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handlers = append(a.handlers, fn)
}

// fail reports an engine error the way a driver would, off the event loop.
func (a *adapter) fail(e engine.ErrorEvent) {
	a.mu.Lock()
	handlers := append([]func(engine.ErrorEvent){}, a.handlers...)
	a.mu.Unlock()

	for _, fn := range handlers {
		fn(e)
	}
}

func (a *adapter) source() source.Source {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.src
}

func (a *adapter) counts() (attaches, detaches, reloads int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.attaches, a.detaches, a.reloads
}

// reloading is an adapter that can reload in place.
type reloading struct {
	*adapter
}

func (r reloading) Reload(context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reloads++
	return nil
}
