package hportfolio

import (
	"context"
	"errors"
	"sync"
)

// Pending is the result of a Reload that may still be running.
//
// Wait blocks until it is done, Then registers the one continuation to run
// once it is done.
type Pending struct {
	done chan struct{}

	mu         sync.Mutex
	err        error
	then       func(error)
	registered bool
}

func newPending() *Pending { return &Pending{done: make(chan struct{})} }

// Done is closed when the reload is over.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the reload is over and returns its error, or until ctx is done.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		p.mu.Lock()
		defer p.mu.Unlock()
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ErrContinuationRegistered is returned by Then when a continuation is
// already registered on the Pending.
var ErrContinuationRegistered = errors.New("continuation already registered")

// Then registers fn to be called with the reload error once it is over. If
// it is already over fn is called immediately. Only one continuation can be
// registered, later ones are refused and never called.
func (p *Pending) Then(fn func(error)) error {
	p.mu.Lock()
	if p.registered {
		p.mu.Unlock()
		return ErrContinuationRegistered
	}
	p.registered = true
	select {
	case <-p.done:
		err := p.err
		p.mu.Unlock()
		fn(err)
		return nil
	default:
	}
	p.then = fn
	p.mu.Unlock()
	return nil
}

func (p *Pending) resolve(err error) {
	p.mu.Lock()
	p.err = err
	close(p.done)
	fn := p.then
	p.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}

// reloadKey is the single flight key: all reloads share the same ledger.
const reloadKey = "reload"

// Reload refreshes the prices of the latest composition, then replays the
// journal, on a separate goroutine.
//
// A Reload requested while another one is running joins it instead of
// starting a second replay. force refetches prices even if the cache covers
// every ticker.
func (e *Engine) Reload(ctx context.Context, force bool) *Pending {
	p := newPending()
	ch := e.group.DoChan(reloadKey, func() (any, error) {
		return nil, e.reload(ctx, force)
	})
	go func() {
		res := <-ch
		if res.Shared {
			e.log.Debug("reload joined a running one")
		}
		p.resolve(res.Err)
	}()
	return p
}

// Refresh is the blocking form of Reload.
func (e *Engine) Refresh(ctx context.Context, force bool) error {
	return e.Reload(ctx, force).Wait(ctx)
}

func (e *Engine) reload(ctx context.Context, force bool) error {
	e.mu.RLock()
	latest := e.journal.Latest.Tickers(e.cash)
	start := e.startDate()
	cache := e.cache
	e.mu.RUnlock()

	// the fetch is the slow part, readers can still use the previous results meanwhile.
	cache.SetRange(start, e.today)
	if err := cache.Ensure(ctx, latest, force); err != nil {
		e.log.Error("cannot refresh prices", "err", err)
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.replay(ctx)
}
