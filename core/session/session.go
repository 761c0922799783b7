// Package session holds the per-request authentication state: a loading flag plus the resolved user,
// published to subscribers whenever it changes.
package session

import (
	"context"
	"sync"

	"github.com/lobitocorner/lobito/core/user"
)

type ctxKey int

const providerKey ctxKey = iota

// Snapshot is an immutable view of a Provider's state.
type Snapshot struct {
	Loading bool
	User    *user.User // nil when anonymous
}

func (s Snapshot) IsAuthenticated() bool { return !s.Loading && s.User != nil }
func (s Snapshot) IsTeacher() bool       { return s.IsAuthenticated() && s.User.IsTeacher() }
func (s Snapshot) IsStudent() bool       { return s.IsAuthenticated() && s.User.IsStudent() }
func (s Snapshot) IsAdmin() bool         { return s.IsAuthenticated() && s.User.IsAdmin() }

type (
	// Loader looks up the user of the current request. A nil user means anonymous.
	Loader func(ctx context.Context) (*user.User, error)

	Provider struct {
		mu     sync.Mutex
		snap   Snapshot
		err    error
		done   chan struct{}
		subs   map[int]*subscriber
		nextID int

		notifyMu sync.Mutex // keeps notifications in order
	}

	subscriber struct {
		mu     sync.Mutex // held while fn runs
		fn     func(Snapshot)
		active bool
	}
)

func (s *subscriber) deliver(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active {
		s.fn(snap)
	}
}

func (s *subscriber) stop() {
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
}

// NewProvider returns a Provider in the loading state.
func NewProvider() *Provider {
	return &Provider{
		snap: Snapshot{Loading: true},
		done: make(chan struct{}),
		subs: make(map[int]*subscriber),
	}
}

func (p *Provider) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap
}

// Err is the error returned by the last Loader, if any.
func (p *Provider) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Subscribe calls fn with the current snapshot, then again after every change, until unsubscribed.
// Once unsubscribe returns, fn is never called again; a call already in progress is waited for.
// fn must not call Resolve, reset or its own unsubscribe.
func (p *Provider) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	sub := &subscriber{fn: fn, active: true}

	p.notifyMu.Lock()
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = sub
	snap := p.snap
	p.mu.Unlock()
	sub.deliver(snap)
	p.notifyMu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
		sub.stop()
	}
}

func (p *Provider) publish(update func()) {
	p.notifyMu.Lock()
	defer p.notifyMu.Unlock()

	p.mu.Lock()
	update()
	snap := p.snap
	subs := make([]*subscriber, 0, len(p.subs))
	for id := 0; id < p.nextID; id++ {
		if sub, ok := p.subs[id]; ok {
			subs = append(subs, sub)
		}
	}
	p.mu.Unlock()

	for _, sub := range subs {
		sub.deliver(snap)
	}
}

// Resolve ends loading with usr (nil for anonymous).
func (p *Provider) Resolve(usr *user.User) {
	p.publish(func() {
		p.snap = Snapshot{User: usr}
		select {
		case <-p.done:
		default:
			close(p.done)
		}
	})
}

// reset puts the Provider back in the loading state.
func (p *Provider) reset() {
	p.publish(func() {
		p.snap = Snapshot{Loading: true}
		p.err = nil
		select {
		case <-p.done:
			p.done = make(chan struct{})
		default:
		}
	})
}

// Load runs loader in its own goroutine and resolves with its result. A failing loader resolves
// as anonymous and its error is kept for Err.
func (p *Provider) Load(ctx context.Context, loader Loader) {
	go func() {
		usr, err := loader(ctx)
		if err != nil {
			p.mu.Lock()
			p.err = err
			p.mu.Unlock()
			usr = nil
		}
		p.Resolve(usr)
	}()
}

// Wait blocks until the Provider resolves or ctx is done, and returns the snapshot at that point.
func (p *Provider) Wait(ctx context.Context) Snapshot {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
	}
	return p.Snapshot()
}

func NewContext(ctx context.Context, p *Provider) context.Context {
	return context.WithValue(ctx, providerKey, p)
}

func FromContext(ctx context.Context) (*Provider, bool) {
	p, ok := ctx.Value(providerKey).(*Provider)
	return p, ok
}
