package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/rad_plants/internal/cart"
	"github.com/Skotchmaster/rad_plants/internal/checkout"
	"github.com/Skotchmaster/rad_plants/internal/currency"
	"github.com/Skotchmaster/rad_plants/internal/kv"
)

// State is everything one visitor owns: cart, currency choice, checkout
// progress and a KV view scoped to the visitor.
type State struct {
	ID       string
	Cart     *cart.Cart
	Currency *currency.Selection
	Checkout *checkout.Session
	Orders   *checkout.OrderLog
	Store    kv.Store

	mu       sync.Mutex
	lastSeen time.Time
	unsub    func()
}

func (s *State) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *State) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

type Options struct {
	Store           kv.Store
	DefaultCurrency string
	Submitter       checkout.Submitter
	IDs             checkout.IDSource
	Clock           func() time.Time
	IdleTTL         time.Duration

	// OnCartChange and OnOrder receive the owning session id.
	OnCartChange func(sessionID string, snap cart.Snapshot)
	OnOrder      func(ctx context.Context, sessionID string, o checkout.Outcome)
}

type Registry struct {
	mu       sync.Mutex
	sessions map[string]*State
	opts     Options
}

func NewRegistry(opts Options) *Registry {
	if opts.DefaultCurrency == "" {
		opts.DefaultCurrency = currency.DefaultCode
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Registry{sessions: map[string]*State{}, opts: opts}
}

func NewID() string {
	return uuid.NewString()
}

// Get returns the state for id, creating it on first use.
func (r *Registry) Get(id string) *State {
	now := r.opts.Clock()

	r.mu.Lock()
	st, ok := r.sessions[id]
	if !ok {
		st = r.build(id)
		r.sessions[id] = st
	}
	r.mu.Unlock()

	st.touch(now)
	return st
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep forgets sessions idle for longer than IdleTTL and returns how many
// were dropped. Persisted KV slots are left alone.
func (r *Registry) Sweep() int {
	if r.opts.IdleTTL <= 0 {
		return 0
	}
	cutoff := r.opts.Clock().Add(-r.opts.IdleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for id, st := range r.sessions {
		if st.idleSince().Before(cutoff) {
			if st.unsub != nil {
				st.unsub()
			}
			delete(r.sessions, id)
			n++
		}
	}
	return n
}

func (r *Registry) build(id string) *State {
	store := kv.Namespaced(r.opts.Store, id)
	c := cart.New()
	orders := checkout.NewOrderLog(store)

	st := &State{
		ID:       id,
		Cart:     c,
		Currency: currency.NewSelection(r.opts.DefaultCurrency, nil),
		Orders:   orders,
		Store:    store,
	}

	co := checkout.Options{
		Submitter: r.opts.Submitter,
		IDs:       r.opts.IDs,
		Now:       r.opts.Clock,
	}
	if r.opts.OnOrder != nil {
		co.OnOutcome = func(ctx context.Context, o checkout.Outcome) {
			r.opts.OnOrder(ctx, id, o)
		}
	}
	st.Checkout = checkout.NewSession(c, orders, co)

	if r.opts.OnCartChange != nil {
		st.unsub = c.Subscribe(func(snap cart.Snapshot) {
			r.opts.OnCartChange(id, snap)
		})
	}
	return st
}
