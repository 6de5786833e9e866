package checkout

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/Skotchmaster/rad_plants/internal/models"
	"github.com/Skotchmaster/rad_plants/internal/util"
)

const (
	DefaultSuccessRate = 0.9
	DefaultDelay       = 2200 * time.Millisecond
)

// Submitter hands an order draft to whatever accepts it. The draft has no
// id yet; a nil error means it was accepted.
type Submitter interface {
	Submit(ctx context.Context, order models.Order) error
}

// Policy decides the outcome of one simulated submission.
type Policy interface {
	Succeed() bool
}

type PolicyFunc func() bool

func (f PolicyFunc) Succeed() bool { return f() }

func Always(ok bool) Policy {
	return PolicyFunc(func() bool { return ok })
}

type probability struct {
	mu  sync.Mutex
	p   float64
	rng *rand.Rand
}

// Probability succeeds with probability p, drawing fresh on every attempt.
func Probability(p float64, rng *rand.Rand) Policy {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &probability{p: p, rng: rng}
}

func (pr *probability) Succeed() bool {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.rng.Float64() < pr.p
}

// SimulatedSubmitter stands in for an order backend: it waits Delay and
// then lets Policy decide.
type SimulatedSubmitter struct {
	Delay  time.Duration
	Policy Policy
}

func (s *SimulatedSubmitter) Submit(ctx context.Context, order models.Order) error {
	if err := util.Sleep(ctx, s.Delay); err != nil {
		return err
	}

	policy := s.Policy
	if policy == nil {
		policy = Probability(DefaultSuccessRate, nil)
	}
	if !policy.Succeed() {
		return fmt.Errorf("submit order of %d items: %w", len(order.Items), ErrPaymentDeclined)
	}
	return nil
}

type IDSource func() string

func RandomOrderID(rng *rand.Rand) IDSource {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	var mu sync.Mutex
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		return fmt.Sprintf("ORD-%d", 100000+rng.Intn(900000))
	}
}
