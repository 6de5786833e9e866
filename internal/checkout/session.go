package checkout

import (
	"context"
	"sync"
	"time"

	"github.com/Skotchmaster/rad_plants/internal/cart"
	"github.com/Skotchmaster/rad_plants/internal/models"
)

const DateLayout = "02/01/2006, 3:04:05 pm"

type Display string

const (
	DisplayEmpty      Display = "empty"
	DisplayReview     Display = "review"
	DisplayShipping   Display = "shipping"
	DisplayPayment    Display = "payment"
	DisplayProcessing Display = "processing"
	DisplaySuccess    Display = "success"
	DisplayFailure    Display = "failure"
)

// Guards tell a client which actions are currently available, so it can
// disable buttons instead of firing actions that will be rejected.
type Guards struct {
	CanProceed           bool `json:"canProceed"`
	CanGoBack            bool `json:"canGoBack"`
	CanContinueToPayment bool `json:"canContinueToPayment"`
	CanPlaceOrder        bool `json:"canPlaceOrder"`
	CanRetry             bool `json:"canRetry"`
}

type View struct {
	Display Display           `json:"display"`
	Step    StepName          `json:"step"`
	Items   []models.LineItem `json:"items"`
	Total   float64           `json:"total"`
	Form    *Form             `json:"form,omitempty"`
	Order   *models.Order     `json:"order,omitempty"`
	Guards  Guards            `json:"guards"`
}

// Outcome is reported to the OnOutcome hook after every finished
// placement attempt.
type Outcome struct {
	Order *models.Order
	Err   error
}

type Options struct {
	Submitter Submitter
	IDs       IDSource
	Now       func() time.Time
	OnOutcome func(ctx context.Context, o Outcome)
}

// Session runs the checkout pipeline for one visitor.
type Session struct {
	mu         sync.Mutex
	cart       *cart.Cart
	orders     *OrderLog
	submitter  Submitter
	newID      IDSource
	now        func() time.Time
	onOutcome  func(ctx context.Context, o Outcome)
	step       Step
}

func NewSession(c *cart.Cart, orders *OrderLog, opts Options) *Session {
	s := &Session{
		cart:      c,
		orders:    orders,
		submitter: opts.Submitter,
		newID:     opts.IDs,
		now:       opts.Now,
		onOutcome: opts.OnOutcome,
		step:      Review{Form: NewForm()},
	}
	if s.submitter == nil {
		s.submitter = &SimulatedSubmitter{Delay: DefaultDelay, Policy: Probability(DefaultSuccessRate, nil)}
	}
	if s.newID == nil {
		s.newID = RandomOrderID(nil)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Enter starts checkout from the review step with a blank form. It is
// refused with ErrOrderProcessing while a submission is in flight.
func (s *Session) Enter() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.step.(Payment); ok && p.Processing {
		return s.view(), ErrOrderProcessing
	}
	s.step = Review{Form: NewForm()}
	return s.view(), nil
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

func (s *Session) Proceed() (View, error) {
	return s.apply(Proceed{})
}

func (s *Session) Back() (View, error) {
	return s.apply(Back{})
}

func (s *Session) EditShipping(d models.ShippingDetails) (View, error) {
	return s.apply(EditShipping{Details: d})
}

func (s *Session) ContinueToPayment() (View, error) {
	return s.apply(ContinueToPayment{})
}

func (s *Session) SelectPayment(m models.PaymentMethod) (View, error) {
	return s.apply(SelectPayment{Method: m})
}

func (s *Session) Retry() (View, error) {
	return s.apply(Retry{})
}

func (s *Session) apply(ev Event) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cart.IsEmpty() {
		return s.view(), ErrEmptyCart
	}
	next, err := Transition(s.step, ev)
	s.step = next
	return s.view(), err
}

// PlaceOrder submits the current cart. Only one submission runs at a time;
// a call made while another is in flight gets ErrOrderProcessing. A
// declined submission leaves the cart and order list untouched and moves
// to the failure step, from which Retry returns to payment. The cart is
// emptied after the session lock is released, so cart observers never run
// under it.
func (s *Session) PlaceOrder(ctx context.Context) (View, error) {
	s.mu.Lock()
	if s.cart.IsEmpty() {
		defer s.mu.Unlock()
		return s.view(), ErrEmptyCart
	}
	next, err := Transition(s.step, BeginPlacement{})
	if err != nil {
		defer s.mu.Unlock()
		return s.view(), err
	}
	s.step = next
	form := next.(Payment).Form
	items := s.cart.Items()
	draft := models.Order{
		Items:         items,
		Total:         cart.TotalPrice(items),
		PaymentMethod: form.Method.Label(),
		Shipping:      form.Shipping,
		Status:        models.OrderStatusConfirmed,
	}
	s.mu.Unlock()

	submitErr := s.submitter.Submit(ctx, draft)

	s.mu.Lock()
	if submitErr != nil && ctx.Err() != nil {
		s.step = Payment{Form: form}
		defer s.mu.Unlock()
		return s.view(), submitErr
	}

	var placed *models.Order
	if submitErr == nil {
		draft.ID = s.newID()
		draft.Date = s.now().Format(DateLayout)
		if err := s.orders.Append(ctx, draft); err != nil {
			submitErr = err
		} else {
			placed = &draft
		}
	}

	if placed != nil {
		s.step, _ = Transition(s.step, PlacementSucceeded{Order: *placed})
	} else {
		s.step, _ = Transition(s.step, PlacementFailed{})
	}
	v := s.view()
	s.mu.Unlock()

	if placed != nil {
		s.cart.Clear()
		v.Items = []models.LineItem{}
		v.Total = 0
	}
	if s.onOutcome != nil {
		s.onOutcome(ctx, Outcome{Order: placed, Err: submitErr})
	}
	return v, submitErr
}

// view must be called with s.mu held.
func (s *Session) view() View {
	items := s.cart.Items()
	v := View{
		Step:  s.step.Name(),
		Items: items,
		Total: cart.TotalPrice(items),
	}

	if done, ok := s.step.(Succeeded); ok {
		order := done.Order
		v.Display = DisplaySuccess
		v.Order = &order
		return v
	}

	if len(items) == 0 {
		v.Display = DisplayEmpty
		return v
	}

	if f, ok := formOf(s.step); ok {
		v.Form = &f
	}

	switch st := s.step.(type) {
	case Review:
		v.Display = DisplayReview
		v.Guards.CanProceed = true
	case Shipping:
		v.Display = DisplayShipping
		v.Guards.CanGoBack = true
		v.Guards.CanContinueToPayment = st.Form.Shipping.RequiredFilled()
	case Payment:
		if st.Processing {
			v.Display = DisplayProcessing
			break
		}
		v.Display = DisplayPayment
		v.Guards.CanGoBack = true
		v.Guards.CanPlaceOrder = st.Form.Method.Valid()
	case Failed:
		v.Display = DisplayFailure
		v.Guards.CanRetry = true
	}
	return v
}
