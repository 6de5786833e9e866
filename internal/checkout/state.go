package checkout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Skotchmaster/rad_plants/internal/models"
)

var (
	ErrEmptyCart            = errors.New("cart is empty")
	ErrShippingIncomplete   = errors.New("full name, email and phone are required")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
	ErrNoPaymentMethod      = errors.New("payment method required")
	ErrOrderProcessing      = errors.New("order is already being processed")
	ErrPaymentDeclined      = errors.New("payment failed")
)

type StepName string

const (
	StepReview    StepName = "review"
	StepShipping  StepName = "shipping"
	StepPayment   StepName = "payment"
	StepSucceeded StepName = "success"
	StepFailed    StepName = "failure"
)

// Form is what the visitor has entered so far. It travels with every
// non-terminal step so going back never loses input.
type Form struct {
	Shipping models.ShippingDetails `json:"shipping"`
	Method   models.PaymentMethod   `json:"paymentMethod"`
}

func NewForm() Form {
	return Form{Method: models.PaymentCOD}
}

// Step is one state of the checkout pipeline. The set of implementations
// is closed: Review, Shipping, Payment, Succeeded and Failed.
type Step interface {
	Name() StepName
	step()
}

type Review struct{ Form Form }

type Shipping struct{ Form Form }

type Payment struct {
	Form       Form
	Processing bool
}

type Succeeded struct{ Order models.Order }

type Failed struct{ Form Form }

func (Review) Name() StepName    { return StepReview }
func (Shipping) Name() StepName  { return StepShipping }
func (Payment) Name() StepName   { return StepPayment }
func (Succeeded) Name() StepName { return StepSucceeded }
func (Failed) Name() StepName    { return StepFailed }

func (Review) step()    {}
func (Shipping) step()  {}
func (Payment) step()   {}
func (Succeeded) step() {}
func (Failed) step()    {}

type Event interface {
	eventName() string
}

type (
	Proceed            struct{}
	Back               struct{}
	EditShipping       struct{ Details models.ShippingDetails }
	ContinueToPayment  struct{}
	SelectPayment      struct{ Method models.PaymentMethod }
	BeginPlacement     struct{}
	PlacementSucceeded struct{ Order models.Order }
	PlacementFailed    struct{}
	Retry              struct{}
)

func (Proceed) eventName() string            { return "proceed" }
func (Back) eventName() string               { return "back" }
func (EditShipping) eventName() string       { return "edit_shipping" }
func (ContinueToPayment) eventName() string  { return "continue_to_payment" }
func (SelectPayment) eventName() string      { return "select_payment" }
func (BeginPlacement) eventName() string     { return "begin_placement" }
func (PlacementSucceeded) eventName() string { return "placement_succeeded" }
func (PlacementFailed) eventName() string    { return "placement_failed" }
func (Retry) eventName() string              { return "retry" }

type TransitionError struct {
	From  StepName
	Event string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("checkout: %s not allowed in step %s", e.Event, e.From)
}

func invalid(from Step, ev Event) error {
	return &TransitionError{From: from.Name(), Event: ev.eventName()}
}

// Transition is the only place checkout steps change.
func Transition(from Step, ev Event) (Step, error) {
	switch s := from.(type) {
	case Review:
		switch ev.(type) {
		case Proceed:
			return Shipping{Form: s.Form}, nil
		}

	case Shipping:
		switch e := ev.(type) {
		case EditShipping:
			s.Form.Shipping = e.Details
			return s, nil
		case Back:
			return Review{Form: s.Form}, nil
		case ContinueToPayment:
			if !s.Form.Shipping.RequiredFilled() {
				return s, ErrShippingIncomplete
			}
			return Payment{Form: s.Form}, nil
		}

	case Payment:
		if s.Processing {
			switch e := ev.(type) {
			case PlacementSucceeded:
				return Succeeded{Order: e.Order}, nil
			case PlacementFailed:
				return Failed{Form: s.Form}, nil
			}
			return s, ErrOrderProcessing
		}
		switch e := ev.(type) {
		case SelectPayment:
			if !e.Method.Valid() {
				return s, fmt.Errorf("%q: %w", e.Method, ErrUnknownPaymentMethod)
			}
			s.Form.Method = e.Method
			return s, nil
		case Back:
			return Shipping{Form: s.Form}, nil
		case BeginPlacement:
			if strings.TrimSpace(string(s.Form.Method)) == "" {
				return s, ErrNoPaymentMethod
			}
			return Payment{Form: s.Form, Processing: true}, nil
		}

	case Failed:
		switch ev.(type) {
		case Retry:
			return Payment{Form: s.Form}, nil
		}

	case Succeeded:

	default:
		panic(fmt.Sprintf("checkout: unknown step %T", from))
	}

	return from, invalid(from, ev)
}

func formOf(s Step) (Form, bool) {
	switch v := s.(type) {
	case Review:
		return v.Form, true
	case Shipping:
		return v.Form, true
	case Payment:
		return v.Form, true
	case Failed:
		return v.Form, true
	}
	return Form{}, false
}
