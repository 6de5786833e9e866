package contact

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Skotchmaster/rad_plants/internal/util"
	"github.com/Skotchmaster/rad_plants/internal/validation"
)

const (
	DefaultDelay   = time.Second
	SuccessMessage = "Thank you for your message! We'll get back to you soon."
)

type Message struct {
	Name    string `json:"name"    validate:"min=2,max=100"`
	Email   string `json:"email"   validate:"required,email"`
	Message string `json:"message" validate:"min=10,max=1000"`
}

// ValidationError maps each offending field to a user-facing message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return "invalid contact form: " + strings.Join(names, ", ")
}

var messages = map[string]string{
	"name.min":    "Name must be at least 2 characters",
	"name.max":    "Name must be at most 100 characters",
	"email":       "Please enter a valid email address",
	"message.min": "Message must be at least 10 characters",
	"message.max": "Message must be at most 1000 characters",
}

type Service struct {
	Delay    time.Duration
	validate *validator.Validate
}

func NewService(delay time.Duration) *Service {
	return &Service{Delay: delay, validate: validation.New()}
}

func (s *Service) Validate(m Message) error {
	err := s.validate.Struct(m)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate contact form: %w", err)
	}

	out := &ValidationError{Fields: map[string]string{}}
	for _, fe := range fieldErrs {
		field := fe.Field()
		if _, done := out.Fields[field]; done {
			continue
		}
		msg, ok := messages[field+"."+fe.Tag()]
		if !ok {
			msg, ok = messages[field]
		}
		if !ok {
			msg = "Invalid value"
		}
		out.Fields[field] = msg
	}
	return out
}

// Submit validates m and simulates delivery. It always succeeds once the
// form is valid.
func (s *Service) Submit(ctx context.Context, m Message) error {
	if err := s.Validate(m); err != nil {
		return err
	}
	return util.Sleep(ctx, s.Delay)
}
