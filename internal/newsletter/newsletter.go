package newsletter

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/blake2b"

	"github.com/Skotchmaster/rad_plants/internal/kv"
	"github.com/Skotchmaster/rad_plants/internal/util"
	"github.com/Skotchmaster/rad_plants/internal/validation"
)

var ErrInvalidEmail = errors.New("Please enter a valid email address")

const (
	PopupKey       = "rad-plants-newsletter-popup"
	PopupDelay     = 3 * time.Second
	DefaultDelay   = time.Second
	SuccessMessage = "Thank you! Check your inbox for 15% off."
)

type Subscription struct {
	Email  string `json:"email"`
	Digest string `json:"digest"`
}

// Service simulates a mailing-list signup: validate, wait, succeed.
type Service struct {
	Delay    time.Duration
	validate *validator.Validate
}

func NewService(delay time.Duration) *Service {
	return &Service{Delay: delay, validate: validation.New()}
}

func (s *Service) Subscribe(ctx context.Context, email string) (Subscription, error) {
	if err := s.validate.Var(email, "required,email"); err != nil {
		return Subscription{}, fmt.Errorf("%q: %w", email, ErrInvalidEmail)
	}
	if err := util.Sleep(ctx, s.Delay); err != nil {
		return Subscription{}, err
	}
	return Subscription{Email: email, Digest: Digest(email)}, nil
}

// Digest identifies a subscriber without exposing the address.
func Digest(email string) string {
	sum := blake2b.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

// Popup tracks whether the visitor has already seen the signup popup.
type Popup struct {
	Store kv.Store
}

func (p Popup) Seen(ctx context.Context) (bool, error) {
	v, found, err := p.Store.Get(ctx, PopupKey)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", PopupKey, err)
	}
	return found && len(v) > 0, nil
}

func (p Popup) Dismiss(ctx context.Context) error {
	if err := p.Store.Put(ctx, PopupKey, []byte("true")); err != nil {
		return fmt.Errorf("write %s: %w", PopupKey, err)
	}
	return nil
}
