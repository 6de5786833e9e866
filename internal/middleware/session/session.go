package sessionmw

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/rad_plants/internal/logging"
	"github.com/Skotchmaster/rad_plants/internal/session"
)

const (
	CookieName = "rad_session"
	contextKey = "session"
)

type Config struct {
	Registry *session.Registry
	Tokens   session.Tokens
	Secure   bool
}

// Middleware resolves the visitor's session from the signed cookie, minting
// a new one when the cookie is missing or does not verify. A valid cookie
// past half its lifetime is re-issued for the same session, so a returning
// visitor keeps their id.
func Middleware(cfg Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			l := logging.FromContext(ctx)

			id := ""
			refresh := false
			if ck, err := c.Cookie(CookieName); err == nil {
				if sid, exp, err := cfg.Tokens.Inspect(ck.Value); err == nil {
					id = sid
					refresh = time.Until(exp) < cfg.Tokens.TTL/2
				} else {
					l.Info("session_token_rejected", "error", err)
				}
			}

			if id == "" {
				id = session.NewID()
				refresh = true
			}
			if refresh {
				if err := issue(c, cfg, id); err != nil {
					l.Error("session_sign_error", "status", 500, "error", err)
					return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
				}
			}

			st := cfg.Registry.Get(id)
			c.Set(contextKey, st)

			l = l.With("session_id", id)
			c.SetRequest(c.Request().WithContext(logging.IntoContext(ctx, l)))

			return next(c)
		}
	}
}

func issue(c echo.Context, cfg Config, id string) error {
	raw, err := cfg.Tokens.Sign(id)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    raw,
		Path:     "/",
		Expires:  time.Now().Add(cfg.Tokens.TTL),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func FromContext(c echo.Context) (*session.State, bool) {
	st, ok := c.Get(contextKey).(*session.State)
	return st, ok
}

// Set attaches st to c directly. Handler tests use it instead of running
// the middleware.
func Set(c echo.Context, st *session.State) {
	c.Set(contextKey, st)
}
