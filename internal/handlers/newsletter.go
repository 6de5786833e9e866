package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/rad_plants/internal/logging"
	"github.com/Skotchmaster/rad_plants/internal/newsletter"
)

type NewsletterHandler struct {
	Service *newsletter.Service
	Events  *Events
}

func (h *NewsletterHandler) Subscribe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "newsletter.subscribe")

	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("subscribe_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	sub, err := h.Service.Subscribe(ctx, req.Email)
	if err != nil {
		if errors.Is(err, newsletter.ErrInvalidEmail) {
			l.Warn("subscribe_error", "status", 422, "error", err)
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{
				"status": "error",
				"errors": echo.Map{"email": newsletter.ErrInvalidEmail.Error()},
			})
		}
		l.Warn("subscribe_error", "status", 408, "error", err)
		return echo.NewHTTPError(http.StatusRequestTimeout, "subscription interrupted")
	}

	h.Events.NewsletterSubscribed(ctx, sub.Digest)
	l.Info("subscribe_success", "digest", sub.Digest)
	return c.JSON(http.StatusOK, Response{Status: "ok", Message: newsletter.SuccessMessage})
}

func (h *NewsletterHandler) GetPopup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "newsletter.popup")
	st, err := currentSession(c)
	if err != nil {
		return err
	}

	seen, err := newsletter.Popup{Store: st.Store}.Seen(ctx)
	if err != nil {
		l.Error("popup_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not read popup state")
	}
	return c.JSON(http.StatusOK, popupView{Show: !seen, DelayMs: newsletter.PopupDelay.Milliseconds()})
}

func (h *NewsletterHandler) DismissPopup(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "newsletter.dismiss")
	st, err := currentSession(c)
	if err != nil {
		return err
	}

	if err := (newsletter.Popup{Store: st.Store}).Dismiss(ctx); err != nil {
		l.Error("popup_dismiss_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not save popup state")
	}
	return c.NoContent(http.StatusNoContent)
}
