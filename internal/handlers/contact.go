package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/rad_plants/internal/contact"
	"github.com/Skotchmaster/rad_plants/internal/logging"
	"github.com/Skotchmaster/rad_plants/internal/newsletter"
)

type ContactHandler struct {
	Service *contact.Service
	Events  *Events
}

func (h *ContactHandler) Submit(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "contact.submit")
	st, err := currentSession(c)
	if err != nil {
		return err
	}

	var req contact.Message
	if err := c.Bind(&req); err != nil {
		l.Warn("contact_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Service.Submit(ctx, req); err != nil {
		var verr *contact.ValidationError
		if errors.As(err, &verr) {
			l.Warn("contact_error", "status", 422, "fields", len(verr.Fields))
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"status": "error", "errors": verr.Fields})
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			l.Warn("contact_error", "status", 408, "error", err)
			return echo.NewHTTPError(http.StatusRequestTimeout, "submission interrupted")
		}
		l.Error("contact_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not send message")
	}

	h.Events.ContactSubmitted(ctx, st.ID, newsletter.Digest(req.Email), len(req.Message))
	l.Info("contact_success")
	return c.JSON(http.StatusOK, Response{Status: "ok", Message: contact.SuccessMessage})
}
