package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/rad_plants/internal/checkout"
	"github.com/Skotchmaster/rad_plants/internal/logging"
	"github.com/Skotchmaster/rad_plants/internal/models"
	"github.com/Skotchmaster/rad_plants/internal/session"
)

type CheckoutHandler struct{}

type checkoutError struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	View    checkoutView `json:"view"`
}

func checkoutStatus(err error) int {
	var terr *checkout.TransitionError
	switch {
	case err == nil, errors.Is(err, checkout.ErrPaymentDeclined):
		return http.StatusOK
	case errors.Is(err, checkout.ErrUnknownPaymentMethod):
		return http.StatusUnprocessableEntity
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrShippingIncomplete),
		errors.Is(err, checkout.ErrNoPaymentMethod),
		errors.Is(err, checkout.ErrOrderProcessing),
		errors.As(err, &terr):
		return http.StatusConflict
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respond renders the checkout view. A declined payment is a normal
// outcome and is returned as 200 with the failure view.
func respond(c echo.Context, l *slog.Logger, event string, st *session.State, v checkout.View, err error) error {
	view := newCheckoutView(v, st.Currency)
	status := checkoutStatus(err)

	switch {
	case err == nil:
		return c.JSON(http.StatusOK, view)
	case status == http.StatusOK:
		l.Warn(event+"_failed", "status", status, "error", err)
		return c.JSON(http.StatusOK, view)
	case status >= 500:
		l.Error(event+"_error", "status", status, "error", err)
	default:
		l.Warn(event+"_error", "status", status, "step", v.Step, "error", err)
	}
	return c.JSON(status, checkoutError{Status: "error", Message: err.Error(), View: view})
}

// Page is the navigation entry point. Visiting checkout always starts over
// at review.
func (h *CheckoutHandler) Page(c echo.Context) error {
	return h.Enter(c)
}

func (h *CheckoutHandler) Enter(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "checkout.enter")
	st, err := currentSession(c)
	if err != nil {
		return err
	}
	v, err := st.Checkout.Enter()
	return respond(c, l, "checkout_enter", st, v, err)
}

func (h *CheckoutHandler) GetView(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "checkout.view")
	st, err := currentSession(c)
	if err != nil {
		return err
	}
	return respond(c, l, "checkout_view", st, st.Checkout.View(), nil)
}

func (h *CheckoutHandler) Proceed(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "checkout.proceed")
	st, err := currentSession(c)
	if err != nil {
		return err
	}
	v, err := st.Checkout.Proceed()
	return respond(c, l, "checkout_proceed", st, v, err)
}

func (h *CheckoutHandler) Back(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "checkout.back")
	st, err := currentSession(c)
	if err != nil {
		return err
	}
	v, err := st.Checkout.Back()
	return respond(c, l, "checkout_back", st, v, err)
}

func (h *CheckoutHandler) EditShipping(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "checkout.shipping")
	st, err := currentSession(c)
	if err != nil {
		return err
	}

	var req models.ShippingDetails
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_shipping_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	v, err := st.Checkout.EditShipping(req)
	return respond(c, l, "checkout_shipping", st, v, err)
}

func (h *CheckoutHandler) ContinueToPayment(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "checkout.payment")
	st, err := currentSession(c)
	if err != nil {
		return err
	}
	v, err := st.Checkout.ContinueToPayment()
	return respond(c, l, "checkout_continue", st, v, err)
}

func (h *CheckoutHandler) SelectPayment(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "checkout.payment_method")
	st, err := currentSession(c)
	if err != nil {
		return err
	}

	var req struct {
		Method models.PaymentMethod `json:"method"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("select_payment_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	v, err := st.Checkout.SelectPayment(req.Method)
	return respond(c, l, "select_payment", st, v, err)
}

func (h *CheckoutHandler) PlaceOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "checkout.place_order")
	st, err := currentSession(c)
	if err != nil {
		return err
	}

	v, err := st.Checkout.PlaceOrder(ctx)
	if err == nil && v.Order != nil {
		l.Info("place_order_success", "order_id", v.Order.ID, "total", v.Order.Total, "payment_method", v.Order.PaymentMethod)
	}
	return respond(c, l, "place_order", st, v, err)
}

func (h *CheckoutHandler) Retry(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "checkout.retry")
	st, err := currentSession(c)
	if err != nil {
		return err
	}
	v, err := st.Checkout.Retry()
	return respond(c, l, "checkout_retry", st, v, err)
}

type OrderHandler struct{}

// GetOrders lists the orders placed from this session, oldest first.
func (h *OrderHandler) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "get.orders")
	st, err := currentSession(c)
	if err != nil {
		return err
	}

	orders, err := st.Orders.List(ctx)
	if err != nil {
		l.Error("get_orders_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not load orders")
	}

	type orderView struct {
		models.Order
		TotalDisplay string `json:"totalDisplay"`
	}
	out := make([]orderView, len(orders))
	for i, o := range orders {
		out[i] = orderView{Order: o, TotalDisplay: st.Currency.Format(o.Total)}
	}
	return c.JSON(http.StatusOK, echo.Map{"orders": out, "total": len(out)})
}
