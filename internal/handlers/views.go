package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/rad_plants/internal/cart"
	"github.com/Skotchmaster/rad_plants/internal/checkout"
	"github.com/Skotchmaster/rad_plants/internal/currency"
	"github.com/Skotchmaster/rad_plants/internal/models"
	sessionmw "github.com/Skotchmaster/rad_plants/internal/middleware/session"
	"github.com/Skotchmaster/rad_plants/internal/session"
)

type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type productView struct {
	models.Product
	PriceDisplay string `json:"priceDisplay"`
}

type lineView struct {
	models.LineItem
	PriceDisplay    string `json:"priceDisplay"`
	SubtotalDisplay string `json:"subtotalDisplay"`
}

type cartView struct {
	Items        []lineView `json:"items"`
	Open         bool       `json:"open"`
	TotalItems   int        `json:"totalItems"`
	TotalPrice   float64    `json:"totalPrice"`
	TotalDisplay string     `json:"totalDisplay"`
	Currency     string     `json:"currency"`
}

type orderSummary struct {
	Subtotal string `json:"subtotal"`
	Shipping string `json:"shipping"`
	Total    string `json:"total"`
}

type checkoutView struct {
	checkout.View
	Lines           []lineView             `json:"lines"`
	TotalDisplay    string                 `json:"totalDisplay"`
	Currency        string                 `json:"currency"`
	PaymentMethods  []models.PaymentMethod `json:"paymentMethods,omitempty"`
	Summary         *orderSummary          `json:"summary,omitempty"`
	PlaceOrderLabel string                 `json:"placeOrderLabel,omitempty"`
	Title           string                 `json:"title,omitempty"`
	Message         string                 `json:"message,omitempty"`
}

const (
	shippingPending = "Calculated at next step"
	failureMessage  = "Something went wrong. Please try again or choose another method."
)

func errorResponse(c echo.Context, code int, err error) error {
	return c.JSON(code, Response{
		Status:  "error",
		Message: err.Error(),
	})
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

func currentSession(c echo.Context) (*session.State, error) {
	st, ok := sessionmw.FromContext(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
	}
	return st, nil
}

func newProductView(p models.Product, cur *currency.Selection) productView {
	return productView{Product: p, PriceDisplay: cur.Format(p.Price)}
}

func newProductViews(ps []models.Product, cur *currency.Selection) []productView {
	out := make([]productView, len(ps))
	for i, p := range ps {
		out[i] = newProductView(p, cur)
	}
	return out
}

func newLineViews(items []models.LineItem, cur *currency.Selection) []lineView {
	out := make([]lineView, len(items))
	for i, it := range items {
		out[i] = lineView{
			LineItem:        it,
			PriceDisplay:    cur.Format(it.Price),
			SubtotalDisplay: cur.Format(it.Price * float64(it.Quantity)),
		}
	}
	return out
}

func newCartView(snap cart.Snapshot, cur *currency.Selection) cartView {
	return cartView{
		Items:        newLineViews(snap.Items, cur),
		Open:         snap.Open,
		TotalItems:   snap.TotalItems,
		TotalPrice:   snap.TotalPrice,
		TotalDisplay: cur.Format(snap.TotalPrice),
		Currency:     cur.Code(),
	}
}

// SuccessMessage is the confirmation line shown for a placed order.
func SuccessMessage(paymentLabel string) string {
	if paymentLabel == models.PaymentCOD.Label() {
		return "Payment will be collected on delivery."
	}
	return "Payment processed via " + paymentLabel + "."
}

func newCheckoutView(v checkout.View, cur *currency.Selection) checkoutView {
	out := checkoutView{
		View:         v,
		Lines:        newLineViews(v.Items, cur),
		TotalDisplay: cur.Format(v.Total),
		Currency:     cur.Code(),
	}

	switch v.Display {
	case checkout.DisplayEmpty:
		out.Title = "Your cart is empty"
	case checkout.DisplayPayment, checkout.DisplayProcessing:
		out.PaymentMethods = models.PaymentMethods
		out.Summary = &orderSummary{
			Subtotal: out.TotalDisplay,
			Shipping: shippingPending,
			Total:    out.TotalDisplay,
		}
		if v.Form != nil {
			out.PlaceOrderLabel = "Place Order (" + v.Form.Method.Label() + ")"
		}
	case checkout.DisplaySuccess:
		out.Title = "Order Confirmed!"
		if v.Order != nil {
			out.Message = SuccessMessage(v.Order.PaymentMethod)
			out.TotalDisplay = cur.Format(v.Order.Total)
			out.Lines = newLineViews(v.Order.Items, cur)
		}
	case checkout.DisplayFailure:
		out.Title = "Payment Failed"
		out.Message = failureMessage
	}
	return out
}
