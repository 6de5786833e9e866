package httpserver

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/rad_plants/internal/handlers"
	"github.com/Skotchmaster/rad_plants/internal/logging"
)

type Deps struct {
	PageHandler       *handlers.PageHandler
	ProductHandler    *handlers.ProductHandler
	SearchHandler     *handlers.SearchHandler
	CurrencyHandler   *handlers.CurrencyHandler
	CartHandler       *handlers.CartHandler
	CheckoutHandler   *handlers.CheckoutHandler
	OrderHandler      *handlers.OrderHandler
	NewsletterHandler *handlers.NewsletterHandler
	ContactHandler    *handlers.ContactHandler

	// Session resolves the visitor for every non-health route.
	Session echo.MiddlewareFunc
	// CSRF is optional; nil disables the check.
	CSRF echo.MiddlewareFunc

	// Ready reports whether backing stores answer. nil means always ready.
	Ready func(ctx context.Context) error
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready == nil {
			return c.NoContent(http.StatusOK)
		}
		if err := d.Ready(c.Request().Context()); err != nil {
			logging.FromContext(c.Request().Context()).Warn("not_ready", "status", 503, "error", err)
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	mw := []echo.MiddlewareFunc{d.Session}
	if d.CSRF != nil {
		mw = append(mw, d.CSRF)
	}
	site := e.Group("", mw...)

	site.GET("/", d.PageHandler.Home)
	site.GET("/catalogue", d.PageHandler.Catalogue)
	site.GET("/product/:id", d.PageHandler.Product)
	site.GET("/contact", d.PageHandler.Contact)
	site.GET("/checkout", d.CheckoutHandler.Page)
	site.RouteNotFound("/*", d.PageHandler.NotFound)

	v1 := site.Group("/api/v1")

	v1.GET("/search", d.SearchHandler.Search)

	products := v1.Group("/products")

	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)

	v1.GET("/currency", d.CurrencyHandler.GetCurrency)
	v1.PUT("/currency", d.CurrencyHandler.SetCurrency)

	cart := v1.Group("/cart")

	cart.GET("", d.CartHandler.GetCart)
	cart.DELETE("", d.CartHandler.ClearCart)
	cart.PUT("/open", d.CartHandler.SetOpen)
	cart.POST("/items", d.CartHandler.AddToCart)
	cart.PATCH("/items/:id", d.CartHandler.UpdateItem)
	cart.DELETE("/items/:id", d.CartHandler.RemoveItem)

	checkout := v1.Group("/checkout")

	checkout.GET("", d.CheckoutHandler.GetView)
	checkout.POST("", d.CheckoutHandler.Enter)
	checkout.POST("/proceed", d.CheckoutHandler.Proceed)
	checkout.POST("/back", d.CheckoutHandler.Back)
	checkout.PUT("/shipping", d.CheckoutHandler.EditShipping)
	checkout.POST("/payment", d.CheckoutHandler.ContinueToPayment)
	checkout.PUT("/payment-method", d.CheckoutHandler.SelectPayment)
	checkout.POST("/orders", d.CheckoutHandler.PlaceOrder)
	checkout.POST("/retry", d.CheckoutHandler.Retry)

	v1.GET("/orders", d.OrderHandler.GetOrders)

	newsletter := v1.Group("/newsletter")

	newsletter.POST("", d.NewsletterHandler.Subscribe)
	newsletter.GET("/popup", d.NewsletterHandler.GetPopup)
	newsletter.POST("/popup/dismiss", d.NewsletterHandler.DismissPopup)

	v1.POST("/contact", d.ContactHandler.Submit)
}
