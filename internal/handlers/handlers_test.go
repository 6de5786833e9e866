package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/rad_plants/internal/catalog"
	"github.com/Skotchmaster/rad_plants/internal/checkout"
	"github.com/Skotchmaster/rad_plants/internal/contact"
	"github.com/Skotchmaster/rad_plants/internal/kv"
	sessionmw "github.com/Skotchmaster/rad_plants/internal/middleware/session"
	"github.com/Skotchmaster/rad_plants/internal/mykafka"
	"github.com/Skotchmaster/rad_plants/internal/newsletter"
	"github.com/Skotchmaster/rad_plants/internal/session"
)

type testEnv struct {
	e        *echo.Echo
	registry *session.Registry
	producer *mykafka.Memory
	events   *Events
	catalog  *catalog.Store
	st       *session.State
	succeed  bool
}

func InitTestStore(t *testing.T) kv.Store {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	store, err := kv.NewGormStore(db)
	require.NoError(t, err)
	return store
}

func newTestEnv(t *testing.T) *testEnv {
	env := &testEnv{
		e:        echo.New(),
		producer: &mykafka.Memory{},
		catalog:  catalog.NewStore(catalog.Seed()),
		succeed:  true,
	}
	env.events = &Events{Producer: env.producer}

	policy := checkout.PolicyFunc(func() bool { return env.succeed })
	env.registry = session.NewRegistry(session.Options{
		Store:        InitTestStore(t),
		Submitter:    &checkout.SimulatedSubmitter{Policy: policy},
		OnCartChange: env.events.CartChanged,
		OnOrder:      env.events.OrderOutcome,
	})
	env.st = env.registry.Get(session.NewID())
	return env
}

func (env *testEnv) request(method, target string, body any) (echo.Context, *httptest.ResponseRecorder) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)
	sessionmw.Set(c, env.st)
	return c, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestMissingSession(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	h := &CartHandler{}
	err := h.GetCart(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusInternalServerError, he.Code)
}

func TestGetProducts(t *testing.T) {
	env := newTestEnv(t)
	h := &ProductHandler{Catalog: env.catalog}

	c, rec := env.request(http.MethodGet, "/api/v1/products?category=indoor&size=1&page=2", nil)
	require.NoError(t, h.GetProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var page productPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Equal(t, "indoor", page.Category)
	require.Equal(t, 2, page.Page)
	require.Equal(t, 1, page.Size)
	require.Len(t, page.Products, 1)
	require.Equal(t, len(env.catalog.ByCategory("indoor")), page.Total)
}

func TestHugePageIsEmpty(t *testing.T) {
	env := newTestEnv(t)
	products := &ProductHandler{Catalog: env.catalog}
	pages := &PageHandler{Catalog: env.catalog, Products: products}

	c, rec := env.request(http.MethodGet, "/catalogue?page=1000000000000000000", nil)
	require.NoError(t, pages.Catalogue(c))
	require.Equal(t, http.StatusOK, rec.Code)

	c, rec = env.request(http.MethodGet, "/api/v1/products?page=9223372036854775807&size=100", nil)
	require.NoError(t, products.GetProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var page productPage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Empty(t, page.Products)
	require.Equal(t, len(env.catalog.All()), page.Total)
}

func TestGetProduct(t *testing.T) {
	env := newTestEnv(t)
	h := &ProductHandler{Catalog: env.catalog}

	c, rec := env.request(http.MethodGet, "/", nil)
	c.SetParamNames("id")
	c.SetParamValues("1")
	require.NoError(t, h.GetProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode(t, rec)
	require.Equal(t, "Monstera Deliciosa", out["name"])
	require.Equal(t, "128€", out["priceDisplay"])

	c, rec = env.request(http.MethodGet, "/", nil)
	c.SetParamNames("id")
	c.SetParamValues("nope")
	require.NoError(t, h.GetProduct(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "error", decode(t, rec)["status"])
}

func TestSearch(t *testing.T) {
	env := newTestEnv(t)
	h := &SearchHandler{Searcher: catalog.StoreSearcher{Store: env.catalog}}

	c, rec := env.request(http.MethodGet, "/api/v1/search?q=monstera", nil)
	require.NoError(t, h.Search(c))
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode(t, rec)
	require.Equal(t, float64(1), out["total"])

	c, rec = env.request(http.MethodGet, "/api/v1/search?q=", nil)
	require.NoError(t, h.Search(c))
	require.Equal(t, float64(0), decode(t, rec)["total"])
}

func TestCurrency(t *testing.T) {
	env := newTestEnv(t)
	h := &CurrencyHandler{}

	c, rec := env.request(http.MethodPut, "/api/v1/currency", map[string]string{"code": "PKR"})
	require.NoError(t, h.SetCurrency(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "PKR", env.st.Currency.Code())

	c, rec = env.request(http.MethodGet, "/api/v1/currency", nil)
	require.NoError(t, h.GetCurrency(c))
	require.Equal(t, "PKR", decode(t, rec)["code"])
}

func TestAddToCart(t *testing.T) {
	env := newTestEnv(t)
	h := &CartHandler{Catalog: env.catalog}

	c, rec := env.request(http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": "1", "quantity": 2})
	require.NoError(t, h.AddToCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var view cartView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	require.Equal(t, 2, view.TotalItems)
	require.Equal(t, float64(300), view.TotalPrice)
	require.Equal(t, "255€", view.TotalDisplay)

	c, _ = env.request(http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": "1"})
	require.NoError(t, h.AddToCart(c))
	require.Equal(t, 3, env.st.Cart.TotalItems())

	events := env.producer.ByTopic(mykafka.TopicCart)
	require.Len(t, events, 2)
	require.Equal(t, env.st.ID, events[0].Key)
}

func TestAddToCartRejected(t *testing.T) {
	env := newTestEnv(t)
	h := &CartHandler{Catalog: env.catalog}

	tests := []struct {
		name string
		body map[string]any
		code int
	}{
		{"unknown product", map[string]any{"product_id": "999"}, http.StatusNotFound},
		{"out of stock", map[string]any{"product_id": "2"}, http.StatusUnprocessableEntity},
		{"over stock", map[string]any{"product_id": "1", "quantity": 6}, http.StatusUnprocessableEntity},
		{"zero quantity", map[string]any{"product_id": "1", "quantity": 0}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := env.request(http.MethodPost, "/api/v1/cart/items", tt.body)
			require.NoError(t, h.AddToCart(c))
			require.Equal(t, tt.code, rec.Code)
		})
	}

	c, _ := env.request(http.MethodPost, "/api/v1/cart/items", map[string]any{"quantity": 1})
	err := h.AddToCart(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, he.Code)

	require.True(t, env.st.Cart.IsEmpty())
}

func TestUpdateAndRemoveCartItem(t *testing.T) {
	env := newTestEnv(t)
	h := &CartHandler{Catalog: env.catalog}
	p, _ := env.catalog.ByID("3")
	require.NoError(t, env.st.Cart.AddItem(p.Snapshot(), 1))

	c, rec := env.request(http.MethodPatch, "/", map[string]any{"quantity": 4})
	c.SetParamNames("id")
	c.SetParamValues("3")
	require.NoError(t, h.UpdateItem(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 4, env.st.Cart.TotalItems())

	c, _ = env.request(http.MethodPatch, "/", map[string]any{})
	c.SetParamNames("id")
	c.SetParamValues("3")
	he, ok := h.UpdateItem(c).(*echo.HTTPError)
	require.True(t, ok)
	require.Equal(t, http.StatusBadRequest, he.Code)

	c, _ = env.request(http.MethodDelete, "/", nil)
	c.SetParamNames("id")
	c.SetParamValues("3")
	require.NoError(t, h.RemoveItem(c))
	require.True(t, env.st.Cart.IsEmpty())
}

func TestSetOpenAndClear(t *testing.T) {
	env := newTestEnv(t)
	h := &CartHandler{Catalog: env.catalog}
	p, _ := env.catalog.ByID("4")
	require.NoError(t, env.st.Cart.AddItem(p.Snapshot(), 2))

	c, rec := env.request(http.MethodPut, "/api/v1/cart/open", map[string]any{"open": true})
	require.NoError(t, h.SetOpen(c))
	require.True(t, decode(t, rec)["open"].(bool))

	c, _ = env.request(http.MethodDelete, "/api/v1/cart", nil)
	require.NoError(t, h.ClearCart(c))
	require.True(t, env.st.Cart.IsEmpty())
	require.True(t, env.st.Cart.IsOpen())
}

func fillCart(t *testing.T, env *testEnv) {
	p, _ := env.catalog.ByID("1")
	require.NoError(t, env.st.Cart.AddItem(p.Snapshot(), 2))
}

func checkoutTo(t *testing.T, env *testEnv, h *CheckoutHandler) {
	t.Helper()
	c, _ := env.request(http.MethodPost, "/api/v1/checkout", nil)
	require.NoError(t, h.Enter(c))
	c, _ = env.request(http.MethodPost, "/api/v1/checkout/proceed", nil)
	require.NoError(t, h.Proceed(c))
	c, _ = env.request(http.MethodPut, "/api/v1/checkout/shipping", map[string]string{
		"fullName": "Ayesha Khan",
		"email":    "ayesha@example.com",
		"phone":    "0300 1234567",
	})
	require.NoError(t, h.EditShipping(c))
	c, rec := env.request(http.MethodPost, "/api/v1/checkout/payment", nil)
	require.NoError(t, h.ContinueToPayment(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCheckoutEmptyCart(t *testing.T) {
	env := newTestEnv(t)
	h := &CheckoutHandler{}

	c, rec := env.request(http.MethodGet, "/checkout", nil)
	require.NoError(t, h.Page(c))
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	require.Equal(t, "empty", out["display"])
	require.Equal(t, "Your cart is empty", out["title"])

	c, rec = env.request(http.MethodPost, "/api/v1/checkout/proceed", nil)
	require.NoError(t, h.Proceed(c))
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, checkout.ErrEmptyCart.Error(), decode(t, rec)["message"])
}

func TestCheckoutShippingGuard(t *testing.T) {
	env := newTestEnv(t)
	fillCart(t, env)
	h := &CheckoutHandler{}

	c, _ := env.request(http.MethodPost, "/api/v1/checkout", nil)
	require.NoError(t, h.Enter(c))
	c, _ = env.request(http.MethodPost, "/api/v1/checkout/proceed", nil)
	require.NoError(t, h.Proceed(c))

	c, rec := env.request(http.MethodPost, "/api/v1/checkout/payment", nil)
	require.NoError(t, h.ContinueToPayment(c))
	require.Equal(t, http.StatusConflict, rec.Code)
	view := decode(t, rec)["view"].(map[string]any)
	require.Equal(t, "shipping", view["display"])
}

func TestCheckoutPlaceOrder(t *testing.T) {
	env := newTestEnv(t)
	fillCart(t, env)
	h := &CheckoutHandler{}
	checkoutTo(t, env, h)

	c, rec := env.request(http.MethodPut, "/api/v1/checkout/payment-method", map[string]string{"method": "jazzcash"})
	require.NoError(t, h.SelectPayment(c))
	require.Equal(t, "Place Order (JAZZCASH)", decode(t, rec)["placeOrderLabel"])

	c, rec = env.request(http.MethodPost, "/api/v1/checkout/orders", nil)
	require.NoError(t, h.PlaceOrder(c))
	require.Equal(t, http.StatusOK, rec.Code)

	out := decode(t, rec)
	require.Equal(t, "success", out["display"])
	require.Equal(t, "Order Confirmed!", out["title"])
	require.Equal(t, "Payment processed via JAZZCASH.", out["message"])
	require.Equal(t, "255€", out["totalDisplay"])
	require.True(t, env.st.Cart.IsEmpty())

	orders := env.producer.ByTopic(mykafka.TopicOrder)
	require.Len(t, orders, 1)
	require.Equal(t, "order_placed", orders[0].Event.(map[string]any)["type"])

	c, rec = env.request(http.MethodGet, "/api/v1/orders", nil)
	require.NoError(t, (&OrderHandler{}).GetOrders(c))
	list := decode(t, rec)
	require.Equal(t, float64(1), list["total"])
}

func TestCheckoutDeclinedThenRetry(t *testing.T) {
	env := newTestEnv(t)
	env.succeed = false
	fillCart(t, env)
	h := &CheckoutHandler{}
	checkoutTo(t, env, h)

	c, rec := env.request(http.MethodPost, "/api/v1/checkout/orders", nil)
	require.NoError(t, h.PlaceOrder(c))
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	require.Equal(t, "failure", out["display"])
	require.Equal(t, "Payment Failed", out["title"])
	require.False(t, env.st.Cart.IsEmpty())

	failed := env.producer.ByTopic(mykafka.TopicOrder)
	require.Len(t, failed, 1)
	require.Equal(t, "order_failed", failed[0].Event.(map[string]any)["type"])

	c, rec = env.request(http.MethodPost, "/api/v1/checkout/retry", nil)
	require.NoError(t, h.Retry(c))
	require.Equal(t, "payment", decode(t, rec)["display"])

	orders, err := env.st.Orders.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestCheckoutUnknownPaymentMethod(t *testing.T) {
	env := newTestEnv(t)
	fillCart(t, env)
	h := &CheckoutHandler{}
	checkoutTo(t, env, h)

	c, rec := env.request(http.MethodPut, "/api/v1/checkout/payment-method", map[string]string{"method": "bitcoin"})
	require.NoError(t, h.SelectPayment(c))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCheckoutStatus(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{nil, http.StatusOK},
		{checkout.ErrPaymentDeclined, http.StatusOK},
		{checkout.ErrUnknownPaymentMethod, http.StatusUnprocessableEntity},
		{checkout.ErrOrderProcessing, http.StatusConflict},
		{&checkout.TransitionError{From: checkout.StepReview, Event: "retry"}, http.StatusConflict},
		{context.DeadlineExceeded, http.StatusRequestTimeout},
		{kvFailure{}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		require.Equal(t, tt.code, checkoutStatus(tt.err), "%v", tt.err)
	}
}

type kvFailure struct{}

func (kvFailure) Error() string { return "kv down" }

func TestNewsletterSubscribe(t *testing.T) {
	env := newTestEnv(t)
	h := &NewsletterHandler{Service: newsletter.NewService(0), Events: env.events}

	c, rec := env.request(http.MethodPost, "/api/v1/newsletter", map[string]string{"email": "Grower@Example.com"})
	require.NoError(t, h.Subscribe(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, newsletter.SuccessMessage, decode(t, rec)["message"])

	events := env.producer.ByTopic(mykafka.TopicNewsletter)
	require.Len(t, events, 1)
	require.Equal(t, newsletter.Digest("grower@example.com"), events[0].Key)

	c, rec = env.request(http.MethodPost, "/api/v1/newsletter", map[string]string{"email": "not-an-email"})
	require.NoError(t, h.Subscribe(c))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Len(t, env.producer.ByTopic(mykafka.TopicNewsletter), 1)
}

func TestNewsletterPopup(t *testing.T) {
	env := newTestEnv(t)
	h := &NewsletterHandler{Service: newsletter.NewService(0), Events: env.events}

	c, rec := env.request(http.MethodGet, "/api/v1/newsletter/popup", nil)
	require.NoError(t, h.GetPopup(c))
	out := decode(t, rec)
	require.True(t, out["show"].(bool))
	require.Equal(t, float64(newsletter.PopupDelay/time.Millisecond), out["delayMs"])

	c, rec = env.request(http.MethodPost, "/api/v1/newsletter/popup/dismiss", nil)
	require.NoError(t, h.DismissPopup(c))
	require.Equal(t, http.StatusNoContent, rec.Code)

	c, rec = env.request(http.MethodGet, "/api/v1/newsletter/popup", nil)
	require.NoError(t, h.GetPopup(c))
	require.False(t, decode(t, rec)["show"].(bool))

	other := env.registry.Get(session.NewID())
	seen, err := newsletter.Popup{Store: other.Store}.Seen(context.Background())
	require.NoError(t, err)
	require.False(t, seen)
}

func TestContactSubmit(t *testing.T) {
	env := newTestEnv(t)
	h := &ContactHandler{Service: contact.NewService(0), Events: env.events}

	c, rec := env.request(http.MethodPost, "/api/v1/contact", map[string]string{
		"name":    "Bilal",
		"email":   "bilal@example.com",
		"message": "Do you ship to Lahore?",
	})
	require.NoError(t, h.Submit(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, contact.SuccessMessage, decode(t, rec)["message"])
	require.Len(t, env.producer.ByTopic(mykafka.TopicContact), 1)

	c, rec = env.request(http.MethodPost, "/api/v1/contact", map[string]string{
		"name":    "B",
		"email":   "bilal@example.com",
		"message": "short",
	})
	require.NoError(t, h.Submit(c))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	fields := decode(t, rec)["errors"].(map[string]any)
	require.Contains(t, fields, "name")
	require.Contains(t, fields, "message")
	require.NotContains(t, fields, "email")
	require.Len(t, env.producer.ByTopic(mykafka.TopicContact), 1)
}

func TestPages(t *testing.T) {
	env := newTestEnv(t)
	products := &ProductHandler{Catalog: env.catalog}
	h := &PageHandler{Catalog: env.catalog, Products: products}

	c, rec := env.request(http.MethodGet, "/", nil)
	require.NoError(t, h.Home(c))
	out := decode(t, rec)
	require.Len(t, out["featured"], 4)

	c, rec = env.request(http.MethodGet, "/product/missing", nil)
	c.SetParamNames("id")
	c.SetParamValues("missing")
	require.NoError(t, h.Product(c))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/catalogue", rec.Header().Get(echo.HeaderLocation))

	c, rec = env.request(http.MethodGet, "/product/2", nil)
	c.SetParamNames("id")
	c.SetParamValues("2")
	require.NoError(t, h.Product(c))
	out = decode(t, rec)
	require.False(t, out["orderable"].(bool))
	require.Equal(t, float64(0), out["maxQuantity"])

	c, rec = env.request(http.MethodGet, "/nowhere", nil)
	require.NoError(t, h.NotFound(c))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
