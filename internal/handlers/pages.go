package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/rad_plants/internal/catalog"
	"github.com/Skotchmaster/rad_plants/internal/contact"
	"github.com/Skotchmaster/rad_plants/internal/logging"
	"github.com/Skotchmaster/rad_plants/internal/models"
	"github.com/Skotchmaster/rad_plants/internal/newsletter"
)

const (
	featuredCount     = 4
	relatedCount      = 4
	productPopupDelay = 5 * time.Second
)

type popupView struct {
	Show    bool  `json:"show"`
	DelayMs int64 `json:"delayMs"`
}

// PageHandler serves the navigation surface: one JSON view per storefront
// page.
type PageHandler struct {
	Catalog  *catalog.Store
	Products *ProductHandler
}

func (h *PageHandler) popup(c echo.Context, delay time.Duration) popupView {
	l := logging.FromContext(c.Request().Context())
	st, err := currentSession(c)
	if err != nil {
		return popupView{}
	}
	seen, err := newsletter.Popup{Store: st.Store}.Seen(c.Request().Context())
	if err != nil {
		l.Warn("popup_flag_error", "error", err)
		return popupView{}
	}
	return popupView{Show: !seen, DelayMs: delay.Milliseconds()}
}

func (h *PageHandler) Home(c echo.Context) error {
	st, err := currentSession(c)
	if err != nil {
		return err
	}
	all := h.Catalog.All()
	if len(all) > featuredCount {
		all = all[:featuredCount]
	}
	return c.JSON(http.StatusOK, echo.Map{
		"page":       "home",
		"featured":   newProductViews(all, st.Currency),
		"categories": h.Catalog.Categories(),
		"popup":      h.popup(c, newsletter.PopupDelay),
	})
}

func (h *PageHandler) Catalogue(c echo.Context) error {
	out, err := h.Products.listProducts(c)
	if err != nil {
		return err
	}
	cats := append([]models.Category{models.CategoryAll}, h.Catalog.Categories()...)
	return c.JSON(http.StatusOK, echo.Map{
		"page":       "catalogue",
		"categories": cats,
		"results":    out,
	})
}

// Product redirects unknown ids back to the catalogue.
func (h *PageHandler) Product(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "page.product")

	st, err := currentSession(c)
	if err != nil {
		return err
	}
	p, ok := h.Catalog.ByID(c.Param("id"))
	if !ok {
		l.Info("product_page_redirect", "product_id", c.Param("id"))
		return c.Redirect(http.StatusFound, "/catalogue")
	}

	related := make([]models.Product, 0, relatedCount)
	for _, other := range h.Catalog.ByCategory(p.Category) {
		if other.ID != p.ID && len(related) < relatedCount {
			related = append(related, other)
		}
	}

	maxQty := p.Stock
	if !p.InStock {
		maxQty = 0
	}
	return c.JSON(http.StatusOK, echo.Map{
		"page":        "product",
		"product":     newProductView(p, st.Currency),
		"orderable":   p.InStock,
		"minQuantity": 1,
		"maxQuantity": maxQty,
		"related":     newProductViews(related, st.Currency),
		"popup":       h.popup(c, productPopupDelay),
	})
}

func (h *PageHandler) Contact(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"page": "contact",
		"fields": echo.Map{
			"name":    echo.Map{"min": 2, "max": 100},
			"email":   echo.Map{"format": "email"},
			"message": echo.Map{"min": 10, "max": 1000},
		},
		"successMessage": contact.SuccessMessage,
	})
}

func (h *PageHandler) NotFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, Response{Status: "error", Message: "page not found"})
}
