package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/rad_plants/internal/catalog"
	"github.com/Skotchmaster/rad_plants/internal/logging"
	"github.com/Skotchmaster/rad_plants/internal/models"
	"github.com/Skotchmaster/rad_plants/internal/util"
)

type ProductHandler struct {
	Catalog *catalog.Store
}

type productPage struct {
	Products []productView `json:"products"`
	Category string        `json:"category"`
	Total    int           `json:"total"`
	Page     int           `json:"page"`
	Size     int           `json:"size"`
	Pages    int           `json:"pages"`
}

// listProducts filters by ?category= (default all) and paginates with
// ?page= and ?size=.
func (h *ProductHandler) listProducts(c echo.Context) (productPage, error) {
	st, err := currentSession(c)
	if err != nil {
		return productPage{}, err
	}

	category := models.Category(c.QueryParam("category"))
	if category == "" {
		category = models.CategoryAll
	}
	matched := h.Catalog.ByCategory(category)

	page := parseIntDefault(c.QueryParam("page"), 1)
	from, size := util.Calculate(page, parseIntDefault(c.QueryParam("size"), 0))
	lo, hi := util.Window(len(matched), from, size)

	if page < 1 {
		page = 1
	}
	return productPage{
		Products: newProductViews(matched[lo:hi], st.Currency),
		Category: string(category),
		Total:    len(matched),
		Page:     page,
		Size:     size,
		Pages:    util.Pages(len(matched), size),
	}, nil
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "get.products")

	out, err := h.listProducts(c)
	if err != nil {
		l.Error("get_products_error", "status", 500, "error", err)
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "get.product")

	st, err := currentSession(c)
	if err != nil {
		return err
	}

	id := c.Param("id")
	p, ok := h.Catalog.ByID(id)
	if !ok {
		l.Warn("get_product_error", "status", 404, "product_id", id)
		return errorResponse(c, http.StatusNotFound, fmt.Errorf("product %s: %w", id, catalog.ErrNotFound))
	}
	return c.JSON(http.StatusOK, newProductView(p, st.Currency))
}
