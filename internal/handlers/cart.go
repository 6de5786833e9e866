package handlers

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/rad_plants/internal/catalog"
	"github.com/Skotchmaster/rad_plants/internal/logging"
)

type CartHandler struct {
	Catalog *catalog.Store
}

func (h *CartHandler) GetCart(c echo.Context) error {
	st, err := currentSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCartView(st.Cart.Snapshot(), st.Currency))
}

// AddToCart adds a product from the catalogue. The requested quantity
// (default 1) must fit the product's stock; the running cart total for the
// product is not checked.
func (h *CartHandler) AddToCart(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "add.cart")

	st, err := currentSession(c)
	if err != nil {
		return err
	}

	var req struct {
		ProductID string `json:"product_id"`
		Quantity  *int   `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.ProductID == "" {
		l.Warn("add_to_cart_error", "status", 400, "reason", "missing product_id")
		return echo.NewHTTPError(http.StatusBadRequest, "product_id required")
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	p, ok := h.Catalog.ByID(req.ProductID)
	if !ok {
		l.Warn("add_to_cart_error", "status", 404, "product_id", req.ProductID)
		return errorResponse(c, http.StatusNotFound, fmt.Errorf("product %s: %w", req.ProductID, catalog.ErrNotFound))
	}
	if err := catalog.CheckOrderable(p, qty); err != nil {
		l.Warn("add_to_cart_error", "status", 422, "product_id", p.ID, "quantity", qty, "error", err)
		return errorResponse(c, http.StatusUnprocessableEntity, err)
	}
	if err := st.Cart.AddItem(p.Snapshot(), qty); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "error", err)
		return errorResponse(c, http.StatusBadRequest, err)
	}

	l.Info("add_to_cart_success", "product_id", p.ID, "quantity", qty)
	return c.JSON(http.StatusOK, newCartView(st.Cart.Snapshot(), st.Currency))
}

// UpdateItem sets an absolute quantity; zero or less removes the line.
func (h *CartHandler) UpdateItem(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "update.cart")

	st, err := currentSession(c)
	if err != nil {
		return err
	}

	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil || req.Quantity == nil {
		l.Warn("update_cart_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "quantity required")
	}

	st.Cart.UpdateQuantity(c.Param("id"), *req.Quantity)
	return c.JSON(http.StatusOK, newCartView(st.Cart.Snapshot(), st.Currency))
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	st, err := currentSession(c)
	if err != nil {
		return err
	}
	st.Cart.RemoveItem(c.Param("id"))
	return c.JSON(http.StatusOK, newCartView(st.Cart.Snapshot(), st.Currency))
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	st, err := currentSession(c)
	if err != nil {
		return err
	}
	st.Cart.Clear()
	return c.JSON(http.StatusOK, newCartView(st.Cart.Snapshot(), st.Currency))
}

func (h *CartHandler) SetOpen(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "open.cart")

	st, err := currentSession(c)
	if err != nil {
		return err
	}

	var req struct {
		Open *bool `json:"open"`
	}
	if err := c.Bind(&req); err != nil || req.Open == nil {
		l.Warn("open_cart_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "open required")
	}
	st.Cart.SetOpen(*req.Open)
	return c.JSON(http.StatusOK, newCartView(st.Cart.Snapshot(), st.Currency))
}
