package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/rad_plants/internal/catalog"
	"github.com/Skotchmaster/rad_plants/internal/logging"
)

type SearchHandler struct {
	Searcher catalog.Searcher
}

// Search matches ?q= against product names. A blank query is not an error;
// it simply finds nothing.
func (h *SearchHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "search")

	st, err := currentSession(c)
	if err != nil {
		return err
	}

	q := c.QueryParam("q")
	products, err := h.Searcher.Search(ctx, q)
	if err != nil {
		l.Error("search_error", "status", 500, "query", q, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "search failed")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"query":    q,
		"total":    len(products),
		"products": newProductViews(products, st.Currency),
	})
}
