package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/rad_plants/internal/currency"
	"github.com/Skotchmaster/rad_plants/internal/logging"
)

type CurrencyHandler struct{}

func currencyView(s *currency.Selection) echo.Map {
	return echo.Map{
		"code":       s.Code(),
		"active":     s.Active(),
		"currencies": s.Currencies(),
	}
}

func (h *CurrencyHandler) GetCurrency(c echo.Context) error {
	st, err := currentSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, currencyView(st.Currency))
}

// SetCurrency stores any code as given; an unknown code displays prices in
// the first table currency.
func (h *CurrencyHandler) SetCurrency(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "set.currency")

	st, err := currentSession(c)
	if err != nil {
		return err
	}

	var req struct {
		Code string `json:"code"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("set_currency_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	st.Currency.SetCurrency(req.Code)
	l.Info("currency_selected", "code", req.Code)
	return c.JSON(http.StatusOK, currencyView(st.Currency))
}
