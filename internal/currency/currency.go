package currency

import (
	"fmt"
	"math"
	"sync"
)

type Currency struct {
	Code   string  `json:"code"`
	Symbol string  `json:"symbol"`
	Rate   float64 `json:"rate"`
}

// Rates are relative to PKR, the currency product prices are authored in.
var DefaultTable = []Currency{
	{Code: "PKR", Symbol: "RS", Rate: 1},
	{Code: "USD", Symbol: "$", Rate: 1.1},
	{Code: "EUR", Symbol: "€", Rate: 0.85},
}

const DefaultCode = "EUR"

// Selection is one visitor's active display currency.
type Selection struct {
	mu    sync.RWMutex
	code  string
	table []Currency
}

func NewSelection(code string, table []Currency) *Selection {
	if len(table) == 0 {
		table = DefaultTable
	}
	t := make([]Currency, len(table))
	copy(t, table)
	return &Selection{code: code, table: t}
}

// SetCurrency accepts any code. Unknown codes fall back to the first table
// entry when formatting.
func (s *Selection) SetCurrency(code string) {
	s.mu.Lock()
	s.code = code
	s.mu.Unlock()
}

func (s *Selection) Code() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.code
}

func (s *Selection) Currencies() []Currency {
	out := make([]Currency, len(s.table))
	copy(out, s.table)
	return out
}

func (s *Selection) Active() Currency {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.table {
		if c.Code == s.code {
			return c
		}
	}
	return s.table[0]
}

func (s *Selection) Format(amount float64) string {
	return Format(s.Active(), amount)
}

func Format(c Currency, amount float64) string {
	converted := math.Round(amount * c.Rate)
	return fmt.Sprintf("%d%s", int64(converted), c.Symbol)
}
