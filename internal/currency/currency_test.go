package currency

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	s := NewSelection(DefaultCode, nil)
	require.Equal(t, "128€", s.Format(150))
	require.Equal(t, "30€", s.Format(35))

	s.SetCurrency("USD")
	require.Equal(t, "165$", s.Format(150))
	require.Equal(t, "50$", s.Format(45))

	s.SetCurrency("PKR")
	require.Equal(t, "1500RS", s.Format(1500))
	require.Equal(t, "0RS", s.Format(0))
}

func TestUnknownCodeFallsBackToFirstEntry(t *testing.T) {
	s := NewSelection(DefaultCode, nil)
	s.SetCurrency("GBP")
	require.Equal(t, "GBP", s.Code())
	require.Equal(t, "PKR", s.Active().Code)
	require.Equal(t, "150RS", s.Format(150))
}

func TestSwitchingAwayAndBackIsStable(t *testing.T) {
	s := NewSelection(DefaultCode, nil)
	before := s.Format(299.99)
	s.SetCurrency("USD")
	_ = s.Format(299.99)
	s.SetCurrency(DefaultCode)
	require.Equal(t, before, s.Format(299.99))
}

func TestCurrenciesIsACopy(t *testing.T) {
	s := NewSelection(DefaultCode, nil)
	list := s.Currencies()
	require.Len(t, list, 3)
	list[0].Rate = 100
	require.Equal(t, 1.0, s.Currencies()[0].Rate)
	require.Equal(t, 1.0, DefaultTable[0].Rate)
}

func TestConcurrentSelection(t *testing.T) {
	s := NewSelection(DefaultCode, nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.SetCurrency(DefaultTable[i%3].Code)
		}(i)
		go func() {
			defer wg.Done()
			_ = s.Format(10)
		}()
	}
	wg.Wait()
}
