package engine

import (
	"errors"
	"strings"
)

// ErrUnsupportedCurrency is returned when a currency code is not in the
// converter's rate table.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// Converter normalizes amounts into EUR using a fixed exchange-rate table.
// Rates express how many EUR one unit of the foreign currency is worth.
type Converter struct {
	rates map[string]float64
}

// NewConverter builds a converter from a rate table. EUR is always supported
// with rate 1 regardless of the input.
func NewConverter(rates map[string]float64) *Converter {
	table := make(map[string]float64, len(rates)+1)
	for code, rate := range rates {
		table[strings.ToUpper(code)] = rate
	}
	table["EUR"] = 1
	return &Converter{rates: table}
}

// Normalize converts amount from the given currency into EUR.
func (c *Converter) Normalize(amount float64, currency string) (float64, error) {
	rate, ok := c.rates[strings.ToUpper(currency)]
	if !ok {
		return 0, ErrUnsupportedCurrency
	}
	return round2(amount * rate), nil
}

// Rate returns the EUR rate for a currency code.
func (c *Converter) Rate(currency string) (float64, error) {
	rate, ok := c.rates[strings.ToUpper(currency)]
	if !ok {
		return 0, ErrUnsupportedCurrency
	}
	return rate, nil
}

// Supports reports whether the currency is in the rate table.
func (c *Converter) Supports(currency string) bool {
	_, ok := c.rates[strings.ToUpper(currency)]
	return ok
}
