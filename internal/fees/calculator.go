// Package fees computes what a patient pays for a consultation.
package fees

import (
	"sort"
	"strings"

	"github.com/wolfman30/clinic-booking-webhook/internal/catalog"
)

const (
	// RecognizedFactor applies to providers the clinic has an agreement with.
	RecognizedFactor = 0.5
	// UnrecognizedFactor applies to every other provider. Unrecognized
	// providers are billed in full.
	UnrecognizedFactor = 1.0
)

// Calculator holds the provider discount table.
type Calculator struct {
	factors      map[string]float64
	names        map[string]string
	unrecognized float64
}

// NewCalculator gives every listed provider RecognizedFactor.
func NewCalculator(recognized []string) *Calculator {
	factors := make(map[string]float64, len(recognized))
	for _, p := range recognized {
		factors[p] = RecognizedFactor
	}
	return NewCalculatorWithFactors(factors, UnrecognizedFactor)
}

// NewCalculatorWithFactors builds a calculator from an explicit provider table
// and the factor charged to providers outside it.
func NewCalculatorWithFactors(factors map[string]float64, unrecognized float64) *Calculator {
	c := &Calculator{
		factors:      make(map[string]float64, len(factors)),
		names:        make(map[string]string, len(factors)),
		unrecognized: unrecognized,
	}
	for name, factor := range factors {
		key := providerKey(name)
		if key == "" {
			continue
		}
		c.factors[key] = factor
		c.names[key] = strings.TrimSpace(name)
	}
	return c
}

// Factor returns the multiplier for provider and whether it is in the table.
func (c *Calculator) Factor(provider string) (float64, bool) {
	f, ok := c.factors[providerKey(provider)]
	if !ok {
		return c.unrecognized, false
	}
	return f, true
}

// Recognizes reports whether provider has an entry in the table.
func (c *Calculator) Recognizes(provider string) bool {
	_, ok := c.factors[providerKey(provider)]
	return ok
}

// Providers returns the configured provider names, sorted.
func (c *Calculator) Providers() []string {
	out := make([]string, 0, len(c.names))
	for _, n := range c.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Total is the amount payable for base under method.
func (c *Calculator) Total(base catalog.Money, method PaymentMethod) catalog.Money {
	if method.Kind != KindInsurance {
		return base
	}
	factor, _ := c.Factor(method.Provider)
	return base.Scale(factor)
}

// ParseMethod maps free-text payment input onto a PaymentMethod. A non-empty
// insurer names the provider whenever the booking is billed to insurance. The
// boolean is false when the text matched nothing and was kept as Other.
func (c *Calculator) ParseMethod(text, insurer string) (PaymentMethod, bool) {
	insurer = strings.TrimSpace(insurer)
	norm := normalizeMethod(text)

	if norm == "" {
		if insurer != "" {
			return Insurance(insurer), true
		}
		return SelfPay(), true
	}
	if _, ok := selfPaySynonyms[norm]; ok {
		return SelfPay(), true
	}
	if _, ok := insuranceSynonyms[norm]; ok {
		return Insurance(insurer), true
	}
	if name, ok := c.names[providerKey(norm)]; ok {
		if insurer != "" {
			return Insurance(insurer), true
		}
		return Insurance(name), true
	}
	if insurer != "" {
		return Insurance(insurer), true
	}
	return Other(text), false
}

func providerKey(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
