// Package resolver maps free-text doctor references onto canonical catalog keys.
package resolver

import (
	"strings"

	"github.com/wolfman30/clinic-booking-webhook/internal/catalog"
)

// DefaultThreshold is the minimum similarity a fuzzy match must exceed.
const DefaultThreshold = 0.70

var honorifics = map[string]struct{}{
	"dr.":  {},
	"dr":   {},
	"mr":   {},
	"ms":   {},
	"miss": {},
}

// Resolver matches doctor names against a catalog.
type Resolver struct {
	keys       []string
	normalized []string
	lowered    []string
	threshold  float64
}

// New builds a resolver over the catalog's doctor keys.
func New(c *catalog.Catalog) *Resolver {
	if c == nil {
		panic("resolver: catalog required")
	}
	return NewWithThreshold(c.DoctorNames(), DefaultThreshold)
}

// NewWithThreshold builds a resolver over explicit keys, kept in the given order.
func NewWithThreshold(keys []string, threshold float64) *Resolver {
	r := &Resolver{
		keys:       append([]string(nil), keys...),
		normalized: make([]string, len(keys)),
		lowered:    make([]string, len(keys)),
		threshold:  threshold,
	}
	for i, k := range keys {
		r.normalized[i] = normalize(k)
		r.lowered[i] = strings.ToLower(k)
	}
	return r
}

// Resolve returns the canonical doctor key for candidate, or false when
// nothing is close enough.
func (r *Resolver) Resolve(candidate string) (string, bool) {
	key, _, ok := r.Match(candidate)
	return key, ok
}

// Match is Resolve plus the similarity score (1 for exact matches).
func (r *Resolver) Match(candidate string) (string, float64, bool) {
	needle := normalize(candidate)
	if needle == "" {
		return "", 0, false
	}
	for i, n := range r.normalized {
		if n == needle {
			return r.keys[i], 1, true
		}
	}

	stripped := StripHonorific(needle)
	if stripped == "" {
		return "", 0, false
	}

	bestIdx, bestScore := -1, 0.0
	for i, k := range r.lowered {
		score := Ratio(stripped, k)
		if score > bestScore {
			bestIdx, bestScore = i, score
		}
	}
	if bestIdx < 0 || bestScore <= r.threshold {
		return "", bestScore, false
	}
	return r.keys[bestIdx], bestScore, true
}

// StripHonorific removes one leading title such as "Dr." or "Miss". A dotted
// title glued to the name ("Dr.Alice") is stripped as well.
func StripHonorific(name string) string {
	fields := strings.Fields(strings.ToLower(name))
	if len(fields) == 0 {
		return ""
	}
	if _, ok := honorifics[fields[0]]; ok {
		if len(fields) > 1 {
			fields = fields[1:]
		}
		return strings.Join(fields, " ")
	}
	for title := range honorifics {
		if strings.HasSuffix(title, ".") && len(fields[0]) > len(title) && strings.HasPrefix(fields[0], title) {
			fields[0] = fields[0][len(title):]
			break
		}
	}
	return strings.Join(fields, " ")
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
