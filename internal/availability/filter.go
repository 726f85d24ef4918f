// Package availability narrows the catalog to doctors, hospitals and slots
// that satisfy a patient's search.
package availability

import (
	"strings"

	"github.com/wolfman30/clinic-booking-webhook/internal/catalog"
)

// Criteria are the optional search terms. Empty fields do not filter.
type Criteria struct {
	Specialty string
	City      string
	Postcode  string
}

// Location returns the location terms a patient searched by, city first.
func (c Criteria) Location() string {
	city, postcode := strings.TrimSpace(c.City), strings.TrimSpace(c.Postcode)
	switch {
	case city != "" && postcode != "":
		return city + ", " + postcode
	case city != "":
		return city
	default:
		return postcode
	}
}

// Match is a doctor restricted to the hospitals that satisfied the location
// terms, with availability limited to those hospitals.
type Match struct {
	Doctor       catalog.Doctor
	Hospitals    []catalog.Hospital
	Availability map[string][]catalog.Slot
}

// LocationNames returns the matched hospital names in the doctor's order.
func (m Match) LocationNames() []string {
	names := make([]string, len(m.Hospitals))
	for i, h := range m.Hospitals {
		names[i] = h.Name
	}
	return names
}

// Filter evaluates criteria against a read-only catalog.
type Filter struct {
	catalog *catalog.Catalog
}

// New returns a filter over c.
func New(c *catalog.Catalog) *Filter {
	if c == nil {
		panic("availability: catalog required")
	}
	return &Filter{catalog: c}
}

// Filter returns matching doctors in catalog order. Doctors left with no
// matching hospital are dropped.
func (f *Filter) Filter(criteria Criteria) []Match {
	specialty := strings.ToLower(strings.TrimSpace(criteria.Specialty))
	city := strings.ToLower(strings.TrimSpace(criteria.City))
	postcode := strings.TrimSpace(criteria.Postcode)

	var out []Match
	for _, doc := range f.catalog.Doctors() {
		if specialty != "" && !strings.Contains(strings.ToLower(doc.Specialty), specialty) {
			continue
		}

		match := Match{Doctor: doc, Availability: make(map[string][]catalog.Slot)}
		for _, loc := range doc.Locations {
			hospital, ok := f.catalog.Hospital(loc)
			if !ok {
				continue
			}
			if city != "" && !strings.Contains(strings.ToLower(hospital.City), city) {
				continue
			}
			if postcode != "" && !strings.EqualFold(strings.TrimSpace(hospital.Postcode), postcode) {
				continue
			}
			match.Hospitals = append(match.Hospitals, hospital)
			if slots := doc.SlotsAt(loc); len(slots) > 0 {
				match.Availability[loc] = slots
			}
		}
		if len(match.Hospitals) == 0 {
			continue
		}
		out = append(out, match)
	}
	return out
}
