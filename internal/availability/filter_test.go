package availability

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinic-booking-webhook/internal/catalog"
)

func names(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Doctor.Name
	}
	return out
}

func TestFilterNoCriteriaReturnsEverything(t *testing.T) {
	c := catalog.Seed()
	got := New(c).Filter(Criteria{})

	require.Len(t, got, c.Len())
	assert.Equal(t, c.DoctorNames(), names(got))
	for _, m := range got {
		assert.Equal(t, m.Doctor.Locations, m.LocationNames())
	}
}

func TestFilterCases(t *testing.T) {
	f := New(catalog.Seed())

	tests := []struct {
		name      string
		criteria  Criteria
		doctors   []string
		locations map[string][]string
	}{
		{
			name:     "specialty is case insensitive substring",
			criteria: Criteria{Specialty: "cardio"},
			doctors:  []string{"Dr. Alice Smith"},
		},
		{
			name:     "multi specialty field",
			criteria: Criteria{Specialty: "Breast Surgery"},
			doctors:  []string{"Mr Md Zaker Ullah", "Miss Tasha Gandamihardja"},
		},
		{
			name:     "city narrows hospitals",
			criteria: Criteria{Specialty: "surgery", City: "brentwood"},
			doctors:  []string{"Miss Tasha Gandamihardja"},
			locations: map[string][]string{
				"Miss Tasha Gandamihardja": {"Nuffield Health Brentwood Hospital"},
			},
		},
		{
			name:     "postcode exact ignoring case and padding",
			criteria: Criteria{Postcode: " cm15 8eh "},
			doctors:  []string{"Miss Tasha Gandamihardja", "Dr. Alice Smith", "Dr. Emily Davis"},
			locations: map[string][]string{
				"Dr. Emily Davis": {"Nuffield Health Brentwood Hospital"},
			},
		},
		{
			name:     "postcode is not a substring match",
			criteria: Criteria{Postcode: "CM15"},
			doctors:  []string{},
		},
		{
			name:     "city and postcode both apply",
			criteria: Criteria{City: "London", Postcode: "CM15 8EH"},
			doctors:  []string{},
		},
		{
			name:     "unknown specialty",
			criteria: Criteria{Specialty: "Cardiology", City: "London"},
			doctors:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := f.Filter(tt.criteria)
			assert.Equal(t, tt.doctors, append([]string{}, names(got)...))
			for _, m := range got {
				if want, ok := tt.locations[m.Doctor.Name]; ok {
					assert.Equal(t, want, m.LocationNames())
				}
			}
		})
	}
}

func TestFilterKeepsOnlyMatchedAvailability(t *testing.T) {
	got := New(catalog.Seed()).Filter(Criteria{Specialty: "dermatology", City: "London"})
	require.Len(t, got, 1)

	m := got[0]
	assert.Equal(t, []string{"The Holly Hospital"}, m.LocationNames())
	assert.Contains(t, m.Availability, "The Holly Hospital")
	assert.NotContains(t, m.Availability, "Nuffield Health Brentwood Hospital")
}

func TestFilterResultsAreSubsetOfCatalog(t *testing.T) {
	c := catalog.Seed()
	f := New(c)

	specialties := []string{"", "surgery", "Dermatology", "neuro", "none"}
	cities := []string{"", "London", "brent", "Leeds"}
	postcodes := []string{"", "IG9 5HX", "cm15 8eh", "ZZ1 1ZZ"}

	for _, s := range specialties {
		for _, city := range cities {
			for _, pc := range postcodes {
				for _, m := range f.Filter(Criteria{Specialty: s, City: city, Postcode: pc}) {
					doc, ok := c.Doctor(m.Doctor.Name)
					require.True(t, ok)
					require.NotEmpty(t, m.Hospitals)
					for _, h := range m.Hospitals {
						assert.True(t, doc.PractisesAt(h.Name))
						if city != "" {
							assert.Contains(t, lower(h.City), lower(city))
						}
						if pc != "" {
							assert.Equal(t, lower(h.Postcode), lower(pc))
						}
					}
					for loc := range m.Availability {
						assert.Contains(t, m.LocationNames(), loc)
					}
				}
			}
		}
	}
}

func TestCriteriaLocation(t *testing.T) {
	assert.Equal(t, "London, IG9 5HX", Criteria{City: " London ", Postcode: "IG9 5HX"}.Location())
	assert.Equal(t, "London", Criteria{City: "London"}.Location())
	assert.Equal(t, "IG9 5HX", Criteria{Postcode: "IG9 5HX"}.Location())
	assert.Empty(t, Criteria{}.Location())
}

func TestNewPanicsWithoutCatalog(t *testing.T) {
	assert.Panics(t, func() { New(nil) })
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
