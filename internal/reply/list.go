package reply

import (
	"fmt"
	"strings"

	"github.com/wolfman30/clinic-booking-webhook/internal/availability"
)

// DoctorList renders search results, one numbered entry and one option per
// doctor. No matches renders NoDoctors.
func DoctorList(matches []availability.Match, criteria availability.Criteria) Reply {
	if len(matches) == 0 {
		return NoDoctors(criteria)
	}

	lines := make([]string, 0, len(matches)+1)
	lines = append(lines, listPrompt)
	options := make([]Option, 0, len(matches))
	for i, m := range matches {
		lines = append(lines, fmt.Sprintf("\n%d. %s\n    Specialty: %s\n    Locations: %s",
			i+1, m.Doctor.Name, m.Doctor.Specialty, strings.Join(m.LocationNames(), ", ")))
		options = append(options, Option{Label: "View " + m.Doctor.Name, Value: m.Doctor.Name})
	}
	return Reply{Text: lines, OptionGroups: [][]Option{options}}
}

// NoDoctors cites the search terms that produced no results.
func NoDoctors(criteria availability.Criteria) Reply {
	var b strings.Builder
	b.WriteString("Sorry, no ")
	if s := strings.TrimSpace(criteria.Specialty); s != "" {
		b.WriteString(s)
		b.WriteString(" ")
	}
	b.WriteString("doctors found")
	if loc := criteria.Location(); loc != "" {
		b.WriteString(" in ")
		b.WriteString(loc)
	}
	b.WriteString(".")
	return Text(b.String())
}
