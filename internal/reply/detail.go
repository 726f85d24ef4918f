package reply

import (
	"fmt"
	"strings"

	"github.com/wolfman30/clinic-booking-webhook/internal/catalog"
)

const (
	slotDateLayout = "Mon, 02 Jan"
	noAppointments = "No appointments"
)

// DoctorDetail renders a doctor's profile for the given hospitals with one
// booking option per time slot, capped at MaxSlotOptions, followed by a
// separate group holding a single Go Back option.
func DoctorDetail(doc catalog.Doctor, hospitals []catalog.Hospital) Reply {
	var b strings.Builder
	fmt.Fprintf(&b, "Here are the details for %s:\n\n", doc.Name)
	fmt.Fprintf(&b, "Specialty: %s\n", doc.Specialty)
	fmt.Fprintf(&b, "Qualifications: %s\n", doc.Qualifications)
	if doc.RegistrationNumber != "" {
		fmt.Fprintf(&b, "Registration Number: %s\n", doc.RegistrationNumber)
	}
	if doc.PractisingSince > 0 {
		fmt.Fprintf(&b, "Practising Since: %d\n", doc.PractisingSince)
	}
	fmt.Fprintf(&b, "Locations: %s\n", strings.Join(hospitalNames(hospitals), ", "))
	fmt.Fprintf(&b, "Services: %s\n", strings.Join(doc.Services, ", "))
	if fee, ok := initialFee(doc, hospitals); ok {
		fmt.Fprintf(&b, "Initial Consultation Fee: %s\n", fee)
	}

	if len(hospitals) > 0 {
		b.WriteString("\n🏥 Hospitals:\n")
		for _, h := range hospitals {
			fmt.Fprintf(&b, "%s\n    Address: %s\n    Phone: %s\n", h.Name, orNA(h.Address), orNA(h.Phone))
			if fee, ok := doc.Fee(h.Name); ok {
				fmt.Fprintf(&b, "    Fee: %s\n", fee)
			}
		}
	}

	b.WriteString("\n📅 Available Dates & Times:")
	var slotOptions []Option
	for _, h := range hospitals {
		slots := doc.SlotsAt(h.Name)
		if len(slots) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n🏥 %s", h.Name)
		for _, s := range slots {
			label := s.Date.Format(slotDateLayout)
			times := noAppointments
			if len(s.Times) > 0 {
				times = strings.Join(s.Times, ", ")
			}
			fmt.Fprintf(&b, "\n    📅 %s: %s", label, times)
			for _, t := range s.Times {
				slotOptions = append(slotOptions, Option{
					Label: label + " " + t,
					Value: fmt.Sprintf("Book appointment with %s on %s at %s", doc.Name, s.DateString(), t),
				})
			}
		}
	}
	if len(slotOptions) == 0 {
		b.WriteString("\nNo appointments are currently available.")
	}

	groups := make([][]Option, 0, 2)
	if len(slotOptions) > MaxSlotOptions {
		slotOptions = slotOptions[:MaxSlotOptions]
	}
	if len(slotOptions) > 0 {
		groups = append(groups, slotOptions)
	}
	groups = append(groups, []Option{{Label: GoBackLabel, Value: GoBackValue}})

	return Reply{Text: []string{b.String()}, OptionGroups: groups}
}

func initialFee(doc catalog.Doctor, hospitals []catalog.Hospital) (catalog.Money, bool) {
	for _, h := range hospitals {
		if fee, ok := doc.Fee(h.Name); ok {
			return fee, true
		}
	}
	return doc.Fee(doc.PrimaryLocation())
}

func hospitalNames(hospitals []catalog.Hospital) []string {
	names := make([]string, len(hospitals))
	for i, h := range hospitals {
		names[i] = h.Name
	}
	return names
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
