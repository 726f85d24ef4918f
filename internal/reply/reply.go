// Package reply renders fulfillment results as narrative text plus option
// groups. Every function here is pure.
package reply

const (
	listPrompt             = "Here are some of our doctors who match your search. Which one would you like to know more about?"
	doctorNotFoundText     = "Sorry, I couldn't find details for that doctor."
	bookingDoctorMissing   = "Doctor not found."
	fallbackText           = "Sorry, I couldn't process that."
	paymentPromptText      = "How would you like to pay for your consultation?"
	insuranceDetailsPrompt = "Please share your insurance details so we can complete the booking:\n" +
		"    Insurer\n" +
		"    Policy number\n" +
		"    Authorisation code"
)

// MaxSlotOptions caps the time-slot options offered on a doctor detail reply.
const MaxSlotOptions = 8

const (
	GoBackLabel = "Go Back"
	GoBackValue = "Go back to doctor list"

	SelfPayOption   = "Self-pay"
	InsuranceOption = "Insurance"
)

// Option is one selectable choice; Value is what the orchestrator receives.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Reply is the structured result returned for every tag.
type Reply struct {
	Text         []string   `json:"text"`
	OptionGroups [][]Option `json:"option_groups,omitempty"`
}

// Text builds a reply with narrative segments only.
func Text(lines ...string) Reply {
	return Reply{Text: lines}
}

// OptionCount returns the number of options across all groups.
func (r Reply) OptionCount() int {
	n := 0
	for _, g := range r.OptionGroups {
		n += len(g)
	}
	return n
}

// DoctorNotFound answers a detail request naming nobody in the catalog.
func DoctorNotFound() Reply {
	return Text(doctorNotFoundText)
}

// BookingDoctorNotFound answers a booking for an unknown doctor.
func BookingDoctorNotFound() Reply {
	return Text(bookingDoctorMissing)
}

// Fallback is the reply for unknown tags and handler failures.
func Fallback() Reply {
	return Text(fallbackText)
}

// PaymentMethodPrompt offers self-pay or insurance.
func PaymentMethodPrompt() Reply {
	return Reply{
		Text: []string{paymentPromptText},
		OptionGroups: [][]Option{{
			{Label: SelfPayOption, Value: SelfPayOption},
			{Label: InsuranceOption, Value: InsuranceOption},
		}},
	}
}

// InsuranceDetailPrompt asks for insurer, policy number and authorisation code.
func InsuranceDetailPrompt() Reply {
	return Text(insuranceDetailsPrompt)
}
