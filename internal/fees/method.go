package fees

import "strings"

// MethodKind distinguishes how a patient pays.
type MethodKind string

const (
	KindSelfPay   MethodKind = "self_pay"
	KindInsurance MethodKind = "insurance"
	// KindOther carries payment text that matched no known method; it is
	// charged at face value.
	KindOther MethodKind = "other"
)

// PaymentMethod is SelfPay, Insurance(provider) or Other(text).
type PaymentMethod struct {
	Kind     MethodKind
	Provider string
	Text     string
}

// SelfPay is a patient paying the consultation fee directly.
func SelfPay() PaymentMethod {
	return PaymentMethod{Kind: KindSelfPay}
}

// Insurance is a booking billed to the named provider.
func Insurance(provider string) PaymentMethod {
	return PaymentMethod{Kind: KindInsurance, Provider: strings.TrimSpace(provider)}
}

// Other keeps unrecognized payment text as supplied.
func Other(text string) PaymentMethod {
	return PaymentMethod{Kind: KindOther, Text: strings.TrimSpace(text)}
}

// IsInsurance reports whether insurer details apply.
func (m PaymentMethod) IsInsurance() bool {
	return m.Kind == KindInsurance
}

// Label is the patient-facing name of the method.
func (m PaymentMethod) Label() string {
	switch m.Kind {
	case KindInsurance:
		return "Insurance"
	case KindOther:
		if m.Text != "" {
			return m.Text
		}
		return "Other"
	default:
		return "Self-pay"
	}
}

var selfPaySynonyms = map[string]struct{}{
	"self pay":    {},
	"selfpay":     {},
	"self":        {},
	"self funded": {},
	"self fund":   {},
	"pay myself":  {},
	"cash":        {},
	"card":        {},
	"credit card": {},
	"debit card":  {},
}

var insuranceSynonyms = map[string]struct{}{
	"insurance":            {},
	"insured":              {},
	"insurer":              {},
	"health insurance":     {},
	"medical insurance":    {},
	"private insurance":    {},
	"private health":       {},
	"through insurance":    {},
	"through my insurer":   {},
	"through my insurance": {},
}

func normalizeMethod(text string) string {
	replacer := strings.NewReplacer("-", " ", "_", " ")
	return strings.Join(strings.Fields(strings.ToLower(replacer.Replace(text))), " ")
}
