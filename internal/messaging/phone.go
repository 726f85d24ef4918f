package messaging

import "strings"

// DefaultCountryCode is used when no dialling code is configured.
const DefaultCountryCode = "44"

var phoneStripper = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "", "\t", "")

// NormalizePhone converts a patient-entered number to international format.
// A leading "00" becomes "+", a leading trunk "0" is replaced by the country
// code, and a number already starting with the country code gains a "+". Any
// other number is prefixed with "+" and reported as a guess by returning false.
func NormalizePhone(raw, countryCode string) (string, bool) {
	cc := strings.TrimPrefix(strings.TrimSpace(countryCode), "+")
	if cc == "" {
		cc = DefaultCountryCode
	}
	s := phoneStripper.Replace(strings.TrimSpace(raw))
	switch {
	case s == "" || s == "+":
		return "", false
	case strings.HasPrefix(s, "+"):
		return s, true
	case strings.HasPrefix(s, "00"):
		return "+" + s[2:], true
	case strings.HasPrefix(s, "0"):
		return "+" + cc + s[1:], true
	case strings.HasPrefix(s, cc):
		return "+" + s, true
	default:
		return "+" + s, false
	}
}
