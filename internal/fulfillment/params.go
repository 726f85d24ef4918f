package fulfillment

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/wolfman30/clinic-booking-webhook/internal/availability"
	"github.com/wolfman30/clinic-booking-webhook/internal/reply"
)

// Parameters is the typed view of the orchestrator's session parameters.
type Parameters struct {
	Specialty           string
	City                string
	Postcode            string
	DoctorName          string
	PersonName          string
	Phone               string
	Email               string
	AppointmentDateTime reply.DateTime
	PaymentMethod       string
	Insurer             string
	PolicyNumber        string
	AuthorisationCode   string
}

// Criteria returns the search terms for ListDoctors.
func (p Parameters) Criteria() availability.Criteria {
	return availability.Criteria{Specialty: p.Specialty, City: p.City, Postcode: p.Postcode}
}

// ParseParameters normalizes loosely typed session parameters. Strings are
// trimmed, numbers are rendered without exponent, and the structured shapes
// the orchestrator uses for names and date-times are flattened.
func ParseParameters(raw map[string]any) Parameters {
	if raw == nil {
		return Parameters{}
	}
	return Parameters{
		Specialty:           firstString(raw, "specialty", "speciality"),
		City:                firstString(raw, "city", "geo-city"),
		Postcode:            firstString(raw, "postcode", "zip-code", "postal_code"),
		DoctorName:          firstString(raw, "doctor_name", "doctor"),
		PersonName:          personName(raw["person_name"]),
		Phone:               firstString(raw, "phone_number", "phone", "mobile"),
		Email:               firstString(raw, "email", "email_address"),
		AppointmentDateTime: dateTimeParam(raw["appointment_datetime"]),
		PaymentMethod:       firstString(raw, "payment_method", "payment"),
		Insurer:             firstString(raw, "insurer", "insurance_provider"),
		PolicyNumber:        firstString(raw, "policy_number"),
		AuthorisationCode:   firstString(raw, "authorisation_code", "authorization_code"),
	}
}

func firstString(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := stringValue(raw[k]); s != "" {
			return s
		}
	}
	return ""
}

func stringValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case json.Number:
		return t.String()
	case float64:
		return formatNumber(t)
	case float32:
		return formatNumber(float64(t))
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case map[string]any:
		for _, k := range []string{"original", "name", "value"} {
			if s := stringValue(t[k]); s != "" {
				return s
			}
		}
		return ""
	default:
		return ""
	}
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func personName(v any) string {
	m, ok := v.(map[string]any)
	if !ok {
		return stringValue(v)
	}
	if s := stringValue(m["name"]); s != "" {
		return s
	}
	first, last := stringValue(m["first"]), stringValue(m["last"])
	if full := strings.TrimSpace(first + " " + last); full != "" {
		return full
	}
	return stringValue(m["original"])
}

func dateTimeParam(v any) reply.DateTime {
	m, ok := v.(map[string]any)
	if !ok {
		return reply.DateTime{Raw: stringValue(v)}
	}
	year, hasYear := intValue(m["year"])
	month, _ := intValue(m["month"])
	day, _ := intValue(m["day"])
	if !hasYear {
		return reply.DateTime{Raw: stringValue(m["original"])}
	}
	hours, _ := intValue(m["hours"])
	minutes, _ := intValue(m["minutes"])
	seconds, _ := intValue(m["seconds"])
	nanos, _ := intValue(m["nanos"])
	return reply.DateTime{
		Structured: true,
		Year:       year,
		Month:      month,
		Day:        day,
		Hours:      hours,
		Minutes:    minutes,
		Seconds:    seconds,
		Nanos:      nanos,
	}
}

func intValue(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return integral(t)
	case int:
		return t, true
	case int64:
		return int(t), true
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return int(n), true
		}
		// CX sends structured date-time fields as doubles ("2025.0")
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return integral(f)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func integral(f float64) (int, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
