package fulfillment

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParametersNil(t *testing.T) {
	assert.Equal(t, Parameters{}, ParseParameters(nil))
}

func TestParseParametersTrimsAndStringifies(t *testing.T) {
	p := ParseParameters(map[string]any{
		"specialty":          "  Cardiology ",
		"geo-city":           "Brentwood",
		"zip-code":           " CM15 8EH ",
		"doctor_name":        map[string]any{"original": "dr alice smith"},
		"phone_number":       447700900123.0,
		"policy_number":      json.Number("998877"),
		"authorization_code": 42,
		"insurer":            "Bupa",
	})

	assert.Equal(t, "Cardiology", p.Specialty)
	assert.Equal(t, "Brentwood", p.City)
	assert.Equal(t, "CM15 8EH", p.Postcode)
	assert.Equal(t, "dr alice smith", p.DoctorName)
	assert.Equal(t, "447700900123", p.Phone)
	assert.Equal(t, "998877", p.PolicyNumber)
	assert.Equal(t, "42", p.AuthorisationCode)
	assert.Equal(t, "Bupa", p.Insurer)
}

func TestParseParametersPersonName(t *testing.T) {
	cases := []struct {
		name string
		raw  any
		want string
	}{
		{"string", " Jane Doe ", "Jane Doe"},
		{"name field", map[string]any{"name": "Jane Doe"}, "Jane Doe"},
		{"first and last", map[string]any{"first": "Jane", "last": "Doe"}, "Jane Doe"},
		{"first only", map[string]any{"first": "Jane"}, "Jane"},
		{"original", map[string]any{"original": "jane"}, "jane"},
		{"missing", nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := ParseParameters(map[string]any{"person_name": tc.raw})
			assert.Equal(t, tc.want, p.PersonName)
		})
	}
}

func TestParseParametersDateTime(t *testing.T) {
	p := ParseParameters(map[string]any{"appointment_datetime": "2025-09-30T14:30:00"})
	assert.False(t, p.AppointmentDateTime.Structured)
	assert.Equal(t, "2025-09-30T14:30:00", p.AppointmentDateTime.Raw)

	var raw map[string]any
	dec := json.NewDecoder(strings.NewReader(`{"appointment_datetime":{"year":2025,"month":9,"day":30,"hours":14,"minutes":30,"seconds":0,"nanos":0}}`))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&raw))

	p = ParseParameters(raw)
	dt := p.AppointmentDateTime
	assert.True(t, dt.Structured)
	assert.Equal(t, 2025, dt.Year)
	assert.Equal(t, 9, dt.Month)
	assert.Equal(t, 30, dt.Day)
	assert.Equal(t, 14, dt.Hours)
	assert.Equal(t, 30, dt.Minutes)

	p = ParseParameters(map[string]any{"appointment_datetime": map[string]any{"original": "tomorrow"}})
	assert.False(t, p.AppointmentDateTime.Structured)
	assert.Equal(t, "tomorrow", p.AppointmentDateTime.Raw)
}

func TestParametersCriteria(t *testing.T) {
	p := Parameters{Specialty: "Neurology", City: "London", Postcode: "IG9 5HX"}
	c := p.Criteria()
	assert.Equal(t, "Neurology", c.Specialty)
	assert.Equal(t, "London", c.City)
	assert.Equal(t, "IG9 5HX", c.Postcode)
}

func TestParseParametersDateTimeFromDoubles(t *testing.T) {
	var raw map[string]any
	dec := json.NewDecoder(strings.NewReader(`{"appointment_datetime":{"year":2025.0,"month":9.0,"day":30.0,"hours":14.0,"minutes":30.0,"seconds":0.0,"nanos":0.0}}`))
	dec.UseNumber()
	require.NoError(t, dec.Decode(&raw))

	dt := ParseParameters(raw).AppointmentDateTime
	require.True(t, dt.Structured)
	assert.Equal(t, 2025, dt.Year)
	assert.Equal(t, 9, dt.Month)
	assert.Equal(t, 30, dt.Day)
	assert.Equal(t, 14, dt.Hours)
	assert.Equal(t, 30, dt.Minutes)

	dt = ParseParameters(map[string]any{"appointment_datetime": map[string]any{"year": 2025.0, "month": 9.0, "day": 30.0}}).AppointmentDateTime
	assert.True(t, dt.Structured)
	assert.Equal(t, 2025, dt.Year)
}

func TestIntValueRejectsFractions(t *testing.T) {
	cases := []any{json.Number("14.5"), 2025.25, json.Number("abc"), "nine"}
	for _, v := range cases {
		_, ok := intValue(v)
		assert.False(t, ok, "%v", v)
	}
	n, ok := intValue(json.Number("9.0"))
	assert.True(t, ok)
	assert.Equal(t, 9, n)
}
