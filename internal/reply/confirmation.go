package reply

import (
	"fmt"
	"strings"

	"github.com/wolfman30/clinic-booking-webhook/internal/catalog"
	"github.com/wolfman30/clinic-booking-webhook/internal/fees"
	"github.com/wolfman30/clinic-booking-webhook/internal/messaging/templates"
)

// ConfirmationSubject is the subject line of the confirmation email.
const ConfirmationSubject = "✅ Consultation Confirmed"

const notProvided = "Not provided"

// Confirmation is a finalized booking ready to be rendered.
type Confirmation struct {
	PatientName       string
	Email             string
	Phone             string
	Doctor            catalog.Doctor
	Hospital          catalog.Hospital
	When              string
	Method            fees.PaymentMethod
	PolicyNumber      string
	AuthorisationCode string
	Total             catalog.Money
}

// FirstName is the greeting name used in emails.
func (c Confirmation) FirstName() string {
	if fields := strings.Fields(c.PatientName); len(fields) > 0 {
		return fields[0]
	}
	return "Patient"
}

// Email is a rendered confirmation email.
type Email struct {
	Subject string
	Text    string
	HTML    string
}

// BookingConfirmation renders the confirmation shown to the patient. The same
// text is used as the plain email body and the chat message.
func BookingConfirmation(c Confirmation) Reply {
	return Text(confirmationText(c))
}

func confirmationText(c Confirmation) string {
	when := c.When
	if when == "" {
		when = DateTimePlaceholder
	}

	var b strings.Builder
	b.WriteString("Booking Confirmed!\n\n")
	fmt.Fprintf(&b, "Doctor: %s\n", c.Doctor.Name)
	fmt.Fprintf(&b, "Specialty: %s\n", c.Doctor.Specialty)
	fmt.Fprintf(&b, "Location: %s\n", c.Hospital.Name)
	fmt.Fprintf(&b, "Address: %s\n", orNA(c.Hospital.Address))
	fmt.Fprintf(&b, "Phone: %s\n", orNA(c.Hospital.Phone))
	fmt.Fprintf(&b, "Date & Time: %s\n", when)
	fmt.Fprintf(&b, "Payment Method: %s\n", c.Method.Label())
	if c.Method.IsInsurance() {
		fmt.Fprintf(&b, "Insurer: %s\n", orDefault(c.Method.Provider, notProvided))
		fmt.Fprintf(&b, "Policy Number: %s\n", orDefault(c.PolicyNumber, notProvided))
		fmt.Fprintf(&b, "Authorisation Code: %s\n", orDefault(c.AuthorisationCode, notProvided))
	}
	fmt.Fprintf(&b, "Total Payable: %s", c.Total)

	if notice := dispatchNotice(c.Email, c.Phone); notice != "" {
		b.WriteString("\n\n")
		b.WriteString(notice)
	}
	return b.String()
}

func dispatchNotice(email, phone string) string {
	switch {
	case email != "" && phone != "":
		return fmt.Sprintf("A confirmation has been sent to your email (%s) and WhatsApp (%s).", email, phone)
	case email != "":
		return fmt.Sprintf("A confirmation has been sent to your email (%s).", email)
	case phone != "":
		return fmt.Sprintf("A confirmation has been sent to your WhatsApp (%s).", phone)
	default:
		return ""
	}
}

const confirmationHTML = `<html>
  <body style="font-family: Arial, sans-serif; color: #333;">
    <h2 style="color:#2a7ae2;">✅ Your Consultation is Confirmed</h2>
    <p>Dear {{.FirstName}},</p>
    <p>We are pleased to confirm your consultation:</p>
    <table style="border-collapse: collapse; width: 100%; margin: 20px 0;">
      <tr><td><b>👨‍⚕️ Doctor:</b></td><td>{{.Doctor}}</td></tr>
      <tr><td><b>🔬 Specialty:</b></td><td>{{.Specialty}}</td></tr>
      <tr><td><b>🏥 Hospital:</b></td><td>{{.Hospital}}</td></tr>
      <tr><td><b>📍 Address:</b></td><td>{{.Address}}</td></tr>
      <tr><td><b>📞 Hospital Phone:</b></td><td>{{.HospitalPhone}}</td></tr>
      <tr><td><b>🗓 Date &amp; Time:</b></td><td>{{.When}}</td></tr>
      <tr><td><b>💳 Payment Method:</b></td><td>{{.Method}}</td></tr>
      {{- if .Insurance}}
      <tr><td><b>Insurer:</b></td><td>{{.Insurer}}</td></tr>
      <tr><td><b>Policy Number:</b></td><td>{{.PolicyNumber}}</td></tr>
      <tr><td><b>Authorisation Code:</b></td><td>{{.AuthorisationCode}}</td></tr>
      {{- end}}
      <tr><td><b>💷 Total Payable:</b></td><td>{{.Total}}</td></tr>
    </table>
    {{- if .Phone}}
    <p>We’ve also sent a copy to your WhatsApp at <b>{{.Phone}}</b>.</p>
    {{- end}}
    <p style="margin-top:20px;">If you have any questions, feel free to reply to this email.</p>
    <p style="color:#555;">Warm regards,<br>{{.Clinic}} Team</p>
  </body>
</html>
`

type confirmationView struct {
	FirstName         string
	Doctor            string
	Specialty         string
	Hospital          string
	Address           string
	HospitalPhone     string
	When              string
	Method            string
	Insurance         bool
	Insurer           string
	PolicyNumber      string
	AuthorisationCode string
	Total             string
	Phone             string
	Clinic            string
}

// ConfirmationEmail renders the subject, plain body and HTML body sent to the
// patient. clinic names the sender in the sign-off.
func ConfirmationEmail(c Confirmation, clinic string) (Email, error) {
	text := confirmationText(c)
	when := c.When
	if when == "" {
		when = DateTimePlaceholder
	}
	view := confirmationView{
		FirstName:         c.FirstName(),
		Doctor:            c.Doctor.Name,
		Specialty:         c.Doctor.Specialty,
		Hospital:          c.Hospital.Name,
		Address:           orNA(c.Hospital.Address),
		HospitalPhone:     orNA(c.Hospital.Phone),
		When:              when,
		Method:            c.Method.Label(),
		Insurance:         c.Method.IsInsurance(),
		Insurer:           orDefault(c.Method.Provider, notProvided),
		PolicyNumber:      orDefault(c.PolicyNumber, notProvided),
		AuthorisationCode: orDefault(c.AuthorisationCode, notProvided),
		Total:             c.Total.String(),
		Phone:             c.Phone,
		Clinic:            orDefault(clinic, "Clinic"),
	}
	html, err := templates.Renderer{}.RenderHTML("confirmation", confirmationHTML, view)
	if err != nil {
		return Email{}, fmt.Errorf("reply: render confirmation email: %w", err)
	}
	return Email{Subject: ConfirmationSubject, Text: text, HTML: html}, nil
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
