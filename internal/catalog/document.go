package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Document is the JSON representation of a catalog, used by the embedded
// seed, file and S3 sources.
type Document struct {
	Hospitals []Hospital    `json:"hospitals"`
	Doctors   []doctorEntry `json:"doctors"`
}

type doctorEntry struct {
	Name               string                 `json:"name"`
	Specialty          string                 `json:"specialty"`
	Qualifications     string                 `json:"qualifications"`
	RegistrationNumber string                 `json:"registration_number"`
	PractisingSince    int                    `json:"practising_since"`
	Locations          []string               `json:"locations"`
	Fees               map[string]Money       `json:"fees"`
	Availability       map[string][]slotEntry `json:"availability"`
	Services           []string               `json:"services"`
}

type slotEntry struct {
	Date  string   `json:"date"`
	Times []string `json:"times"`
}

// Decode reads a JSON catalog document and builds a validated Catalog.
func Decode(r io.Reader) (*Catalog, error) {
	var doc Document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("catalog: decode document: %w", err)
	}
	return doc.Build()
}

// Build converts the document into a validated Catalog.
func (doc Document) Build() (*Catalog, error) {
	doctors := make([]Doctor, 0, len(doc.Doctors))
	for _, entry := range doc.Doctors {
		d := Doctor{
			Name:               entry.Name,
			Specialty:          entry.Specialty,
			Qualifications:     entry.Qualifications,
			RegistrationNumber: entry.RegistrationNumber,
			PractisingSince:    entry.PractisingSince,
			Locations:          entry.Locations,
			Fees:               entry.Fees,
			Services:           entry.Services,
			Availability:       make(map[string][]Slot, len(entry.Availability)),
		}
		for loc, slots := range entry.Availability {
			parsed := make([]Slot, 0, len(slots))
			for _, s := range slots {
				date, err := time.Parse(DateLayout, s.Date)
				if err != nil {
					return nil, fmt.Errorf("%w: doctor %q has invalid date %q", ErrInvalidCatalog, entry.Name, s.Date)
				}
				parsed = append(parsed, Slot{Date: date, Times: s.Times})
			}
			d.Availability[loc] = parsed
		}
		doctors = append(doctors, d)
	}
	return New(doc.Hospitals, doctors)
}
