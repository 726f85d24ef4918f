// Package catalog holds the read-only clinical directory: hospitals, doctors,
// consultation fees and availability slots.
package catalog

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar date format used by availability slots.
const DateLayout = "2006-01-02"

// TimeLayout is the time-of-day format used by availability slots.
const TimeLayout = "15:04"

// Hospital is a location where doctors practise.
type Hospital struct {
	Name     string `json:"name"`
	City     string `json:"city"`
	Postcode string `json:"postcode"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
}

// Slot is one bookable date with its ordered times of day.
type Slot struct {
	Date  time.Time
	Times []string
}

// DateString returns the slot date as YYYY-MM-DD.
func (s Slot) DateString() string {
	return s.Date.Format(DateLayout)
}

// Doctor is a practitioner listed in the directory.
type Doctor struct {
	Name               string
	Specialty          string
	Qualifications     string
	RegistrationNumber string
	PractisingSince    int
	Locations          []string
	Fees               map[string]Money
	Availability       map[string][]Slot
	Services           []string
}

// Fee returns the base consultation fee at the given hospital.
func (d Doctor) Fee(hospital string) (Money, bool) {
	fee, ok := d.Fees[hospital]
	return fee, ok
}

// SlotsAt returns the availability at the given hospital.
func (d Doctor) SlotsAt(hospital string) []Slot {
	return d.Availability[hospital]
}

// PrimaryLocation is the first listed hospital, used as the booking location.
func (d Doctor) PrimaryLocation() string {
	if len(d.Locations) == 0 {
		return ""
	}
	return d.Locations[0]
}

// PractisesAt reports whether the doctor lists the hospital as a location.
func (d Doctor) PractisesAt(hospital string) bool {
	for _, loc := range d.Locations {
		if loc == hospital {
			return true
		}
	}
	return false
}

func (d Doctor) clone() Doctor {
	out := d
	out.Locations = append([]string(nil), d.Locations...)
	out.Services = append([]string(nil), d.Services...)
	out.Fees = make(map[string]Money, len(d.Fees))
	for k, v := range d.Fees {
		out.Fees[k] = v
	}
	out.Availability = make(map[string][]Slot, len(d.Availability))
	for k, slots := range d.Availability {
		copied := make([]Slot, len(slots))
		for i, s := range slots {
			copied[i] = Slot{Date: s.Date, Times: append([]string(nil), s.Times...)}
		}
		out.Availability[k] = copied
	}
	return out
}

// Catalog is an immutable, insertion-ordered directory. It is safe for
// concurrent readers; values handed out must be treated as read-only.
type Catalog struct {
	hospitals     []Hospital
	hospitalIndex map[string]int
	doctors       []Doctor
	doctorIndex   map[string]int
}

// New validates and copies the supplied reference data.
func New(hospitals []Hospital, doctors []Doctor) (*Catalog, error) {
	c := &Catalog{
		hospitals:     make([]Hospital, 0, len(hospitals)),
		hospitalIndex: make(map[string]int, len(hospitals)),
		doctors:       make([]Doctor, 0, len(doctors)),
		doctorIndex:   make(map[string]int, len(doctors)),
	}

	for _, h := range hospitals {
		if strings.TrimSpace(h.Name) == "" {
			return nil, fmt.Errorf("%w: hospital name is required", ErrInvalidCatalog)
		}
		if _, dup := c.hospitalIndex[h.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate hospital %q", ErrInvalidCatalog, h.Name)
		}
		c.hospitalIndex[h.Name] = len(c.hospitals)
		c.hospitals = append(c.hospitals, h)
	}

	for _, d := range doctors {
		if err := c.validateDoctor(d); err != nil {
			return nil, err
		}
		c.doctorIndex[d.Name] = len(c.doctors)
		c.doctors = append(c.doctors, d.clone())
	}

	return c, nil
}

func (c *Catalog) validateDoctor(d Doctor) error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: doctor name is required", ErrInvalidCatalog)
	}
	if _, dup := c.doctorIndex[d.Name]; dup {
		return fmt.Errorf("%w: duplicate doctor %q", ErrInvalidCatalog, d.Name)
	}
	if len(d.Locations) == 0 {
		return fmt.Errorf("%w: doctor %q has no locations", ErrInvalidCatalog, d.Name)
	}
	for _, loc := range d.Locations {
		if _, ok := c.hospitalIndex[loc]; !ok {
			return fmt.Errorf("%w: doctor %q references unknown hospital %q", ErrInvalidCatalog, d.Name, loc)
		}
	}
	for loc, fee := range d.Fees {
		if !d.PractisesAt(loc) {
			return fmt.Errorf("%w: doctor %q has a fee for non-location %q", ErrInvalidCatalog, d.Name, loc)
		}
		if fee < 0 {
			return fmt.Errorf("%w: doctor %q has a negative fee at %q", ErrInvalidCatalog, d.Name, loc)
		}
	}
	for loc, slots := range d.Availability {
		if !d.PractisesAt(loc) {
			return fmt.Errorf("%w: doctor %q has slots for non-location %q", ErrInvalidCatalog, d.Name, loc)
		}
		for _, s := range slots {
			for _, t := range s.Times {
				if _, err := time.Parse(TimeLayout, t); err != nil {
					return fmt.Errorf("%w: doctor %q has invalid time %q", ErrInvalidCatalog, d.Name, t)
				}
			}
		}
	}
	return nil
}

// Doctors returns every doctor in insertion order.
func (c *Catalog) Doctors() []Doctor {
	return append([]Doctor(nil), c.doctors...)
}

// DoctorNames returns the canonical doctor keys in insertion order.
func (c *Catalog) DoctorNames() []string {
	names := make([]string, len(c.doctors))
	for i, d := range c.doctors {
		names[i] = d.Name
	}
	return names
}

// Doctor looks up a doctor by canonical key.
func (c *Catalog) Doctor(name string) (Doctor, bool) {
	idx, ok := c.doctorIndex[name]
	if !ok {
		return Doctor{}, false
	}
	return c.doctors[idx], true
}

// Hospitals returns every hospital in insertion order.
func (c *Catalog) Hospitals() []Hospital {
	return append([]Hospital(nil), c.hospitals...)
}

// Hospital looks up a hospital by name.
func (c *Catalog) Hospital(name string) (Hospital, bool) {
	idx, ok := c.hospitalIndex[name]
	if !ok {
		return Hospital{}, false
	}
	return c.hospitals[idx], true
}

// Len returns the number of doctors.
func (c *Catalog) Len() int {
	return len(c.doctors)
}
