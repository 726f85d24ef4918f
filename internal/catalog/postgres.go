package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource loads the directory from the tables created by the catalog migrations.
type PostgresSource struct {
	db rowQuerier
}

// NewPostgresSource builds a source over a pgx pool.
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	if pool == nil {
		panic("catalog: pgx pool required")
	}
	return &PostgresSource{db: pool}
}

func newPostgresSourceWithQuerier(db rowQuerier) *PostgresSource {
	if db == nil {
		panic("catalog: querier required")
	}
	return &PostgresSource{db: db}
}

const (
	selectHospitals = `SELECT name, city, postcode, address, phone FROM hospitals ORDER BY position, name`
	selectDoctors   = `SELECT name, specialty, qualifications, registration_number, practising_since, services FROM doctors ORDER BY position, name`
	selectLocations = `SELECT doctor_name, hospital_name, fee_pence FROM doctor_locations ORDER BY doctor_name, position`
	selectSlots     = `SELECT doctor_name, hospital_name, slot_date, times FROM doctor_slots ORDER BY doctor_name, hospital_name, slot_date`
)

// Load reads hospitals, doctors, locations and slots and validates the result.
func (s *PostgresSource) Load(ctx context.Context) (*Catalog, error) {
	hospitals, err := s.loadHospitals(ctx)
	if err != nil {
		return nil, err
	}
	doctors, index, err := s.loadDoctors(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.loadLocations(ctx, doctors, index); err != nil {
		return nil, err
	}
	if err := s.loadSlots(ctx, doctors, index); err != nil {
		return nil, err
	}
	return New(hospitals, doctors)
}

func (s *PostgresSource) loadHospitals(ctx context.Context) ([]Hospital, error) {
	rows, err := s.db.Query(ctx, selectHospitals)
	if err != nil {
		return nil, fmt.Errorf("catalog: query hospitals: %w", err)
	}
	defer rows.Close()

	var out []Hospital
	for rows.Next() {
		var h Hospital
		if err := rows.Scan(&h.Name, &h.City, &h.Postcode, &h.Address, &h.Phone); err != nil {
			return nil, fmt.Errorf("catalog: scan hospital: %w", err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: iterate hospitals: %w", err)
	}
	return out, nil
}

func (s *PostgresSource) loadDoctors(ctx context.Context) ([]Doctor, map[string]int, error) {
	rows, err := s.db.Query(ctx, selectDoctors)
	if err != nil {
		return nil, nil, fmt.Errorf("catalog: query doctors: %w", err)
	}
	defer rows.Close()

	var out []Doctor
	index := make(map[string]int)
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.Name, &d.Specialty, &d.Qualifications, &d.RegistrationNumber, &d.PractisingSince, &d.Services); err != nil {
			return nil, nil, fmt.Errorf("catalog: scan doctor: %w", err)
		}
		d.Fees = make(map[string]Money)
		d.Availability = make(map[string][]Slot)
		index[d.Name] = len(out)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("catalog: iterate doctors: %w", err)
	}
	return out, index, nil
}

func (s *PostgresSource) loadLocations(ctx context.Context, doctors []Doctor, index map[string]int) error {
	rows, err := s.db.Query(ctx, selectLocations)
	if err != nil {
		return fmt.Errorf("catalog: query doctor locations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var doctorName, hospitalName string
		var fee int64
		if err := rows.Scan(&doctorName, &hospitalName, &fee); err != nil {
			return fmt.Errorf("catalog: scan doctor location: %w", err)
		}
		idx, ok := index[doctorName]
		if !ok {
			return fmt.Errorf("%w: location row for unknown doctor %q", ErrInvalidCatalog, doctorName)
		}
		doctors[idx].Locations = append(doctors[idx].Locations, hospitalName)
		doctors[idx].Fees[hospitalName] = Money(fee)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("catalog: iterate doctor locations: %w", err)
	}
	return nil
}

func (s *PostgresSource) loadSlots(ctx context.Context, doctors []Doctor, index map[string]int) error {
	rows, err := s.db.Query(ctx, selectSlots)
	if err != nil {
		return fmt.Errorf("catalog: query doctor slots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var doctorName, hospitalName string
		var date time.Time
		var times []string
		if err := rows.Scan(&doctorName, &hospitalName, &date, &times); err != nil {
			return fmt.Errorf("catalog: scan doctor slot: %w", err)
		}
		idx, ok := index[doctorName]
		if !ok {
			return fmt.Errorf("%w: slot row for unknown doctor %q", ErrInvalidCatalog, doctorName)
		}
		doctors[idx].Availability[hospitalName] = append(doctors[idx].Availability[hospitalName], Slot{Date: date, Times: times})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("catalog: iterate doctor slots: %w", err)
	}
	return nil
}
