package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v3"
)

func TestPostgresSourceLoad(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	src := newPostgresSourceWithQuerier(mock)

	mock.ExpectQuery("FROM hospitals").WillReturnRows(
		pgxmock.NewRows([]string{"name", "city", "postcode", "address", "phone"}).
			AddRow("The Holly Hospital", "London", "IG9 5HX", "High Road, Buckhurst Hill, Essex", "020 8505 3311").
			AddRow("Nuffield Health Brentwood Hospital", "Brentwood", "CM15 8EH", "Shenfield Road, Brentwood", "01277 695695"),
	)
	mock.ExpectQuery("FROM doctors").WillReturnRows(
		pgxmock.NewRows([]string{"name", "specialty", "qualifications", "registration_number", "practising_since", "services"}).
			AddRow("Dr. Alice Smith", "Cardiology", "MD, FACC", "7890123", 2001, []string{"Echocardiograms"}),
	)
	mock.ExpectQuery("FROM doctor_locations").WillReturnRows(
		pgxmock.NewRows([]string{"doctor_name", "hospital_name", "fee_pence"}).
			AddRow("Dr. Alice Smith", "Nuffield Health Brentwood Hospital", int64(35000)),
	)
	mock.ExpectQuery("FROM doctor_slots").WillReturnRows(
		pgxmock.NewRows([]string{"doctor_name", "hospital_name", "slot_date", "times"}).
			AddRow("Dr. Alice Smith", "Nuffield Health Brentwood Hospital", time.Date(2025, 9, 19, 0, 0, 0, 0, time.UTC), []string{"10:00", "10:30"}),
	)

	c, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	alice, ok := c.Doctor("Dr. Alice Smith")
	if !ok {
		t.Fatalf("expected doctor to be loaded")
	}
	if fee, _ := alice.Fee("Nuffield Health Brentwood Hospital"); fee != Pounds(350) {
		t.Fatalf("unexpected fee %s", fee)
	}
	slots := alice.SlotsAt("Nuffield Health Brentwood Hospital")
	if len(slots) != 1 || slots[0].DateString() != "2025-09-19" || len(slots[0].Times) != 2 {
		t.Fatalf("unexpected slots %+v", slots)
	}
	if len(c.Hospitals()) != 2 {
		t.Fatalf("expected 2 hospitals, got %d", len(c.Hospitals()))
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresSourceQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("FROM hospitals").WillReturnError(errors.New("connection refused"))

	_, err = newPostgresSourceWithQuerier(mock).Load(context.Background())
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestPostgresSourceRejectsOrphanRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	mock.ExpectQuery("FROM hospitals").WillReturnRows(
		pgxmock.NewRows([]string{"name", "city", "postcode", "address", "phone"}).
			AddRow("The Holly Hospital", "London", "IG9 5HX", "", ""),
	)
	mock.ExpectQuery("FROM doctors").WillReturnRows(
		pgxmock.NewRows([]string{"name", "specialty", "qualifications", "registration_number", "practising_since", "services"}),
	)
	mock.ExpectQuery("FROM doctor_locations").WillReturnRows(
		pgxmock.NewRows([]string{"doctor_name", "hospital_name", "fee_pence"}).
			AddRow("Dr. Nobody", "The Holly Hospital", int64(100)),
	)

	_, err = newPostgresSourceWithQuerier(mock).Load(context.Background())
	if !errors.Is(err, ErrInvalidCatalog) {
		t.Fatalf("expected ErrInvalidCatalog, got %v", err)
	}
}
