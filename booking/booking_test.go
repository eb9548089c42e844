package booking

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"goldennile/models"
)

type fakeBookingBackend struct {
	create func(ctx context.Context, b models.Booking) (models.Booking, error)
}

func (f *fakeBookingBackend) CreateBooking(ctx context.Context, b models.Booking) (models.Booking, error) {
	return f.create(ctx, b)
}

func TestCreateStampsUserAndTracksBooking(t *testing.T) {
	fb := &fakeBookingBackend{
		create: func(ctx context.Context, b models.Booking) (models.Booking, error) {
			b.ID = "b1"
			b.Status = "confirmed"
			b.Reference = "GN-1234"
			return b, nil
		},
	}
	svc := NewService(fb, "u1", []byte("test-key"))

	booked, err := svc.Create(context.Background(), models.Booking{
		EntityType: models.KindGuesthouse,
		EntityID:   "gh-9",
		Date:       "2026-03-12",
		Start:      "14:00",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if booked.UserID != "u1" || booked.Guests != 1 {
		t.Fatalf("booking defaults not applied: %+v", booked)
	}
	if got, ok := svc.Recent("b1"); !ok || got.Reference != "GN-1234" {
		t.Fatalf("booking not tracked: %+v ok=%v", got, ok)
	}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(&fakeBookingBackend{}, "u1", []byte("k"))

	_, err := svc.Create(context.Background(), models.Booking{EntityType: models.KindGuesthouse})
	if !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("missing fields error = %v, want ErrEmptyInput", err)
	}

	_, err = svc.Create(context.Background(), models.Booking{
		EntityType: models.KindAttraction, EntityID: "a1", Date: "2026-03-12", Start: "10:00",
	})
	if !errors.Is(err, ErrBadKind) {
		t.Fatalf("attraction booking error = %v, want ErrBadKind", err)
	}
}

func TestConfirmationPDF(t *testing.T) {
	svc := NewService(&fakeBookingBackend{}, "u1", []byte("test-key"))
	b := models.Booking{
		ID: "b1", EntityType: models.KindRestaurant, EntityID: "r-2",
		Date: "2026-03-12", Start: "19:00", Guests: 2, Reference: "GN-1234",
	}
	out, err := svc.ConfirmationPDF(b, "amira")
	if err != nil {
		t.Fatalf("pdf: %v", err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		t.Fatalf("output is not a PDF (starts %q)", out[:8])
	}
}
