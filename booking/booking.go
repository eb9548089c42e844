// Package booking forwards reservation requests to the upstream backend
// and renders a downloadable confirmation with a QR reference.
package booking

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"time"

	"goldennile/models"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

var (
	ErrEmptyInput = errors.New("empty input")
	ErrBadKind    = errors.New("unsupported entity type")
)

// Backend is the slice of the upstream client bookings need.
type Backend interface {
	CreateBooking(ctx context.Context, b models.Booking) (models.Booking, error)
}

// Service validates and forwards bookings for one session. Bookings
// made in the session are kept so their confirmations can be rendered
// without another upstream round trip.
type Service struct {
	backend Backend
	userID  string
	signKey []byte

	mu     sync.Mutex
	recent map[string]models.Booking
}

func NewService(backend Backend, userID string, signKey []byte) *Service {
	return &Service{
		backend: backend,
		userID:  userID,
		signKey: signKey,
		recent:  make(map[string]models.Booking),
	}
}

// Recent returns a booking created earlier in this session.
func (s *Service) Recent(id string) (models.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.recent[id]
	return b, ok
}

// Create forwards a reservation request upstream. Validation happens
// here; availability and confirmation are the backend's business.
func (s *Service) Create(ctx context.Context, b models.Booking) (models.Booking, error) {
	if b.EntityID == "" || b.Date == "" || b.Start == "" {
		return models.Booking{}, ErrEmptyInput
	}
	if b.EntityType != models.KindGuesthouse && b.EntityType != models.KindRestaurant {
		return models.Booking{}, ErrBadKind
	}
	if b.Guests < 1 {
		b.Guests = 1
	}
	b.UserID = s.userID
	b.CreatedAt = time.Now().Unix()

	booked, err := s.backend.CreateBooking(ctx, b)
	if err != nil {
		return models.Booking{}, err
	}
	s.mu.Lock()
	s.recent[booked.ID] = booked
	s.mu.Unlock()
	return booked, nil
}

// qrPayload signs the booking reference so the venue can verify the
// confirmation offline.
func (s *Service) qrPayload(b models.Booking) string {
	data := fmt.Sprintf("%s|%s|%s|%s", b.ID, b.EntityID, b.Date, b.Reference)
	h := hmac.New(sha256.New, s.signKey)
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))
	return fmt.Sprintf("%s|%s", data, sig)
}

// ConfirmationPDF renders the booking confirmation with an embedded QR
// reference.
func (s *Service) ConfirmationPDF(b models.Booking, username string) ([]byte, error) {
	qrPNG, err := qrcode.Encode(s.qrPayload(b), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("qr encode: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Booking Confirmation")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Guest: %s", username))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Venue: %s (%s)", b.EntityID, b.EntityType))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Date: %s  %s", b.Date, b.Start))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Guests: %d", b.Guests))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Reference: %s", b.Reference))
	pdf.Ln(12)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("pdf output: %w", err)
	}
	return buf.Bytes(), nil
}
