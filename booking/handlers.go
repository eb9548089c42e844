package booking

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"goldennile/models"
	"goldennile/upstream"
	"goldennile/utils"

	"github.com/julienschmidt/httprouter"
)

// Sessions resolves the calling user's booking service. Implemented by
// the session manager.
type Sessions interface {
	BookingService(r *http.Request) (*Service, string, error)
	Invalidate(token string)
}

// CreateBooking forwards a reservation upstream and returns the
// confirmed booking.
func CreateBooking(sessions Sessions) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		svc, _, err := sessions.BookingService(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var input models.Booking
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}

		booked, err := svc.Create(r.Context(), input)
		switch {
		case errors.Is(err, ErrEmptyInput), errors.Is(err, ErrBadKind):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		case errors.Is(err, upstream.ErrUnauthorized):
			sessions.Invalidate(r.Header.Get("Authorization"))
			utils.RespondWithError(w, http.StatusUnauthorized, "Session expired")
			return
		case err != nil:
			log.Printf("booking error: %v", err)
			utils.RespondWithError(w, http.StatusBadGateway, "Booking failed")
			return
		}
		utils.RespondWithJSON(w, http.StatusCreated, booked)
	}
}

// DownloadConfirmation renders the PDF confirmation for a booking made
// in this session.
func DownloadConfirmation(sessions Sessions) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		svc, username, err := sessions.BookingService(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		bookingID := ps.ByName("bookingid")
		b, ok := svc.Recent(bookingID)
		if !ok {
			utils.RespondWithError(w, http.StatusNotFound, "Booking not found")
			return
		}

		pdfBytes, err := svc.ConfirmationPDF(b, username)
		if err != nil {
			log.Printf("confirmation pdf error: %v", err)
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate PDF")
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", "attachment; filename=booking-"+bookingID+".pdf")
		w.WriteHeader(http.StatusOK)
		w.Write(pdfBytes)
	}
}
