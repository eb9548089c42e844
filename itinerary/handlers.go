package itinerary

import (
	"encoding/json"
	"errors"
	"net/http"

	"goldennile/models"
	"goldennile/utils"

	"github.com/julienschmidt/httprouter"
)

// Sessions resolves the calling user's itinerary store. Implemented by
// the session manager.
type Sessions interface {
	ItineraryStore(r *http.Request) (*Store, error)
}

// GetItinerary returns the program as currently slotted.
func GetItinerary(sessions Sessions) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		store, err := sessions.ItineraryStore(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"activities": store.Activities()})
	}
}

// AddActivity appends an activity; its date and time slot come from the
// current tail of the program, not from the request.
func AddActivity(sessions Sessions) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		store, err := sessions.ItineraryStore(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var input models.Activity
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}

		added, err := store.Add(input)
		if errors.Is(err, ErrEmptyInput) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondWithJSON(w, http.StatusCreated, added)
	}
}

// RemoveActivity deletes by id without re-slotting the remainder.
func RemoveActivity(sessions Sessions) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		store, err := sessions.ItineraryStore(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if err := store.Remove(ps.ByName("activityid")); err != nil {
			utils.RespondWithError(w, http.StatusNotFound, "Activity not found")
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"activities": store.Activities()})
	}
}

// ReorderItinerary moves one activity and returns the repacked program.
func ReorderItinerary(sessions Sessions) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		store, err := sessions.ItineraryStore(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var input struct {
			From int `json:"from"`
			To   int `json:"to"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}

		utils.RespondWithJSON(w, http.StatusOK, utils.M{
			"activities": store.Move(input.From, input.To),
		})
	}
}

// EditActivity overwrites one field and returns the re-sorted program.
func EditActivity(sessions Sessions) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		store, err := sessions.ItineraryStore(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var input struct {
			Field string `json:"field"`
			Value string `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}

		list, err := store.Edit(ps.ByName("activityid"), input.Field, input.Value)
		switch {
		case errors.Is(err, ErrNotFound):
			utils.RespondWithError(w, http.StatusNotFound, "Activity not found")
			return
		case errors.Is(err, ErrEmptyInput), errors.Is(err, ErrBadValue), errors.Is(err, ErrBadField):
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		case err != nil:
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"activities": list})
	}
}

// SetTripStart rebases the date sequence used by drag reordering.
func SetTripStart(sessions Sessions) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		store, err := sessions.ItineraryStore(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var input struct {
			Date string `json:"date"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
		if err := store.SetTripStart(input.Date); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid date")
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}
