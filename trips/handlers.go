package trips

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"goldennile/upstream"
	"goldennile/utils"

	"github.com/julienschmidt/httprouter"
)

// Sessions resolves the calling user's trip planner. Implemented by the
// session manager.
type Sessions interface {
	Planner(r *http.Request) (*Planner, error)
	Invalidate(token string)
}

// GenerateItinerary runs the upstream generator and returns the plan.
func GenerateItinerary(sessions Sessions) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		planner, err := sessions.Planner(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var req upstream.GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}

		plan, err := planner.Generate(r.Context(), req)
		switch {
		case errors.Is(err, ErrEmptyInput):
			utils.RespondWithError(w, http.StatusBadRequest, "Destination required")
			return
		case errors.Is(err, upstream.ErrUnauthorized):
			sessions.Invalidate(r.Header.Get("Authorization"))
			utils.RespondWithError(w, http.StatusUnauthorized, "Session expired")
			return
		case err != nil:
			log.Printf("trip generation error: %v", err)
			utils.RespondWithError(w, http.StatusBadGateway, "Generation failed")
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, plan)
	}
}

// GetPlan returns the session's current generated plan.
func GetPlan(sessions Sessions) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		planner, err := sessions.Planner(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		plan, err := planner.Plan()
		if err != nil {
			utils.RespondWithError(w, http.StatusNotFound, "No generated plan")
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, plan)
	}
}

// ReorderPlan moves one activity within the generated plan.
func ReorderPlan(sessions Sessions) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		planner, err := sessions.Planner(r)
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

		plan, err := planner.Reorder(r.Context(), input.From, input.To)
		if err != nil {
			utils.RespondWithError(w, http.StatusNotFound, "No generated plan")
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, plan)
	}
}

// DiscardPlan drops the generated plan and its cached copy.
func DiscardPlan(sessions Sessions) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		planner, err := sessions.Planner(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		planner.Discard(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}
}

// SaveProgram persists the current plan upstream.
func SaveProgram(sessions Sessions) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		planner, err := sessions.Planner(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var input struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}

		program, err := planner.SaveProgram(r.Context(), input.Name)
		switch {
		case errors.Is(err, ErrEmptyInput):
			utils.RespondWithError(w, http.StatusBadRequest, "Name required")
			return
		case errors.Is(err, ErrNoPlan):
			utils.RespondWithError(w, http.StatusNotFound, "No generated plan")
			return
		case errors.Is(err, upstream.ErrUnauthorized):
			sessions.Invalidate(r.Header.Get("Authorization"))
			utils.RespondWithError(w, http.StatusUnauthorized, "Session expired")
			return
		case err != nil:
			log.Printf("save program error: %v", err)
			utils.RespondWithError(w, http.StatusBadGateway, "Save failed")
			return
		}
		utils.RespondWithJSON(w, http.StatusCreated, program)
	}
}

// GetPrograms lists saved programs.
func GetPrograms(sessions Sessions) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		planner, err := sessions.Planner(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		programs, err := planner.Programs(r.Context())
		if err != nil {
			if errors.Is(err, upstream.ErrUnauthorized) {
				sessions.Invalidate(r.Header.Get("Authorization"))
				utils.RespondWithError(w, http.StatusUnauthorized, "Session expired")
				return
			}
			log.Printf("list programs error: %v", err)
			utils.RespondWithError(w, http.StatusBadGateway, "Listing failed")
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"programs": programs})
	}
}

// DeleteProgram removes a saved program.
func DeleteProgram(sessions Sessions) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		planner, err := sessions.Planner(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		if err := planner.DeleteProgram(r.Context(), ps.ByName("programid")); err != nil {
			if errors.Is(err, upstream.ErrUnauthorized) {
				sessions.Invalidate(r.Header.Get("Authorization"))
				utils.RespondWithError(w, http.StatusUnauthorized, "Session expired")
				return
			}
			log.Printf("delete program error: %v", err)
			utils.RespondWithError(w, http.StatusBadGateway, "Delete failed")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
