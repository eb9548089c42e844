package session

import (
	"net/http"

	"goldennile/utils"

	"github.com/julienschmidt/httprouter"
)

// StartSession builds (or resumes) the caller's session from their
// bearer token and answers with its identity.
func StartSession(m *Manager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		s, err := m.Start(r.Header.Get("Authorization"))
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.M{
			"sessionId": s.ID,
			"userId":    s.UserID,
			"username":  s.Username,
		})
	}
}

// EndSession is logout: the session and all its per-user state go away.
func EndSession(m *Manager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		userID, ok := r.Context().Value(UserIDKey).(string)
		if !ok || userID == "" {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		m.End(userID)
		w.WriteHeader(http.StatusNoContent)
	}
}
