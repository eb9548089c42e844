package middleware

import (
	"context"
	"net/http"

	"goldennile/session"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// Auth wraps handlers with token checks backed by the session manager.
type Auth struct {
	Sessions *session.Manager
}

func NewAuth(sessions *session.Manager) *Auth {
	return &Auth{Sessions: sessions}
}

// Authenticate rejects requests without a valid bearer token and puts
// the user id on the request context. Websocket upgrades pass through;
// the socket handler does its own token dance.
func (a *Auth) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if websocket.IsWebSocketUpgrade(r) {
			next(w, r, ps)
			return
		}

		tokenString := r.Header.Get("Authorization")
		if tokenString == "" {
			http.Error(w, "Missing token", http.StatusUnauthorized)
			return
		}

		claims, err := a.Sessions.ParseToken(tokenString)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), session.UserIDKey, claims.UserID)
		next(w, r.WithContext(ctx), ps)
	}
}

// OptionalAuth attaches the user id when a valid token is present and
// proceeds either way.
func (a *Auth) OptionalAuth(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if claims, err := a.Sessions.ParseToken(r.Header.Get("Authorization")); err == nil {
			r = r.WithContext(context.WithValue(r.Context(), session.UserIDKey, claims.UserID))
		}
		next(w, r, ps)
	}
}
