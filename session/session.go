// Package session replaces ambient token/current-user reads with one
// explicit object constructed at login and torn down at logout. Each
// session owns the in-memory collections every optimistic operation
// mutates; nothing outside the session touches them directly.
package session

import (
	"fmt"
	"log"
	"net/http"
	"sync"

	"goldennile/booking"
	"goldennile/chats"
	"goldennile/feed"
	"goldennile/itinerary"
	"goldennile/trips"
	"goldennile/upstream"
	"goldennile/utils"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

// UserIDKey carries the authenticated user id through request contexts.
const UserIDKey contextKey = "userId"

// Claims is the JWT payload the auth flow issues.
type Claims struct {
	Username string   `json:"username"`
	UserID   string   `json:"userId"`
	Role     []string `json:"role"`
	jwt.RegisteredClaims
}

// Config is read once at startup and injected everywhere a secret or
// upstream address used to be an ambient global.
type Config struct {
	JWTSecret   []byte
	UpstreamURL string
	Cache       trips.Cache
}

// Session holds one user's client-side state: their backend client and
// the per-session stores.
type Session struct {
	ID       string
	UserID   string
	Username string
	Token    string

	Backend   *upstream.Client
	Feed      *feed.Store
	Chats     *chats.Store
	Itinerary *itinerary.Store
	Trips     *trips.Planner
	Booking   *booking.Service
}

// Manager constructs sessions at login and tears them down at logout or
// on auth expiry.
type Manager struct {
	cfg      Config
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewManager(cfg Config) *Manager {
	return &Manager{
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
}

// ParseToken validates a "Bearer ..." header value and returns its claims.
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	if len(tokenString) < 8 || tokenString[:7] != "Bearer " {
		return nil, fmt.Errorf("invalid token")
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString[7:], claims, func(token *jwt.Token) (any, error) {
		return m.cfg.JWTSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("unauthorized: %w", err)
	}
	return claims, nil
}

// Start builds the session for a freshly validated token. An existing
// session for the same user is reused so reconnects keep their
// optimistic state.
func (m *Manager) Start(tokenString string) (*Session, error) {
	claims, err := m.ParseToken(tokenString)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[claims.UserID]; ok {
		// Reconnects keep their optimistic state, but a freshly
		// issued JWT must replace the stored one or the upstream
		// client keeps presenting the older, sooner-to-expire token.
		if tok := tokenString[7:]; tok != s.Token {
			s.Token = tok
			s.Backend.SetToken(tok)
		}
		return s, nil
	}

	backend := upstream.NewClient(m.cfg.UpstreamURL, tokenString[7:])
	s := &Session{
		ID:        utils.GetUUID(),
		UserID:    claims.UserID,
		Username:  claims.Username,
		Token:     tokenString[7:],
		Backend:   backend,
		Feed:      feed.NewStore(backend, claims.UserID, claims.Username),
		Chats:     chats.NewStore(backend, claims.UserID),
		Itinerary: itinerary.NewItinerary(),
		Trips:     trips.NewPlanner(backend, m.cfg.Cache, claims.UserID),
		Booking:   booking.NewService(backend, claims.UserID, m.cfg.JWTSecret),
	}
	m.sessions[claims.UserID] = s
	log.Printf("session started for %s (%s)", claims.Username, s.ID)
	return s, nil
}

// Get returns the live session for a user, or nil.
func (m *Manager) Get(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[userID]
}

// End tears a session down: pollers stop, the collections are
// discarded. In-flight mutations already dispatched still settle
// against their stores when they resolve.
func (m *Manager) End(userID string) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()

	if ok {
		s.Chats.CloseAll()
		log.Printf("session ended for %s", userID)
	}
}

// FromRequest resolves (or lazily starts) the session for the request's
// bearer token.
func (m *Manager) FromRequest(r *http.Request) (*Session, error) {
	return m.Start(r.Header.Get("Authorization"))
}

// Invalidate tears down the session behind a bearer token whose
// upstream calls started answering 401. The UI gets its auth-redirect
// signal from the handler; this just releases the stores. Claims are
// parsed from the token value so async settlers need not hold their
// request alive.
func (m *Manager) Invalidate(token string) {
	claims, err := m.ParseToken(token)
	if err != nil {
		return
	}
	m.End(claims.UserID)
}

// FeedStore implements feed.Sessions.
func (m *Manager) FeedStore(r *http.Request) (*feed.Store, error) {
	s, err := m.FromRequest(r)
	if err != nil {
		return nil, err
	}
	return s.Feed, nil
}

// ChatStore implements chats.Sessions.
func (m *Manager) ChatStore(r *http.Request) (*chats.Store, error) {
	s, err := m.FromRequest(r)
	if err != nil {
		return nil, err
	}
	return s.Chats, nil
}

// ItineraryStore implements itinerary.Sessions.
func (m *Manager) ItineraryStore(r *http.Request) (*itinerary.Store, error) {
	s, err := m.FromRequest(r)
	if err != nil {
		return nil, err
	}
	return s.Itinerary, nil
}

// Planner implements trips.Sessions.
func (m *Manager) Planner(r *http.Request) (*trips.Planner, error) {
	s, err := m.FromRequest(r)
	if err != nil {
		return nil, err
	}
	return s.Trips, nil
}

// BookingService implements booking.Sessions.
func (m *Manager) BookingService(r *http.Request) (*booking.Service, string, error) {
	s, err := m.FromRequest(r)
	if err != nil {
		return nil, "", err
	}
	return s.Booking, s.Username, nil
}
