package itinerary

import (
	"errors"
	"strings"
	"sync"
	"time"

	"goldennile/models"
	"goldennile/utils"
)

var (
	ErrEmptyInput = errors.New("empty input")
	ErrNotFound   = errors.New("activity not found")
	ErrBadField   = errors.New("unknown field")
	ErrBadValue   = errors.New("invalid value")
)

// Store is one session's manual itinerary under construction. All slot
// arithmetic lives in the scheduler functions; the store adds identity,
// locking, and field edits.
type Store struct {
	mu        sync.Mutex
	tripStart string
	list      []models.Activity
}

func NewItinerary() *Store {
	return &Store{
		tripStart: time.Now().Format(dateLayout),
	}
}

// SetTripStart rebases the reorder date sequence. Invalid dates are
// rejected before they can poison later repacking.
func (s *Store) SetTripStart(date string) error {
	if !ValidDate(date) {
		return ErrBadValue
	}
	s.mu.Lock()
	s.tripStart = date
	s.mu.Unlock()
	return nil
}

// Activities returns a snapshot of the current program.
func (s *Store) Activities() []models.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Activity, len(s.list))
	copy(out, s.list)
	return out
}

// Add slots a new activity at the tail of the program and returns it
// with its assigned id, date and times.
func (s *Store) Add(a models.Activity) (models.Activity, error) {
	a.Name = strings.TrimSpace(a.Name)
	if a.Name == "" {
		return models.Activity{}, ErrEmptyInput
	}
	if a.ID == "" {
		a.ID = utils.GetUUID()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = Append(s.list, a)
	return s.list[len(s.list)-1], nil
}

// Remove deletes by id. The rest of the program keeps its slots.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := Remove(s.list, id)
	if len(next) == len(s.list) {
		return ErrNotFound
	}
	s.list = next
	return nil
}

// Move relocates the activity at from to position to and repacks every
// slot and date. Out-of-range indices leave the program untouched.
func (s *Store) Move(from, to int) []models.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = Reorder(s.list, from, to, s.tripStart)
	out := make([]models.Activity, len(s.list))
	copy(out, s.list)
	return out
}

// Edit overwrites one field of one activity, then re-sorts the program
// by date and start time. Date and time values are validated before
// anything changes.
func (s *Store) Edit(id, field, value string) ([]models.Activity, error) {
	value = strings.TrimSpace(value)

	switch field {
	case "date":
		if !ValidDate(value) {
			return nil, ErrBadValue
		}
	case "startTime", "endTime":
		if !ValidTime(value) {
			return nil, ErrBadValue
		}
	case "name":
		if value == "" {
			return nil, ErrEmptyInput
		}
	case "notes":
	default:
		return nil, ErrBadField
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.list {
		if s.list[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrNotFound
	}

	switch field {
	case "date":
		s.list[idx].Date = value
	case "startTime":
		s.list[idx].StartTime = value
	case "endTime":
		s.list[idx].EndTime = value
	case "name":
		s.list[idx].Name = value
	case "notes":
		s.list[idx].Notes = value
	}

	s.list = SortByDateTime(s.list)
	out := make([]models.Activity, len(s.list))
	copy(out, s.list)
	return out, nil
}
