// Package trips orchestrates itinerary generation: the upstream
// generator produces a day-grouped plan, the planner keeps it hot per
// session and mirrors it into redis so a reconnect picks up where the
// user left off.
package trips

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"goldennile/itinerary"
	"goldennile/models"
	"goldennile/upstream"
)

var (
	ErrEmptyInput = errors.New("empty input")
	ErrNoPlan     = errors.New("no generated plan")
)

// planTTL mirrors how long a browser session's storage is worth
// keeping around.
const planTTL = 24 * time.Hour

// Backend is the slice of the upstream client the planner needs.
type Backend interface {
	GenerateTrip(ctx context.Context, req upstream.GenerateRequest) (upstream.GeneratedPlan, error)
	CreateProgram(ctx context.Context, p models.TripProgram) (models.TripProgram, error)
	Programs(ctx context.Context) ([]models.TripProgram, error)
	DeleteProgram(ctx context.Context, programID string) error
}

// Cache is the session-storage analog. Implemented by rdx.
type Cache interface {
	SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, out any) error
	Del(ctx context.Context, key string) error
}

// Plan is the cached shape of a generated itinerary.
type Plan struct {
	Destination string                 `json:"destination"`
	StartDate   string                 `json:"start_date"`
	EndDate     string                 `json:"end_date"`
	Days        []models.Day           `json:"days"`
	Lodging     []models.LodgingOption `json:"lodging,omitempty"`
}

// Planner holds one session's generated plan.
type Planner struct {
	mu      sync.Mutex
	backend Backend
	cache   Cache
	userID  string
	plan    *Plan
}

func NewPlanner(backend Backend, cache Cache, userID string) *Planner {
	p := &Planner{
		backend: backend,
		cache:   cache,
		userID:  userID,
	}
	if cache != nil {
		var cached Plan
		if err := cache.GetJSON(context.Background(), p.cacheKey(), &cached); err == nil && len(cached.Days) > 0 {
			p.plan = &cached
		}
	}
	return p
}

func (p *Planner) cacheKey() string {
	return "itinerary:" + p.userID
}

// Generate asks the upstream generator for a plan and adopts it as the
// session's current itinerary. Activities arriving without ids get
// synthetic "<date>-<index>" ones so reordering has stable identities.
func (p *Planner) Generate(ctx context.Context, req upstream.GenerateRequest) (Plan, error) {
	req.Destination = strings.TrimSpace(req.Destination)
	if req.Destination == "" {
		return Plan{}, ErrEmptyInput
	}

	generated, err := p.backend.GenerateTrip(ctx, req)
	if err != nil {
		return Plan{}, err
	}

	plan := Plan{
		Destination: generated.Destination,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Days:        generated.Days,
		Lodging:     generated.Lodging,
	}
	for i := range plan.Days {
		for j := range plan.Days[i].Activities {
			if plan.Days[i].Activities[j].ID == "" {
				plan.Days[i].Activities[j].ID = fmt.Sprintf("%s-%d", plan.Days[i].Date, j)
			}
		}
	}

	p.mu.Lock()
	p.plan = &plan
	p.mu.Unlock()
	p.recache(ctx)

	return plan, nil
}

// Plan returns a snapshot of the current generated plan.
func (p *Planner) Plan() (Plan, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.plan == nil {
		return Plan{}, ErrNoPlan
	}
	return p.snapshot(), nil
}

// Reorder moves one activity within the flattened cross-day sequence
// and regroups, preserving each day's item count. The updated plan is
// written back to the cache.
func (p *Planner) Reorder(ctx context.Context, from, to int) (Plan, error) {
	p.mu.Lock()
	if p.plan == nil {
		p.mu.Unlock()
		return Plan{}, ErrNoPlan
	}
	p.plan.Days = itinerary.ReorderDays(p.plan.Days, from, to)
	out := p.snapshot()
	p.mu.Unlock()

	p.recache(ctx)
	return out, nil
}

// Flat returns the plan's activities in global (date, slot) order.
func (p *Planner) Flat() []models.Activity {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.plan == nil {
		return nil
	}
	return itinerary.Flatten(p.plan.Days)
}

// Discard drops the current plan and its cached copy.
func (p *Planner) Discard(ctx context.Context) {
	p.mu.Lock()
	p.plan = nil
	p.mu.Unlock()
	if p.cache != nil {
		if err := p.cache.Del(ctx, p.cacheKey()); err != nil {
			log.Printf("itinerary cache del: %v", err)
		}
	}
}

// SaveProgram persists the current plan upstream under the given name.
func (p *Planner) SaveProgram(ctx context.Context, name string) (models.TripProgram, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.TripProgram{}, ErrEmptyInput
	}

	p.mu.Lock()
	if p.plan == nil {
		p.mu.Unlock()
		return models.TripProgram{}, ErrNoPlan
	}
	plan := p.snapshot()
	p.mu.Unlock()

	program := models.TripProgram{
		UserID:      p.userID,
		Name:        name,
		Destination: plan.Destination,
		StartDate:   plan.StartDate,
		EndDate:     plan.EndDate,
		Days:        plan.Days,
		Lodging:     plan.Lodging,
		CreatedAt:   time.Now().Unix(),
	}
	return p.backend.CreateProgram(ctx, program)
}

// Programs lists the user's saved programs.
func (p *Planner) Programs(ctx context.Context) ([]models.TripProgram, error) {
	return p.backend.Programs(ctx)
}

// DeleteProgram removes a saved program upstream.
func (p *Planner) DeleteProgram(ctx context.Context, programID string) error {
	return p.backend.DeleteProgram(ctx, programID)
}

// snapshot deep-copies the day groups; callers must hold p.mu.
func (p *Planner) snapshot() Plan {
	out := *p.plan
	out.Days = make([]models.Day, len(p.plan.Days))
	for i, d := range p.plan.Days {
		acts := make([]models.Activity, len(d.Activities))
		copy(acts, d.Activities)
		out.Days[i] = models.Day{Date: d.Date, Activities: acts}
	}
	return out
}

func (p *Planner) recache(ctx context.Context) {
	if p.cache == nil {
		return
	}
	p.mu.Lock()
	plan := p.plan
	var copyPlan Plan
	if plan != nil {
		copyPlan = p.snapshot()
	}
	p.mu.Unlock()
	if plan == nil {
		return
	}
	if err := p.cache.SetJSON(ctx, p.cacheKey(), copyPlan, planTTL); err != nil {
		log.Printf("itinerary cache set: %v", err)
	}
}
