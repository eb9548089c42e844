package models

// Activity kinds. Informational only — scheduling never branches on kind.
const (
	KindAttraction = "attraction"
	KindGuesthouse = "guesthouse"
	KindRestaurant = "restaurant"
	KindPlace      = "place"
)

// Activity is one time-boxed item in a trip plan.
// Date is "2006-01-02", StartTime/EndTime are 24h "15:04".
type Activity struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Kind      string  `json:"kind"`
	Date      string  `json:"date"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Lat       float64 `json:"lat,omitempty"`
	Lng       float64 `json:"lng,omitempty"`
	Image     string  `json:"image,omitempty"`
	Notes     string  `json:"notes,omitempty"`
}

// Day groups activities for display. The scheduler always works on the
// flattened cross-day sequence and regroups afterwards.
type Day struct {
	Date       string     `json:"date"`
	Activities []Activity `json:"activities"`
}

// LodgingOption is a suggested guesthouse returned alongside a generated plan.
type LodgingOption struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	PricePerNight float64 `json:"price_per_night,omitempty"`
	Rating        float64 `json:"rating,omitempty"`
	Lat           float64 `json:"lat,omitempty"`
	Lng           float64 `json:"lng,omitempty"`
	Image         string  `json:"image,omitempty"`
}

// TripProgram is a saved trip plan tied to a user.
type TripProgram struct {
	ProgramID   string          `json:"programid"`
	UserID      string          `json:"user_id"`
	Name        string          `json:"name"`
	Destination string          `json:"destination"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	Days        []Day           `json:"days"`
	Lodging     []LodgingOption `json:"lodging,omitempty"`
	CreatedAt   int64           `json:"createdAt"`
}
