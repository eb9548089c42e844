package models

// Booking is a lodging or dining reservation created through the
// upstream backend. Status is one of pending, confirmed, cancelled.
type Booking struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	EntityType string `json:"entityType"` // guesthouse or restaurant
	EntityID   string `json:"entityId"`
	Date       string `json:"date"`
	Start      string `json:"start"`
	End        string `json:"end,omitempty"`
	Guests     int    `json:"guests"`
	Status     string `json:"status"`
	Reference  string `json:"reference,omitempty"`
	CreatedAt  int64  `json:"createdAt"`
}
