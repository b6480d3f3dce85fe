package domain

import "time"

// ReservationDetail is a secondary record holding free-form preferences
// attached to a reservation. Details are loaded in batch by reservation id;
// the reservation id is the stable key.
type ReservationDetail struct {
	ID                  string    `json:"id"`
	ReservationID       string    `json:"reservation_id"`
	SeatingPreference   string    `json:"seating_preference,omitempty"`
	Occasion            string    `json:"occasion,omitempty"`
	DietaryRequirements string    `json:"dietary_requirements,omitempty"`
	SpecialRequests     string    `json:"special_requests,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}
