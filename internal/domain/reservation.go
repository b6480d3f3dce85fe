package domain

import "time"

// Reservation status constants.
const (
	StatusRequested = "Requested"
	StatusApproved  = "Approved"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
)

// Reservation represents a table reservation. The Version field implements
// optimistic concurrency: it starts at 0 on creation and is incremented by
// exactly one on every successful mutation. Writers must present the version
// they last observed; a stale version is rejected with a conflict.
type Reservation struct {
	ID              string             `json:"id"`
	UserID          string             `json:"user_id,omitempty"`
	GuestName       string             `json:"guest_name"`
	ContactPhone    string             `json:"contact_phone"`
	ContactEmail    string             `json:"contact_email,omitempty"`
	ExpectedArrival time.Time          `json:"expected_arrival"`
	TableSize       int                `json:"table_size"`
	Status          string             `json:"status"`
	Version         int                `json:"version"`
	Detail          *ReservationDetail `json:"detail,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// ValidStatuses returns all valid reservation statuses.
func ValidStatuses() []string {
	return []string{
		StatusRequested,
		StatusApproved,
		StatusCompleted,
		StatusCancelled,
	}
}

// IsValidStatus checks if a status string is valid.
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether no further transition is permitted out of
// the given status.
func IsTerminalStatus(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}

// IsTerminal reports whether the reservation has reached a terminal status.
func (r *Reservation) IsTerminal() bool {
	return IsTerminalStatus(r.Status)
}

// OwnedBy reports whether the reservation belongs to the given subject.
// Legacy records without an owner belong to nobody.
func (r *Reservation) OwnedBy(subject string) bool {
	return r.UserID != "" && r.UserID == subject
}
