package models

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in-progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further status change is allowed.
func (s BookingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether a status change from s to target is permitted.
// Non-terminal bookings may be moved to any known status (administrative
// override), terminal bookings accept nothing. Re-applying the current status
// is always accepted as a no-op.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	if !target.Valid() {
		return false
	}
	if s == target {
		return true
	}
	return !s.IsTerminal()
}

// InitialStatus is the state every new booking starts in.
func InitialStatus() BookingStatus {
	return StatusPending
}
