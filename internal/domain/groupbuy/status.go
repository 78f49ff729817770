package groupbuy

// Status represents the lifecycle state of a group buy
type Status string

const (
	// StatusActive accepts joins until it fills up or expires
	StatusActive Status = "ACTIVE"
	// StatusFull reached max participants and awaits settlement
	StatusFull Status = "FULL"
	// StatusSettled paid out to the organizer; participants collect goods
	StatusSettled Status = "SETTLED"
	// StatusExpired passed its deadline below the minimum; awaits refunds
	StatusExpired Status = "EXPIRED"
	// StatusRefunded returned every payment after expiry
	StatusRefunded Status = "REFUNDED"
	// StatusCancelled was withdrawn by the organizer; payments were refunded
	StatusCancelled Status = "CANCELLED"
)

// IsValid returns true if the status is known
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusFull, StatusSettled, StatusExpired, StatusRefunded, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusActive:
		return target == StatusFull || target == StatusSettled || target == StatusExpired || target == StatusCancelled
	case StatusFull:
		return target == StatusSettled || target == StatusCancelled
	case StatusExpired:
		return target == StatusRefunded
	case StatusSettled, StatusRefunded, StatusCancelled:
		return false
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s Status) IsTerminal() bool {
	return s == StatusSettled || s == StatusRefunded || s == StatusCancelled
}

// HoldsFunds reports whether participant payments are still held for this group buy
func (s Status) HoldsFunds() bool {
	return s == StatusActive || s == StatusFull || s == StatusExpired
}

// ParticipantStatus represents the state of a single participation (order)
type ParticipantStatus string

const (
	ParticipantStatusPending   ParticipantStatus = "PENDING"
	ParticipantStatusConfirmed ParticipantStatus = "CONFIRMED"
	ParticipantStatusCompleted ParticipantStatus = "COMPLETED"
	ParticipantStatusCancelled ParticipantStatus = "CANCELLED"
	ParticipantStatusRefunded  ParticipantStatus = "REFUNDED"
)

// IsValid returns true if the status is known
func (s ParticipantStatus) IsValid() bool {
	switch s {
	case ParticipantStatusPending, ParticipantStatusConfirmed, ParticipantStatusCompleted,
		ParticipantStatusCancelled, ParticipantStatusRefunded:
		return true
	}
	return false
}

// String returns the string representation of ParticipantStatus
func (s ParticipantStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the participant status can transition to the target status
func (s ParticipantStatus) CanTransitionTo(target ParticipantStatus) bool {
	switch s {
	case ParticipantStatusPending:
		return target == ParticipantStatusConfirmed || target == ParticipantStatusCancelled
	case ParticipantStatusConfirmed:
		return target == ParticipantStatusCompleted || target == ParticipantStatusCancelled || target == ParticipantStatusRefunded
	}
	return false
}

// IsHolding reports whether the participation still occupies a slot
func (s ParticipantStatus) IsHolding() bool {
	return s == ParticipantStatusPending || s == ParticipantStatusConfirmed
}

// HoldingParticipantStatuses are the statuses that count towards current participants
var HoldingParticipantStatuses = []ParticipantStatus{ParticipantStatusPending, ParticipantStatusConfirmed}
