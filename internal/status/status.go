package status

import "errors"

// Error kinds returned by the booking engine. Handlers map these onto
// HTTP responses; nothing in the engine retries them.
var (
	ErrNotFound         = errors.New("status: record not found")
	ErrCapacityExceeded = errors.New("status: requested tickets exceed event capacity")
	ErrForbidden        = errors.New("status: operation not allowed for this user")
	ErrConflict         = errors.New("status: conflicting state transition")
	ErrValidation       = errors.New("status: invalid input")
	ErrInvalidLogin     = errors.New("status: invalid credentials")
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled:
		return true
	}
	return false
}

// transitions is the allowed booking lifecycle. cancelled is terminal and
// a status never moves to itself.
var transitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCancelled},
	BookingCancelled: {},
}

func CanTransition(from, to BookingStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)
