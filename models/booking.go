package models

import (
	"time"
)

type Booking struct {
	ID      string `json:"id"`
	UserID  string `json:"user_id"`
	EventID string `json:"event_id"`
	Tickets int    `json:"tickets"`
	// TotalAmount is price x tickets at creation time and never changes
	// afterwards; only Status does.
	TotalAmount float64   `json:"total_amount"`
	Status      string    `json:"status"` // pending, confirmed, cancelled
	Created     time.Time `json:"created"`
}

// BookingDetail is a booking joined with its event for user-facing lists.
type BookingDetail struct {
	Booking
	EventTitle string    `json:"event_title"`
	EventDate  time.Time `json:"event_date"`
}
