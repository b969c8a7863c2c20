package models

import (
	"time"
)

type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	CategoryID  string    `json:"category_id"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
	Price       float64   `json:"price"`
	// Capacity is the live remaining ticket count; TotalCapacity is fixed
	// at creation and caps refunds on cancellation.
	Capacity      int    `json:"capacity"`
	TotalCapacity int    `json:"total_capacity"`
	Image         string `json:"image,omitempty"`
	CreatedBy     string `json:"created_by"`
}

// EventQuery carries the list filters from the events endpoints.
type EventQuery struct {
	Search     string
	CategoryID string
	Sort       string // date, price_asc, price_desc
	Page       int
	Limit      int
}
