package models

// Report rows are scanned straight out of dbx aggregation queries, hence
// the db tags.

type EventBookingStats struct {
	EventID    string  `db:"event_id" json:"event_id"`
	EventTitle string  `db:"event_title" json:"event_title"`
	Bookings   int     `db:"bookings" json:"bookings"`
	Tickets    int     `db:"tickets" json:"tickets"`
	Revenue    float64 `db:"revenue" json:"revenue"`
}

type CategoryRevenue struct {
	CategoryID   string  `db:"category_id" json:"category_id"`
	CategoryName string  `db:"category_name" json:"category_name"`
	Tickets      int     `db:"tickets" json:"tickets"`
	Revenue      float64 `db:"revenue" json:"revenue"`
}

type BookingRow struct {
	ID          string  `db:"id" json:"id"`
	UserName    string  `db:"user_name" json:"user_name"`
	UserEmail   string  `db:"user_email" json:"user_email"`
	EventTitle  string  `db:"event_title" json:"event_title"`
	Tickets     int     `db:"tickets" json:"tickets"`
	TotalAmount float64 `db:"total_amount" json:"total_amount"`
	Status      string  `db:"status" json:"status"`
	Created     string  `db:"created" json:"created"`
}

type DashboardCounts struct {
	TotalEvents   int64 `json:"total_events"`
	TotalBookings int64 `json:"total_bookings"`
	TotalUsers    int64 `json:"total_users"`
}
