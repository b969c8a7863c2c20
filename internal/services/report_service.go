package services

import (
	"context"

	"eventbook/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

// ReportService produces the read-only projections behind the admin
// dashboard. It queries the database directly; nothing here mutates state.
type ReportService struct {
	app core.App
}

func NewReportService(app core.App) *ReportService {
	return &ReportService{app: app}
}

// BookingsPerEvent groups all bookings by event. Events without bookings
// are simply absent from the result.
func (s *ReportService) BookingsPerEvent(ctx context.Context) ([]models.EventBookingStats, error) {
	rows := []models.EventBookingStats{}

	err := s.app.DB().
		Select(
			"b.event AS event_id",
			"e.title AS event_title",
			"COUNT(b.id) AS bookings",
			"SUM(b.tickets) AS tickets",
			"SUM(b.total_amount) AS revenue",
		).
		From("bookings b").
		InnerJoin("events e", dbx.NewExp("e.id = b.event")).
		GroupBy("b.event", "e.title").
		OrderBy("revenue DESC").
		All(&rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// RevenuePerCategory sums revenue and tickets per category over confirmed
// bookings only; pending and cancelled bookings carry no revenue.
func (s *ReportService) RevenuePerCategory(ctx context.Context) ([]models.CategoryRevenue, error) {
	rows := []models.CategoryRevenue{}

	err := s.app.DB().
		Select(
			"e.category AS category_id",
			"c.name AS category_name",
			"SUM(b.tickets) AS tickets",
			"SUM(b.total_amount) AS revenue",
		).
		From("bookings b").
		InnerJoin("events e", dbx.NewExp("e.id = b.event")).
		InnerJoin("categories c", dbx.NewExp("c.id = e.category")).
		Where(dbx.HashExp{"b.status": "confirmed"}).
		GroupBy("e.category", "c.name").
		OrderBy("revenue DESC").
		All(&rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// BookingList is the flat joined listing shown on the reports page.
func (s *ReportService) BookingList(ctx context.Context) ([]models.BookingRow, error) {
	rows := []models.BookingRow{}

	err := s.app.DB().
		Select(
			"b.id",
			"u.name AS user_name",
			"u.email AS user_email",
			"e.title AS event_title",
			"b.tickets",
			"b.total_amount",
			"b.status",
			"b.created",
		).
		From("bookings b").
		InnerJoin("users u", dbx.NewExp("u.id = b.user")).
		InnerJoin("events e", dbx.NewExp("e.id = b.event")).
		OrderBy("b.created DESC").
		All(&rows)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *ReportService) DashboardCounts(ctx context.Context) (*models.DashboardCounts, error) {
	events, err := s.app.CountRecords("events")
	if err != nil {
		return nil, err
	}
	bookings, err := s.app.CountRecords("bookings")
	if err != nil {
		return nil, err
	}
	users, err := s.app.CountRecords("users")
	if err != nil {
		return nil, err
	}

	return &models.DashboardCounts{
		TotalEvents:   events,
		TotalBookings: bookings,
		TotalUsers:    users,
	}, nil
}
