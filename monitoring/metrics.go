package monitoring

import (
	"context"
	"time"

	"github.com/pocketbase/pocketbase/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookingOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_operations_total",
			Help: "Booking engine operations by outcome",
		},
		[]string{"operation", "status"},
	)

	capacityRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "capacity_rejections_total",
			Help: "Bookings rejected because requested tickets exceeded capacity",
		},
	)

	revenueRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "booking_revenue_total",
			Help: "Total amount across confirmed bookings",
		},
	)

	mailFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mail_send_failures_total",
			Help: "Notification emails that failed to send",
		},
	)

	eventCapacity = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "event_remaining_capacity",
			Help: "Remaining bookable tickets per event",
		},
		[]string{"event_id", "title"},
	)
)

// Track booking engine operations
func TrackBookingOperation(operation, status string) {
	bookingOperations.WithLabelValues(operation, status).Inc()
}

func TrackCapacityRejection() {
	capacityRejections.Inc()
}

func AddRevenue(amount float64) {
	revenueRecorded.Add(amount)
}

func TrackMailFailure() {
	mailFailures.Inc()
}

type Monitor struct {
	app core.App
}

func NewMonitor(app core.App) *Monitor {
	return &Monitor{app: app}
}

// Run samples remaining event capacity until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.collectCapacity()
		}
	}
}

func (m *Monitor) collectCapacity() {
	rows := []struct {
		ID       string `db:"id"`
		Title    string `db:"title"`
		Capacity int    `db:"capacity"`
	}{}

	err := m.app.DB().
		Select("id", "title", "capacity").
		From("events").
		All(&rows)
	if err != nil {
		return
	}

	for _, row := range rows {
		eventCapacity.WithLabelValues(row.ID, row.Title).Set(float64(row.Capacity))
	}
}
