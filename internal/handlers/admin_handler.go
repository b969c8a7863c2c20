package handlers

import (
	"net/http"

	"eventbook/internal/services"
	"eventbook/internal/status"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

// AdminHandler serves the reporting endpoints and the booking status
// transitions only admins may drive.
type AdminHandler struct {
	bookings *services.BookingService
	reports  *services.ReportService
}

func NewAdminHandler(bookings *services.BookingService, reports *services.ReportService) *AdminHandler {
	return &AdminHandler{bookings: bookings, reports: reports}
}

func (h *AdminHandler) SetBookingStatus(e *core.RequestEvent) error {
	var req struct {
		Status string `json:"status"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	booking, err := h.bookings.SetBookingStatus(
		e.Request.Context(),
		e.Request.PathValue("id"),
		status.BookingStatus(req.Status),
	)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"message": "Booking status updated",
		"booking": booking,
	})
}

func (h *AdminHandler) BookingsPerEvent(e *core.RequestEvent) error {
	stats, err := h.reports.BookingsPerEvent(e.Request.Context())
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"stats": stats})
}

func (h *AdminHandler) RevenuePerCategory(e *core.RequestEvent) error {
	stats, err := h.reports.RevenuePerCategory(e.Request.Context())
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"stats": stats})
}

func (h *AdminHandler) BookingList(e *core.RequestEvent) error {
	rows, err := h.reports.BookingList(e.Request.Context())
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"bookings": rows})
}

func (h *AdminHandler) Dashboard(e *core.RequestEvent) error {
	counts, err := h.reports.DashboardCounts(e.Request.Context())
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"counts": counts})
}
