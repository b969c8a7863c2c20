package handlers

import (
	"net/http"

	"eventbook/internal/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type BookingHandler struct {
	bookings *services.BookingService
}

func NewBookingHandler(bookings *services.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

// Create is the API booking path: capacity is committed and a payment
// recorded in the same transaction, so the response is already final.
func (h *BookingHandler) Create(e *core.RequestEvent) error {
	var req struct {
		Tickets int    `json:"tickets"`
		Method  string `json:"method"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	if req.Tickets == 0 {
		req.Tickets = 1
	}

	booking, payment, err := h.bookings.CreateBooking(
		e.Request.Context(),
		e.Request.PathValue("eventId"),
		authUser(e).ID,
		req.Tickets,
		req.Method,
	)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusCreated, map[string]any{
		"message": "Booking confirmed",
		"booking": booking,
		"payment": payment,
	})
}

// Reserve is the interactive path: a single pending ticket awaiting admin
// confirmation, no capacity movement yet.
func (h *BookingHandler) Reserve(e *core.RequestEvent) error {
	booking, err := h.bookings.CreatePendingBooking(
		e.Request.Context(),
		e.Request.PathValue("eventId"),
		authUser(e).ID,
	)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusCreated, map[string]any{
		"message": "Booking created and pending approval",
		"booking": booking,
	})
}

func (h *BookingHandler) Cancel(e *core.RequestEvent) error {
	booking, err := h.bookings.CancelBooking(
		e.Request.Context(),
		e.Request.PathValue("id"),
		authUser(e).ID,
	)
	if err != nil {
		return apiError(err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"message": "Booking cancelled",
		"booking": booking,
	})
}

func (h *BookingHandler) ListMine(e *core.RequestEvent) error {
	bookings, err := h.bookings.ListBookingsForUser(e.Request.Context(), authUser(e).ID)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"bookings": bookings})
}
