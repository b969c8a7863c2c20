package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"eventbook/internal/status"
	"eventbook/internal/store"
	"eventbook/models"
	"eventbook/monitoring"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingService owns the booking lifecycle: creation on both the API and
// interactive paths, admin status transitions, and cancellation, together
// with the capacity accounting they imply. Capacity is committed at
// confirmation: a pending booking reserves nothing.
type BookingService struct {
	store    store.Store
	locker   EventLocker
	notifier Notifier
}

func NewBookingService(st store.Store, locker EventLocker, notifier Notifier) *BookingService {
	return &BookingService{
		store:    st,
		locker:   locker,
		notifier: notifier,
	}
}

// CreateBooking is the API path: the booking is created already confirmed,
// a completed payment is recorded and capacity is decremented, all in one
// transaction. The conditional decrement makes concurrent over-subscription
// impossible.
func (s *BookingService) CreateBooking(ctx context.Context, eventID, userID string, tickets int, method string) (*models.Booking, *models.Payment, error) {
	if tickets < 1 {
		return nil, nil, fmt.Errorf("%w: tickets must be at least 1", status.ErrValidation)
	}
	if method == "" {
		method = "mock"
	}

	user, err := s.store.UserByID(userID)
	if err != nil {
		return nil, nil, err
	}

	unlock, err := s.locker.Lock(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	event, err := s.store.EventByID(eventID)
	if err != nil {
		return nil, nil, err
	}

	total := decimal.NewFromFloat(event.Price).Mul(decimal.NewFromInt(int64(tickets)))

	var booking *models.Booking
	var payment *models.Payment

	err = s.store.RunInTransaction(func(tx store.Store) error {
		if err := tx.DecrementCapacity(eventID, tickets); err != nil {
			return err
		}

		booking, err = tx.CreateBooking(&models.Booking{
			UserID:      userID,
			EventID:     eventID,
			Tickets:     tickets,
			TotalAmount: total.InexactFloat64(),
			Status:      string(status.BookingConfirmed),
		})
		if err != nil {
			return err
		}

		payment, err = tx.CreatePayment(&models.Payment{
			BookingID: booking.ID,
			Amount:    total.InexactFloat64(),
			Method:    method,
			Status:    string(status.PaymentCompleted),
			TxRef:     newTxRef(),
		})
		return err
	})
	if err != nil {
		if isCapacityErr(err) {
			monitoring.TrackCapacityRejection()
			monitoring.TrackBookingOperation("create", "capacity_exceeded")
		} else {
			monitoring.TrackBookingOperation("create", "error")
		}
		return nil, nil, err
	}

	monitoring.TrackBookingOperation("create", "confirmed")
	monitoring.AddRevenue(booking.TotalAmount)

	s.notifier.Send(ctx, user.Email, "Booking Confirmed",
		fmt.Sprintf("Hello %s,\n\nYour booking for \"%s\" (%d tickets) is confirmed. Transaction reference: %s.\n\nThank you for using EventBook!",
			user.Name, event.Title, tickets, payment.TxRef))
	s.notifier.PublishActivity(map[string]any{
		"type":       "booking_created",
		"booking_id": booking.ID,
		"event_id":   eventID,
		"tickets":    tickets,
		"status":     booking.Status,
	})

	return booking, payment, nil
}

// CreatePendingBooking is the interactive path: one ticket, pending status,
// no capacity movement until an admin confirms it.
func (s *BookingService) CreatePendingBooking(ctx context.Context, eventID, userID string) (*models.Booking, error) {
	user, err := s.store.UserByID(userID)
	if err != nil {
		return nil, err
	}

	event, err := s.store.EventByID(eventID)
	if err != nil {
		return nil, err
	}

	total := decimal.NewFromFloat(event.Price) // 1 ticket

	booking, err := s.store.CreateBooking(&models.Booking{
		UserID:      userID,
		EventID:     eventID,
		Tickets:     1,
		TotalAmount: total.InexactFloat64(),
		Status:      string(status.BookingPending),
	})
	if err != nil {
		monitoring.TrackBookingOperation("create", "error")
		return nil, err
	}

	monitoring.TrackBookingOperation("create", "pending")

	s.notifier.Send(ctx, user.Email, "Booking Created",
		fmt.Sprintf("Your booking for %s is pending admin approval.", event.Title))
	s.notifier.PublishActivity(map[string]any{
		"type":       "booking_created",
		"booking_id": booking.ID,
		"event_id":   eventID,
		"tickets":    1,
		"status":     booking.Status,
	})

	return booking, nil
}

// SetBookingStatus drives admin transitions through the lifecycle table.
// Confirming a pending booking commits its tickets against capacity and can
// fail with ErrCapacityExceeded; moving to cancelled behaves like a cancel.
func (s *BookingService) SetBookingStatus(ctx context.Context, bookingID string, next status.BookingStatus) (*models.Booking, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", status.ErrValidation, next)
	}

	booking, err := s.store.BookingByID(bookingID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, booking.EventID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// Re-read under the lock: the copy used to locate the event may be
	// stale by now, and a transition that already happened elsewhere must
	// surface as a conflict, not run twice.
	booking, err = s.store.BookingByID(bookingID)
	if err != nil {
		return nil, err
	}

	from := status.BookingStatus(booking.Status)
	if !status.CanTransition(from, next) {
		return nil, fmt.Errorf("%w: cannot move booking from %s to %s", status.ErrConflict, from, next)
	}

	user, err := s.store.UserByID(booking.UserID)
	if err != nil {
		return nil, err
	}
	event, err := s.store.EventByID(booking.EventID)
	if err != nil {
		return nil, err
	}

	err = s.store.RunInTransaction(func(tx store.Store) error {
		if err := tx.SetBookingStatus(bookingID, from, next); err != nil {
			return err
		}
		switch next {
		case status.BookingConfirmed:
			return tx.DecrementCapacity(booking.EventID, booking.Tickets)
		case status.BookingCancelled:
			return s.applyCancelEffects(tx, booking, from)
		}
		return nil
	})
	if err != nil {
		if isCapacityErr(err) {
			monitoring.TrackCapacityRejection()
		}
		monitoring.TrackBookingOperation("status_update", "error")
		return nil, err
	}

	booking.Status = string(next)
	monitoring.TrackBookingOperation("status_update", string(next))
	if next == status.BookingConfirmed {
		monitoring.AddRevenue(booking.TotalAmount)
	}

	s.notifier.Send(ctx, user.Email, "Booking Status Update",
		fmt.Sprintf("Hello %s,\n\nYour booking for \"%s\" is now: %s.\n\nThank you for using EventBook!",
			user.Name, event.Title, strings.ToUpper(string(next))))
	s.notifier.PublishActivity(map[string]any{
		"type":       "booking_status",
		"booking_id": booking.ID,
		"event_id":   booking.EventID,
		"status":     booking.Status,
	})

	return booking, nil
}

// CancelBooking is the user-triggered cancellation: owner only, rejected if
// already cancelled, refunds capacity only when the booking had reached
// confirmed (a pending booking never took any).
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, userID string) (*models.Booking, error) {
	booking, err := s.store.BookingByID(bookingID)
	if err != nil {
		return nil, err
	}

	if booking.UserID != userID {
		return nil, fmt.Errorf("%w: booking belongs to another user", status.ErrForbidden)
	}

	unlock, err := s.locker.Lock(ctx, booking.EventID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// Re-read under the lock so a cancel that raced us is seen here and
	// the refund cannot run a second time.
	booking, err = s.store.BookingByID(bookingID)
	if err != nil {
		return nil, err
	}

	from := status.BookingStatus(booking.Status)
	if from == status.BookingCancelled {
		return nil, fmt.Errorf("%w: booking already cancelled", status.ErrConflict)
	}

	err = s.store.RunInTransaction(func(tx store.Store) error {
		if err := tx.SetBookingStatus(bookingID, from, status.BookingCancelled); err != nil {
			return err
		}
		return s.applyCancelEffects(tx, booking, from)
	})
	if err != nil {
		monitoring.TrackBookingOperation("cancel", "error")
		return nil, err
	}

	booking.Status = string(status.BookingCancelled)
	monitoring.TrackBookingOperation("cancel", "cancelled")

	if user, err := s.store.UserByID(booking.UserID); err == nil {
		s.notifier.Send(ctx, user.Email, "Booking Cancelled",
			fmt.Sprintf("Hello %s,\n\nYour booking %s has been cancelled.\n\nThank you for using EventBook!",
				user.Name, booking.ID))
	}
	s.notifier.PublishActivity(map[string]any{
		"type":       "booking_cancelled",
		"booking_id": booking.ID,
		"event_id":   booking.EventID,
	})

	return booking, nil
}

func (s *BookingService) ListBookingsForUser(ctx context.Context, userID string) ([]models.BookingDetail, error) {
	return s.store.BookingsForUser(userID)
}

// applyCancelEffects flips the payment (when one exists) and refunds
// capacity for bookings that had actually committed it.
func (s *BookingService) applyCancelEffects(tx store.Store, booking *models.Booking, from status.BookingStatus) error {
	payment, err := tx.PaymentByBooking(booking.ID)
	switch {
	case err == nil:
		if err := tx.SetPaymentStatus(payment.ID, status.PaymentFailed); err != nil {
			return err
		}
	case isNotFoundErr(err):
		// Interactive-path bookings have no payment record.
	default:
		return err
	}

	if from == status.BookingConfirmed {
		if err := tx.RefillCapacity(booking.EventID, booking.Tickets); err != nil {
			slog.Error("capacity refill failed", "booking", booking.ID, "error", err)
			return err
		}
	}
	return nil
}

func newTxRef() string {
	return "TX-" + strings.ToUpper(uuid.NewString())
}

func isCapacityErr(err error) bool {
	return errors.Is(err, status.ErrCapacityExceeded)
}

func isNotFoundErr(err error) bool {
	return errors.Is(err, status.ErrNotFound)
}
