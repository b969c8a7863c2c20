package store

import (
	"eventbook/internal/status"
	"eventbook/models"

	"github.com/pocketbase/pocketbase/tools/filesystem"
)

// The booking engine talks to persistence through these interfaces; the
// PocketBase implementation lives in pb.go and tests swap in fakes.

type Identity interface {
	UserByID(id string) (*models.User, error)
	UserByEmail(email string) (*models.User, error)
	CreateUser(u *models.User, password string) (*models.User, error)
	UpdateUser(u *models.User) error
	SetPassword(userID, password string) error
	CheckPassword(userID, password string) (bool, error)
}

type Catalog interface {
	EventByID(id string) (*models.Event, error)
	EventBySlug(slug string) (*models.Event, error)
	CreateEvent(e *models.Event) (*models.Event, error)
	UpdateEvent(e *models.Event) error
	DeleteEvent(id string) error
	ListEvents(q models.EventQuery) ([]models.Event, int64, error)
	SetEventImage(eventID string, image *filesystem.File) error

	CategoryByID(id string) (*models.Category, error)
	CategoryByName(name string) (*models.Category, error)
	ListCategories() ([]models.Category, error)
	CreateCategory(c *models.Category) (*models.Category, error)
	UpdateCategory(c *models.Category) error
	DeleteCategory(id string) error
	CountEventsInCategory(categoryID string) (int64, error)

	// DecrementCapacity performs the conditional check-and-decrement as a
	// single statement: it fails with status.ErrCapacityExceeded when the
	// remaining capacity is below tickets, without changing anything.
	DecrementCapacity(eventID string, tickets int) error
	// RefillCapacity adds tickets back, capped at the event's total_capacity.
	RefillCapacity(eventID string, tickets int) error
}

type Bookings interface {
	BookingByID(id string) (*models.Booking, error)
	CreateBooking(b *models.Booking) (*models.Booking, error)
	// SetBookingStatus moves the booking from one status to another as a
	// single conditional statement, like DecrementCapacity: when the stored
	// status no longer matches from, nothing changes and it fails with
	// status.ErrConflict. Two racing transitions resolve to one winner.
	SetBookingStatus(id string, from, to status.BookingStatus) error
	BookingsForUser(userID string) ([]models.BookingDetail, error)
}

type Payments interface {
	CreatePayment(p *models.Payment) (*models.Payment, error)
	PaymentByBooking(bookingID string) (*models.Payment, error)
	SetPaymentStatus(id string, s status.PaymentStatus) error
}

type Store interface {
	Identity
	Catalog
	Bookings
	Payments

	// RunInTransaction executes fn against a store whose writes commit or
	// roll back together.
	RunInTransaction(fn func(tx Store) error) error
}
