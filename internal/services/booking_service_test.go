package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"eventbook/internal/status"
	"eventbook/internal/store"
	"eventbook/models"

	"github.com/pocketbase/pocketbase/tools/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory store.Store. DecrementCapacity and
// SetBookingStatus hold the mutex across check and write, mirroring the
// single conditional UPDATEs of the real implementation, and transactions
// roll the state back on error like the sqlite ones do.
type fakeStore struct {
	txMu       sync.Mutex
	mu         sync.Mutex
	users      map[string]*models.User
	passwords  map[string]string
	categories map[string]*models.Category
	events     map[string]*models.Event
	bookings   map[string]*models.Booking
	payments   map[string]*models.Payment
	nextID     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      map[string]*models.User{},
		passwords:  map[string]string{},
		categories: map[string]*models.Category{},
		events:     map[string]*models.Event{},
		bookings:   map[string]*models.Booking{},
		payments:   map[string]*models.Payment{},
	}
}

func (f *fakeStore) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s%d", prefix, f.nextID)
}

// RunInTransaction serializes writers (sqlite allows one at a time) and
// restores the pre-transaction state when fn fails.
func (f *fakeStore) RunInTransaction(fn func(tx store.Store) error) error {
	f.txMu.Lock()
	defer f.txMu.Unlock()

	f.mu.Lock()
	snapshot := f.snapshot()
	f.mu.Unlock()

	if err := fn(f); err != nil {
		f.mu.Lock()
		f.users = snapshot.users
		f.events = snapshot.events
		f.bookings = snapshot.bookings
		f.payments = snapshot.payments
		f.categories = snapshot.categories
		f.mu.Unlock()
		return err
	}
	return nil
}

type fakeSnapshot struct {
	users      map[string]*models.User
	categories map[string]*models.Category
	events     map[string]*models.Event
	bookings   map[string]*models.Booking
	payments   map[string]*models.Payment
}

func (f *fakeStore) snapshot() fakeSnapshot {
	snap := fakeSnapshot{
		users:      map[string]*models.User{},
		categories: map[string]*models.Category{},
		events:     map[string]*models.Event{},
		bookings:   map[string]*models.Booking{},
		payments:   map[string]*models.Payment{},
	}
	for id, u := range f.users {
		copied := *u
		snap.users[id] = &copied
	}
	for id, c := range f.categories {
		copied := *c
		snap.categories[id] = &copied
	}
	for id, e := range f.events {
		copied := *e
		snap.events[id] = &copied
	}
	for id, b := range f.bookings {
		copied := *b
		snap.bookings[id] = &copied
	}
	for id, p := range f.payments {
		copied := *p
		snap.payments[id] = &copied
	}
	return snap
}

func (f *fakeStore) UserByID(id string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, status.ErrNotFound
}

func (f *fakeStore) UserByEmail(email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, status.ErrNotFound
}

func (f *fakeStore) CreateUser(u *models.User, password string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *u
	copied.ID = f.id("user")
	f.users[copied.ID] = &copied
	f.passwords[copied.ID] = password
	result := copied
	return &result, nil
}

func (f *fakeStore) UpdateUser(u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return status.ErrNotFound
	}
	copied := *u
	f.users[u.ID] = &copied
	return nil
}

func (f *fakeStore) SetPassword(userID, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[userID]; !ok {
		return status.ErrNotFound
	}
	f.passwords[userID] = password
	return nil
}

func (f *fakeStore) CheckPassword(userID, password string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.passwords[userID]
	if !ok {
		return false, status.ErrNotFound
	}
	return stored == password, nil
}

func (f *fakeStore) EventByID(id string) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.events[id]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, status.ErrNotFound
}

func (f *fakeStore) EventBySlug(slug string) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.events {
		if e.Slug == slug {
			copied := *e
			return &copied, nil
		}
	}
	return nil, status.ErrNotFound
}

func (f *fakeStore) CreateEvent(e *models.Event) (*models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *e
	copied.ID = f.id("event")
	f.events[copied.ID] = &copied
	result := copied
	return &result, nil
}

func (f *fakeStore) UpdateEvent(e *models.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.events[e.ID]
	if !ok {
		return status.ErrNotFound
	}
	copied := *e
	copied.TotalCapacity = stored.TotalCapacity
	f.events[e.ID] = &copied
	return nil
}

func (f *fakeStore) SetEventImage(eventID string, image *filesystem.File) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[eventID]
	if !ok {
		return status.ErrNotFound
	}
	if image != nil {
		e.Image = image.Name
	}
	return nil
}

func (f *fakeStore) DeleteEvent(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[id]; !ok {
		return status.ErrNotFound
	}
	delete(f.events, id)
	return nil
}

func (f *fakeStore) ListEvents(q models.EventQuery) ([]models.Event, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := []models.Event{}
	for _, e := range f.events {
		if q.Search != "" && !strings.Contains(strings.ToLower(e.Title), strings.ToLower(q.Search)) {
			continue
		}
		if q.CategoryID != "" && e.CategoryID != q.CategoryID {
			continue
		}
		result = append(result, *e)
	}
	return result, int64(len(result)), nil
}

func (f *fakeStore) DecrementCapacity(eventID string, tickets int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[eventID]
	if !ok {
		return status.ErrNotFound
	}
	if e.Capacity < tickets {
		return status.ErrCapacityExceeded
	}
	e.Capacity -= tickets
	return nil
}

func (f *fakeStore) RefillCapacity(eventID string, tickets int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[eventID]
	if !ok {
		return status.ErrNotFound
	}
	e.Capacity += tickets
	if e.Capacity > e.TotalCapacity {
		e.Capacity = e.TotalCapacity
	}
	return nil
}

func (f *fakeStore) CategoryByID(id string) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.categories[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, status.ErrNotFound
}

func (f *fakeStore) CategoryByName(name string) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.categories {
		if c.Name == name {
			copied := *c
			return &copied, nil
		}
	}
	return nil, status.ErrNotFound
}

func (f *fakeStore) ListCategories() ([]models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := []models.Category{}
	for _, c := range f.categories {
		result = append(result, *c)
	}
	return result, nil
}

func (f *fakeStore) CreateCategory(c *models.Category) (*models.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *c
	copied.ID = f.id("cat")
	f.categories[copied.ID] = &copied
	result := copied
	return &result, nil
}

func (f *fakeStore) UpdateCategory(c *models.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[c.ID]; !ok {
		return status.ErrNotFound
	}
	copied := *c
	f.categories[c.ID] = &copied
	return nil
}

func (f *fakeStore) DeleteCategory(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.categories[id]; !ok {
		return status.ErrNotFound
	}
	delete(f.categories, id)
	return nil
}

func (f *fakeStore) CountEventsInCategory(categoryID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, e := range f.events {
		if e.CategoryID == categoryID {
			count++
		}
	}
	return count, nil
}

func (f *fakeStore) BookingByID(id string) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.bookings[id]; ok {
		copied := *b
		return &copied, nil
	}
	return nil, status.ErrNotFound
}

func (f *fakeStore) CreateBooking(b *models.Booking) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *b
	copied.ID = f.id("booking")
	f.bookings[copied.ID] = &copied
	result := copied
	return &result, nil
}

func (f *fakeStore) SetBookingStatus(id string, from, to status.BookingStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return status.ErrNotFound
	}
	if status.BookingStatus(b.Status) != from {
		return status.ErrConflict
	}
	b.Status = string(to)
	return nil
}

func (f *fakeStore) BookingsForUser(userID string) ([]models.BookingDetail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := []models.BookingDetail{}
	for _, b := range f.bookings {
		if b.UserID != userID {
			continue
		}
		detail := models.BookingDetail{Booking: *b}
		if e, ok := f.events[b.EventID]; ok {
			detail.EventTitle = e.Title
			detail.EventDate = e.Date
		}
		result = append(result, detail)
	}
	return result, nil
}

func (f *fakeStore) CreatePayment(p *models.Payment) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *p
	copied.ID = f.id("payment")
	f.payments[copied.ID] = &copied
	result := copied
	return &result, nil
}

func (f *fakeStore) PaymentByBooking(bookingID string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.payments {
		if p.BookingID == bookingID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, status.ErrNotFound
}

func (f *fakeStore) SetPaymentStatus(id string, st status.PaymentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[id]
	if !ok {
		return status.ErrNotFound
	}
	p.Status = string(st)
	return nil
}

var _ store.Store = (*fakeStore)(nil)

// fakeNotifier records every outbound side effect.
type fakeNotifier struct {
	mu         sync.Mutex
	sent       []string
	bodies     []string
	activities []map[string]any
}

func (n *fakeNotifier) Send(ctx context.Context, to, subject, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, fmt.Sprintf("%s|%s", to, subject))
	n.bodies = append(n.bodies, body)
}

func (n *fakeNotifier) PublishActivity(activity map[string]any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.activities = append(n.activities, activity)
}

func setupBookingTest(t *testing.T) (*BookingService, *fakeStore, *fakeNotifier, string, string) {
	t.Helper()

	fs := newFakeStore()
	notifier := &fakeNotifier{}
	svc := NewBookingService(fs, NoopLocker{}, notifier)

	user, err := fs.CreateUser(&models.User{Name: "Alice", Email: "alice@example.com", Role: "user"}, "secret1")
	require.NoError(t, err)

	event, err := fs.CreateEvent(&models.Event{
		Title:         "Go Conference",
		Slug:          "go-conference",
		Price:         10,
		Capacity:      5,
		TotalCapacity: 5,
	})
	require.NoError(t, err)

	return svc, fs, notifier, user.ID, event.ID
}

func TestCreateBooking_ConfirmedWithPayment(t *testing.T) {
	svc, fs, notifier, userID, eventID := setupBookingTest(t)
	ctx := context.Background()

	booking, payment, err := svc.CreateBooking(ctx, eventID, userID, 3, "")
	require.NoError(t, err)

	assert.Equal(t, string(status.BookingConfirmed), booking.Status)
	assert.Equal(t, 3, booking.Tickets)
	assert.Equal(t, 30.0, booking.TotalAmount)

	assert.Equal(t, string(status.PaymentCompleted), payment.Status)
	assert.Equal(t, 30.0, payment.Amount)
	assert.Equal(t, "mock", payment.Method)
	assert.True(t, strings.HasPrefix(payment.TxRef, "TX-"))

	event, err := fs.EventByID(eventID)
	require.NoError(t, err)
	assert.Equal(t, 2, event.Capacity)

	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0], "alice@example.com|Booking Confirmed")
}

func TestCreateBooking_CapacityExceededLeavesStateUntouched(t *testing.T) {
	svc, fs, _, userID, eventID := setupBookingTest(t)
	ctx := context.Background()

	_, _, err := svc.CreateBooking(ctx, eventID, userID, 6, "")
	assert.ErrorIs(t, err, status.ErrCapacityExceeded)

	event, _ := fs.EventByID(eventID)
	assert.Equal(t, 5, event.Capacity)
	assert.Empty(t, fs.bookings)
	assert.Empty(t, fs.payments)
}

func TestCreateBooking_EventNotFound(t *testing.T) {
	svc, _, _, userID, _ := setupBookingTest(t)

	_, _, err := svc.CreateBooking(context.Background(), "missing", userID, 1, "")
	assert.ErrorIs(t, err, status.ErrNotFound)
}

func TestCreateBooking_RejectsZeroTickets(t *testing.T) {
	svc, _, _, userID, eventID := setupBookingTest(t)

	_, _, err := svc.CreateBooking(context.Background(), eventID, userID, 0, "")
	assert.ErrorIs(t, err, status.ErrValidation)
}

func TestCreatePendingBooking_NoCapacityMovement(t *testing.T) {
	svc, fs, notifier, userID, eventID := setupBookingTest(t)

	booking, err := svc.CreatePendingBooking(context.Background(), eventID, userID)
	require.NoError(t, err)

	assert.Equal(t, string(status.BookingPending), booking.Status)
	assert.Equal(t, 1, booking.Tickets)
	assert.Equal(t, 10.0, booking.TotalAmount)

	event, _ := fs.EventByID(eventID)
	assert.Equal(t, 5, event.Capacity, "pending bookings reserve nothing")
	assert.Empty(t, fs.payments)
	require.Len(t, notifier.sent, 1)
	assert.Contains(t, notifier.sent[0], "Booking Created")
}

func TestSetBookingStatus_ConfirmCommitsCapacity(t *testing.T) {
	svc, fs, _, userID, eventID := setupBookingTest(t)
	ctx := context.Background()

	booking, err := svc.CreatePendingBooking(ctx, eventID, userID)
	require.NoError(t, err)

	updated, err := svc.SetBookingStatus(ctx, booking.ID, status.BookingConfirmed)
	require.NoError(t, err)
	assert.Equal(t, string(status.BookingConfirmed), updated.Status)

	event, _ := fs.EventByID(eventID)
	assert.Equal(t, 4, event.Capacity)
}

func TestSetBookingStatus_ConfirmFailsWhenSoldOut(t *testing.T) {
	svc, fs, _, userID, eventID := setupBookingTest(t)
	ctx := context.Background()

	booking, err := svc.CreatePendingBooking(ctx, eventID, userID)
	require.NoError(t, err)

	// Someone else takes the whole event first.
	_, _, err = svc.CreateBooking(ctx, eventID, userID, 5, "")
	require.NoError(t, err)

	_, err = svc.SetBookingStatus(ctx, booking.ID, status.BookingConfirmed)
	assert.ErrorIs(t, err, status.ErrCapacityExceeded)

	// The pending booking stays pending.
	stored, _ := fs.BookingByID(booking.ID)
	assert.Equal(t, string(status.BookingPending), stored.Status)
}

func TestSetBookingStatus_RejectsDisallowedTransitions(t *testing.T) {
	svc, _, _, userID, eventID := setupBookingTest(t)
	ctx := context.Background()

	booking, _, err := svc.CreateBooking(ctx, eventID, userID, 1, "")
	require.NoError(t, err)

	// confirmed -> confirmed is a no-op and must error, not silently pass.
	_, err = svc.SetBookingStatus(ctx, booking.ID, status.BookingConfirmed)
	assert.ErrorIs(t, err, status.ErrConflict)

	// confirmed -> pending is a downgrade.
	_, err = svc.SetBookingStatus(ctx, booking.ID, status.BookingPending)
	assert.ErrorIs(t, err, status.ErrConflict)

	_, err = svc.SetBookingStatus(ctx, booking.ID, "paid")
	assert.ErrorIs(t, err, status.ErrValidation)
}

func TestCancelBooking_RefundsExactlyOnce(t *testing.T) {
	svc, fs, _, userID, eventID := setupBookingTest(t)
	ctx := context.Background()

	booking, payment, err := svc.CreateBooking(ctx, eventID, userID, 3, "")
	require.NoError(t, err)

	event, _ := fs.EventByID(eventID)
	require.Equal(t, 2, event.Capacity)

	cancelled, err := svc.CancelBooking(ctx, booking.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, string(status.BookingCancelled), cancelled.Status)

	event, _ = fs.EventByID(eventID)
	assert.Equal(t, 5, event.Capacity, "capacity restored exactly")

	stored, _ := fs.PaymentByBooking(booking.ID)
	assert.Equal(t, string(status.PaymentFailed), stored.Status)
	assert.Equal(t, payment.TxRef, stored.TxRef)

	// Cancelling again conflicts and must not double-refund.
	_, err = svc.CancelBooking(ctx, booking.ID, userID)
	assert.ErrorIs(t, err, status.ErrConflict)
	event, _ = fs.EventByID(eventID)
	assert.Equal(t, 5, event.Capacity)
}

func TestCancelBooking_OwnershipEnforced(t *testing.T) {
	svc, fs, _, userID, eventID := setupBookingTest(t)
	ctx := context.Background()

	other, err := fs.CreateUser(&models.User{Name: "Mallory", Email: "m@example.com", Role: "user"}, "pw")
	require.NoError(t, err)

	booking, _, err := svc.CreateBooking(ctx, eventID, userID, 1, "")
	require.NoError(t, err)

	_, err = svc.CancelBooking(ctx, booking.ID, other.ID)
	assert.ErrorIs(t, err, status.ErrForbidden)
}

func TestCancelBooking_PendingTakesNoRefund(t *testing.T) {
	svc, fs, _, userID, eventID := setupBookingTest(t)
	ctx := context.Background()

	booking, err := svc.CreatePendingBooking(ctx, eventID, userID)
	require.NoError(t, err)

	_, err = svc.CancelBooking(ctx, booking.ID, userID)
	require.NoError(t, err)

	event, _ := fs.EventByID(eventID)
	assert.Equal(t, 5, event.Capacity, "pending booking never held capacity")
}

func TestTotalAmountImmutableAcrossTransitions(t *testing.T) {
	svc, fs, _, userID, eventID := setupBookingTest(t)
	ctx := context.Background()

	booking, _, err := svc.CreateBooking(ctx, eventID, userID, 2, "")
	require.NoError(t, err)
	require.Equal(t, 20.0, booking.TotalAmount)

	// Price changes afterwards must not touch existing bookings.
	event, _ := fs.EventByID(eventID)
	event.Price = 99
	require.NoError(t, fs.UpdateEvent(event))

	_, err = svc.CancelBooking(ctx, booking.ID, userID)
	require.NoError(t, err)

	stored, _ := fs.BookingByID(booking.ID)
	assert.Equal(t, 20.0, stored.TotalAmount)
}

func TestConcurrentBookings_ExactlyOneWins(t *testing.T) {
	svc, fs, _, userID, eventID := setupBookingTest(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = svc.CreateBooking(ctx, eventID, userID, 3, "")
		}(i)
	}
	wg.Wait()

	var successes, capacityErrs int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case isCapacityErr(err):
			capacityErrs++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, successes, "exactly one of the racing bookings may pass")
	assert.Equal(t, 1, capacityErrs)

	event, _ := fs.EventByID(eventID)
	assert.Equal(t, 2, event.Capacity)
	assert.GreaterOrEqual(t, event.Capacity, 0)
}

// barrierLocker delays every caller until all expected parties have
// reached Lock, then admits them one at a time. It recreates the window
// where two requests read the same booking before either holds the lock.
type barrierLocker struct {
	arrived *sync.WaitGroup
	mu      sync.Mutex
}

func newBarrierLocker(parties int) *barrierLocker {
	wg := &sync.WaitGroup{}
	wg.Add(parties)
	return &barrierLocker{arrived: wg}
}

func (l *barrierLocker) Lock(ctx context.Context, eventID string) (func(), error) {
	l.arrived.Done()
	l.arrived.Wait()
	l.mu.Lock()
	return l.mu.Unlock, nil
}

func TestConcurrentConfirms_DecrementOnce(t *testing.T) {
	svc, fs, _, userID, eventID := setupBookingTest(t)
	ctx := context.Background()

	booking, err := svc.CreatePendingBooking(ctx, eventID, userID)
	require.NoError(t, err)

	racing := NewBookingService(fs, newBarrierLocker(2), &fakeNotifier{})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = racing.SetBookingStatus(ctx, booking.ID, status.BookingConfirmed)
		}(i)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, status.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes, "exactly one confirm may commit")
	assert.Equal(t, 1, conflicts, "the stale confirm must conflict")

	event, _ := fs.EventByID(eventID)
	assert.Equal(t, 4, event.Capacity, "one ticket decremented exactly once")

	stored, _ := fs.BookingByID(booking.ID)
	assert.Equal(t, string(status.BookingConfirmed), stored.Status)
}

func TestConcurrentCancels_RefundOnce(t *testing.T) {
	svc, fs, _, userID, eventID := setupBookingTest(t)
	ctx := context.Background()

	booking, _, err := svc.CreateBooking(ctx, eventID, userID, 2, "")
	require.NoError(t, err)

	event, _ := fs.EventByID(eventID)
	require.Equal(t, 3, event.Capacity)

	racing := NewBookingService(fs, newBarrierLocker(2), &fakeNotifier{})

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = racing.CancelBooking(ctx, booking.ID, userID)
		}(i)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, status.ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, successes, "exactly one cancel may commit")
	assert.Equal(t, 1, conflicts, "the stale cancel must conflict")

	event, _ = fs.EventByID(eventID)
	assert.Equal(t, 5, event.Capacity, "the two tickets refunded exactly once")

	payment, _ := fs.PaymentByBooking(booking.ID)
	assert.Equal(t, string(status.PaymentFailed), payment.Status)
}

func TestListBookingsForUser(t *testing.T) {
	svc, fs, _, userID, eventID := setupBookingTest(t)
	ctx := context.Background()

	_, _, err := svc.CreateBooking(ctx, eventID, userID, 1, "")
	require.NoError(t, err)
	_, err = svc.CreatePendingBooking(ctx, eventID, userID)
	require.NoError(t, err)

	other, err := fs.CreateUser(&models.User{Name: "Bob", Email: "bob@example.com", Role: "user"}, "pw")
	require.NoError(t, err)
	_, _, err = svc.CreateBooking(ctx, eventID, other.ID, 1, "")
	require.NoError(t, err)

	list, err := svc.ListBookingsForUser(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	for _, detail := range list {
		assert.Equal(t, userID, detail.UserID)
		assert.Equal(t, "Go Conference", detail.EventTitle)
	}
}
