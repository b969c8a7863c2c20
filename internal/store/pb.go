package store

import (
	"database/sql"
	"errors"

	"eventbook/internal/status"
	"eventbook/models"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/filesystem"
)

// PB implements Store on top of a PocketBase app (or a transaction app).
type PB struct {
	app core.App
}

func NewPB(app core.App) *PB {
	return &PB{app: app}
}

func (s *PB) RunInTransaction(fn func(tx Store) error) error {
	return s.app.RunInTransaction(func(txApp core.App) error {
		return fn(&PB{app: txApp})
	})
}

func wrapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return status.ErrNotFound
	}
	return err
}

// ---------------- Identity ----------------

func (s *PB) UserByID(id string) (*models.User, error) {
	record, err := s.app.FindRecordById("users", id)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return userFromRecord(record), nil
}

func (s *PB) UserByEmail(email string) (*models.User, error) {
	record, err := s.app.FindFirstRecordByFilter(
		"users",
		"email = {:email}",
		dbx.Params{"email": email},
	)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return userFromRecord(record), nil
}

func (s *PB) CreateUser(u *models.User, password string) (*models.User, error) {
	collection, err := s.app.FindCollectionByNameOrId("users")
	if err != nil {
		return nil, err
	}

	record := core.NewRecord(collection)
	record.Set("name", u.Name)
	record.Set("email", u.Email)
	record.Set("role", u.Role)
	record.SetPassword(password)

	if err := s.app.Save(record); err != nil {
		return nil, err
	}
	return userFromRecord(record), nil
}

func (s *PB) UpdateUser(u *models.User) error {
	record, err := s.app.FindRecordById("users", u.ID)
	if err != nil {
		return wrapNotFound(err)
	}

	record.Set("name", u.Name)
	record.Set("refresh_token", u.RefreshToken)
	record.Set("reset_otp", u.ResetOTPHash)
	record.Set("reset_otp_expires", u.ResetOTPExp)

	return s.app.Save(record)
}

func (s *PB) SetPassword(userID, password string) error {
	record, err := s.app.FindRecordById("users", userID)
	if err != nil {
		return wrapNotFound(err)
	}
	record.SetPassword(password)
	return s.app.Save(record)
}

func (s *PB) CheckPassword(userID, password string) (bool, error) {
	record, err := s.app.FindRecordById("users", userID)
	if err != nil {
		return false, wrapNotFound(err)
	}
	return record.ValidatePassword(password), nil
}

func userFromRecord(r *core.Record) *models.User {
	return &models.User{
		ID:           r.Id,
		Name:         r.GetString("name"),
		Email:        r.GetString("email"),
		Role:         r.GetString("role"),
		RefreshToken: r.GetString("refresh_token"),
		ResetOTPHash: r.GetString("reset_otp"),
		ResetOTPExp:  r.GetDateTime("reset_otp_expires").Time(),
		Created:      r.GetDateTime("created").Time(),
	}
}

// ---------------- Catalog: events ----------------

func (s *PB) EventByID(id string) (*models.Event, error) {
	record, err := s.app.FindRecordById("events", id)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return eventFromRecord(record), nil
}

func (s *PB) EventBySlug(slug string) (*models.Event, error) {
	record, err := s.app.FindFirstRecordByFilter(
		"events",
		"slug = {:slug}",
		dbx.Params{"slug": slug},
	)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return eventFromRecord(record), nil
}

func (s *PB) CreateEvent(e *models.Event) (*models.Event, error) {
	collection, err := s.app.FindCollectionByNameOrId("events")
	if err != nil {
		return nil, err
	}

	record := core.NewRecord(collection)
	applyEvent(record, e)
	record.Set("total_capacity", e.TotalCapacity)

	if err := s.app.Save(record); err != nil {
		return nil, err
	}
	return eventFromRecord(record), nil
}

func (s *PB) UpdateEvent(e *models.Event) error {
	record, err := s.app.FindRecordById("events", e.ID)
	if err != nil {
		return wrapNotFound(err)
	}
	// total_capacity is fixed at creation and deliberately not updatable.
	applyEvent(record, e)
	return s.app.Save(record)
}

func (s *PB) SetEventImage(eventID string, image *filesystem.File) error {
	record, err := s.app.FindRecordById("events", eventID)
	if err != nil {
		return wrapNotFound(err)
	}
	record.Set("image", image)
	return s.app.Save(record)
}

func (s *PB) DeleteEvent(id string) error {
	record, err := s.app.FindRecordById("events", id)
	if err != nil {
		return wrapNotFound(err)
	}
	return s.app.Delete(record)
}

func (s *PB) ListEvents(q models.EventQuery) ([]models.Event, int64, error) {
	filter := "id != ''"
	params := dbx.Params{}
	exprs := []dbx.Expression{}

	if q.Search != "" {
		filter += " && title ~ {:search}"
		params["search"] = q.Search
		exprs = append(exprs, dbx.Like("title", q.Search))
	}
	if q.CategoryID != "" {
		filter += " && category = {:category}"
		params["category"] = q.CategoryID
		exprs = append(exprs, dbx.HashExp{"category": q.CategoryID})
	}

	// Only the documented sort values are honored; anything else falls
	// back to date order instead of reaching the query layer.
	sort := "date"
	switch q.Sort {
	case "price_asc":
		sort = "price"
	case "price_desc":
		sort = "-price"
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit < 1 {
		limit = 10
	}

	total, err := s.app.CountRecords("events", exprs...)
	if err != nil {
		return nil, 0, err
	}

	records, err := s.app.FindRecordsByFilter(
		"events",
		filter,
		sort,
		limit,
		(page-1)*limit,
		params,
	)
	if err != nil {
		return nil, 0, err
	}

	events := make([]models.Event, 0, len(records))
	for _, record := range records {
		events = append(events, *eventFromRecord(record))
	}
	return events, total, nil
}

// DecrementCapacity is the atomic check-and-decrement: two concurrent
// bookings cannot both pass the capacity check because the check is part of
// the UPDATE itself.
func (s *PB) DecrementCapacity(eventID string, tickets int) error {
	res, err := s.app.DB().NewQuery(
		"UPDATE events SET capacity = capacity - {:n} WHERE id = {:id} AND capacity >= {:n}",
	).Bind(dbx.Params{"n": tickets, "id": eventID}).Execute()
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := s.app.FindRecordById("events", eventID); err != nil {
			return wrapNotFound(err)
		}
		return status.ErrCapacityExceeded
	}
	return nil
}

func (s *PB) RefillCapacity(eventID string, tickets int) error {
	res, err := s.app.DB().NewQuery(
		"UPDATE events SET capacity = MIN(capacity + {:n}, total_capacity) WHERE id = {:id}",
	).Bind(dbx.Params{"n": tickets, "id": eventID}).Execute()
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return status.ErrNotFound
	}
	return nil
}

func applyEvent(r *core.Record, e *models.Event) {
	r.Set("title", e.Title)
	r.Set("slug", e.Slug)
	r.Set("description", e.Description)
	r.Set("category", e.CategoryID)
	r.Set("location", e.Location)
	r.Set("date", e.Date)
	r.Set("price", e.Price)
	r.Set("capacity", e.Capacity)
	r.Set("created_by", e.CreatedBy)
}

func eventFromRecord(r *core.Record) *models.Event {
	return &models.Event{
		ID:            r.Id,
		Title:         r.GetString("title"),
		Slug:          r.GetString("slug"),
		Description:   r.GetString("description"),
		CategoryID:    r.GetString("category"),
		Location:      r.GetString("location"),
		Date:          r.GetDateTime("date").Time(),
		Price:         r.GetFloat("price"),
		Capacity:      r.GetInt("capacity"),
		TotalCapacity: r.GetInt("total_capacity"),
		Image:         r.GetString("image"),
		CreatedBy:     r.GetString("created_by"),
	}
}

// ---------------- Catalog: categories ----------------

func (s *PB) CategoryByID(id string) (*models.Category, error) {
	record, err := s.app.FindRecordById("categories", id)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return categoryFromRecord(record), nil
}

func (s *PB) CategoryByName(name string) (*models.Category, error) {
	record, err := s.app.FindFirstRecordByFilter(
		"categories",
		"name = {:name}",
		dbx.Params{"name": name},
	)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return categoryFromRecord(record), nil
}

func (s *PB) ListCategories() ([]models.Category, error) {
	records, err := s.app.FindRecordsByFilter("categories", "id != ''", "name", 0, 0)
	if err != nil {
		return nil, err
	}

	categories := make([]models.Category, 0, len(records))
	for _, record := range records {
		categories = append(categories, *categoryFromRecord(record))
	}
	return categories, nil
}

func (s *PB) CreateCategory(c *models.Category) (*models.Category, error) {
	collection, err := s.app.FindCollectionByNameOrId("categories")
	if err != nil {
		return nil, err
	}

	record := core.NewRecord(collection)
	record.Set("name", c.Name)
	record.Set("slug", c.Slug)

	if err := s.app.Save(record); err != nil {
		return nil, err
	}
	return categoryFromRecord(record), nil
}

func (s *PB) UpdateCategory(c *models.Category) error {
	record, err := s.app.FindRecordById("categories", c.ID)
	if err != nil {
		return wrapNotFound(err)
	}
	record.Set("name", c.Name)
	record.Set("slug", c.Slug)
	return s.app.Save(record)
}

func (s *PB) DeleteCategory(id string) error {
	record, err := s.app.FindRecordById("categories", id)
	if err != nil {
		return wrapNotFound(err)
	}
	return s.app.Delete(record)
}

func (s *PB) CountEventsInCategory(categoryID string) (int64, error) {
	return s.app.CountRecords("events", dbx.HashExp{"category": categoryID})
}

func categoryFromRecord(r *core.Record) *models.Category {
	return &models.Category{
		ID:   r.Id,
		Name: r.GetString("name"),
		Slug: r.GetString("slug"),
	}
}

// ---------------- Bookings ----------------

func (s *PB) BookingByID(id string) (*models.Booking, error) {
	record, err := s.app.FindRecordById("bookings", id)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return bookingFromRecord(record), nil
}

func (s *PB) CreateBooking(b *models.Booking) (*models.Booking, error) {
	collection, err := s.app.FindCollectionByNameOrId("bookings")
	if err != nil {
		return nil, err
	}

	record := core.NewRecord(collection)
	record.Set("user", b.UserID)
	record.Set("event", b.EventID)
	record.Set("tickets", b.Tickets)
	record.Set("total_amount", b.TotalAmount)
	record.Set("status", b.Status)

	if err := s.app.Save(record); err != nil {
		return nil, err
	}
	return bookingFromRecord(record), nil
}

// SetBookingStatus only ever touches the status field; tickets and
// total_amount stay what they were at creation. The WHERE clause carries
// the expected current status, so a stale caller loses instead of
// overwriting a transition that already happened.
func (s *PB) SetBookingStatus(id string, from, to status.BookingStatus) error {
	res, err := s.app.DB().NewQuery(
		"UPDATE bookings SET status = {:to} WHERE id = {:id} AND status = {:from}",
	).Bind(dbx.Params{"to": string(to), "id": id, "from": string(from)}).Execute()
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := s.app.FindRecordById("bookings", id); err != nil {
			return wrapNotFound(err)
		}
		return status.ErrConflict
	}
	return nil
}

func (s *PB) BookingsForUser(userID string) ([]models.BookingDetail, error) {
	records, err := s.app.FindRecordsByFilter(
		"bookings",
		"user = {:userId}",
		"-created",
		200,
		0,
		dbx.Params{"userId": userID},
	)
	if err != nil {
		return nil, err
	}

	details := make([]models.BookingDetail, 0, len(records))
	for _, record := range records {
		detail := models.BookingDetail{Booking: *bookingFromRecord(record)}
		if event, err := s.app.FindRecordById("events", record.GetString("event")); err == nil {
			detail.EventTitle = event.GetString("title")
			detail.EventDate = event.GetDateTime("date").Time()
		}
		details = append(details, detail)
	}
	return details, nil
}

func bookingFromRecord(r *core.Record) *models.Booking {
	return &models.Booking{
		ID:          r.Id,
		UserID:      r.GetString("user"),
		EventID:     r.GetString("event"),
		Tickets:     r.GetInt("tickets"),
		TotalAmount: r.GetFloat("total_amount"),
		Status:      r.GetString("status"),
		Created:     r.GetDateTime("created").Time(),
	}
}

// ---------------- Payments ----------------

func (s *PB) CreatePayment(p *models.Payment) (*models.Payment, error) {
	collection, err := s.app.FindCollectionByNameOrId("payments")
	if err != nil {
		return nil, err
	}

	record := core.NewRecord(collection)
	record.Set("booking", p.BookingID)
	record.Set("amount", p.Amount)
	record.Set("method", p.Method)
	record.Set("status", p.Status)
	record.Set("tx_ref", p.TxRef)

	if err := s.app.Save(record); err != nil {
		return nil, err
	}
	return paymentFromRecord(record), nil
}

func (s *PB) PaymentByBooking(bookingID string) (*models.Payment, error) {
	record, err := s.app.FindFirstRecordByFilter(
		"payments",
		"booking = {:bookingId}",
		dbx.Params{"bookingId": bookingID},
	)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return paymentFromRecord(record), nil
}

func (s *PB) SetPaymentStatus(id string, st status.PaymentStatus) error {
	record, err := s.app.FindRecordById("payments", id)
	if err != nil {
		return wrapNotFound(err)
	}
	record.Set("status", string(st))
	return s.app.Save(record)
}

func paymentFromRecord(r *core.Record) *models.Payment {
	return &models.Payment{
		ID:        r.Id,
		BookingID: r.GetString("booking"),
		Amount:    r.GetFloat("amount"),
		Method:    r.GetString("method"),
		Status:    r.GetString("status"),
		TxRef:     r.GetString("tx_ref"),
		Created:   r.GetDateTime("created").Time(),
	}
}

var _ Store = (*PB)(nil)
