package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"eventbook/internal/status"
	"eventbook/internal/store"
	"eventbook/models"

	"github.com/pocketbase/pocketbase/tools/filesystem"
)

// CatalogService manages the shared, admin-mutable catalog: categories and
// events. Capacity mutation is the booking engine's job; here capacity is
// only set at event creation (and total_capacity fixed alongside it).
type CatalogService struct {
	store store.Store
}

func NewCatalogService(st store.Store) *CatalogService {
	return &CatalogService{store: st}
}

// ---------------- Categories ----------------

func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return nil, fmt.Errorf("%w: category name must be at least 2 characters", status.ErrValidation)
	}

	if _, err := s.store.CategoryByName(name); err == nil {
		return nil, fmt.Errorf("%w: category %q already exists", status.ErrConflict, name)
	} else if !isNotFoundErr(err) {
		return nil, err
	}

	return s.store.CreateCategory(&models.Category{
		Name: name,
		Slug: Slugify(name),
	})
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id, name string) (*models.Category, error) {
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return nil, fmt.Errorf("%w: category name must be at least 2 characters", status.ErrValidation)
	}

	category, err := s.store.CategoryByID(id)
	if err != nil {
		return nil, err
	}

	if existing, err := s.store.CategoryByName(name); err == nil && existing.ID != id {
		return nil, fmt.Errorf("%w: category %q already exists", status.ErrConflict, name)
	} else if err != nil && !isNotFoundErr(err) {
		return nil, err
	}

	category.Name = name
	category.Slug = Slugify(name)
	if err := s.store.UpdateCategory(category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory refuses to leave dangling event references behind.
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	if _, err := s.store.CategoryByID(id); err != nil {
		return err
	}

	count, err := s.store.CountEventsInCategory(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: category still referenced by %d events", status.ErrConflict, count)
	}

	return s.store.DeleteCategory(id)
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	return s.store.ListCategories()
}

func (s *CatalogService) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	return s.store.CategoryByID(id)
}

// ---------------- Events ----------------

type EventInput struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CategoryID  string    `json:"category_id"`
	Location    string    `json:"location"`
	Date        time.Time `json:"date"`
	Price       float64   `json:"price"`
	Capacity    int       `json:"capacity"`
}

func (in EventInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title is required", status.ErrValidation)
	}
	if in.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", status.ErrValidation)
	}
	if in.Capacity < 0 {
		return fmt.Errorf("%w: capacity cannot be negative", status.ErrValidation)
	}
	return nil
}

func (s *CatalogService) CreateEvent(ctx context.Context, in EventInput, createdBy string) (*models.Event, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	if in.CategoryID != "" {
		if _, err := s.store.CategoryByID(in.CategoryID); err != nil {
			return nil, err
		}
	}

	return s.store.CreateEvent(&models.Event{
		Title:         strings.TrimSpace(in.Title),
		Slug:          Slugify(in.Title),
		Description:   in.Description,
		CategoryID:    in.CategoryID,
		Location:      in.Location,
		Date:          in.Date,
		Price:         in.Price,
		Capacity:      in.Capacity,
		TotalCapacity: in.Capacity,
		CreatedBy:     createdBy,
	})
}

func (s *CatalogService) UpdateEvent(ctx context.Context, id string, in EventInput) (*models.Event, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	event, err := s.store.EventByID(id)
	if err != nil {
		return nil, err
	}

	// total_capacity is the refill ceiling fixed at creation; letting the
	// live capacity climb above it would reopen seats that never existed.
	if in.Capacity > event.TotalCapacity {
		return nil, fmt.Errorf("%w: capacity cannot exceed the event's total capacity of %d",
			status.ErrValidation, event.TotalCapacity)
	}

	if in.CategoryID != "" && in.CategoryID != event.CategoryID {
		if _, err := s.store.CategoryByID(in.CategoryID); err != nil {
			return nil, err
		}
	}

	event.Title = strings.TrimSpace(in.Title)
	event.Slug = Slugify(in.Title)
	event.Description = in.Description
	event.CategoryID = in.CategoryID
	event.Location = in.Location
	event.Date = in.Date
	event.Price = in.Price
	event.Capacity = in.Capacity

	if err := s.store.UpdateEvent(event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *CatalogService) AttachImage(ctx context.Context, eventID string, image *filesystem.File) error {
	return s.store.SetEventImage(eventID, image)
}

func (s *CatalogService) DeleteEvent(ctx context.Context, id string) error {
	return s.store.DeleteEvent(id)
}

func (s *CatalogService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	return s.store.EventByID(id)
}

func (s *CatalogService) GetEventBySlug(ctx context.Context, slug string) (*models.Event, error) {
	return s.store.EventBySlug(slug)
}

func (s *CatalogService) ListEvents(ctx context.Context, q models.EventQuery) ([]models.Event, int64, error) {
	return s.store.ListEvents(q)
}

// Slugify lower-cases the input and collapses every non-alphanumeric run
// into a single dash. Slugs are not guaranteed unique.
func Slugify(s string) string {
	var b strings.Builder
	lastDash := true // suppress a leading dash
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastDash = false
		} else if !lastDash {
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
