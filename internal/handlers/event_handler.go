package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"eventbook/internal/services"
	"eventbook/models"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type EventHandler struct {
	catalog *services.CatalogService
}

func NewEventHandler(catalog *services.CatalogService) *EventHandler {
	return &EventHandler{catalog: catalog}
}

// List is the public browse endpoint: search, category filter, sorting and
// pagination all come from the query string.
func (h *EventHandler) List(e *core.RequestEvent) error {
	q := e.Request.URL.Query()

	query := models.EventQuery{
		Search:     q.Get("search"),
		CategoryID: q.Get("category"),
		Sort:       q.Get("sort"),
		Page:       1,
		Limit:      12,
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil && page > 0 {
		query.Page = page
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 && limit <= 100 {
		query.Limit = limit
	}

	events, total, err := h.catalog.ListEvents(e.Request.Context(), query)
	if err != nil {
		return apiError(err)
	}

	totalPages := (total + int64(query.Limit) - 1) / int64(query.Limit)
	return e.JSON(http.StatusOK, map[string]any{
		"events":      events,
		"total":       total,
		"page":        query.Page,
		"total_pages": totalPages,
	})
}

func (h *EventHandler) GetBySlug(e *core.RequestEvent) error {
	event, err := h.catalog.GetEventBySlug(e.Request.Context(), e.Request.PathValue("slug"))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"event": event})
}

// eventRequest carries the date as a string so the same struct binds from
// both JSON and multipart form bodies.
type eventRequest struct {
	Title       string  `json:"title" form:"title"`
	Description string  `json:"description" form:"description"`
	CategoryID  string  `json:"category_id" form:"category_id"`
	Location    string  `json:"location" form:"location"`
	Date        string  `json:"date" form:"date"`
	Price       float64 `json:"price" form:"price"`
	Capacity    int     `json:"capacity" form:"capacity"`
}

func (r eventRequest) toInput() (services.EventInput, error) {
	in := services.EventInput{
		Title:       r.Title,
		Description: r.Description,
		CategoryID:  r.CategoryID,
		Location:    r.Location,
		Price:       r.Price,
		Capacity:    r.Capacity,
	}
	if r.Date != "" {
		date, err := time.Parse(time.RFC3339, r.Date)
		if err != nil {
			return in, errors.New("date must be RFC3339")
		}
		in.Date = date
	}
	return in, nil
}

func (h *EventHandler) Create(e *core.RequestEvent) error {
	var req eventRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	in, err := req.toInput()
	if err != nil {
		return apis.NewBadRequestError(err.Error(), err)
	}

	event, err := h.catalog.CreateEvent(e.Request.Context(), in, authUser(e).ID)
	if err != nil {
		return apiError(err)
	}

	if err := h.attachUploadedImage(e, event.ID); err != nil {
		return err
	}

	return e.JSON(http.StatusCreated, map[string]any{"event": event})
}

func (h *EventHandler) Update(e *core.RequestEvent) error {
	var req eventRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}
	in, err := req.toInput()
	if err != nil {
		return apis.NewBadRequestError(err.Error(), err)
	}

	event, err := h.catalog.UpdateEvent(e.Request.Context(), e.Request.PathValue("id"), in)
	if err != nil {
		return apiError(err)
	}

	if err := h.attachUploadedImage(e, event.ID); err != nil {
		return err
	}

	return e.JSON(http.StatusOK, map[string]any{"event": event})
}

func (h *EventHandler) Delete(e *core.RequestEvent) error {
	if err := h.catalog.DeleteEvent(e.Request.Context(), e.Request.PathValue("id")); err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"message": "Event deleted"})
}

// attachUploadedImage stores an optional multipart "image" file on the
// event. A JSON body simply has no uploads and falls through.
func (h *EventHandler) attachUploadedImage(e *core.RequestEvent, eventID string) error {
	files, err := e.FindUploadedFiles("image")
	if err != nil || len(files) == 0 {
		return nil
	}
	if err := h.catalog.AttachImage(e.Request.Context(), eventID, files[0]); err != nil {
		return apiError(err)
	}
	return nil
}
