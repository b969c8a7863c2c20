package handlers

import (
	"net/http"

	"eventbook/internal/services"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"
)

type CategoryHandler struct {
	catalog *services.CatalogService
}

func NewCategoryHandler(catalog *services.CatalogService) *CategoryHandler {
	return &CategoryHandler{catalog: catalog}
}

func (h *CategoryHandler) List(e *core.RequestEvent) error {
	categories, err := h.catalog.ListCategories(e.Request.Context())
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"categories": categories})
}

func (h *CategoryHandler) Get(e *core.RequestEvent) error {
	category, err := h.catalog.GetCategory(e.Request.Context(), e.Request.PathValue("id"))
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"category": category})
}

func (h *CategoryHandler) Create(e *core.RequestEvent) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	category, err := h.catalog.CreateCategory(e.Request.Context(), req.Name)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusCreated, map[string]any{"category": category})
}

func (h *CategoryHandler) Update(e *core.RequestEvent) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request", err)
	}

	category, err := h.catalog.UpdateCategory(e.Request.Context(), e.Request.PathValue("id"), req.Name)
	if err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"category": category})
}

func (h *CategoryHandler) Delete(e *core.RequestEvent) error {
	if err := h.catalog.DeleteCategory(e.Request.Context(), e.Request.PathValue("id")); err != nil {
		return apiError(err)
	}
	return e.JSON(http.StatusOK, map[string]any{"message": "Category deleted"})
}
