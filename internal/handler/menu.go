package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/prata-pos/api/internal/database"
	"github.com/shopspring/decimal"
)

// MenuStore defines the database methods needed by menu handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type MenuStore interface {
	ListCategories(ctx context.Context) ([]database.MenuCategory, error)
	GetCategoryByName(ctx context.Context, name string) (database.MenuCategory, error)
	CreateCategory(ctx context.Context, arg database.CreateCategoryParams) (database.MenuCategory, error)
	UpdateCategory(ctx context.Context, arg database.UpdateCategoryParams) (database.MenuCategory, error)
	DeleteCategory(ctx context.Context, id int64) (int64, error)
	CountMenuItemsByCategory(ctx context.Context, categoryID int64) (int64, error)
	ListAvailableMenuItems(ctx context.Context) ([]database.MenuItemRow, error)
	ListAllMenuItems(ctx context.Context) ([]database.MenuItemRow, error)
	GetMenuItemRow(ctx context.Context, id int64) (database.MenuItemRow, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id int64) (int64, error)
	CountOrderItemsByMenuItem(ctx context.Context, menuItemID int64) (int64, error)
}

// MenuHandler handles menu category and item endpoints.
type MenuHandler struct {
	store MenuStore
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(store MenuStore) *MenuHandler {
	return &MenuHandler{store: store}
}

// RegisterPublicRoutes registers the read-only menu endpoints used by the
// order screen. They carry no auth so the register can load the menu
// before anyone signs in.
func (h *MenuHandler) RegisterPublicRoutes(r chi.Router) {
	r.Get("/menu", h.ListGrouped)
	r.Get("/menu/categories", h.ListCategories)
}

// RegisterAdminRoutes registers menu management endpoints.
func (h *MenuHandler) RegisterAdminRoutes(r chi.Router) {
	r.Get("/items", h.ListAll)
	r.Get("/items/{id}", h.GetItem)
	r.Post("/items", h.CreateItem)
	r.Put("/items/{id}", h.UpdateItem)
	r.Delete("/items/{id}", h.DeleteItem)
	r.Post("/categories", h.CreateCategory)
	r.Put("/categories/{id}", h.UpdateCategory)
	r.Delete("/categories/{id}", h.DeleteCategory)
}

// --- Request / Response types ---

type categoryRequest struct {
	Name         string `json:"name"`
	DisplayOrder int32  `json:"display_order"`
}

type categoryResponse struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	DisplayOrder int32     `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
}

type menuItemRequest struct {
	Name        string      `json:"name"`
	Price       json.Number `json:"price"`
	CategoryID  int64       `json:"category_id"`
	Subcategory string      `json:"subcategory"`
	Icon        string      `json:"icon"`
	IsAvailable *bool       `json:"is_available"`
}

type menuItemResponse struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Price       string    `json:"price"`
	CategoryID  int64     `json:"category_id"`
	Category    string    `json:"category,omitempty"`
	Subcategory string    `json:"subcategory"`
	Icon        string    `json:"icon"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// menuGroupResponse is a category with its available items, in display order.
type menuGroupResponse struct {
	Category string             `json:"category"`
	Items    []menuItemResponse `json:"items"`
}

// --- Handlers ---

// ListGrouped handles GET /menu: available items grouped by category.
func (h *MenuHandler) ListGrouped(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListAvailableMenuItems(r.Context())
	if err != nil {
		log.Printf("ERROR: list menu items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	// Rows arrive sorted by category display order, so grouping preserves it.
	var groups []menuGroupResponse
	for _, item := range items {
		if len(groups) == 0 || groups[len(groups)-1].Category != item.CategoryName {
			groups = append(groups, menuGroupResponse{Category: item.CategoryName})
		}
		g := &groups[len(groups)-1]
		g.Items = append(g.Items, toMenuItemResponse(item))
	}

	writeJSON(w, http.StatusOK, groups)
}

// ListCategories handles GET /menu/categories.
func (h *MenuHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.store.ListCategories(r.Context())
	if err != nil {
		log.Printf("ERROR: list categories: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]categoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = toCategoryResponse(c)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ListAll handles GET /admin/menu/items: every item including unavailable ones.
func (h *MenuHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListAllMenuItems(r.Context())
	if err != nil {
		log.Printf("ERROR: list all menu items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]menuItemResponse, len(items))
	for i, item := range items {
		resp[i] = toMenuItemResponse(item)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetItem handles GET /admin/menu/items/{id}.
func (h *MenuHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	item, err := h.store.GetMenuItemRow(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: get menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(item))
}

// CreateItem handles POST /admin/menu/items.
func (h *MenuHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	price, ok := h.validateItem(w, req)
	if !ok {
		return
	}

	item, err := h.store.CreateMenuItem(r.Context(), database.CreateMenuItemParams{
		Name:        req.Name,
		Price:       price,
		CategoryID:  req.CategoryID,
		Subcategory: req.Subcategory,
		Icon:        req.Icon,
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category does not exist"})
			return
		}
		log.Printf("ERROR: create menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toMenuItemResponse(database.MenuItemRow{MenuItem: item}))
}

// UpdateItem handles PUT /admin/menu/items/{id}.
func (h *MenuHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	var req menuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	price, ok := h.validateItem(w, req)
	if !ok {
		return
	}

	isAvailable := true
	if req.IsAvailable != nil {
		isAvailable = *req.IsAvailable
	}

	item, err := h.store.UpdateMenuItem(r.Context(), database.UpdateMenuItemParams{
		Name:        req.Name,
		Price:       price,
		CategoryID:  req.CategoryID,
		Subcategory: req.Subcategory,
		Icon:        req.Icon,
		IsAvailable: isAvailable,
		ID:          id,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		if isForeignKeyViolation(err) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category does not exist"})
			return
		}
		log.Printf("ERROR: update menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toMenuItemResponse(database.MenuItemRow{MenuItem: item}))
}

// DeleteItem handles DELETE /admin/menu/items/{id}. Items referenced by
// past orders stay in place so historic bills keep their lines; mark them
// unavailable instead.
func (h *MenuHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid menu item ID"})
		return
	}

	referenced, err := h.store.CountOrderItemsByMenuItem(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: count order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if referenced > 0 {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "menu item is referenced by orders, mark it unavailable instead"})
		return
	}

	if _, err := h.store.DeleteMenuItem(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: delete menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "menu item deleted"})
}

// CreateCategory handles POST /admin/menu/categories.
func (h *MenuHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	if _, err := h.store.GetCategoryByName(r.Context(), req.Name); err == nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "category already exists"})
		return
	} else if !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("ERROR: check category name: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	category, err := h.store.CreateCategory(r.Context(), database.CreateCategoryParams{
		Name:         req.Name,
		DisplayOrder: req.DisplayOrder,
	})
	if err != nil {
		log.Printf("ERROR: create category: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toCategoryResponse(category))
}

// UpdateCategory handles PUT /admin/menu/categories/{id}.
func (h *MenuHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category ID"})
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	if existing, err := h.store.GetCategoryByName(r.Context(), req.Name); err == nil && existing.ID != id {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "category already exists"})
		return
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("ERROR: check category name: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	category, err := h.store.UpdateCategory(r.Context(), database.UpdateCategoryParams{
		Name:         req.Name,
		DisplayOrder: req.DisplayOrder,
		ID:           id,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "category not found"})
			return
		}
		log.Printf("ERROR: update category: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toCategoryResponse(category))
}

// DeleteCategory handles DELETE /admin/menu/categories/{id}. A category
// still holding items cannot be removed.
func (h *MenuHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category ID"})
		return
	}

	items, err := h.store.CountMenuItemsByCategory(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: count menu items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if items > 0 {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "category still has menu items"})
		return
	}

	if _, err := h.store.DeleteCategory(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "category not found"})
			return
		}
		log.Printf("ERROR: delete category: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "category deleted"})
}

// --- Helpers ---

// isForeignKeyViolation checks for pgconn error code 23503.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// validateItem checks the shared create/update fields and parses the price.
// It writes the error response itself and reports whether to proceed.
func (h *MenuHandler) validateItem(w http.ResponseWriter, req menuItemRequest) (pgtype.Numeric, bool) {
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return pgtype.Numeric{}, false
	}
	if req.CategoryID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category_id is required"})
		return pgtype.Numeric{}, false
	}

	price, err := decimal.NewFromString(req.Price.String())
	if err != nil || !price.IsPositive() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price must be > 0"})
		return pgtype.Numeric{}, false
	}

	var n pgtype.Numeric
	_ = n.Scan(price.StringFixed(2))
	return n, true
}

func toMenuItemResponse(item database.MenuItemRow) menuItemResponse {
	return menuItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Price:       numericToString(item.Price),
		CategoryID:  item.CategoryID,
		Category:    item.CategoryName,
		Subcategory: item.Subcategory,
		Icon:        item.Icon,
		IsAvailable: item.IsAvailable,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
	}
}

func toCategoryResponse(c database.MenuCategory) categoryResponse {
	return categoryResponse{
		ID:           c.ID,
		Name:         c.Name,
		DisplayOrder: c.DisplayOrder,
		CreatedAt:    c.CreatedAt,
	}
}
