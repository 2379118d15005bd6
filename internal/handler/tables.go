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
	"github.com/prata-pos/api/internal/database"
	"github.com/prata-pos/api/internal/enum"
)

// TableStore defines the database methods needed by table handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type TableStore interface {
	ListTablesWithActiveOrder(ctx context.Context) ([]database.TableWithOrderRow, error)
	GetTableWithActiveOrder(ctx context.Context, id int64) (database.TableWithOrderRow, error)
	GetTableByNumber(ctx context.Context, number string) (database.Table, error)
	CreateTable(ctx context.Context, arg database.CreateTableParams) (database.Table, error)
	UpdateTable(ctx context.Context, arg database.UpdateTableParams) (database.Table, error)
	DeleteTable(ctx context.Context, id int64) (int64, error)
	CountActiveOrdersByTable(ctx context.Context, tableID int64) (int64, error)
	CountTablesByStatus(ctx context.Context) ([]database.TableStatusCountRow, error)
	CountTablesByZone(ctx context.Context) ([]database.TableZoneCountRow, error)
	CountTables(ctx context.Context) (int64, error)
}

// TableHandler handles floor plan endpoints.
type TableHandler struct {
	store    TableStore
	notifier Notifier
}

// NewTableHandler creates a new TableHandler.
func NewTableHandler(store TableStore, notifier Notifier) *TableHandler {
	return &TableHandler{store: store, notifier: notifier}
}

// RegisterRoutes registers table endpoints on the given Chi router.
func (h *TableHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/stats/summary", h.StatsSummary)
	r.Get("/{id}", h.Get)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

type tableRequest struct {
	Number string `json:"number"`
	Zone   string `json:"zone"`
	Seats  int32  `json:"seats"`
	Status string `json:"status"`
}

type tableResponse struct {
	ID           int64               `json:"id"`
	Number       string              `json:"number"`
	Zone         string              `json:"zone"`
	Seats        int32               `json:"seats"`
	Status       string              `json:"status"`
	CurrentOrder *tableOrderResponse `json:"current_order"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// tableOrderResponse is the active order summary shown on the floor plan.
type tableOrderResponse struct {
	ID          int64  `json:"id"`
	OrderNumber string `json:"order_number"`
	TotalAmount string `json:"total_amount"`
}

// List handles GET /tables.
func (h *TableHandler) List(w http.ResponseWriter, r *http.Request) {
	tables, err := h.store.ListTablesWithActiveOrder(r.Context())
	if err != nil {
		log.Printf("ERROR: list tables: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]tableResponse, len(tables))
	for i, t := range tables {
		resp[i] = toTableResponse(t)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /tables/{id}.
func (h *TableHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table ID"})
		return
	}

	table, err := h.store.GetTableWithActiveOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
			return
		}
		log.Printf("ERROR: get table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toTableResponse(table))
}

// Create handles POST /tables.
func (h *TableHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req tableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Number == "" || req.Zone == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "number and zone are required"})
		return
	}
	if req.Seats <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "seats must be > 0"})
		return
	}

	if _, err := h.store.GetTableByNumber(r.Context(), req.Number); err == nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "table number already exists"})
		return
	} else if !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("ERROR: check table number: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	table, err := h.store.CreateTable(r.Context(), database.CreateTableParams{
		Number: req.Number,
		Zone:   req.Zone,
		Seats:  req.Seats,
	})
	if err != nil {
		log.Printf("ERROR: create table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toTableResponse(database.TableWithOrderRow{Table: table}))
}

// Update handles PUT /tables/{id}.
func (h *TableHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table ID"})
		return
	}

	var req tableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Number == "" || req.Zone == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "number and zone are required"})
		return
	}
	if req.Seats <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "seats must be > 0"})
		return
	}
	if !isValidTableStatus(req.Status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	if existing, err := h.store.GetTableByNumber(r.Context(), req.Number); err == nil && existing.ID != id {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "table number already exists"})
		return
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("ERROR: check table number: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	table, err := h.store.UpdateTable(r.Context(), database.UpdateTableParams{
		Number: req.Number,
		Zone:   req.Zone,
		Seats:  req.Seats,
		Status: req.Status,
		ID:     id,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
			return
		}
		log.Printf("ERROR: update table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.notifier.Notify("table.updated", toTableResponse(database.TableWithOrderRow{Table: table}))
	writeJSON(w, http.StatusOK, toTableResponse(database.TableWithOrderRow{Table: table}))
}

// Delete handles DELETE /tables/{id}. A table carrying an active order
// cannot be removed.
func (h *TableHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table ID"})
		return
	}

	active, err := h.store.CountActiveOrdersByTable(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: count active orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if active > 0 {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "table has an active order"})
		return
	}

	if _, err := h.store.DeleteTable(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "table not found"})
			return
		}
		log.Printf("ERROR: delete table: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "table deleted"})
}

type tableStatsResponse struct {
	Total    int64            `json:"total"`
	ByStatus map[string]int64 `json:"by_status"`
	ByZone   map[string]int64 `json:"by_zone"`
}

// StatsSummary handles GET /tables/stats/summary.
func (h *TableHandler) StatsSummary(w http.ResponseWriter, r *http.Request) {
	total, err := h.store.CountTables(r.Context())
	if err != nil {
		log.Printf("ERROR: count tables: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	byStatus, err := h.store.CountTablesByStatus(r.Context())
	if err != nil {
		log.Printf("ERROR: count tables by status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	byZone, err := h.store.CountTablesByZone(r.Context())
	if err != nil {
		log.Printf("ERROR: count tables by zone: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := tableStatsResponse{
		Total:    total,
		ByStatus: make(map[string]int64, len(byStatus)),
		ByZone:   make(map[string]int64, len(byZone)),
	}
	for _, row := range byStatus {
		resp.ByStatus[row.Status] = row.Count
	}
	for _, row := range byZone {
		resp.ByZone[row.Zone] = row.Count
	}

	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

func toTableResponse(t database.TableWithOrderRow) tableResponse {
	resp := tableResponse{
		ID:        t.ID,
		Number:    t.Number,
		Zone:      t.Zone,
		Seats:     t.Seats,
		Status:    t.Status,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
	if t.CurrentOrderID.Valid {
		resp.CurrentOrder = &tableOrderResponse{
			ID:          t.CurrentOrderID.Int64,
			OrderNumber: t.CurrentOrderNumber.String,
			TotalAmount: numericToString(t.CurrentOrderTotal),
		}
	}
	return resp
}

func isValidTableStatus(s string) bool {
	switch s {
	case enum.TableStatusAvailable, enum.TableStatusOrdering,
		enum.TableStatusFull, enum.TableStatusBooked:
		return true
	}
	return false
}
