package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/prata-pos/api/internal/database"
	"github.com/prata-pos/api/internal/middleware"
	"github.com/prata-pos/api/internal/service"
	"github.com/shopspring/decimal"
)

// Notifier pushes events to connected dashboards. Satisfied by *ws.Hub.
type Notifier interface {
	Notify(eventType string, payload any)
}

// OrderServicer defines the service methods needed by order handlers.
// Satisfied by *service.OrderService; narrow interface for testability.
type OrderServicer interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.CreateOrderResult, error)
	UpdateStatus(ctx context.Context, orderID int64, newStatus string) (*service.StatusUpdateResult, error)
}

// OrderStore defines the database methods needed by order read handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	GetOrderRow(ctx context.Context, id int64) (database.OrderRow, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.OrderRow, error)
	ListOrderItemsByOrder(ctx context.Context, orderID int64) ([]database.OrderItemRow, error)
	ListTransactionsByOrder(ctx context.Context, orderID int64) ([]database.Transaction, error)
	CountOrders(ctx context.Context, arg database.DateRangeParams) (int64, error)
	CountOrdersByStatus(ctx context.Context, arg database.DateRangeParams) ([]database.OrderStatusCountRow, error)
	SumPaidRevenue(ctx context.Context, arg database.DateRangeParams) (pgtype.Numeric, error)
	TopMenuItems(ctx context.Context, arg database.TopMenuItemsParams) ([]database.TopMenuItemRow, error)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc      OrderServicer
	store    OrderStore
	notifier Notifier
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderServicer, store OrderStore, notifier Notifier) *OrderHandler {
	return &OrderHandler{svc: svc, store: store, notifier: notifier}
}

// RegisterRoutes registers order endpoints on the given Chi router.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/stats/summary", h.StatsSummary)
	r.Get("/{id}", h.Get)
	r.Put("/{id}/status", h.UpdateStatus)
}

// --- Request / Response types ---

type createOrderRequest struct {
	TableID int64                    `json:"table_id"`
	Notes   string                   `json:"notes"`
	Items   []createOrderItemRequest `json:"items"`
}

type createOrderItemRequest struct {
	MenuItemID int64  `json:"menu_item_id"`
	Quantity   int32  `json:"quantity"`
	Modifiers  string `json:"modifiers"`
	Notes      string `json:"notes"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type orderResponse struct {
	ID            int64               `json:"id"`
	OrderNumber   string              `json:"order_number"`
	TableID       int64               `json:"table_id"`
	TableNumber   string              `json:"table_number"`
	TableZone     string              `json:"table_zone"`
	UserID        int64               `json:"user_id"`
	UserName      string              `json:"user_name"`
	Status        string              `json:"status"`
	Subtotal      string              `json:"subtotal"`
	GstAmount     string              `json:"gst_amount"`
	TotalAmount   string              `json:"total_amount"`
	PaymentStatus string              `json:"payment_status"`
	PaymentMethod *string             `json:"payment_method"`
	Notes         *string             `json:"notes"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	Items         []orderItemResponse `json:"items,omitempty"`
}

type orderItemResponse struct {
	ID           int64   `json:"id"`
	MenuItemID   int64   `json:"menu_item_id"`
	MenuItemName string  `json:"menu_item_name"`
	Category     string  `json:"category"`
	Icon         string  `json:"icon"`
	Quantity     int32   `json:"quantity"`
	UnitPrice    string  `json:"unit_price"`
	TotalPrice   string  `json:"total_price"`
	Modifiers    *string `json:"modifiers"`
	Notes        *string `json:"notes"`
}

type transactionResponse struct {
	ID            int64     `json:"id"`
	OrderID       int64     `json:"order_id"`
	Amount        string    `json:"amount"`
	PaymentMethod string    `json:"payment_method"`
	TransactionID *string   `json:"transaction_id"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// orderDetailResponse extends orderResponse with transactions for the
// GET detail endpoint.
type orderDetailResponse struct {
	orderResponse
	Transactions []transactionResponse `json:"transactions"`
}

// statusUpdateResponse carries the order after a transition and the table
// status the transition implied.
type statusUpdateResponse struct {
	ID            int64  `json:"id"`
	OrderNumber   string `json:"order_number"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	TableID       int64  `json:"table_id"`
	TableStatus   string `json:"table_status"`
}

// --- Handlers ---

// Create handles POST /orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.TableID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "table_id is required"})
		return
	}
	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "items are required"})
		return
	}
	for i, item := range req.Items {
		if item.MenuItemID <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": formatItemError(i, "menu_item_id is required"),
			})
			return
		}
		if item.Quantity <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": formatItemError(i, "quantity must be > 0"),
			})
			return
		}
	}

	svcItems := make([]service.CreateOrderItemRequest, len(req.Items))
	for i, item := range req.Items {
		svcItems[i] = service.CreateOrderItemRequest{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
			Modifiers:  item.Modifiers,
			Notes:      item.Notes,
		}
	}

	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		TableID: req.TableID,
		UserID:  claims.UserID,
		Notes:   req.Notes,
		Items:   svcItems,
	})
	if err != nil {
		writeServiceError(w, "create order", err)
		return
	}

	resp := toOrderResponse(result.Order)
	resp.Items = make([]orderItemResponse, len(result.Items))
	for i, item := range result.Items {
		resp.Items[i] = toOrderItemResponse(item)
	}

	h.notifier.Notify("order.created", resp)
	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /orders with optional status, table_id and date filters.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	var params database.ListOrdersParams

	if s := r.URL.Query().Get("status"); s != "" {
		params.Status = pgtype.Text{String: s, Valid: true}
	}
	if s := r.URL.Query().Get("table_id"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table_id"})
			return
		}
		params.TableID = pgtype.Int8{Int64: id, Valid: true}
	}
	if s := r.URL.Query().Get("date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date format, use YYYY-MM-DD"})
			return
		}
		params.Day = pgtype.Date{Time: t, Valid: true}
	}

	orders, err := h.store.ListOrders(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(orders))
	for i, o := range orders {
		resp[i] = toOrderResponse(o)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /orders/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	order, err := h.store.GetOrderRow(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	items, err := h.store.ListOrderItemsByOrder(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: list order items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	txns, err := h.store.ListTransactionsByOrder(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: list transactions: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := toOrderResponse(order)
	resp.Items = make([]orderItemResponse, len(items))
	for i, item := range items {
		resp.Items[i] = toOrderItemResponse(item)
	}

	txnResps := make([]transactionResponse, len(txns))
	for i, t := range txns {
		txnResps[i] = toTransactionResponse(t)
	}

	writeJSON(w, http.StatusOK, orderDetailResponse{
		orderResponse: resp,
		Transactions:  txnResps,
	})
}

// UpdateStatus handles PUT /orders/{id}/status.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.Status == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status is required"})
		return
	}

	result, err := h.svc.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeServiceError(w, "update order status", err)
		return
	}

	resp := statusUpdateResponse{
		ID:            result.Order.ID,
		OrderNumber:   result.Order.OrderNumber,
		Status:        result.Order.Status,
		PaymentStatus: result.Order.PaymentStatus,
		TableID:       result.Table.ID,
		TableStatus:   result.Table.Status,
	}

	h.notifier.Notify("order.status_updated", resp)
	writeJSON(w, http.StatusOK, resp)
}

type orderStatsResponse struct {
	StartDate string            `json:"start_date"`
	EndDate   string            `json:"end_date"`
	Total     int64             `json:"total"`
	ByStatus  map[string]int64  `json:"by_status"`
	Revenue   string            `json:"revenue"`
	TopItems  []topItemResponse `json:"top_items"`
}

// StatsSummary handles GET /orders/stats/summary. Accepts either a single
// date or a start_date/end_date range; defaults to today.
func (h *OrderHandler) StatsSummary(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	end := start
	if s := r.URL.Query().Get("date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid date format, use YYYY-MM-DD"})
			return
		}
		start, end = t, t
	}
	if s := r.URL.Query().Get("start_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid start_date format, use YYYY-MM-DD"})
			return
		}
		start = t
	}
	if s := r.URL.Query().Get("end_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid end_date format, use YYYY-MM-DD"})
			return
		}
		end = t
	}
	rng := database.DateRangeParams{
		StartDate: pgtype.Date{Time: start, Valid: true},
		EndDate:   pgtype.Date{Time: end, Valid: true},
	}

	total, err := h.store.CountOrders(r.Context(), rng)
	if err != nil {
		log.Printf("ERROR: count orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	byStatus, err := h.store.CountOrdersByStatus(r.Context(), rng)
	if err != nil {
		log.Printf("ERROR: count orders by status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	revenue, err := h.store.SumPaidRevenue(r.Context(), rng)
	if err != nil {
		log.Printf("ERROR: sum revenue: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	topRows, err := h.store.TopMenuItems(r.Context(), database.TopMenuItemsParams{
		StartDate: rng.StartDate,
		EndDate:   rng.EndDate,
		Limit:     5,
	})
	if err != nil {
		log.Printf("ERROR: top menu items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := orderStatsResponse{
		StartDate: start.Format("2006-01-02"),
		EndDate:   end.Format("2006-01-02"),
		Total:     total,
		ByStatus:  make(map[string]int64, len(byStatus)),
		Revenue:   numericToString(revenue),
		TopItems:  make([]topItemResponse, len(topRows)),
	}
	for _, row := range byStatus {
		resp.ByStatus[row.Status] = row.Count
	}
	for i, row := range topRows {
		resp.TopItems[i] = topItemResponse{
			Name:          row.Name,
			TotalQuantity: row.TotalQuantity,
			TotalRevenue:  numericToString(row.TotalRevenue),
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

func formatItemError(idx int, msg string) string {
	return "items[" + strconv.Itoa(idx) + "]: " + msg
}

// writeServiceError maps known order service errors to HTTP status codes
// and logs anything unexpected as a 500.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyItems),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrItemUnavailable),
		errors.Is(err, service.ErrTableFull),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrMissingMethod):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrTableNotFound),
		errors.Is(err, service.ErrMenuItemNotFound),
		errors.Is(err, service.ErrOrderNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrAlreadyPaid):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func toOrderResponse(o database.OrderRow) orderResponse {
	resp := orderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		TableID:       o.TableID,
		TableNumber:   o.TableNumber,
		TableZone:     o.TableZone,
		UserID:        o.UserID,
		UserName:      o.UserName,
		Status:        o.Status,
		Subtotal:      numericToString(o.Subtotal),
		GstAmount:     numericToString(o.GstAmount),
		TotalAmount:   numericToString(o.TotalAmount),
		PaymentStatus: o.PaymentStatus,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if o.PaymentMethod.Valid {
		resp.PaymentMethod = &o.PaymentMethod.String
	}
	if o.Notes.Valid {
		resp.Notes = &o.Notes.String
	}
	return resp
}

func toOrderItemResponse(item database.OrderItemRow) orderItemResponse {
	resp := orderItemResponse{
		ID:           item.ID,
		MenuItemID:   item.MenuItemID,
		MenuItemName: item.MenuItemName,
		Category:     item.MenuItemCategory,
		Icon:         item.MenuItemIcon,
		Quantity:     item.Quantity,
		UnitPrice:    numericToString(item.UnitPrice),
		TotalPrice:   numericToString(item.TotalPrice),
	}
	if item.Modifiers.Valid {
		resp.Modifiers = &item.Modifiers.String
	}
	if item.Notes.Valid {
		resp.Notes = &item.Notes.String
	}
	return resp
}

func toTransactionResponse(t database.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:            t.ID,
		OrderID:       t.OrderID,
		Amount:        numericToString(t.Amount),
		PaymentMethod: t.PaymentMethod,
		Status:        t.Status,
		CreatedAt:     t.CreatedAt,
	}
	if t.TransactionID.Valid {
		resp.TransactionID = &t.TransactionID.String
	}
	return resp
}

func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}
