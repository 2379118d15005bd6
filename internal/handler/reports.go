package handler

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/prata-pos/api/internal/database"
	"github.com/prata-pos/api/internal/enum"
)

// ReportStore defines the database methods needed by the admin dashboard.
// Satisfied by *database.Queries; narrow interface for testability.
type ReportStore interface {
	CountOrders(ctx context.Context, arg database.DateRangeParams) (int64, error)
	SumPaidRevenue(ctx context.Context, arg database.DateRangeParams) (pgtype.Numeric, error)
	CountOrdersWithStatusIn(ctx context.Context, arg database.CountOrdersWithStatusInParams) (int64, error)
	TopMenuItems(ctx context.Context, arg database.TopMenuItemsParams) ([]database.TopMenuItemRow, error)
	RevenueByDay(ctx context.Context) ([]database.RevenueByDayRow, error)
	RecentOrders(ctx context.Context, limit int32) ([]database.RecentOrderRow, error)
	CountTables(ctx context.Context) (int64, error)
	CountOccupiedTables(ctx context.Context) (int64, error)
	CountAvailableTables(ctx context.Context) (int64, error)
	CountActiveUsers(ctx context.Context) (int64, error)
}

// ReportHandler handles the admin dashboard endpoints.
type ReportHandler struct {
	store ReportStore
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(store ReportStore) *ReportHandler {
	return &ReportHandler{store: store}
}

// RegisterRoutes registers dashboard endpoints on the given Chi router.
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.Dashboard)
	r.Get("/dashboard/top-items", h.TopItems)
	r.Get("/dashboard/revenue", h.Revenue)
	r.Get("/dashboard/recent-orders", h.RecentOrders)
}

type dashboardResponse struct {
	TodayOrders     int64  `json:"today_orders"`
	TodayRevenue    string `json:"today_revenue"`
	ActiveOrders    int64  `json:"active_orders"`
	TablesTotal     int64  `json:"tables_total"`
	TablesOccupied  int64  `json:"tables_occupied"`
	TablesAvailable int64  `json:"tables_available"`
	ActiveStaff     int64  `json:"active_staff"`
}

// Dashboard handles GET /admin/dashboard.
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	today := database.DateRangeParams{
		StartDate: pgtype.Date{Time: time.Now(), Valid: true},
		EndDate:   pgtype.Date{Time: time.Now(), Valid: true},
	}

	todayOrders, err := h.store.CountOrders(ctx, today)
	if err != nil {
		h.fail(w, "count today orders", err)
		return
	}

	todayRevenue, err := h.store.SumPaidRevenue(ctx, today)
	if err != nil {
		h.fail(w, "sum today revenue", err)
		return
	}

	activeOrders, err := h.store.CountOrdersWithStatusIn(ctx, database.CountOrdersWithStatusInParams{
		Statuses: []string{
			enum.OrderStatusPending, enum.OrderStatusConfirmed,
			enum.OrderStatusPreparing, enum.OrderStatusReady, enum.OrderStatusServed,
		},
	})
	if err != nil {
		h.fail(w, "count active orders", err)
		return
	}

	tablesTotal, err := h.store.CountTables(ctx)
	if err != nil {
		h.fail(w, "count tables", err)
		return
	}
	tablesOccupied, err := h.store.CountOccupiedTables(ctx)
	if err != nil {
		h.fail(w, "count occupied tables", err)
		return
	}
	tablesAvailable, err := h.store.CountAvailableTables(ctx)
	if err != nil {
		h.fail(w, "count available tables", err)
		return
	}

	activeStaff, err := h.store.CountActiveUsers(ctx)
	if err != nil {
		h.fail(w, "count active users", err)
		return
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		TodayOrders:     todayOrders,
		TodayRevenue:    numericToString(todayRevenue),
		ActiveOrders:    activeOrders,
		TablesTotal:     tablesTotal,
		TablesOccupied:  tablesOccupied,
		TablesAvailable: tablesAvailable,
		ActiveStaff:     activeStaff,
	})
}

type topItemResponse struct {
	Name          string `json:"name"`
	TotalQuantity int64  `json:"total_quantity"`
	TotalRevenue  string `json:"total_revenue"`
}

// TopItems handles GET /admin/dashboard/top-items.
func (h *ReportHandler) TopItems(w http.ResponseWriter, r *http.Request) {
	params := database.TopMenuItemsParams{Limit: 5}
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 && v <= 50 {
			params.Limit = int32(v)
		}
	}
	if s := r.URL.Query().Get("start_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid start_date format, use YYYY-MM-DD"})
			return
		}
		params.StartDate = pgtype.Date{Time: t, Valid: true}
	}
	if s := r.URL.Query().Get("end_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid end_date format, use YYYY-MM-DD"})
			return
		}
		params.EndDate = pgtype.Date{Time: t, Valid: true}
	}

	rows, err := h.store.TopMenuItems(r.Context(), params)
	if err != nil {
		h.fail(w, "top menu items", err)
		return
	}

	resp := make([]topItemResponse, len(rows))
	for i, row := range rows {
		resp[i] = topItemResponse{
			Name:          row.Name,
			TotalQuantity: row.TotalQuantity,
			TotalRevenue:  numericToString(row.TotalRevenue),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type revenueDayResponse struct {
	Day     string `json:"day"`
	Revenue string `json:"revenue"`
	Orders  int64  `json:"orders"`
}

// Revenue handles GET /admin/dashboard/revenue: paid revenue per day for
// the last seven days.
func (h *ReportHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.RevenueByDay(r.Context())
	if err != nil {
		h.fail(w, "revenue by day", err)
		return
	}

	resp := make([]revenueDayResponse, len(rows))
	for i, row := range rows {
		resp[i] = revenueDayResponse{
			Day:     row.Day.Time.Format("2006-01-02"),
			Revenue: numericToString(row.Revenue),
			Orders:  row.Orders,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type recentOrderResponse struct {
	ID            int64     `json:"id"`
	OrderNumber   string    `json:"order_number"`
	Status        string    `json:"status"`
	TotalAmount   string    `json:"total_amount"`
	PaymentStatus string    `json:"payment_status"`
	TableNumber   string    `json:"table_number"`
	UserName      string    `json:"user_name"`
	CreatedAt     time.Time `json:"created_at"`
}

// RecentOrders handles GET /admin/dashboard/recent-orders.
func (h *ReportHandler) RecentOrders(w http.ResponseWriter, r *http.Request) {
	limit := int32(10)
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 && v <= 100 {
			limit = int32(v)
		}
	}

	rows, err := h.store.RecentOrders(r.Context(), limit)
	if err != nil {
		h.fail(w, "recent orders", err)
		return
	}

	resp := make([]recentOrderResponse, len(rows))
	for i, row := range rows {
		resp[i] = recentOrderResponse{
			ID:            row.ID,
			OrderNumber:   row.OrderNumber,
			Status:        row.Status,
			TotalAmount:   numericToString(row.TotalAmount),
			PaymentStatus: row.PaymentStatus,
			TableNumber:   row.TableNumber,
			UserName:      row.UserName,
			CreatedAt:     row.CreatedAt.Time,
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ReportHandler) fail(w http.ResponseWriter, op string, err error) {
	log.Printf("ERROR: %s: %v", op, err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}
