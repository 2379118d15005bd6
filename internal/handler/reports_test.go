package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/prata-pos/api/internal/database"
	"github.com/prata-pos/api/internal/enum"
)

type mockReportStore struct {
	countOrdersFn             func(ctx context.Context, arg database.DateRangeParams) (int64, error)
	sumPaidRevenueFn          func(ctx context.Context, arg database.DateRangeParams) (pgtype.Numeric, error)
	countOrdersWithStatusInFn func(ctx context.Context, arg database.CountOrdersWithStatusInParams) (int64, error)
	topMenuItemsFn            func(ctx context.Context, arg database.TopMenuItemsParams) ([]database.TopMenuItemRow, error)
	revenueByDayFn            func(ctx context.Context) ([]database.RevenueByDayRow, error)
	recentOrdersFn            func(ctx context.Context, limit int32) ([]database.RecentOrderRow, error)
	countTablesFn             func(ctx context.Context) (int64, error)
	countOccupiedTablesFn     func(ctx context.Context) (int64, error)
	countAvailableTablesFn    func(ctx context.Context) (int64, error)
	countActiveUsersFn        func(ctx context.Context) (int64, error)
}

func (m *mockReportStore) CountOrders(ctx context.Context, arg database.DateRangeParams) (int64, error) {
	return m.countOrdersFn(ctx, arg)
}

func (m *mockReportStore) SumPaidRevenue(ctx context.Context, arg database.DateRangeParams) (pgtype.Numeric, error) {
	return m.sumPaidRevenueFn(ctx, arg)
}

func (m *mockReportStore) CountOrdersWithStatusIn(ctx context.Context, arg database.CountOrdersWithStatusInParams) (int64, error) {
	return m.countOrdersWithStatusInFn(ctx, arg)
}

func (m *mockReportStore) TopMenuItems(ctx context.Context, arg database.TopMenuItemsParams) ([]database.TopMenuItemRow, error) {
	return m.topMenuItemsFn(ctx, arg)
}

func (m *mockReportStore) RevenueByDay(ctx context.Context) ([]database.RevenueByDayRow, error) {
	return m.revenueByDayFn(ctx)
}

func (m *mockReportStore) RecentOrders(ctx context.Context, limit int32) ([]database.RecentOrderRow, error) {
	return m.recentOrdersFn(ctx, limit)
}

func (m *mockReportStore) CountTables(ctx context.Context) (int64, error) {
	return m.countTablesFn(ctx)
}

func (m *mockReportStore) CountOccupiedTables(ctx context.Context) (int64, error) {
	return m.countOccupiedTablesFn(ctx)
}

func (m *mockReportStore) CountAvailableTables(ctx context.Context) (int64, error) {
	return m.countAvailableTablesFn(ctx)
}

func (m *mockReportStore) CountActiveUsers(ctx context.Context) (int64, error) {
	return m.countActiveUsersFn(ctx)
}

func newReportRouter(h *ReportHandler) chi.Router {
	r := chi.NewRouter()
	r.Route("/admin", func(r chi.Router) {
		h.RegisterRoutes(r)
	})
	return r
}

func TestReportHandler_Dashboard(t *testing.T) {
	var gotStatuses []string
	store := &mockReportStore{
		countOrdersFn: func(ctx context.Context, arg database.DateRangeParams) (int64, error) {
			return 42, nil
		},
		sumPaidRevenueFn: func(ctx context.Context, arg database.DateRangeParams) (pgtype.Numeric, error) {
			return makeNumeric(98765), nil
		},
		countOrdersWithStatusInFn: func(ctx context.Context, arg database.CountOrdersWithStatusInParams) (int64, error) {
			gotStatuses = arg.Statuses
			return 6, nil
		},
		countTablesFn:          func(ctx context.Context) (int64, error) { return 10, nil },
		countOccupiedTablesFn:  func(ctx context.Context) (int64, error) { return 4, nil },
		countAvailableTablesFn: func(ctx context.Context) (int64, error) { return 6, nil },
		countActiveUsersFn:     func(ctx context.Context) (int64, error) { return 5, nil },
	}
	h := NewReportHandler(store)
	router := newReportRouter(h)

	rec := doRequest(router, http.MethodGet, "/admin/dashboard", "", waiterClaims())

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp dashboardResponse
	decodeBody(t, rec, &resp)
	if resp.TodayOrders != 42 || resp.TodayRevenue != "987.65" {
		t.Errorf("today = %d / %s", resp.TodayOrders, resp.TodayRevenue)
	}
	if resp.ActiveOrders != 6 || resp.TablesOccupied != 4 || resp.ActiveStaff != 5 {
		t.Errorf("resp = %+v", resp)
	}

	// Active means every status before Completed/Cancelled.
	if len(gotStatuses) != 5 {
		t.Fatalf("active statuses = %v", gotStatuses)
	}
	for _, s := range gotStatuses {
		if enum.IsTerminalOrderStatus(s) {
			t.Errorf("terminal status %q counted as active", s)
		}
	}
}

func TestReportHandler_TopItems(t *testing.T) {
	var gotParams database.TopMenuItemsParams
	store := &mockReportStore{
		topMenuItemsFn: func(ctx context.Context, arg database.TopMenuItemsParams) ([]database.TopMenuItemRow, error) {
			gotParams = arg
			return []database.TopMenuItemRow{
				{Name: "Prata Egg", TotalQuantity: 120, TotalRevenue: makeNumeric(24000)},
				{Name: "Kopi", TotalQuantity: 95, TotalRevenue: makeNumeric(14250)},
			}, nil
		},
	}
	h := NewReportHandler(store)
	router := newReportRouter(h)

	rec := doRequest(router, http.MethodGet, "/admin/dashboard/top-items?limit=2&start_date=2026-08-01&end_date=2026-08-28", "", waiterClaims())

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	if gotParams.Limit != 2 {
		t.Errorf("limit = %d, want 2", gotParams.Limit)
	}
	if !gotParams.StartDate.Valid || !gotParams.EndDate.Valid {
		t.Errorf("date range = %+v / %+v", gotParams.StartDate, gotParams.EndDate)
	}

	var resp []topItemResponse
	decodeBody(t, rec, &resp)
	if len(resp) != 2 || resp[0].Name != "Prata Egg" || resp[0].TotalRevenue != "240.00" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestReportHandler_TopItems_LimitBounds(t *testing.T) {
	store := &mockReportStore{
		topMenuItemsFn: func(ctx context.Context, arg database.TopMenuItemsParams) ([]database.TopMenuItemRow, error) {
			if arg.Limit != 5 {
				t.Errorf("limit = %d, want default 5", arg.Limit)
			}
			return nil, nil
		},
	}
	h := NewReportHandler(store)
	router := newReportRouter(h)

	// Out-of-range limits fall back to the default.
	for _, target := range []string{"/admin/dashboard/top-items?limit=0", "/admin/dashboard/top-items?limit=500", "/admin/dashboard/top-items"} {
		rec := doRequest(router, http.MethodGet, target, "", waiterClaims())
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d", target, rec.Code)
		}
	}
}

func TestReportHandler_TopItems_BadDate(t *testing.T) {
	h := NewReportHandler(&mockReportStore{})
	router := newReportRouter(h)

	rec := doRequest(router, http.MethodGet, "/admin/dashboard/top-items?start_date=bad", "", waiterClaims())
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestReportHandler_Revenue(t *testing.T) {
	day := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	store := &mockReportStore{
		revenueByDayFn: func(ctx context.Context) ([]database.RevenueByDayRow, error) {
			return []database.RevenueByDayRow{
				{Day: pgtype.Date{Time: day, Valid: true}, Revenue: makeNumeric(55000), Orders: 31},
			}, nil
		},
	}
	h := NewReportHandler(store)
	router := newReportRouter(h)

	rec := doRequest(router, http.MethodGet, "/admin/dashboard/revenue", "", waiterClaims())

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp []revenueDayResponse
	decodeBody(t, rec, &resp)
	if len(resp) != 1 || resp[0].Day != "2026-08-27" || resp[0].Revenue != "550.00" || resp[0].Orders != 31 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestReportHandler_RecentOrders(t *testing.T) {
	store := &mockReportStore{
		recentOrdersFn: func(ctx context.Context, limit int32) ([]database.RecentOrderRow, error) {
			if limit != 3 {
				t.Errorf("limit = %d, want 3", limit)
			}
			return []database.RecentOrderRow{
				{
					ID:            100,
					OrderNumber:   "ORD123456789ABC",
					Status:        enum.OrderStatusServed,
					TotalAmount:   makeNumeric(440),
					PaymentStatus: enum.PaymentStatusPending,
					CreatedAt:     pgtype.Timestamptz{Time: time.Now(), Valid: true},
					TableNumber:   "5",
					UserName:      "Test Waiter",
				},
			}, nil
		},
	}
	h := NewReportHandler(store)
	router := newReportRouter(h)

	rec := doRequest(router, http.MethodGet, "/admin/dashboard/recent-orders?limit=3", "", waiterClaims())

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp []recentOrderResponse
	decodeBody(t, rec, &resp)
	if len(resp) != 1 || resp[0].TableNumber != "5" || resp[0].TotalAmount != "4.40" {
		t.Errorf("resp = %+v", resp)
	}
}
