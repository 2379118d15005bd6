package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// DateRangeParams bounds a report to [StartDate, EndDate] on the order's
// creation date. Invalid (NULL) bounds mean "all time".
type DateRangeParams struct {
	StartDate pgtype.Date
	EndDate   pgtype.Date
}

const countOrders = `
SELECT count(*) FROM orders
WHERE ($1::date IS NULL OR created_at::date >= $1)
  AND ($2::date IS NULL OR created_at::date <= $2)
`

func (q *Queries) CountOrders(ctx context.Context, arg DateRangeParams) (int64, error) {
	row := q.db.QueryRow(ctx, countOrders, arg.StartDate, arg.EndDate)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const sumPaidRevenue = `
SELECT COALESCE(sum(total_amount), 0) FROM orders
WHERE payment_status = 'Paid'
  AND ($1::date IS NULL OR created_at::date >= $1)
  AND ($2::date IS NULL OR created_at::date <= $2)
`

func (q *Queries) SumPaidRevenue(ctx context.Context, arg DateRangeParams) (pgtype.Numeric, error) {
	row := q.db.QueryRow(ctx, sumPaidRevenue, arg.StartDate, arg.EndDate)
	var total pgtype.Numeric
	err := row.Scan(&total)
	return total, err
}

type OrderStatusCountRow struct {
	Status string
	Count  int64
}

const countOrdersByStatus = `
SELECT status, count(*) FROM orders
WHERE ($1::date IS NULL OR created_at::date >= $1)
  AND ($2::date IS NULL OR created_at::date <= $2)
GROUP BY status
ORDER BY status
`

func (q *Queries) CountOrdersByStatus(ctx context.Context, arg DateRangeParams) ([]OrderStatusCountRow, error) {
	rows, err := q.db.Query(ctx, countOrdersByStatus, arg.StartDate, arg.EndDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderStatusCountRow
	for rows.Next() {
		var r OrderStatusCountRow
		if err := rows.Scan(&r.Status, &r.Count); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const countOrdersWithStatusIn = `
SELECT count(*) FROM orders
WHERE status = ANY($1::text[])
  AND ($2::date IS NULL OR created_at::date >= $2)
  AND ($3::date IS NULL OR created_at::date <= $3)
`

type CountOrdersWithStatusInParams struct {
	Statuses  []string
	StartDate pgtype.Date
	EndDate   pgtype.Date
}

func (q *Queries) CountOrdersWithStatusIn(ctx context.Context, arg CountOrdersWithStatusInParams) (int64, error) {
	row := q.db.QueryRow(ctx, countOrdersWithStatusIn, arg.Statuses, arg.StartDate, arg.EndDate)
	var count int64
	err := row.Scan(&count)
	return count, err
}

type TopMenuItemRow struct {
	Name          string
	TotalQuantity int64
	TotalRevenue  pgtype.Numeric
}

const topMenuItems = `
SELECT mi.name, sum(oi.quantity), sum(oi.total_price)
FROM order_items oi
JOIN menu_items mi ON oi.menu_item_id = mi.id
JOIN orders o ON oi.order_id = o.id
WHERE o.payment_status = 'Paid'
  AND ($1::date IS NULL OR o.created_at::date >= $1)
  AND ($2::date IS NULL OR o.created_at::date <= $2)
GROUP BY mi.id, mi.name
ORDER BY sum(oi.quantity) DESC
LIMIT $3
`

type TopMenuItemsParams struct {
	StartDate pgtype.Date
	EndDate   pgtype.Date
	Limit     int32
}

func (q *Queries) TopMenuItems(ctx context.Context, arg TopMenuItemsParams) ([]TopMenuItemRow, error) {
	rows, err := q.db.Query(ctx, topMenuItems, arg.StartDate, arg.EndDate, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TopMenuItemRow
	for rows.Next() {
		var r TopMenuItemRow
		if err := rows.Scan(&r.Name, &r.TotalQuantity, &r.TotalRevenue); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

type RevenueByDayRow struct {
	Day     pgtype.Date
	Revenue pgtype.Numeric
	Orders  int64
}

const revenueByDay = `
SELECT created_at::date AS day, sum(total_amount), count(*)
FROM orders
WHERE payment_status = 'Paid'
  AND created_at >= now() - interval '7 days'
GROUP BY day
ORDER BY day DESC
`

func (q *Queries) RevenueByDay(ctx context.Context) ([]RevenueByDayRow, error) {
	rows, err := q.db.Query(ctx, revenueByDay)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RevenueByDayRow
	for rows.Next() {
		var r RevenueByDayRow
		if err := rows.Scan(&r.Day, &r.Revenue, &r.Orders); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

type RecentOrderRow struct {
	ID            int64
	OrderNumber   string
	Status        string
	TotalAmount   pgtype.Numeric
	PaymentStatus string
	CreatedAt     pgtype.Timestamptz
	TableNumber   string
	UserName      string
}

const recentOrders = `
SELECT o.id, o.order_number, o.status, o.total_amount, o.payment_status,
    o.created_at, t.number, u.name
FROM orders o
JOIN tables t ON o.table_id = t.id
JOIN users u ON o.user_id = u.id
ORDER BY o.created_at DESC
LIMIT $1
`

func (q *Queries) RecentOrders(ctx context.Context, limit int32) ([]RecentOrderRow, error) {
	rows, err := q.db.Query(ctx, recentOrders, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RecentOrderRow
	for rows.Next() {
		var r RecentOrderRow
		if err := rows.Scan(&r.ID, &r.OrderNumber, &r.Status, &r.TotalAmount, &r.PaymentStatus,
			&r.CreatedAt, &r.TableNumber, &r.UserName); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
