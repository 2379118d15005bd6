package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const createOrder = `
INSERT INTO orders (order_number, table_id, user_id, subtotal, gst_amount, total_amount, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, order_number, table_id, user_id, status, subtotal, gst_amount,
    total_amount, payment_status, payment_method, notes, created_at, updated_at
`

type CreateOrderParams struct {
	OrderNumber string
	TableID     int64
	UserID      int64
	Subtotal    pgtype.Numeric
	GstAmount   pgtype.Numeric
	TotalAmount pgtype.Numeric
	Notes       pgtype.Text
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	row := q.db.QueryRow(ctx, createOrder,
		arg.OrderNumber, arg.TableID, arg.UserID, arg.Subtotal, arg.GstAmount, arg.TotalAmount, arg.Notes)
	return scanOrder(row)
}

const createOrderItem = `
INSERT INTO order_items (order_id, menu_item_id, quantity, unit_price, total_price, modifiers, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, order_id, menu_item_id, quantity, unit_price, total_price, modifiers, notes, created_at
`

type CreateOrderItemParams struct {
	OrderID    int64
	MenuItemID int64
	Quantity   int32
	UnitPrice  pgtype.Numeric
	TotalPrice pgtype.Numeric
	Modifiers  pgtype.Text
	Notes      pgtype.Text
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID, arg.MenuItemID, arg.Quantity, arg.UnitPrice, arg.TotalPrice, arg.Modifiers, arg.Notes)
	var oi OrderItem
	err := row.Scan(&oi.ID, &oi.OrderID, &oi.MenuItemID, &oi.Quantity, &oi.UnitPrice, &oi.TotalPrice, &oi.Modifiers, &oi.Notes, &oi.CreatedAt)
	return oi, err
}

const getOrderForUpdate = `
SELECT id, order_number, table_id, user_id, status, subtotal, gst_amount,
    total_amount, payment_status, payment_method, notes, created_at, updated_at
FROM orders
WHERE id = $1
FOR UPDATE
`

// GetOrderForUpdate locks the order row for the rest of the transaction,
// serializing concurrent status updates and payments on the same order.
func (q *Queries) GetOrderForUpdate(ctx context.Context, id int64) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderForUpdate, id))
}

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.TableID, &o.UserID, &o.Status,
		&o.Subtotal, &o.GstAmount, &o.TotalAmount, &o.PaymentStatus,
		&o.PaymentMethod, &o.Notes, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// OrderRow is an order joined with table and user display fields.
type OrderRow struct {
	Order
	TableNumber    string
	TableZone      string
	TableSeats     int32
	UserName       string
	UserEmployeeID string
}

const orderRowColumns = `
    o.id, o.order_number, o.table_id, o.user_id, o.status, o.subtotal,
    o.gst_amount, o.total_amount, o.payment_status, o.payment_method,
    o.notes, o.created_at, o.updated_at,
    t.number, t.zone, t.seats,
    u.name, u.employee_id
`

const getOrderRow = `
SELECT` + orderRowColumns + `
FROM orders o
JOIN tables t ON o.table_id = t.id
JOIN users u ON o.user_id = u.id
WHERE o.id = $1
`

func (q *Queries) GetOrderRow(ctx context.Context, id int64) (OrderRow, error) {
	row := q.db.QueryRow(ctx, getOrderRow, id)
	var r OrderRow
	err := row.Scan(&r.ID, &r.OrderNumber, &r.TableID, &r.UserID, &r.Status,
		&r.Subtotal, &r.GstAmount, &r.TotalAmount, &r.PaymentStatus,
		&r.PaymentMethod, &r.Notes, &r.CreatedAt, &r.UpdatedAt,
		&r.TableNumber, &r.TableZone, &r.TableSeats,
		&r.UserName, &r.UserEmployeeID)
	return r, err
}

const listOrders = `
SELECT` + orderRowColumns + `
FROM orders o
JOIN tables t ON o.table_id = t.id
JOIN users u ON o.user_id = u.id
WHERE ($1::text IS NULL OR o.status = $1)
  AND ($2::bigint IS NULL OR o.table_id = $2)
  AND ($3::date IS NULL OR o.created_at::date = $3)
ORDER BY o.created_at DESC
`

type ListOrdersParams struct {
	Status  pgtype.Text
	TableID pgtype.Int8
	Day     pgtype.Date
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]OrderRow, error) {
	rows, err := q.db.Query(ctx, listOrders, arg.Status, arg.TableID, arg.Day)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderRow
	for rows.Next() {
		var r OrderRow
		if err := rows.Scan(&r.ID, &r.OrderNumber, &r.TableID, &r.UserID, &r.Status,
			&r.Subtotal, &r.GstAmount, &r.TotalAmount, &r.PaymentStatus,
			&r.PaymentMethod, &r.Notes, &r.CreatedAt, &r.UpdatedAt,
			&r.TableNumber, &r.TableZone, &r.TableSeats,
			&r.UserName, &r.UserEmployeeID); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

// OrderItemRow is an order item joined with menu item display fields.
type OrderItemRow struct {
	OrderItem
	MenuItemName     string
	MenuItemIcon     string
	MenuItemCategory string
}

const listOrderItemsByOrder = `
SELECT
    oi.id, oi.order_id, oi.menu_item_id, oi.quantity, oi.unit_price,
    oi.total_price, oi.modifiers, oi.notes, oi.created_at,
    mi.name, mi.icon, mc.name
FROM order_items oi
JOIN menu_items mi ON oi.menu_item_id = mi.id
JOIN menu_categories mc ON mi.category_id = mc.id
WHERE oi.order_id = $1
ORDER BY oi.created_at
`

func (q *Queries) ListOrderItemsByOrder(ctx context.Context, orderID int64) ([]OrderItemRow, error) {
	rows, err := q.db.Query(ctx, listOrderItemsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []OrderItemRow
	for rows.Next() {
		var r OrderItemRow
		if err := rows.Scan(&r.ID, &r.OrderID, &r.MenuItemID, &r.Quantity, &r.UnitPrice,
			&r.TotalPrice, &r.Modifiers, &r.Notes, &r.CreatedAt,
			&r.MenuItemName, &r.MenuItemIcon, &r.MenuItemCategory); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const updateOrderStatus = `
UPDATE orders SET status = $1, updated_at = now() WHERE id = $2
RETURNING id, order_number, table_id, user_id, status, subtotal, gst_amount,
    total_amount, payment_status, payment_method, notes, created_at, updated_at
`

type UpdateOrderStatusParams struct {
	Status string
	ID     int64
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderStatus, arg.Status, arg.ID))
}

const updateOrderPayment = `
UPDATE orders
SET payment_status = $1, payment_method = $2, updated_at = now()
WHERE id = $3
RETURNING id, order_number, table_id, user_id, status, subtotal, gst_amount,
    total_amount, payment_status, payment_method, notes, created_at, updated_at
`

type UpdateOrderPaymentParams struct {
	PaymentStatus string
	PaymentMethod pgtype.Text
	ID            int64
}

func (q *Queries) UpdateOrderPayment(ctx context.Context, arg UpdateOrderPaymentParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderPayment, arg.PaymentStatus, arg.PaymentMethod, arg.ID))
}
