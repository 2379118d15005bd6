package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/prata-pos/api/internal/database"
	"github.com/prata-pos/api/internal/enum"
	"github.com/shopspring/decimal"
)

const maxOrderNumberRetries = 3

// gstRate is the goods and services tax applied to every order subtotal.
var gstRate = decimal.NewFromFloat(0.10)

// Errors returned by the order service.
var (
	ErrEmptyItems        = errors.New("items are required")
	ErrInvalidQuantity   = errors.New("quantity must be > 0")
	ErrTableNotFound     = errors.New("table not found")
	ErrTableFull         = errors.New("table is not available for new orders")
	ErrMenuItemNotFound  = errors.New("menu item not found")
	ErrItemUnavailable   = errors.New("menu item is not available")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("order status transition not allowed")
	ErrAlreadyPaid       = errors.New("order is already paid")
	ErrInvalidAmount     = errors.New("amount must be > 0")
	ErrMissingMethod     = errors.New("payment_method is required")
)

// allowedTransitions is the forward-only order lifecycle. Cancellation is
// reachable from any non-terminal status.
var allowedTransitions = map[string][]string{
	enum.OrderStatusPending:   {enum.OrderStatusConfirmed, enum.OrderStatusCancelled},
	enum.OrderStatusConfirmed: {enum.OrderStatusPreparing, enum.OrderStatusCancelled},
	enum.OrderStatusPreparing: {enum.OrderStatusReady, enum.OrderStatusCancelled},
	enum.OrderStatusReady:     {enum.OrderStatusServed, enum.OrderStatusCancelled},
	enum.OrderStatusServed:    {enum.OrderStatusCompleted, enum.OrderStatusCancelled},
	enum.OrderStatusCompleted: {},
	enum.OrderStatusCancelled: {},
}

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods the order engine needs.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetTableForUpdate(ctx context.Context, id int64) (database.Table, error)
	GetMenuItemForOrder(ctx context.Context, id int64) (database.GetMenuItemForOrderRow, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	UpdateTableStatus(ctx context.Context, arg database.UpdateTableStatusParams) (database.Table, error)
	GetOrderForUpdate(ctx context.Context, id int64) (database.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	UpdateOrderPayment(ctx context.Context, arg database.UpdateOrderPaymentParams) (database.Order, error)
	CreateTransaction(ctx context.Context, arg database.CreateTransactionParams) (database.Transaction, error)
	GetOrderRow(ctx context.Context, id int64) (database.OrderRow, error)
	ListOrderItemsByOrder(ctx context.Context, orderID int64) ([]database.OrderItemRow, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx).
// This allows the service to create store instances from transactions.
type NewOrderStore func(db database.DBTX) OrderStore

// CreateOrderRequest is the validated input for creating an order.
type CreateOrderRequest struct {
	TableID int64
	UserID  int64
	Notes   string
	Items   []CreateOrderItemRequest
}

// CreateOrderItemRequest is a single line in the order.
type CreateOrderItemRequest struct {
	MenuItemID int64
	Quantity   int32
	Modifiers  string
	Notes      string
}

// CreateOrderResult is the full created order with items.
type CreateOrderResult struct {
	Order database.OrderRow
	Items []database.OrderItemRow
	Table database.Table
}

// StatusUpdateResult is the order after a transition plus the table it
// drove to a new status.
type StatusUpdateResult struct {
	Order database.Order
	Table database.Table
}

// PaymentResult is the recorded transaction and the order after
// reconciliation. Change is non-zero only on overpayment.
type PaymentResult struct {
	Order       database.Order
	Transaction database.Transaction
	Change      decimal.Decimal
}

// OrderService handles order business logic.
type OrderService struct {
	pool     TxBeginner
	newStore NewOrderStore
}

// NewOrderService creates a new OrderService.
func NewOrderService(pool TxBeginner, newStore NewOrderStore) *OrderService {
	return &OrderService{pool: pool, newStore: newStore}
}

// processedItem holds a prepared order item insert.
type processedItem struct {
	params database.CreateOrderItemParams
}

// CreateOrder validates, prices, and creates an order atomically. The
// table row is locked for the duration of the transaction so two waiters
// cannot seat competing orders on the same table. Retries up to
// maxOrderNumberRetries times on order_number unique constraint
// violations (concurrent transactions can mint the same number).
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	var lastErr error
	for attempt := 0; attempt < maxOrderNumberRetries; attempt++ {
		result, err := s.createOrderTx(ctx, req)
		if err == nil {
			return result, nil
		}
		if isOrderNumberConflict(err) {
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// isOrderNumberConflict checks if the error is a unique constraint violation
// on the order number (pgconn error code 23505).
func isOrderNumberConflict(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" && pgErr.ConstraintName == "orders_order_number_key"
	}
	return false
}

// createOrderTx executes the full order creation in a single transaction.
func (s *OrderService) createOrderTx(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	// --- Lock and validate the table ---
	table, err := store.GetTableForUpdate(ctx, req.TableID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("get table: %w", err)
	}
	if table.Status == enum.TableStatusFull {
		return nil, ErrTableFull
	}

	// --- Process items: validate + snapshot prices ---
	subtotal := decimal.Zero
	var items []processedItem

	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}

		menuItem, err := store.GetMenuItemForOrder(ctx, item.MenuItemID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("item[%d]: %w", i, ErrMenuItemNotFound)
			}
			return nil, fmt.Errorf("item[%d]: get menu item: %w", i, err)
		}
		if !menuItem.IsAvailable {
			return nil, fmt.Errorf("item[%d] (%s): %w", i, menuItem.Name, ErrItemUnavailable)
		}

		unitPrice := numericToDecimal(menuItem.Price)
		lineTotal := unitPrice.Mul(decimal.NewFromInt32(item.Quantity))
		subtotal = subtotal.Add(lineTotal)

		modifiers := pgtype.Text{}
		if item.Modifiers != "" {
			modifiers = pgtype.Text{String: item.Modifiers, Valid: true}
		}
		itemNotes := pgtype.Text{}
		if item.Notes != "" {
			itemNotes = pgtype.Text{String: item.Notes, Valid: true}
		}

		items = append(items, processedItem{
			params: database.CreateOrderItemParams{
				MenuItemID: item.MenuItemID,
				Quantity:   item.Quantity,
				UnitPrice:  decimalToNumeric(unitPrice),
				TotalPrice: decimalToNumeric(lineTotal),
				Modifiers:  modifiers,
				Notes:      itemNotes,
			},
		})
	}

	// --- Totals: GST on the subtotal, rounded to cents ---
	gstAmount := subtotal.Mul(gstRate).Round(2)
	totalAmount := subtotal.Add(gstAmount)

	notes := pgtype.Text{}
	if req.Notes != "" {
		notes = pgtype.Text{String: req.Notes, Valid: true}
	}

	// --- Insert order ---
	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		OrderNumber: newOrderNumber(),
		TableID:     req.TableID,
		UserID:      req.UserID,
		Subtotal:    decimalToNumeric(subtotal),
		GstAmount:   decimalToNumeric(gstAmount),
		TotalAmount: decimalToNumeric(totalAmount),
		Notes:       notes,
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	// --- Insert items ---
	for _, pi := range items {
		pi.params.OrderID = order.ID
		if _, err := store.CreateOrderItem(ctx, pi.params); err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
	}

	// --- Table picks up the order ---
	updatedTable, err := store.UpdateTableStatus(ctx, database.UpdateTableStatusParams{
		Status: enum.TableStatusOrdering,
		ID:     req.TableID,
	})
	if err != nil {
		return nil, fmt.Errorf("update table status: %w", err)
	}

	// --- Fetch display rows ---
	orderRow, err := store.GetOrderRow(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("get order row: %w", err)
	}
	itemRows, err := store.ListOrderItemsByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &CreateOrderResult{
		Order: orderRow,
		Items: itemRows,
		Table: updatedTable,
	}, nil
}

// UpdateStatus moves an order along its lifecycle and keeps the table's
// status in step. The order row is locked so concurrent transitions on
// the same order serialize.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, newStatus string) (*StatusUpdateResult, error) {
	if _, ok := allowedTransitions[newStatus]; !ok {
		return nil, ErrInvalidStatus
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetOrderForUpdate(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if !transitionAllowed(order.Status, newStatus) {
		return nil, fmt.Errorf("%s -> %s: %w", order.Status, newStatus, ErrInvalidTransition)
	}

	updated, err := store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		Status: newStatus,
		ID:     orderID,
	})
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	table, err := store.UpdateTableStatus(ctx, database.UpdateTableStatusParams{
		Status: tableStatusFor(newStatus),
		ID:     order.TableID,
	})
	if err != nil {
		return nil, fmt.Errorf("update table status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &StatusUpdateResult{Order: updated, Table: table}, nil
}

func transitionAllowed(from, to string) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// tableStatusFor maps an order status to the table status it implies.
func tableStatusFor(orderStatus string) string {
	switch {
	case enum.IsTerminalOrderStatus(orderStatus):
		return enum.TableStatusAvailable
	case orderStatus == enum.OrderStatusServed:
		return enum.TableStatusFull
	default:
		return enum.TableStatusOrdering
	}
}

// PaymentRequest is the validated input for recording a payment.
// TransactionRef is optional; an external terminal's reference is kept
// as-is, otherwise one is minted.
type PaymentRequest struct {
	OrderID        int64
	Amount         decimal.Decimal
	PaymentMethod  string
	TransactionRef string
}

// RecordPayment records a transaction against an order and reconciles
// its payment status. The tendered amount is compared against the order
// total on its own; partial payments do not accumulate across calls.
// A full payment completes the order and frees its table.
func (s *OrderService) RecordPayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if req.PaymentMethod == "" {
		return nil, ErrMissingMethod
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.GetOrderForUpdate(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if order.PaymentStatus == enum.PaymentStatusPaid {
		return nil, ErrAlreadyPaid
	}

	ref := req.TransactionRef
	if ref == "" {
		ref = "TXN-" + uuid.NewString()
	}
	txn, err := store.CreateTransaction(ctx, database.CreateTransactionParams{
		OrderID:       req.OrderID,
		Amount:        decimalToNumeric(req.Amount),
		PaymentMethod: req.PaymentMethod,
		TransactionID: pgtype.Text{String: ref, Valid: true},
		Status:        enum.TransactionStatusCompleted,
	})
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}

	total := numericToDecimal(order.TotalAmount)
	paymentStatus := enum.PaymentStatusPartiallyPaid
	change := decimal.Zero
	if req.Amount.GreaterThanOrEqual(total) {
		paymentStatus = enum.PaymentStatusPaid
		change = req.Amount.Sub(total)
	}

	updated, err := store.UpdateOrderPayment(ctx, database.UpdateOrderPaymentParams{
		PaymentStatus: paymentStatus,
		PaymentMethod: pgtype.Text{String: req.PaymentMethod, Valid: true},
		ID:            req.OrderID,
	})
	if err != nil {
		return nil, fmt.Errorf("update order payment: %w", err)
	}

	// A settled bill closes the order and frees the table.
	if paymentStatus == enum.PaymentStatusPaid && !enum.IsTerminalOrderStatus(updated.Status) {
		updated, err = store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
			Status: enum.OrderStatusCompleted,
			ID:     req.OrderID,
		})
		if err != nil {
			return nil, fmt.Errorf("complete order: %w", err)
		}
		if _, err := store.UpdateTableStatus(ctx, database.UpdateTableStatusParams{
			Status: enum.TableStatusAvailable,
			ID:     order.TableID,
		}); err != nil {
			return nil, fmt.Errorf("free table: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &PaymentResult{Order: updated, Transaction: txn, Change: change}, nil
}

// newOrderNumber mints an order number from the tail of the current
// unix-millisecond clock plus a short random suffix. Uniqueness is
// enforced by the DB constraint; collisions are retried by the caller.
func newOrderNumber() string {
	const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	millis := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if len(millis) > 8 {
		millis = millis[len(millis)-8:]
	}
	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = alphabet[rand.IntN(len(alphabet))]
	}
	return "ORD" + millis + string(suffix)
}

// --- Helpers ---

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
