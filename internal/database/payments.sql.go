package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createTransaction = `
INSERT INTO transactions (order_id, amount, payment_method, transaction_id, status)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, order_id, amount, payment_method, transaction_id, status, created_at
`

type CreateTransactionParams struct {
	OrderID       int64
	Amount        pgtype.Numeric
	PaymentMethod string
	TransactionID pgtype.Text
	Status        string
}

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (Transaction, error) {
	row := q.db.QueryRow(ctx, createTransaction,
		arg.OrderID, arg.Amount, arg.PaymentMethod, arg.TransactionID, arg.Status)
	var t Transaction
	err := row.Scan(&t.ID, &t.OrderID, &t.Amount, &t.PaymentMethod, &t.TransactionID, &t.Status, &t.CreatedAt)
	return t, err
}

const listTransactionsByOrder = `
SELECT id, order_id, amount, payment_method, transaction_id, status, created_at
FROM transactions
WHERE order_id = $1
ORDER BY created_at
`

func (q *Queries) ListTransactionsByOrder(ctx context.Context, orderID int64) ([]Transaction, error) {
	rows, err := q.db.Query(ctx, listTransactionsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transaction
	for rows.Next() {
		var t Transaction
		if err := rows.Scan(&t.ID, &t.OrderID, &t.Amount, &t.PaymentMethod, &t.TransactionID, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}
