package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getTableForUpdate = `
SELECT id, number, zone, seats, status, created_at, updated_at
FROM tables
WHERE id = $1
FOR UPDATE
`

// GetTableForUpdate locks the table row for the rest of the transaction,
// serializing concurrent order creation against the same table.
func (q *Queries) GetTableForUpdate(ctx context.Context, id int64) (Table, error) {
	row := q.db.QueryRow(ctx, getTableForUpdate, id)
	var t Table
	err := row.Scan(&t.ID, &t.Number, &t.Zone, &t.Seats, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

const getTableByNumber = `
SELECT id, number, zone, seats, status, created_at, updated_at
FROM tables
WHERE number = $1
`

func (q *Queries) GetTableByNumber(ctx context.Context, number string) (Table, error) {
	row := q.db.QueryRow(ctx, getTableByNumber, number)
	var t Table
	err := row.Scan(&t.ID, &t.Number, &t.Zone, &t.Seats, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

// TableWithOrderRow is a table plus its currently attached non-terminal
// order, if any. At most one such order exists per table by invariant.
// Numbers are free text ("5", "A1", "Patio-3"), so the floor listing
// sorts length-first to keep plain numeric labels in natural order.
type TableWithOrderRow struct {
	Table
	CurrentOrderID     pgtype.Int8
	CurrentOrderNumber pgtype.Text
	CurrentOrderTotal  pgtype.Numeric
}

const listTablesWithActiveOrder = `
SELECT
    t.id, t.number, t.zone, t.seats, t.status, t.created_at, t.updated_at,
    o.id, o.order_number, o.total_amount
FROM tables t
LEFT JOIN orders o ON t.id = o.table_id AND o.status NOT IN ('Completed', 'Cancelled')
ORDER BY t.zone, length(t.number), t.number
`

func (q *Queries) ListTablesWithActiveOrder(ctx context.Context) ([]TableWithOrderRow, error) {
	rows, err := q.db.Query(ctx, listTablesWithActiveOrder)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TableWithOrderRow
	for rows.Next() {
		var r TableWithOrderRow
		if err := rows.Scan(
			&r.ID, &r.Number, &r.Zone, &r.Seats, &r.Status, &r.CreatedAt, &r.UpdatedAt,
			&r.CurrentOrderID, &r.CurrentOrderNumber, &r.CurrentOrderTotal,
		); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const getTableWithActiveOrder = `
SELECT
    t.id, t.number, t.zone, t.seats, t.status, t.created_at, t.updated_at,
    o.id, o.order_number, o.total_amount
FROM tables t
LEFT JOIN orders o ON t.id = o.table_id AND o.status NOT IN ('Completed', 'Cancelled')
WHERE t.id = $1
`

func (q *Queries) GetTableWithActiveOrder(ctx context.Context, id int64) (TableWithOrderRow, error) {
	row := q.db.QueryRow(ctx, getTableWithActiveOrder, id)
	var r TableWithOrderRow
	err := row.Scan(
		&r.ID, &r.Number, &r.Zone, &r.Seats, &r.Status, &r.CreatedAt, &r.UpdatedAt,
		&r.CurrentOrderID, &r.CurrentOrderNumber, &r.CurrentOrderTotal,
	)
	return r, err
}

const createTable = `
INSERT INTO tables (number, zone, seats)
VALUES ($1, $2, $3)
RETURNING id, number, zone, seats, status, created_at, updated_at
`

type CreateTableParams struct {
	Number string
	Zone   string
	Seats  int32
}

func (q *Queries) CreateTable(ctx context.Context, arg CreateTableParams) (Table, error) {
	row := q.db.QueryRow(ctx, createTable, arg.Number, arg.Zone, arg.Seats)
	var t Table
	err := row.Scan(&t.ID, &t.Number, &t.Zone, &t.Seats, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

const updateTable = `
UPDATE tables
SET number = $1, zone = $2, seats = $3, status = $4, updated_at = now()
WHERE id = $5
RETURNING id, number, zone, seats, status, created_at, updated_at
`

type UpdateTableParams struct {
	Number string
	Zone   string
	Seats  int32
	Status string
	ID     int64
}

func (q *Queries) UpdateTable(ctx context.Context, arg UpdateTableParams) (Table, error) {
	row := q.db.QueryRow(ctx, updateTable, arg.Number, arg.Zone, arg.Seats, arg.Status, arg.ID)
	var t Table
	err := row.Scan(&t.ID, &t.Number, &t.Zone, &t.Seats, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

const updateTableStatus = `
UPDATE tables SET status = $1, updated_at = now() WHERE id = $2
RETURNING id, number, zone, seats, status, created_at, updated_at
`

type UpdateTableStatusParams struct {
	Status string
	ID     int64
}

func (q *Queries) UpdateTableStatus(ctx context.Context, arg UpdateTableStatusParams) (Table, error) {
	row := q.db.QueryRow(ctx, updateTableStatus, arg.Status, arg.ID)
	var t Table
	err := row.Scan(&t.ID, &t.Number, &t.Zone, &t.Seats, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

const deleteTable = `
DELETE FROM tables WHERE id = $1
RETURNING id
`

func (q *Queries) DeleteTable(ctx context.Context, id int64) (int64, error) {
	row := q.db.QueryRow(ctx, deleteTable, id)
	var id2 int64
	err := row.Scan(&id2)
	return id2, err
}

const countActiveOrdersByTable = `
SELECT count(*) FROM orders
WHERE table_id = $1 AND status NOT IN ('Completed', 'Cancelled')
`

func (q *Queries) CountActiveOrdersByTable(ctx context.Context, tableID int64) (int64, error) {
	row := q.db.QueryRow(ctx, countActiveOrdersByTable, tableID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

type TableStatusCountRow struct {
	Status string
	Count  int64
}

const countTablesByStatus = `
SELECT status, count(*) FROM tables GROUP BY status ORDER BY status
`

func (q *Queries) CountTablesByStatus(ctx context.Context) ([]TableStatusCountRow, error) {
	rows, err := q.db.Query(ctx, countTablesByStatus)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TableStatusCountRow
	for rows.Next() {
		var r TableStatusCountRow
		if err := rows.Scan(&r.Status, &r.Count); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

type TableZoneCountRow struct {
	Zone  string
	Count int64
}

const countTablesByZone = `
SELECT zone, count(*) FROM tables GROUP BY zone ORDER BY zone
`

func (q *Queries) CountTablesByZone(ctx context.Context) ([]TableZoneCountRow, error) {
	rows, err := q.db.Query(ctx, countTablesByZone)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TableZoneCountRow
	for rows.Next() {
		var r TableZoneCountRow
		if err := rows.Scan(&r.Zone, &r.Count); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const countTables = `
SELECT count(*) FROM tables
`

func (q *Queries) CountTables(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countTables)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countOccupiedTables = `
SELECT count(*) FROM tables WHERE status IN ('Ordering', 'Full')
`

func (q *Queries) CountOccupiedTables(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countOccupiedTables)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countAvailableTables = `
SELECT count(*) FROM tables WHERE status = 'Available'
`

func (q *Queries) CountAvailableTables(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countAvailableTables)
	var count int64
	err := row.Scan(&count)
	return count, err
}
