package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const listCategories = `
SELECT id, name, display_order, created_at
FROM menu_categories
ORDER BY display_order, name
`

func (q *Queries) ListCategories(ctx context.Context) ([]MenuCategory, error) {
	rows, err := q.db.Query(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MenuCategory
	for rows.Next() {
		var c MenuCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.DisplayOrder, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const getCategoryByName = `
SELECT id, name, display_order, created_at
FROM menu_categories
WHERE name = $1
`

func (q *Queries) GetCategoryByName(ctx context.Context, name string) (MenuCategory, error) {
	row := q.db.QueryRow(ctx, getCategoryByName, name)
	var c MenuCategory
	err := row.Scan(&c.ID, &c.Name, &c.DisplayOrder, &c.CreatedAt)
	return c, err
}

const createCategory = `
INSERT INTO menu_categories (name, display_order)
VALUES ($1, $2)
RETURNING id, name, display_order, created_at
`

type CreateCategoryParams struct {
	Name         string
	DisplayOrder int32
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (MenuCategory, error) {
	row := q.db.QueryRow(ctx, createCategory, arg.Name, arg.DisplayOrder)
	var c MenuCategory
	err := row.Scan(&c.ID, &c.Name, &c.DisplayOrder, &c.CreatedAt)
	return c, err
}

const updateCategory = `
UPDATE menu_categories
SET name = $1, display_order = $2
WHERE id = $3
RETURNING id, name, display_order, created_at
`

type UpdateCategoryParams struct {
	Name         string
	DisplayOrder int32
	ID           int64
}

func (q *Queries) UpdateCategory(ctx context.Context, arg UpdateCategoryParams) (MenuCategory, error) {
	row := q.db.QueryRow(ctx, updateCategory, arg.Name, arg.DisplayOrder, arg.ID)
	var c MenuCategory
	err := row.Scan(&c.ID, &c.Name, &c.DisplayOrder, &c.CreatedAt)
	return c, err
}

const deleteCategory = `
DELETE FROM menu_categories WHERE id = $1
RETURNING id
`

func (q *Queries) DeleteCategory(ctx context.Context, id int64) (int64, error) {
	row := q.db.QueryRow(ctx, deleteCategory, id)
	var id2 int64
	err := row.Scan(&id2)
	return id2, err
}

const countMenuItemsByCategory = `
SELECT count(*) FROM menu_items WHERE category_id = $1
`

func (q *Queries) CountMenuItemsByCategory(ctx context.Context, categoryID int64) (int64, error) {
	row := q.db.QueryRow(ctx, countMenuItemsByCategory, categoryID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

// MenuItemRow is a menu item joined with its category name for display.
type MenuItemRow struct {
	MenuItem
	CategoryName string
}

const listAvailableMenuItems = `
SELECT
    mi.id, mi.name, mi.price, mi.category_id, mi.subcategory, mi.icon,
    mi.is_available, mi.created_at, mi.updated_at,
    mc.name
FROM menu_items mi
JOIN menu_categories mc ON mi.category_id = mc.id
WHERE mi.is_available = true
ORDER BY mc.display_order, mc.name, mi.name
`

func (q *Queries) ListAvailableMenuItems(ctx context.Context) ([]MenuItemRow, error) {
	rows, err := q.db.Query(ctx, listAvailableMenuItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMenuItemRows(rows)
}

const listAllMenuItems = `
SELECT
    mi.id, mi.name, mi.price, mi.category_id, mi.subcategory, mi.icon,
    mi.is_available, mi.created_at, mi.updated_at,
    mc.name
FROM menu_items mi
JOIN menu_categories mc ON mi.category_id = mc.id
ORDER BY mc.display_order, mc.name, mi.name
`

func (q *Queries) ListAllMenuItems(ctx context.Context) ([]MenuItemRow, error) {
	rows, err := q.db.Query(ctx, listAllMenuItems)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMenuItemRows(rows)
}

func scanMenuItemRows(rows pgx.Rows) ([]MenuItemRow, error) {
	var items []MenuItemRow
	for rows.Next() {
		var r MenuItemRow
		if err := rows.Scan(
			&r.ID, &r.Name, &r.Price, &r.CategoryID, &r.Subcategory, &r.Icon,
			&r.IsAvailable, &r.CreatedAt, &r.UpdatedAt,
			&r.CategoryName,
		); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const getMenuItemRow = `
SELECT
    mi.id, mi.name, mi.price, mi.category_id, mi.subcategory, mi.icon,
    mi.is_available, mi.created_at, mi.updated_at,
    mc.name
FROM menu_items mi
JOIN menu_categories mc ON mi.category_id = mc.id
WHERE mi.id = $1
`

func (q *Queries) GetMenuItemRow(ctx context.Context, id int64) (MenuItemRow, error) {
	row := q.db.QueryRow(ctx, getMenuItemRow, id)
	var r MenuItemRow
	err := row.Scan(
		&r.ID, &r.Name, &r.Price, &r.CategoryID, &r.Subcategory, &r.Icon,
		&r.IsAvailable, &r.CreatedAt, &r.UpdatedAt,
		&r.CategoryName,
	)
	return r, err
}

// GetMenuItemForOrderRow carries just what order creation needs to
// snapshot a price.
type GetMenuItemForOrderRow struct {
	ID          int64
	Name        string
	Price       pgtype.Numeric
	IsAvailable bool
}

const getMenuItemForOrder = `
SELECT id, name, price, is_available
FROM menu_items
WHERE id = $1
`

func (q *Queries) GetMenuItemForOrder(ctx context.Context, id int64) (GetMenuItemForOrderRow, error) {
	row := q.db.QueryRow(ctx, getMenuItemForOrder, id)
	var r GetMenuItemForOrderRow
	err := row.Scan(&r.ID, &r.Name, &r.Price, &r.IsAvailable)
	return r, err
}

const createMenuItem = `
INSERT INTO menu_items (name, price, category_id, subcategory, icon)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, name, price, category_id, subcategory, icon, is_available, created_at, updated_at
`

type CreateMenuItemParams struct {
	Name        string
	Price       pgtype.Numeric
	CategoryID  int64
	Subcategory string
	Icon        string
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, createMenuItem,
		arg.Name, arg.Price, arg.CategoryID, arg.Subcategory, arg.Icon)
	var m MenuItem
	err := row.Scan(&m.ID, &m.Name, &m.Price, &m.CategoryID, &m.Subcategory, &m.Icon, &m.IsAvailable, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

const updateMenuItem = `
UPDATE menu_items
SET name = $1, price = $2, category_id = $3, subcategory = $4, icon = $5,
    is_available = $6, updated_at = now()
WHERE id = $7
RETURNING id, name, price, category_id, subcategory, icon, is_available, created_at, updated_at
`

type UpdateMenuItemParams struct {
	Name        string
	Price       pgtype.Numeric
	CategoryID  int64
	Subcategory string
	Icon        string
	IsAvailable bool
	ID          int64
}

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, updateMenuItem,
		arg.Name, arg.Price, arg.CategoryID, arg.Subcategory, arg.Icon, arg.IsAvailable, arg.ID)
	var m MenuItem
	err := row.Scan(&m.ID, &m.Name, &m.Price, &m.CategoryID, &m.Subcategory, &m.Icon, &m.IsAvailable, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

const deleteMenuItem = `
DELETE FROM menu_items WHERE id = $1
RETURNING id
`

func (q *Queries) DeleteMenuItem(ctx context.Context, id int64) (int64, error) {
	row := q.db.QueryRow(ctx, deleteMenuItem, id)
	var id2 int64
	err := row.Scan(&id2)
	return id2, err
}

const countOrderItemsByMenuItem = `
SELECT count(*) FROM order_items WHERE menu_item_id = $1
`

func (q *Queries) CountOrderItemsByMenuItem(ctx context.Context, menuItemID int64) (int64, error) {
	row := q.db.QueryRow(ctx, countOrderItemsByMenuItem, menuItemID)
	var count int64
	err := row.Scan(&count)
	return count, err
}
