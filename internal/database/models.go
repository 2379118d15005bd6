package database

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID           int64
	Name         string
	Email        string
	EmployeeID   string
	PasswordHash string
	Role         string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Table struct {
	ID        int64
	Number    string
	Zone      string
	Seats     int32
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type MenuCategory struct {
	ID           int64
	Name         string
	DisplayOrder int32
	CreatedAt    time.Time
}

type MenuItem struct {
	ID          int64
	Name        string
	Price       pgtype.Numeric
	CategoryID  int64
	Subcategory string
	Icon        string
	IsAvailable bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Order struct {
	ID            int64
	OrderNumber   string
	TableID       int64
	UserID        int64
	Status        string
	Subtotal      pgtype.Numeric
	GstAmount     pgtype.Numeric
	TotalAmount   pgtype.Numeric
	PaymentStatus string
	PaymentMethod pgtype.Text
	Notes         pgtype.Text
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type OrderItem struct {
	ID         int64
	OrderID    int64
	MenuItemID int64
	Quantity   int32
	UnitPrice  pgtype.Numeric
	TotalPrice pgtype.Numeric
	Modifiers  pgtype.Text
	Notes      pgtype.Text
	CreatedAt  time.Time
}

type Transaction struct {
	ID            int64
	OrderID       int64
	Amount        pgtype.Numeric
	PaymentMethod string
	TransactionID pgtype.Text
	Status        string
	CreatedAt     time.Time
}
