package enum

// ── State machines (CHECK constrained in DB) ──

const (
	OrderStatusPending   = "Pending"
	OrderStatusConfirmed = "Confirmed"
	OrderStatusPreparing = "Preparing"
	OrderStatusReady     = "Ready"
	OrderStatusServed    = "Served"
	OrderStatusCompleted = "Completed"
	OrderStatusCancelled = "Cancelled"
)

const (
	TableStatusAvailable = "Available"
	TableStatusOrdering  = "Ordering"
	TableStatusFull      = "Full"
	TableStatusBooked    = "Booked"
)

const (
	PaymentStatusPending       = "Pending"
	PaymentStatusPaid          = "Paid"
	PaymentStatusPartiallyPaid = "Partially Paid"
)

const (
	TransactionStatusPending   = "Pending"
	TransactionStatusCompleted = "Completed"
	TransactionStatusFailed    = "Failed"
	TransactionStatusRefunded  = "Refunded"
)

// ── Configurable labels ──

const (
	UserRoleAdmin   = "Admin"
	UserRoleWaiter  = "Waiter"
	UserRoleCashier = "Cashier"
)

const (
	UserStatusActive   = "Active"
	UserStatusInactive = "Inactive"
)

// Payment methods are stored as free text so the floor can add new ones
// without a migration; these are the labels the register offers.
const (
	PaymentMethodCash   = "Cash"
	PaymentMethodCard   = "Card"
	PaymentMethodPayNow = "PayNow"
)

const (
	SubcategorySpecial   = "Special"
	SubcategoryStrong    = "Strong"
	SubcategoryLessSugar = "Less Sugar"
	SubcategoryNormal    = "Normal"
)

// IsTerminalOrderStatus reports whether an order in this status no longer
// occupies its table.
func IsTerminalOrderStatus(s string) bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}
