package models

import "time"

// Order lifecycle states. An order is OPEN from the first item until it
// is fully paid, then CLOSED.
const (
	OrderStatusOpen   = "OPEN"
	OrderStatusClosed = "CLOSED"
)

// Accepted payment methods.
const (
	PaymentMethodCash = "CASH"
	PaymentMethodCard = "CARD"
)

// Category groups products on the order screen. SortOrder controls the
// tab order on the sales grid.
type Category struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" binding:"required"`
	SortOrder int       `json:"sort_order" db:"sort_order"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Product is a sellable item. Price is in cents and is snapshotted onto
// order items at add-time, so later price edits never change open bills.
type Product struct {
	ID         string    `json:"id" db:"id"`
	Name       string    `json:"name" db:"name" binding:"required"`
	Price      int64     `json:"price" db:"price"`
	CategoryID string    `json:"category_id" db:"category_id"`
	IsFavorite bool      `json:"is_favorite" db:"is_favorite"`
	IsDeleted  bool      `json:"is_deleted" db:"is_deleted"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`

	Category *Category `json:"category,omitempty"`
}

// Table is a physical table in the café.
type Table struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name" binding:"required"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// Derived from the table's open order, if any.
	HasOpenOrder bool `json:"has_open_order"`
	IsLocked     bool `json:"is_locked"`
}

// Order is a running bill for a table.
type Order struct {
	ID          string    `json:"id" db:"id"`
	TableID     string    `json:"table_id" db:"table_id"`
	Status      string    `json:"status" db:"status"`
	TotalAmount int64     `json:"total_amount" db:"total_amount"`
	IsLocked    bool      `json:"is_locked" db:"is_locked"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	Table    *Table      `json:"table,omitempty"`
	Items    []OrderItem `json:"items,omitempty"`
	Payments []Payment   `json:"payments,omitempty"`
}

// OrderItem is a line on the bill. UnitPrice is the product price at
// add-time. A partially paid quantity is represented by splitting the
// row: the paid part becomes its own row with IsPaid set.
type OrderItem struct {
	ID        string    `json:"id" db:"id"`
	OrderID   string    `json:"order_id" db:"order_id"`
	ProductID string    `json:"product_id" db:"product_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	UnitPrice int64     `json:"unit_price" db:"unit_price"`
	IsPaid    bool      `json:"is_paid" db:"is_paid"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Product *Product `json:"product,omitempty"`
}

// Payment is a recorded settlement against an order. Immutable once
// created; the sum of an order's payments determines its paid amount.
type Payment struct {
	ID        string    `json:"id" db:"id"`
	OrderID   string    `json:"order_id" db:"order_id"`
	Amount    int64     `json:"amount" db:"amount"`
	Method    string    `json:"method" db:"method"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Expense is an out-of-drawer cost recorded during the day.
type Expense struct {
	ID            string    `json:"id" db:"id"`
	Description   string    `json:"description" db:"description"`
	Amount        int64     `json:"amount" db:"amount"`
	Category      *string   `json:"category,omitempty" db:"category"`
	PaymentMethod string    `json:"payment_method" db:"payment_method"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// ActivityLog is an audit trail entry for operator actions.
type ActivityLog struct {
	ID        string    `json:"id" db:"id"`
	Action    string    `json:"action" db:"action"`
	TableName *string   `json:"table_name,omitempty" db:"table_name"`
	Details   *string   `json:"details,omitempty" db:"details"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AppSettings is the singleton settings row. AdminPinHash is a bcrypt
// hash; an empty hash means no PIN is required.
type AppSettings struct {
	ID               string    `json:"id" db:"id"`
	AdminPinHash     string    `json:"-" db:"admin_pin_hash"`
	SecurityQuestion *string   `json:"security_question,omitempty" db:"security_question"`
	SecurityAnswer   *string   `json:"-" db:"security_answer"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}
