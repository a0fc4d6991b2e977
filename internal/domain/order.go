package domain

import "github.com/shopspring/decimal"

const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderCompleted  = "completed"
	OrderCancelled  = "cancelled"

	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// OrderStatuses lists the statuses in the order the admin panel shows them.
var OrderStatuses = []string{OrderPending, OrderProcessing, OrderCompleted, OrderCancelled}

func ValidOrderStatus(s string) bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type Order struct {
	ID            string          `db:"id"`
	UserID        string          `db:"user_id"`
	UserEmail     string          `db:"user_email"`
	TotalAmount   decimal.Decimal `db:"total_amount"`
	Status        string          `db:"status"`
	PaymentStatus string          `db:"payment_status"`
	CreatedAt     string          `db:"created_at"`
	UpdatedAt     string          `db:"updated_at"`
}

type OrderItem struct {
	ID       string          `db:"id"`
	OrderID  string          `db:"order_id"`
	ItemID   string          `db:"item_id"`
	ItemName string          `db:"item_name"`
	ItemSlug string          `db:"item_slug"`
	Quantity int             `db:"quantity"`
	Price    decimal.Decimal `db:"price"`
}

func (oi OrderItem) Subtotal() decimal.Decimal {
	return oi.Price.Mul(decimal.NewFromInt(int64(oi.Quantity)))
}

type OrderWithItems struct {
	Order
	Items []OrderItem
}
