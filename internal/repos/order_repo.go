package repos

import (
	"errors"
	"fmt"
	"strings"

	"lootmarket/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrOutOfStock is returned by Create when an item cannot cover the ordered quantity.
var ErrOutOfStock = errors.New("insufficient stock")

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderCols = `
    o.id, COALESCE(o.user_id,'') AS user_id, COALESCE(u.email,'') AS user_email, o.total_amount, o.status, o.payment_status,
    COALESCE(o.created_at,'') AS created_at, COALESCE(o.updated_at,'') AS updated_at`

const orderFrom = ` FROM orders o LEFT JOIN users u ON u.id = o.user_id `

// Create inserts the order header and its lines and takes the ordered units out of stock,
// all in one transaction. o.ID and line ids are assigned when empty.
func (r *OrderRepo) Create(o *domain.Order, items []domain.OrderItem) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Status == "" {
		o.Status = domain.OrderPending
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = domain.PaymentPending
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, it := range items {
		res, err := tx.Exec(`
			UPDATE items SET stock = stock - ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND stock >= ?
		`, it.Quantity, it.ItemID, it.Quantity)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w for %s", ErrOutOfStock, it.ItemID)
		}
	}

	if _, err := tx.Exec(`
	  INSERT INTO orders(id, user_id, total_amount, status, payment_status, created_at)
	  VALUES(?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, o.ID, o.UserID, o.TotalAmount, o.Status, o.PaymentStatus); err != nil {
		return err
	}
	for i := range items {
		it := &items[i]
		if it.ID == "" {
			it.ID = uuid.NewString()
		}
		it.OrderID = o.ID
		if _, err := tx.Exec(`
		  INSERT INTO order_items(id, order_id, item_id, item_name, item_slug, quantity, price)
		  VALUES(?, ?, ?, ?, ?, ?, ?)
		`, it.ID, it.OrderID, it.ItemID, it.ItemName, it.ItemSlug, it.Quantity, it.Price); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *OrderRepo) Get(id string) (domain.OrderWithItems, error) {
	var o domain.Order
	if err := r.db.Get(&o, `SELECT `+orderCols+orderFrom+`WHERE o.id = ?`, id); err != nil {
		return domain.OrderWithItems{}, notFound(err)
	}
	items, err := r.items([]string{o.ID})
	if err != nil {
		return domain.OrderWithItems{}, err
	}
	return domain.OrderWithItems{Order: o, Items: items[o.ID]}, nil
}

// ListByUser returns a user's orders newest first, with their lines.
func (r *OrderRepo) ListByUser(userID string) ([]domain.OrderWithItems, error) {
	var orders []domain.Order
	if err := r.db.Select(&orders, `SELECT `+orderCols+orderFrom+`
		WHERE o.user_id = ?
		ORDER BY datetime(o.created_at) DESC, o.id`, userID); err != nil {
		return nil, err
	}
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
	}
	items, err := r.items(ids)
	if err != nil {
		return nil, err
	}
	out := make([]domain.OrderWithItems, len(orders))
	for i, o := range orders {
		out[i] = domain.OrderWithItems{Order: o, Items: items[o.ID]}
	}
	return out, nil
}

// OrderFilter narrows the admin order list. Query matches order id or customer email.
type OrderFilter struct {
	Status string
	Query  string
}

func (r *OrderRepo) List(f OrderFilter, p Page) (Paged[domain.Order], error) {
	where := `1 = 1`
	args := []any{}
	if f.Status != "" {
		where += ` AND o.status = ?`
		args = append(args, f.Status)
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		where += ` AND (LOWER(o.id) LIKE ? OR LOWER(COALESCE(u.email,'')) LIKE ?)`
		args = append(args, "%"+q+"%", "%"+q+"%")
	}

	var total int
	if err := r.db.Get(&total, `SELECT COUNT(*)`+orderFrom+`WHERE `+where, args...); err != nil {
		return Paged[domain.Order]{}, err
	}
	var out []domain.Order
	if err := r.db.Select(&out, `SELECT `+orderCols+orderFrom+`WHERE `+where+`
		ORDER BY datetime(o.created_at) DESC, o.id
		LIMIT ? OFFSET ?`, append(args, p.Size, p.Offset())...); err != nil {
		return Paged[domain.Order]{}, err
	}
	return newPaged(out, total, p), nil
}

// CountByStatus returns the number of orders per status; statuses with no orders are absent.
func (r *OrderRepo) CountByStatus() (map[string]int, error) {
	var rows []struct {
		Status string `db:"status"`
		N      int    `db:"n"`
	}
	if err := r.db.Select(&rows, `SELECT status, COUNT(*) AS n FROM orders GROUP BY status`); err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}

func (r *OrderRepo) Count() (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM orders`)
	return n, err
}

func (r *OrderRepo) UpdateStatus(id, status string) error {
	res, err := r.db.Exec(`UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	return affected(res, err)
}

func (r *OrderRepo) items(orderIDs []string) (map[string][]domain.OrderItem, error) {
	out := map[string][]domain.OrderItem{}
	if len(orderIDs) == 0 {
		return out, nil
	}
	q, args, err := sqlx.In(`
		SELECT id, order_id, item_id, item_name, COALESCE(item_slug,'') AS item_slug, quantity, price
		FROM order_items
		WHERE order_id IN (?)
		ORDER BY item_name`, orderIDs)
	if err != nil {
		return nil, err
	}
	var rows []domain.OrderItem
	if err := r.db.Select(&rows, q, args...); err != nil {
		return nil, err
	}
	for _, it := range rows {
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, nil
}
