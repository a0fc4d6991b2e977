package services

import (
	"errors"
	"fmt"

	"lootmarket/internal/cart"
	"lootmarket/internal/domain"
	"lootmarket/internal/repos"

	"github.com/shopspring/decimal"
)

var ErrCartEmpty = errors.New("cart is empty")

type OrderService struct {
	Items  *repos.ItemRepo
	Orders *repos.OrderRepo
}

func NewOrderService(items *repos.ItemRepo, orders *repos.OrderRepo) *OrderService {
	return &OrderService{Items: items, Orders: orders}
}

// Receipt describes a placed order. ClientTotal is what the cart showed the shopper;
// ServerTotal is what was charged, from current database prices.
type Receipt struct {
	OrderID     string
	ServerTotal decimal.Decimal
	ClientTotal decimal.Decimal
}

func (r Receipt) Mismatch() bool { return !r.ServerTotal.Equal(r.ClientTotal) }

// Place turns the cart into a pending order for userID and clears the cart.
// Stock is re-checked and taken in the same transaction as the order insert.
func (s *OrderService) Place(userID string, c *cart.Cart) (Receipt, error) {
	lines := c.Lines()
	if len(lines) == 0 {
		return Receipt{}, ErrCartEmpty
	}

	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.Product.ID
	}
	current, err := s.Items.ByIDs(ids)
	if err != nil {
		return Receipt{}, err
	}

	total := decimal.Zero
	items := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		it, ok := current[l.Product.ID]
		if !ok {
			return Receipt{}, fmt.Errorf("item %s: %w", l.Product.ID, ErrNotFound)
		}
		if l.Quantity > it.Stock {
			return Receipt{}, fmt.Errorf("%w for %s (need %d, have %d)", ErrInsufficientStock, it.Name, l.Quantity, it.Stock)
		}
		oi := domain.OrderItem{ItemID: it.ID, ItemName: it.Name, ItemSlug: it.Slug, Quantity: l.Quantity, Price: it.Price}
		total = total.Add(oi.Subtotal())
		items = append(items, oi)
	}

	o := &domain.Order{UserID: userID, TotalAmount: total.Round(2)}
	if err := s.Orders.Create(o, items); err != nil {
		if errors.Is(err, repos.ErrOutOfStock) {
			return Receipt{}, fmt.Errorf("%w: %v", ErrInsufficientStock, err)
		}
		return Receipt{}, err
	}
	r := Receipt{OrderID: o.ID, ServerTotal: o.TotalAmount, ClientTotal: c.Total()}
	c.Clear()
	return r, nil
}

func (s *OrderService) History(userID string) ([]domain.OrderWithItems, error) {
	return s.Orders.ListByUser(userID)
}

// ForUser loads an order only if userID placed it.
func (s *OrderService) ForUser(orderID, userID string) (domain.OrderWithItems, error) {
	o, err := s.Orders.Get(orderID)
	if err != nil {
		return domain.OrderWithItems{}, err
	}
	if o.UserID != userID {
		return domain.OrderWithItems{}, ErrNotFound
	}
	return o, nil
}
