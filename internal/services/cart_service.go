package services

import (
	"errors"
	"fmt"

	"lootmarket/internal/cart"
	"lootmarket/internal/domain"
	"lootmarket/internal/repos"
)

var ErrInsufficientStock = errors.New("not enough stock")

type CartService struct {
	Items   *repos.ItemRepo
	Storage *repos.SessionStorageRepo
	Key     string
}

func NewCartService(items *repos.ItemRepo, storage *repos.SessionStorageRepo, key string) *CartService {
	if key == "" {
		key = cart.DefaultKey
	}
	return &CartService{Items: items, Storage: storage, Key: key}
}

// Open restores the cart saved for the session. It never fails: unreadable state
// yields an empty cart.
func (s *CartService) Open(sid string, opts ...cart.Option) *cart.Cart {
	opts = append([]cart.Option{cart.WithKey(s.Key)}, opts...)
	if sid == "" {
		// no session to persist against: the cart lives for this request only
		return cart.Load(cart.NewMemoryStore(), opts...)
	}
	return cart.Load(s.Storage.Scope(sid), opts...)
}

// Discard drops everything stored for the session, the saved cart included.
func (s *CartService) Discard(sid string) error {
	if sid == "" {
		return nil
	}
	return s.Storage.DeleteSession(sid)
}

// ProductFromItem is the snapshot of an item the cart keeps.
func ProductFromItem(it domain.Item) cart.Product {
	return cart.Product{
		ID:       it.ID,
		Slug:     it.Slug,
		Name:     it.Name,
		Price:    it.Price,
		ImageURL: it.ImageURL,
		Stock:    it.Stock,
	}
}

// Add puts qty units of the item in c. Units already in the cart count against stock.
func (s *CartService) Add(c *cart.Cart, itemID string, qty int) (domain.Item, error) {
	it, err := s.Items.Get(itemID)
	if err != nil {
		return domain.Item{}, err
	}
	if qty <= 0 {
		return it, nil
	}
	inCart := 0
	if l, ok := c.Line(it.ID); ok {
		inCart = l.Quantity
	}
	if inCart+qty > it.Stock {
		return it, fmt.Errorf("%w: %d available, %d already in cart", ErrInsufficientStock, it.Stock, inCart)
	}
	c.Add(ProductFromItem(it), qty)
	return it, nil
}

// Update sets the line quantity, clamped to the stock known when the item was added.
// It returns the quantity that was applied; 0 means the line is gone.
func (s *CartService) Update(c *cart.Cart, itemID string, qty int) int {
	l, ok := c.Line(itemID)
	if !ok {
		return 0
	}
	if qty > l.Product.Stock {
		qty = l.Product.Stock
	}
	c.SetQuantity(itemID, qty)
	if qty < 0 {
		return 0
	}
	return qty
}
