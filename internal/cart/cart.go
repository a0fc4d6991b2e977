// Package cart holds a shopper's in-session cart and mirrors it to session storage.
//
// A Cart is a plain state holder: it merges lines by product id, keeps every quantity
// positive and writes the full snapshot after each mutation. It does not check stock;
// callers compare against Product.Stock before adding.
//
// A Cart is not safe for concurrent use. Open one per request.
package cart

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"

	applog "lootmarket/internal/log"
)

// DefaultKey is the storage key the snapshot lives under.
const DefaultKey = "cart"

// Product is the catalog item as the cart remembers it when it was added.
type Product struct {
	ID       string          `json:"id"`
	Slug     string          `json:"slug,omitempty"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"image_url,omitempty"`
	Stock    int             `json:"stock"`
}

// Line is one (product, quantity) pair.
type Line struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Subtotal is price x quantity for the line.
func (l Line) Subtotal() decimal.Decimal {
	return l.Product.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Cart struct {
	store  Store
	key    string
	lines  []Line
	onFail func(action string, err error)
}

type Option func(*Cart)

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(c *Cart) {
		if key != "" {
			c.key = key
		}
	}
}

// WithFailureLog routes recovered storage failures to fn instead of the process log.
func WithFailureLog(fn func(action string, err error)) Option {
	return func(c *Cart) {
		if fn != nil {
			c.onFail = fn
		}
	}
}

// Load restores the cart saved in store. A missing or unreadable snapshot gives an
// empty cart; a corrupt one is also deleted so it is not read again.
func Load(store Store, opts ...Option) *Cart {
	c := &Cart{
		store: store,
		key:   DefaultKey,
		onFail: func(action string, err error) {
			applog.Warn(nil, action, err, nil)
		},
	}
	for _, o := range opts {
		o(c)
	}

	raw, ok, err := store.Read(c.key)
	if err != nil {
		c.onFail("cart.load.fail", err)
		return c
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return c
	}
	lines, err := Decode(raw)
	if err != nil {
		c.onFail("cart.load.corrupt", err)
		if derr := store.Delete(c.key); derr != nil {
			c.onFail("cart.load.discard.fail", derr)
		}
		return c
	}
	c.lines = lines
	return c
}

// Decode parses a snapshot payload and normalises it: blank ids and non-positive
// quantities are dropped, repeated ids are merged into the first occurrence.
func Decode(raw string) ([]Line, error) {
	var in []Line
	if err := json.Unmarshal([]byte(raw), &in); err != nil {
		return nil, err
	}
	out := make([]Line, 0, len(in))
	idx := make(map[string]int, len(in))
	for _, l := range in {
		if l.Product.ID == "" || l.Quantity <= 0 {
			continue
		}
		if i, seen := idx[l.Product.ID]; seen {
			out[i].Quantity += l.Quantity
			continue
		}
		idx[l.Product.ID] = len(out)
		out = append(out, l)
	}
	return out, nil
}

// Encode renders lines in the snapshot format.
func Encode(lines []Line) (string, error) {
	if lines == nil {
		lines = []Line{}
	}
	b, err := json.Marshal(lines)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Add puts quantity units of p in the cart, growing the existing line if there is one.
// Non-positive quantities are ignored.
func (c *Cart) Add(p Product, quantity int) {
	if quantity <= 0 || p.ID == "" {
		return
	}
	if i := c.find(p.ID); i >= 0 {
		c.lines[i].Quantity += quantity
	} else {
		c.lines = append(c.lines, Line{Product: p, Quantity: quantity})
	}
	c.persist()
}

// Remove drops the line for productID. Absent ids are a no-op.
func (c *Cart) Remove(productID string) {
	if i := c.find(productID); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
	c.persist()
}

// SetQuantity replaces the quantity for productID; quantity <= 0 removes the line.
func (c *Cart) SetQuantity(productID string, quantity int) {
	if quantity <= 0 {
		c.Remove(productID)
		return
	}
	if i := c.find(productID); i >= 0 {
		c.lines[i].Quantity = quantity
	}
	c.persist()
}

func (c *Cart) Clear() {
	c.lines = nil
	c.persist()
}

// Total is the sum of price x quantity over all lines, rounded to cents.
func (c *Cart) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.Subtotal())
	}
	return sum.Round(2)
}

// ItemCount is the number of units in the cart, used for the header badge.
func (c *Cart) ItemCount() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

// Lines returns a copy of the lines in the order they were first added.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Line(productID string) (Line, bool) {
	if i := c.find(productID); i >= 0 {
		return c.lines[i], true
	}
	return Line{}, false
}

func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

func (c *Cart) find(productID string) int {
	for i, l := range c.lines {
		if l.Product.ID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) persist() {
	payload, err := Encode(c.lines)
	if err != nil {
		c.onFail("cart.persist.fail", err)
		return
	}
	if err := c.store.Write(c.key, payload); err != nil {
		c.onFail("cart.persist.fail", err)
	}
}
