package cart_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lootmarket/internal/cart"
)

func product(id, price string, stock int) cart.Product {
	return cart.Product{ID: id, Slug: id, Name: "Item " + id, Price: decimal.RequireFromString(price), Stock: stock}
}

type failures struct{ actions []string }

func (f *failures) record(action string, _ error) { f.actions = append(f.actions, action) }

func newCart(t *testing.T, store cart.Store) (*cart.Cart, *failures) {
	t.Helper()
	f := &failures{}
	return cart.Load(store, cart.WithFailureLog(f.record)), f
}

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestAddAccumulatesSameProduct(t *testing.T) {
	c, _ := newCart(t, cart.NewMemoryStore())
	a := product("A", "10.00", 5)

	c.Add(a, 2)
	c.Add(a, 3)

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "A", lines[0].Product.ID)
	assert.Equal(t, 5, lines[0].Quantity)
	assert.True(t, c.Total().Equal(money("50.00")), "total = %s", c.Total())
	assert.Equal(t, "50.00", c.Total().StringFixed(2))
}

func TestAddDoesNotEnforceStock(t *testing.T) {
	c, _ := newCart(t, cart.NewMemoryStore())
	c.Add(product("A", "1.00", 1), 4)

	l, ok := c.Line("A")
	require.True(t, ok)
	assert.Equal(t, 4, l.Quantity)
}

func TestAddIgnoresNonPositiveQuantity(t *testing.T) {
	store := cart.NewMemoryStore()
	c, _ := newCart(t, store)

	c.Add(product("A", "1.00", 3), 0)
	c.Add(product("A", "1.00", 3), -2)

	assert.True(t, c.IsEmpty())
	_, ok, _ := store.Read(cart.DefaultKey)
	assert.False(t, ok, "ignored add must not write")
}

func TestAddKeepsInsertionOrder(t *testing.T) {
	c, _ := newCart(t, cart.NewMemoryStore())
	c.Add(product("B", "2.00", 9), 1)
	c.Add(product("A", "1.00", 9), 1)
	c.Add(product("B", "2.00", 9), 1)

	lines := c.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "B", lines[0].Product.ID)
	assert.Equal(t, "A", lines[1].Product.ID)
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	c, _ := newCart(t, cart.NewMemoryStore())
	c.Add(product("B", "25.50", 10), 2)

	c.SetQuantity("B", 0)

	assert.True(t, c.IsEmpty())
	assert.Equal(t, 0, c.ItemCount())
	assert.Equal(t, "0.00", c.Total().StringFixed(2))
}

func TestSetQuantityNegativeEqualsRemove(t *testing.T) {
	viaSet, _ := newCart(t, cart.NewMemoryStore())
	viaRemove, _ := newCart(t, cart.NewMemoryStore())
	for _, c := range []*cart.Cart{viaSet, viaRemove} {
		c.Add(product("A", "3.00", 10), 1)
		c.Add(product("B", "4.00", 10), 2)
	}

	viaSet.SetQuantity("A", -7)
	viaRemove.Remove("A")

	assert.Equal(t, viaRemove.Lines(), viaSet.Lines())
	_, ok := viaSet.Line("A")
	assert.False(t, ok)
}

func TestSetQuantityReplaces(t *testing.T) {
	c, _ := newCart(t, cart.NewMemoryStore())
	c.Add(product("A", "3.00", 10), 1)

	c.SetQuantity("A", 4)

	l, _ := c.Line("A")
	assert.Equal(t, 4, l.Quantity)
	assert.Equal(t, "12.00", c.Total().StringFixed(2))
}

func TestMissingLinesAreNoOps(t *testing.T) {
	c, f := newCart(t, cart.NewMemoryStore())
	c.Add(product("A", "3.00", 10), 1)

	c.Remove("nope")
	c.SetQuantity("nope", 3)

	require.Len(t, c.Lines(), 1)
	assert.Equal(t, 1, c.ItemCount())
	assert.Empty(t, f.actions)
}

func TestClearTwice(t *testing.T) {
	store := cart.NewMemoryStore()
	c, f := newCart(t, store)
	c.Add(product("A", "3.00", 10), 1)

	c.Clear()
	assert.True(t, c.IsEmpty())
	c.Clear()
	assert.True(t, c.IsEmpty())
	assert.Empty(t, f.actions)

	raw, ok, err := store.Read(cart.DefaultKey)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[]`, raw)
}

func TestTotalAndCountFollowLines(t *testing.T) {
	c, _ := newCart(t, cart.NewMemoryStore())
	assert.Equal(t, 0, c.ItemCount())
	assert.True(t, c.Total().IsZero())

	c.Add(product("A", "0.10", 99), 3)
	c.Add(product("B", "19.99", 99), 2)
	assert.Equal(t, 5, c.ItemCount())
	assert.Equal(t, "40.28", c.Total().StringFixed(2))

	c.SetQuantity("B", 1)
	assert.Equal(t, 4, c.ItemCount())
	assert.Equal(t, "20.29", c.Total().StringFixed(2))

	c.Remove("A")
	c.Remove("B")
	assert.Equal(t, 0, c.ItemCount())
	assert.True(t, c.IsEmpty())
}

func TestTotalRoundsToCents(t *testing.T) {
	c, _ := newCart(t, cart.NewMemoryStore())
	c.Add(product("A", "0.333", 99), 3)

	assert.Equal(t, "1.00", c.Total().StringFixed(2))
	assert.Equal(t, int32(-2), c.Total().Exponent())
}

func TestLinesReturnsCopy(t *testing.T) {
	c, _ := newCart(t, cart.NewMemoryStore())
	c.Add(product("A", "1.00", 9), 1)

	lines := c.Lines()
	lines[0].Quantity = 42

	l, _ := c.Line("A")
	assert.Equal(t, 1, l.Quantity)
}

func TestEveryMutationPersists(t *testing.T) {
	store := cart.NewMemoryStore()
	c, _ := newCart(t, store)

	c.Add(product("A", "2.50", 9), 2)
	reloaded, _ := newCart(t, store)
	assert.Equal(t, 2, reloaded.ItemCount())

	c.SetQuantity("A", 5)
	reloaded, _ = newCart(t, store)
	assert.Equal(t, 5, reloaded.ItemCount())
	assert.Equal(t, "12.50", reloaded.Total().StringFixed(2))

	c.Remove("A")
	reloaded, _ = newCart(t, store)
	assert.True(t, reloaded.IsEmpty())
}

func TestRoundTrip(t *testing.T) {
	store := cart.NewMemoryStore()
	c, _ := newCart(t, store)
	c.Add(product("A", "10.00", 5), 2)
	c.Add(cart.Product{ID: "B", Name: "Bow", Price: money("25.50"), ImageURL: "/media/items/b.png", Stock: 3}, 1)

	raw, ok, err := store.Read(cart.DefaultKey)
	require.NoError(t, err)
	require.True(t, ok)

	lines, err := cart.Decode(raw)
	require.NoError(t, err)
	assertSameLines(t, c.Lines(), lines)

	reloaded, _ := newCart(t, store)
	assertSameLines(t, c.Lines(), reloaded.Lines())
	assert.True(t, c.Total().Equal(reloaded.Total()))
}

func TestEncodeEmpty(t *testing.T) {
	raw, err := cart.Encode(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestLoadCorruptPayload(t *testing.T) {
	store := cart.NewMemoryStore()
	require.NoError(t, store.Write(cart.DefaultKey, "{not valid json"))

	c, f := newCart(t, store)

	assert.True(t, c.IsEmpty())
	assert.Equal(t, []string{"cart.load.corrupt"}, f.actions)
	_, ok, _ := store.Read(cart.DefaultKey)
	assert.False(t, ok, "corrupt payload should be discarded")
}

func TestLoadEmptyAndNullPayloads(t *testing.T) {
	for _, raw := range []string{"", "   ", "null", "[]"} {
		store := cart.NewMemoryStore()
		require.NoError(t, store.Write(cart.DefaultKey, raw))

		c, f := newCart(t, store)
		assert.True(t, c.IsEmpty(), "payload %q", raw)
		assert.Empty(t, f.actions, "payload %q", raw)
	}
}

func TestLoadNormalisesPayload(t *testing.T) {
	store := cart.NewMemoryStore()
	raw := `[
	  {"product":{"id":"A","name":"Axe","price":"10","stock":9},"quantity":2},
	  {"product":{"id":"","name":"ghost","price":"1","stock":1},"quantity":1},
	  {"product":{"id":"B","name":"Bow","price":"5","stock":9},"quantity":0},
	  {"product":{"id":"A","name":"Axe","price":"10","stock":9},"quantity":3}
	]`
	require.NoError(t, store.Write(cart.DefaultKey, raw))

	c, _ := newCart(t, store)

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, "A", lines[0].Product.ID)
	assert.Equal(t, 5, lines[0].Quantity)
}

func TestCustomKey(t *testing.T) {
	store := cart.NewMemoryStore()
	c := cart.Load(store, cart.WithKey("basket"))
	c.Add(product("A", "1.00", 1), 1)

	_, ok, _ := store.Read("basket")
	assert.True(t, ok)
	_, ok, _ = store.Read(cart.DefaultKey)
	assert.False(t, ok)
}

func TestWriteFailureKeepsState(t *testing.T) {
	store := &cart.MemoryStore{MaxBytes: 8}
	c, f := newCart(t, store)

	c.Add(product("A", "10.00", 5), 2)

	assert.Equal(t, 2, c.ItemCount())
	assert.Equal(t, "20.00", c.Total().StringFixed(2))
	assert.Equal(t, []string{"cart.persist.fail"}, f.actions)
}

type brokenStore struct{ err error }

func (b brokenStore) Read(string) (string, bool, error) { return "", false, b.err }
func (b brokenStore) Write(string, string) error        { return b.err }
func (b brokenStore) Delete(string) error               { return b.err }

func TestUnavailableStore(t *testing.T) {
	c, f := newCart(t, brokenStore{err: errors.New("storage disabled")})
	assert.True(t, c.IsEmpty())

	c.Add(product("A", "1.50", 5), 2)
	c.Clear()

	assert.True(t, c.IsEmpty())
	assert.Equal(t, []string{"cart.load.fail", "cart.persist.fail", "cart.persist.fail"}, f.actions)
}

func assertSameLines(t *testing.T, want, got []cart.Line) {
	t.Helper()
	require.Len(t, got, len(want))
	byID := map[string]cart.Line{}
	for _, l := range got {
		byID[l.Product.ID] = l
	}
	for _, w := range want {
		g, ok := byID[w.Product.ID]
		require.True(t, ok, "missing line %s", w.Product.ID)
		assert.Equal(t, w.Quantity, g.Quantity)
		assert.Equal(t, w.Product.Name, g.Product.Name)
		assert.Equal(t, w.Product.ImageURL, g.Product.ImageURL)
		assert.Equal(t, w.Product.Stock, g.Product.Stock)
		assert.True(t, w.Product.Price.Equal(g.Product.Price), "price %s != %s", w.Product.Price, g.Product.Price)
	}
}
