package cart_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"lootmarket/internal/cart"
)

type cartFeature struct {
	store    *cart.MemoryStore
	cart     *cart.Cart
	products map[string]cart.Product
}

func (f *cartFeature) reset() {
	f.store = nil
	f.cart = nil
	f.products = map[string]cart.Product{}
}

func (f *cartFeature) anEmptySessionStorage() error {
	f.store = cart.NewMemoryStore()
	f.cart = cart.Load(f.store)
	return nil
}

func (f *cartFeature) aProductPricedWithStock(id, price string, stock int) error {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	f.products[id] = cart.Product{ID: id, Name: "Item " + id, Price: p, Stock: stock}
	return nil
}

func (f *cartFeature) iAddOf(qty int, id string) error {
	p, ok := f.products[id]
	if !ok {
		return fmt.Errorf("unknown product %q", id)
	}
	f.cart.Add(p, qty)
	return nil
}

func (f *cartFeature) iSetTheQuantityOfTo(id string, qty int) error {
	f.cart.SetQuantity(id, qty)
	return nil
}

func (f *cartFeature) iRemove(id string) error {
	f.cart.Remove(id)
	return nil
}

func (f *cartFeature) iClearTheCart() error {
	f.cart.Clear()
	return nil
}

func (f *cartFeature) theSessionStorageHoldsUnder(value, key string) error {
	return f.store.Write(key, value)
}

func (f *cartFeature) theCartIsLoaded() error {
	f.cart = cart.Load(f.store)
	return nil
}

func (f *cartFeature) theCartHasLines(n int) error {
	if got := len(f.cart.Lines()); got != n {
		return fmt.Errorf("expected %d lines, got %d", n, got)
	}
	return nil
}

func (f *cartFeature) theLineForHasQuantity(id string, qty int) error {
	l, ok := f.cart.Line(id)
	if !ok {
		return fmt.Errorf("no line for %q", id)
	}
	if l.Quantity != qty {
		return fmt.Errorf("expected quantity %d for %q, got %d", qty, id, l.Quantity)
	}
	return nil
}

func (f *cartFeature) theCartTotalIs(total string) error {
	if got := f.cart.Total().StringFixed(2); got != total {
		return fmt.Errorf("expected total %s, got %s", total, got)
	}
	return nil
}

func (f *cartFeature) theItemCountIs(n int) error {
	if got := f.cart.ItemCount(); got != n {
		return fmt.Errorf("expected item count %d, got %d", n, got)
	}
	return nil
}

func (f *cartFeature) theCartIsEmpty() error {
	if !f.cart.IsEmpty() {
		return fmt.Errorf("expected empty cart, got %d lines", len(f.cart.Lines()))
	}
	return nil
}

func (f *cartFeature) nothingIsStoredUnder(key string) error {
	if v, ok, _ := f.store.Read(key); ok {
		return fmt.Errorf("expected no value under %q, got %q", key, v)
	}
	return nil
}

func InitializeCartScenario(ctx *godog.ScenarioContext) {
	f := &cartFeature{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		f.reset()
		return ctx, nil
	})

	ctx.Step(`^an empty session storage$`, f.anEmptySessionStorage)
	ctx.Step(`^a product "([^"]*)" priced ([0-9.]+) with stock (\d+)$`, f.aProductPricedWithStock)
	ctx.Step(`^the session storage holds "([^"]*)" under "([^"]*)"$`, f.theSessionStorageHoldsUnder)

	ctx.Step(`^I add (\d+) of "([^"]*)"$`, f.iAddOf)
	ctx.Step(`^I set the quantity of "([^"]*)" to (-?\d+)$`, f.iSetTheQuantityOfTo)
	ctx.Step(`^I remove "([^"]*)"$`, f.iRemove)
	ctx.Step(`^I clear the cart$`, f.iClearTheCart)
	ctx.Step(`^the cart is loaded$`, f.theCartIsLoaded)

	ctx.Step(`^the cart has (\d+) lines?$`, f.theCartHasLines)
	ctx.Step(`^the line for "([^"]*)" has quantity (\d+)$`, f.theLineForHasQuantity)
	ctx.Step(`^the cart total is ([0-9.]+)$`, f.theCartTotalIs)
	ctx.Step(`^the item count is (\d+)$`, f.theItemCountIs)
	ctx.Step(`^the cart is empty$`, f.theCartIsEmpty)
	ctx.Step(`^nothing is stored under "([^"]*)"$`, f.nothingIsStoredUnder)
}

func TestCartFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeCartScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
