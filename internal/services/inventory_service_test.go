package services_test

import (
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"

	"lootmarket/internal/repos"
	"lootmarket/internal/services"
)

// memdb opens a migrated and seeded in-memory database.
func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestInventoryService_Check(t *testing.T) {
	db := memdb(t)
	svc := services.NewInventoryService(repos.NewItemRepo(db))

	a, err := svc.Check("itm-dragon-blade")
	if err != nil {
		t.Fatal(err)
	}
	if a.Status != "IN_STOCK" || a.Qty != 5 {
		t.Fatalf("want IN_STOCK(5), got %+v", a)
	}

	a, err = svc.Check("itm-void-staff")
	if err != nil {
		t.Fatal(err)
	}
	if a.Status != "OUT_OF_STOCK" {
		t.Fatalf("want OUT_OF_STOCK, got %+v", a)
	}

	if err := svc.Restock("itm-void-staff", 2); err != nil {
		t.Fatal(err)
	}
	a, _ = svc.Check("itm-void-staff")
	if a.Status != "LOW_STOCK" || a.Qty != 2 {
		t.Fatalf("want LOW_STOCK(2), got %+v", a)
	}

	if _, err := svc.Check("nope"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
