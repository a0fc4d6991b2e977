package services

import (
	"lootmarket/internal/domain"
	"lootmarket/internal/repos"
)

// LowStockThreshold is the quantity below which an item is shown as running out.
const LowStockThreshold = 5

type InventoryService struct {
	Items *repos.ItemRepo
}

func NewInventoryService(items *repos.ItemRepo) *InventoryService {
	return &InventoryService{Items: items}
}

// Availability converts a stock count into IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
func Availability(stock int) domain.Availability {
	status := "OUT_OF_STOCK"
	switch {
	case stock >= LowStockThreshold:
		status = "IN_STOCK"
	case stock > 0:
		status = "LOW_STOCK"
	}
	return domain.Availability{Status: status, Qty: stock}
}

// Check reads the current stock for an item. Unknown items are reported as ErrNotFound.
func (s *InventoryService) Check(itemID string) (domain.Availability, error) {
	it, err := s.Items.Get(itemID)
	if err != nil {
		return domain.Availability{}, err
	}
	return Availability(it.Stock), nil
}

// Restock sets the absolute stock level of an item from the admin inventory form.
func (s *InventoryService) Restock(itemID string, qty int) error {
	return s.Items.SetStock(itemID, qty)
}
