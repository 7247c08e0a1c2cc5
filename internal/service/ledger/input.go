package ledger

import (
	"fmt"

	"sweet-shop/internal/domain"
	"sweet-shop/pkg/utils"
)

const (
	MaxPurchaseQuantity = 100
	MaxRestockQuantity  = 999999
	MaxPageSize         = 100
)

func validateAdjust(sweetID string, qty, maxQty int) error {
	var c domain.Collector
	if !utils.IsID(sweetID) {
		c.Add("sweet_id", "must be a valid id")
	}
	if qty < 1 || qty > maxQty {
		c.Add("quantity", fmt.Sprintf("must be an integer between 1 and %d", maxQty))
	}
	return c.Err()
}

func validatePage(offset, limit int) (int, int, error) {
	var c domain.Collector
	if offset < 0 {
		c.Add("offset", "must be >= 0")
	}
	if limit < 0 || limit > MaxPageSize {
		c.Add("limit", fmt.Sprintf("must be between 0 and %d", MaxPageSize))
	}
	if limit == 0 {
		limit = 20
	}
	return offset, limit, c.Err()
}
