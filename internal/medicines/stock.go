package medicines

import (
	"time"

	"github.com/angelmondragon/rxcart-backend/pkg/db/models"
	"github.com/angelmondragon/rxcart-backend/pkg/enums"
)

const (
	// LowStockThreshold is the quantity below which a medicine reads as low.
	LowStockThreshold = 10
	// ExpiryWarningDays is how close to expiry a medicine reads as expiring soon.
	ExpiryWarningDays = 30
)

// StockStatusOf derives the display stock status. Out of stock wins over
// expiring soon, which wins over low.
func StockStatusOf(m models.Medicine, now time.Time) enums.StockStatus {
	switch {
	case m.Quantity <= 0:
		return enums.StockStatusOutOfStock
	case !m.ExpiryDate.After(now.AddDate(0, 0, ExpiryWarningDays)):
		return enums.StockStatusExpiringSoon
	case m.Quantity < LowStockThreshold:
		return enums.StockStatusLow
	default:
		return enums.StockStatusInStock
	}
}
