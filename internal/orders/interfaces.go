package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/rxcart-backend/pkg/db/models"
	"github.com/angelmondragon/rxcart-backend/pkg/enums"
)

// Repository defines persistence operations for orders and advance orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateAdvanceOrder(ctx context.Context, advance *models.AdvanceOrder) error
	FindOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindOrderByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*models.Order, error)
	FindAdvanceOrder(ctx context.Context, id uuid.UUID) (*models.AdvanceOrder, error)
	SaveOrder(ctx context.Context, order *models.Order) error
	SaveAdvanceOrder(ctx context.Context, advance *models.AdvanceOrder) error
	UpdateItemQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error
	ListOrders(ctx context.Context, filter ListFilter) ([]models.Order, error)
}

// ListFilter scopes an order listing to one customer or one pharmacy.
type ListFilter struct {
	CustomerID *uuid.UUID
	PharmacyID *uuid.UUID
	Status     *enums.OrderStatus
	Limit      int
	Cursor     string
}
