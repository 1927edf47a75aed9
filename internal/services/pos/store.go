package pos

import (
	"context"

	"github.com/shopspring/decimal"

	"dinehall/internal/models"
)

// SalesReport aggregates settled bills.
type SalesReport struct {
	TotalPaid decimal.Decimal `json:"total_paid"`
	PaidToday decimal.Decimal `json:"paid_today"`
}

// Store is the persistence boundary of the front-of-house engine. Methods
// that touch more than one row are atomic.
type Store interface {
	// Tables and sessions.
	GetTableByCode(ctx context.Context, code string) (*models.DiningTable, error)
	SetTableStatus(ctx context.Context, tableID int, status models.TableStatus) error
	CreateSession(ctx context.Context, s *models.TableSession) error
	GetSession(ctx context.Context, id string) (*models.TableSession, error)
	GetOpenSessionByTable(ctx context.Context, tableID int) (*models.TableSession, error)
	AttachSessionOrder(ctx context.Context, sessionID string, orderID int) error
	CloseSession(ctx context.Context, sessionID string) error

	// Orders and items.
	NextOrderSequence(ctx context.Context, prefix string) (int, error)
	CreateOrder(ctx context.Context, o *models.Order) error
	GetOrderByNumber(ctx context.Context, number string) (*models.Order, error)
	GetOrderByID(ctx context.Context, id int) (*models.Order, error)
	UpdateOrder(ctx context.Context, o *models.Order) error
	LogOrderStatus(ctx context.Context, orderID int, status models.OrderStatus, changedBy, notes string) error
	InsertOrderItem(ctx context.Context, item *models.OrderItem) error
	UpdateOrderItem(ctx context.Context, item *models.OrderItem) error

	// Bills and payments. CreateBill and UpdateBill carry the order so the
	// bill and order status move together.
	CreateBill(ctx context.Context, b *models.Bill, o *models.Order, createdBy string) error
	GetBill(ctx context.Context, id string) (*models.Bill, error)
	GetActiveBillByOrder(ctx context.Context, orderID int) (*models.Bill, error)
	UpdateBill(ctx context.Context, b *models.Bill, o *models.Order, changedBy string) error
	InsertPayment(ctx context.Context, p *models.Payment) error

	SalesTotals(ctx context.Context) (SalesReport, error)
}
