package pos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"dinehall/internal/database"
	"dinehall/internal/models"
)

// PostgresStore implements Store on top of the shared connection pool.
type PostgresStore struct {
	db *database.DB
}

func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetTableByCode(ctx context.Context, code string) (*models.DiningTable, error) {
	var t models.DiningTable
	row := s.db.QueryRow(ctx, database.GetTableByCodeSQL, code)
	if err := row.Scan(&t.ID, &t.Code, &t.Name, &t.Status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("table %s: %w", code, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get table: %w", err)
	}
	return &t, nil
}

func (s *PostgresStore) SetTableStatus(ctx context.Context, tableID int, status models.TableStatus) error {
	if err := s.db.Exec(ctx, database.UpdateTableStatusSQL, status, tableID); err != nil {
		return fmt.Errorf("failed to update table status: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateSession(ctx context.Context, sess *models.TableSession) error {
	row := s.db.QueryRow(ctx, database.InsertSessionSQL, sess.ID, sess.TableID, sess.OpenedBy)
	if err := row.Scan(&sess.OpenedAt); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetSession(ctx context.Context, id string) (*models.TableSession, error) {
	var sess models.TableSession
	row := s.db.QueryRow(ctx, database.GetSessionSQL, id)
	err := row.Scan(&sess.ID, &sess.TableID, &sess.OrderID, &sess.OpenedBy, &sess.OpenedAt, &sess.ClosedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("session %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &sess, nil
}

func (s *PostgresStore) GetOpenSessionByTable(ctx context.Context, tableID int) (*models.TableSession, error) {
	var sess models.TableSession
	row := s.db.QueryRow(ctx, database.GetOpenSessionByTableSQL, tableID)
	err := row.Scan(&sess.ID, &sess.TableID, &sess.OrderID, &sess.OpenedBy, &sess.OpenedAt, &sess.ClosedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get open session: %w", err)
	}
	return &sess, nil
}

func (s *PostgresStore) AttachSessionOrder(ctx context.Context, sessionID string, orderID int) error {
	if err := s.db.Exec(ctx, database.AttachSessionOrderSQL, orderID, sessionID); err != nil {
		return fmt.Errorf("failed to attach order to session: %w", err)
	}
	return nil
}

func (s *PostgresStore) CloseSession(ctx context.Context, sessionID string) error {
	if err := s.db.Exec(ctx, database.CloseSessionSQL, sessionID); err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	return nil
}

func (s *PostgresStore) NextOrderSequence(ctx context.Context, prefix string) (int, error) {
	var seq int
	row := s.db.QueryRow(ctx, database.GetNextOrderSequenceSQL, prefix+"%")
	if err := row.Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to get next order sequence: %w", err)
	}
	return seq, nil
}

func (s *PostgresStore) CreateOrder(ctx context.Context, o *models.Order) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, database.InsertOrderSQL,
		o.Number, o.TableID, o.Channel, o.Status,
		o.Subtotal, o.ServiceChargePct, o.ServiceChargeAmt,
		o.VATPct, o.VATAmt, o.DiscountAmt, o.GrandTotal, o.CreatedBy)
	if err := row.Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	_, err = tx.Exec(ctx, database.InsertOrderStatusLogSQL, o.ID, o.Status, o.CreatedBy, "order created")
	if err != nil {
		return fmt.Errorf("failed to log order status: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) GetOrderByNumber(ctx context.Context, number string) (*models.Order, error) {
	var o models.Order
	row := s.db.QueryRow(ctx, database.GetOrderByNumberSQL, number)
	err := row.Scan(&o.ID, &o.Number, &o.TableID, &o.Channel, &o.Status,
		&o.Subtotal, &o.ServiceChargePct, &o.ServiceChargeAmt,
		&o.VATPct, &o.VATAmt, &o.DiscountAmt, &o.GrandTotal,
		&o.CreatedBy, &o.CancelReason, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %s: %w", number, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := s.getOrderItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (s *PostgresStore) GetOrderByID(ctx context.Context, id int) (*models.Order, error) {
	var o models.Order
	row := s.db.QueryRow(ctx, database.GetOrderByIDSQL, id)
	err := row.Scan(&o.ID, &o.Number, &o.TableID, &o.Channel, &o.Status,
		&o.Subtotal, &o.ServiceChargePct, &o.ServiceChargeAmt,
		&o.VATPct, &o.VATAmt, &o.DiscountAmt, &o.GrandTotal,
		&o.CreatedBy, &o.CancelReason, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %d: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := s.getOrderItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (s *PostgresStore) getOrderItems(ctx context.Context, orderID int) ([]models.OrderItem, error) {
	rows, err := s.db.Query(ctx, database.GetOrderItemsSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var (
			item        models.OrderItem
			optionsJSON []byte
		)
		err := rows.Scan(&item.ID, &item.OrderID, &item.MenuItemID, &item.Name,
			&item.Quantity, &item.UnitPrice, &optionsJSON, &item.Notes,
			&item.Status, &item.LineTotal, &item.Printed, &item.VoidReason)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		if len(optionsJSON) > 0 {
			if err := json.Unmarshal(optionsJSON, &item.Options); err != nil {
				return nil, fmt.Errorf("failed to parse item options: %w", err)
			}
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *PostgresStore) UpdateOrder(ctx context.Context, o *models.Order) error {
	err := s.db.Exec(ctx, database.UpdateOrderSQL,
		o.Status, o.Subtotal, o.ServiceChargeAmt, o.VATAmt,
		o.DiscountAmt, o.GrandTotal, o.CancelReason, o.ID)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	return nil
}

func (s *PostgresStore) LogOrderStatus(ctx context.Context, orderID int, status models.OrderStatus, changedBy, notes string) error {
	err := s.db.Exec(ctx, database.InsertOrderStatusLogSQL, orderID, status, changedBy, notes)
	if err != nil {
		return fmt.Errorf("failed to log order status: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertOrderItem(ctx context.Context, item *models.OrderItem) error {
	optionsJSON, err := json.Marshal(item.Options)
	if err != nil {
		return fmt.Errorf("failed to marshal item options: %w", err)
	}

	row := s.db.QueryRow(ctx, database.InsertOrderItemSQL,
		item.OrderID, item.MenuItemID, item.Name, item.Quantity,
		item.UnitPrice, optionsJSON, item.Notes, item.Status, item.LineTotal)
	if err := row.Scan(&item.ID); err != nil {
		return fmt.Errorf("failed to insert order item: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateOrderItem(ctx context.Context, item *models.OrderItem) error {
	err := s.db.Exec(ctx, database.UpdateOrderItemSQL,
		item.Status, item.LineTotal, item.Printed, item.VoidReason, item.ID)
	if err != nil {
		return fmt.Errorf("failed to update order item: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateBill(ctx context.Context, b *models.Bill, o *models.Order, createdBy string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, database.InsertBillSQL,
		b.ID, b.OrderID, b.Subtotal, b.ServiceChargeAmt, b.VATAmt,
		b.DiscountAmt, b.GrandTotal, b.Status, b.CreatedBy)
	if err := row.Scan(&b.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	_, err = tx.Exec(ctx, database.UpdateOrderSQL,
		o.Status, o.Subtotal, o.ServiceChargeAmt, o.VATAmt,
		o.DiscountAmt, o.GrandTotal, o.CancelReason, o.ID)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}

	_, err = tx.Exec(ctx, database.InsertOrderStatusLogSQL, o.ID, o.Status, createdBy, "bill "+b.ID)
	if err != nil {
		return fmt.Errorf("failed to log order status: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) GetBill(ctx context.Context, id string) (*models.Bill, error) {
	b, err := s.scanBill(s.db.QueryRow(ctx, database.GetBillSQL, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("bill %s: %w", id, models.ErrNotFound)
		}
		return nil, err
	}

	payments, err := s.getPayments(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	b.Payments = payments
	return b, nil
}

func (s *PostgresStore) GetActiveBillByOrder(ctx context.Context, orderID int) (*models.Bill, error) {
	b, err := s.scanBill(s.db.QueryRow(ctx, database.GetActiveBillByOrderSQL, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}

	payments, err := s.getPayments(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	b.Payments = payments
	return b, nil
}

func (s *PostgresStore) scanBill(row pgx.Row) (*models.Bill, error) {
	var b models.Bill
	err := row.Scan(&b.ID, &b.OrderID, &b.OrderNumber, &b.Subtotal,
		&b.ServiceChargeAmt, &b.VATAmt, &b.DiscountAmt, &b.GrandTotal,
		&b.Status, &b.VoidReason, &b.CreatedBy, &b.CreatedAt, &b.PaidAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *PostgresStore) getPayments(ctx context.Context, billID string) ([]models.Payment, error) {
	rows, err := s.db.Query(ctx, database.GetPaymentsByBillSQL, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		var p models.Payment
		err := rows.Scan(&p.ID, &p.BillID, &p.Method, &p.Amount,
			&p.Reference, &p.Voided, &p.CreatedBy, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (s *PostgresStore) UpdateBill(ctx context.Context, b *models.Bill, o *models.Order, changedBy string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, database.UpdateBillStatusSQL, b.Status, b.VoidReason, b.PaidAt, b.ID)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}

	if o != nil {
		_, err = tx.Exec(ctx, database.UpdateOrderSQL,
			o.Status, o.Subtotal, o.ServiceChargeAmt, o.VATAmt,
			o.DiscountAmt, o.GrandTotal, o.CancelReason, o.ID)
		if err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}

		_, err = tx.Exec(ctx, database.InsertOrderStatusLogSQL, o.ID, o.Status, changedBy, "bill "+string(b.Status))
		if err != nil {
			return fmt.Errorf("failed to log order status: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) InsertPayment(ctx context.Context, p *models.Payment) error {
	row := s.db.QueryRow(ctx, database.InsertPaymentSQL,
		p.ID, p.BillID, p.Method, p.Amount, p.Reference, p.CreatedBy)
	if err := row.Scan(&p.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}
	return nil
}

func (s *PostgresStore) SalesTotals(ctx context.Context) (SalesReport, error) {
	var report SalesReport
	row := s.db.QueryRow(ctx, database.SalesTotalsSQL)
	if err := row.Scan(&report.TotalPaid, &report.PaidToday); err != nil {
		return SalesReport{}, fmt.Errorf("failed to get sales totals: %w", err)
	}
	return report, nil
}
