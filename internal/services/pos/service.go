package pos

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"dinehall/internal/audit"
	"dinehall/internal/catalog"
	"dinehall/internal/config"
	"dinehall/internal/locks"
	"dinehall/internal/logger"
	"dinehall/internal/metrics"
	"dinehall/internal/models"
)

// Service is the front-of-house engine: sessions, orders, bills and
// settlement. All mutations of one order serialize on a per-order lock;
// different orders proceed in parallel.
type Service struct {
	store   Store
	catalog catalog.Catalog
	audit   audit.Emitter
	logger  *logger.Logger
	locks   *locks.Registry
	sem     *semaphore.Weighted
	billing config.BillingConfig
}

// NewService creates the engine. maxConcurrent bounds the number of order
// mutations in flight across all orders.
func NewService(store Store, cat catalog.Catalog, emitter audit.Emitter, log *logger.Logger, billing config.BillingConfig, maxConcurrent int) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = 50
	}
	return &Service{
		store:   store,
		catalog: cat,
		audit:   emitter,
		logger:  log,
		locks:   locks.NewRegistry(billing.LockTimeout()),
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		billing: billing,
	}
}

// withOrder runs fn while holding the order's lock, with the order freshly
// loaded. Lock timeouts surface as ErrOrderBusy so callers can retry.
func (s *Service) withOrder(ctx context.Context, number string, fn func(o *models.Order) error) (*models.Order, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("failed to acquire worker slot: %w", err)
	}
	defer s.sem.Release(1)

	release, err := s.locks.Acquire(number)
	if err != nil {
		metrics.LockTimeouts.Inc()
		return nil, models.ErrOrderBusy
	}
	defer release()

	o, err := s.store.GetOrderByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	if err := fn(o); err != nil {
		return nil, err
	}
	return o, nil
}

// OpenSession opens a service session on a free table and marks it occupied.
func (s *Service) OpenSession(ctx context.Context, tableCode string, req *models.OpenSessionRequest) (*models.TableSession, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	table, err := s.store.GetTableByCode(ctx, tableCode)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.GetOpenSessionByTable(ctx, table.ID); err == nil {
		return nil, models.ErrTableAlreadyOccupied
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	sess := &models.TableSession{
		ID:       uuid.New().String(),
		TableID:  table.ID,
		OpenedBy: req.OpenedBy,
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, err
	}
	if err := s.store.SetTableStatus(ctx, table.ID, models.TableOccupied); err != nil {
		return nil, err
	}

	s.logger.Info("session_opened",
		fmt.Sprintf("Opened session for table %s", tableCode),
		"", map[string]interface{}{"session_id": sess.ID, "table": tableCode})

	s.audit.Emit(models.AuditEvent{
		Actor:      req.OpenedBy,
		Action:     models.AuditSessionOpened,
		EntityType: "session",
		EntityID:   sess.ID,
		Payload:    map[string]interface{}{"table": tableCode},
	})

	return sess, nil
}

// CloseSession closes a session whose order reached a terminal status, and
// moves the table to cleaning.
func (s *Service) CloseSession(ctx context.Context, sessionID, closedBy string) (*models.TableSession, error) {
	sess, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !sess.Open() {
		return nil, models.ErrSessionNotClosable
	}

	if sess.OrderID != nil {
		o, err := s.store.GetOrderByID(ctx, *sess.OrderID)
		if err != nil {
			return nil, err
		}
		if !o.Terminal() {
			return nil, models.ErrSessionNotClosable
		}
	}

	if err := s.store.CloseSession(ctx, sessionID); err != nil {
		return nil, err
	}
	if err := s.store.SetTableStatus(ctx, sess.TableID, models.TableCleaning); err != nil {
		return nil, err
	}

	s.audit.Emit(models.AuditEvent{
		Actor:      closedBy,
		Action:     models.AuditSessionClosed,
		EntityType: "session",
		EntityID:   sessionID,
	})

	return s.store.GetSession(ctx, sessionID)
}

// FreeTable returns a cleaned table to service.
func (s *Service) FreeTable(ctx context.Context, tableCode string) (*models.DiningTable, error) {
	table, err := s.store.GetTableByCode(ctx, tableCode)
	if err != nil {
		return nil, err
	}

	if _, err := s.store.GetOpenSessionByTable(ctx, table.ID); err == nil {
		return nil, models.ErrTableAlreadyOccupied
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}

	if err := s.store.SetTableStatus(ctx, table.ID, models.TableFree); err != nil {
		return nil, err
	}
	table.Status = models.TableFree
	return table, nil
}

// CreateOrder opens a new order, bound to a table session or staff-entered.
func (s *Service) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	o := &models.Order{
		Channel:          models.ChannelStaff,
		Status:           models.OrderOpen,
		ServiceChargePct: s.billing.ServiceChargePct,
		VATPct:           s.billing.VATPct,
		CreatedBy:        req.CreatedBy,
	}

	var sess *models.TableSession
	if req.SessionID != nil {
		var err error
		sess, err = s.store.GetSession(ctx, *req.SessionID)
		if err != nil {
			return nil, err
		}
		if !sess.Open() {
			return nil, fmt.Errorf("session %s is closed: %w", sess.ID, models.ErrNotFound)
		}
		if sess.OrderID != nil {
			bound, err := s.store.GetOrderByID(ctx, *sess.OrderID)
			if err != nil {
				return nil, err
			}
			if !bound.Terminal() {
				return nil, models.ErrSessionOrderActive
			}
		}
		o.Channel = models.ChannelTable
		o.TableID = &sess.TableID
	}

	number, err := s.nextOrderNumber(ctx)
	if err != nil {
		return nil, err
	}
	o.Number = number
	o.Recompute()

	if err := s.store.CreateOrder(ctx, o); err != nil {
		return nil, err
	}

	if sess != nil {
		if err := s.store.AttachSessionOrder(ctx, sess.ID, o.ID); err != nil {
			return nil, err
		}
	}

	metrics.OrdersCreated.Inc()
	s.logger.Info("order_created",
		fmt.Sprintf("Created order %s", o.Number),
		"", map[string]interface{}{"order_number": o.Number, "channel": o.Channel})

	s.audit.Emit(models.AuditEvent{
		Actor:      req.CreatedBy,
		Action:     models.AuditOrderCreated,
		EntityType: "order",
		EntityID:   o.Number,
		Payload:    map[string]interface{}{"channel": o.Channel},
	})

	return o, nil
}

// nextOrderNumber generates numbers of the form ORD_YYYYMMDD_NNN, with the
// sequence restarting each day.
func (s *Service) nextOrderNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("ORD_%s_", time.Now().Format("20060102"))
	seq, err := s.store.NextOrderSequence(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%03d", prefix, seq), nil
}

// GetOrder returns the order with its items.
func (s *Service) GetOrder(ctx context.Context, number string) (*models.Order, error) {
	return s.store.GetOrderByNumber(ctx, number)
}

// AddItem appends a line item, snapshotting name, price and option
// surcharges from the catalog, and recomputes the order totals.
func (s *Service) AddItem(ctx context.Context, number string, req *models.AddItemRequest) (*models.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var added *models.OrderItem
	o, err := s.withOrder(ctx, number, func(o *models.Order) error {
		if !o.Mutable() {
			return models.ErrOrderNotMutable
		}

		menuItem, err := s.catalog.GetMenuItem(ctx, req.MenuItemID)
		if err != nil {
			return err
		}

		var options []models.SelectedOption
		for _, name := range req.Options {
			opt, ok := menuItem.Option(name)
			if !ok {
				return fmt.Errorf("option %q not offered by %s: %w", name, menuItem.Name, models.ErrMenuItemUnavailable)
			}
			options = append(options, opt)
		}

		item := models.OrderItem{
			OrderID:    o.ID,
			MenuItemID: menuItem.ID,
			Name:       menuItem.Name,
			Quantity:   req.Quantity,
			UnitPrice:  menuItem.Price,
			Options:    options,
			Notes:      req.Notes,
			Status:     models.ItemPending,
		}
		item.ComputeLineTotal()

		if err := s.store.InsertOrderItem(ctx, &item); err != nil {
			return err
		}
		o.Items = append(o.Items, item)
		o.Recompute()
		if err := s.store.UpdateOrder(ctx, o); err != nil {
			return err
		}

		added = &o.Items[len(o.Items)-1]
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ItemsAdded.Inc()
	s.audit.Emit(models.AuditEvent{
		Actor:      req.AddedBy,
		Action:     models.AuditItemAdded,
		EntityType: "order",
		EntityID:   number,
		Payload: map[string]interface{}{
			"item_id":    added.ID,
			"name":       added.Name,
			"quantity":   added.Quantity,
			"line_total": added.LineTotal,
		},
	})

	return o, nil
}

// Submit sends the order to the kitchen. Empty orders cannot be submitted.
func (s *Service) Submit(ctx context.Context, number, submittedBy string) (*models.Order, error) {
	o, err := s.withOrder(ctx, number, func(o *models.Order) error {
		if o.Status != models.OrderOpen {
			return fmt.Errorf("%s -> submitted: %w", o.Status, models.ErrInvalidOrderTransition)
		}
		if len(o.ActiveItems()) == 0 {
			return models.ErrEmptyOrder
		}

		if err := o.AdvanceTo(models.OrderSubmitted); err != nil {
			return err
		}
		for _, item := range o.ActiveItems() {
			if !item.Printed {
				item.Printed = true
				if err := s.store.UpdateOrderItem(ctx, item); err != nil {
					return err
				}
			}
		}
		if err := s.store.UpdateOrder(ctx, o); err != nil {
			return err
		}
		return s.store.LogOrderStatus(ctx, o.ID, o.Status, submittedBy, "submitted to kitchen")
	})
	if err != nil {
		return nil, err
	}

	s.audit.Emit(models.AuditEvent{
		Actor:      submittedBy,
		Action:     models.AuditOrderSubmitted,
		EntityType: "order",
		EntityID:   number,
	})

	return o, nil
}

// SetItemStatus advances one item through the kitchen lifecycle and derives
// the order readiness status from the item set. Order status never regresses.
func (s *Service) SetItemStatus(ctx context.Context, number string, itemID int, req *models.SetItemStatusRequest) (*models.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Status == models.ItemVoid {
		return nil, models.ErrVoidReasonRequired
	}

	var statusChanged models.OrderStatus
	o, err := s.withOrder(ctx, number, func(o *models.Order) error {
		if !o.Mutable() {
			return models.ErrOrderNotMutable
		}
		if o.Status == models.OrderOpen {
			return fmt.Errorf("order not submitted: %w", models.ErrInvalidItemTransition)
		}

		item, err := o.FindItem(itemID)
		if err != nil {
			return err
		}
		if !item.Status.CanTransition(req.Status) {
			if item.Status == models.ItemServed {
				return models.ErrItemAlreadyServed
			}
			return fmt.Errorf("%s -> %s: %w", item.Status, req.Status, models.ErrInvalidItemTransition)
		}

		item.Status = req.Status
		if err := s.store.UpdateOrderItem(ctx, item); err != nil {
			return err
		}

		if o.AdvanceReadiness() {
			statusChanged = o.Status
			if err := s.store.UpdateOrder(ctx, o); err != nil {
				return err
			}
			return s.store.LogOrderStatus(ctx, o.ID, o.Status, req.ChangedBy, "derived from item statuses")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Emit(models.AuditEvent{
		Actor:      req.ChangedBy,
		Action:     models.AuditItemStatus,
		EntityType: "order",
		EntityID:   number,
		Payload:    map[string]interface{}{"item_id": itemID, "status": req.Status},
	})
	if statusChanged != "" {
		s.audit.Emit(models.AuditEvent{
			Actor:      req.ChangedBy,
			Action:     models.AuditOrderStatus,
			EntityType: "order",
			EntityID:   number,
			Payload:    map[string]interface{}{"status": statusChanged},
		})
	}

	return o, nil
}

// VoidItem voids a not-yet-served item and recomputes the totals.
func (s *Service) VoidItem(ctx context.Context, number string, itemID int, req *models.VoidItemRequest) (*models.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	o, err := s.withOrder(ctx, number, func(o *models.Order) error {
		if !o.Mutable() {
			return models.ErrOrderNotMutable
		}

		item, err := o.FindItem(itemID)
		if err != nil {
			return err
		}
		if item.Status == models.ItemServed {
			return models.ErrItemAlreadyServed
		}
		if !item.Status.CanTransition(models.ItemVoid) {
			return fmt.Errorf("%s -> void: %w", item.Status, models.ErrInvalidItemTransition)
		}

		item.Status = models.ItemVoid
		item.VoidReason = &req.Reason
		if err := s.store.UpdateOrderItem(ctx, item); err != nil {
			return err
		}

		o.Recompute()
		o.AdvanceReadiness()
		return s.store.UpdateOrder(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	metrics.ItemsVoided.Inc()
	s.audit.Emit(models.AuditEvent{
		Actor:      req.VoidedBy,
		Action:     models.AuditItemVoided,
		EntityType: "order",
		EntityID:   number,
		Payload:    map[string]interface{}{"item_id": itemID, "reason": req.Reason},
	})

	return o, nil
}

// ApplyDiscount replaces the order's discount and recomputes the totals.
// The discount may never exceed the current subtotal.
func (s *Service) ApplyDiscount(ctx context.Context, number string, req *models.DiscountRequest) (*models.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	o, err := s.withOrder(ctx, number, func(o *models.Order) error {
		if !o.Mutable() {
			return models.ErrOrderNotMutable
		}
		if req.Amount.GreaterThan(o.Subtotal) {
			return models.ErrDiscountExceedsSubtotal
		}

		o.DiscountAmt = req.Amount
		o.Recompute()
		return s.store.UpdateOrder(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Emit(models.AuditEvent{
		Actor:      req.AppliedBy,
		Action:     models.AuditDiscountApplied,
		EntityType: "order",
		EntityID:   number,
		Payload:    map[string]interface{}{"amount": req.Amount},
	})

	return o, nil
}

// Cancel cancels a pre-billed order, voiding every item not yet served.
// Totals are left as last computed so the cancellation is auditable.
func (s *Service) Cancel(ctx context.Context, number string, req *models.CancelOrderRequest) (*models.Order, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	o, err := s.withOrder(ctx, number, func(o *models.Order) error {
		if err := o.AdvanceTo(models.OrderCancelled); err != nil {
			return err
		}

		for idx := range o.Items {
			item := &o.Items[idx]
			if item.Status.Terminal() {
				continue
			}
			item.Status = models.ItemVoid
			item.VoidReason = &req.Reason
			if err := s.store.UpdateOrderItem(ctx, item); err != nil {
				return err
			}
		}

		o.CancelReason = &req.Reason
		if err := s.store.UpdateOrder(ctx, o); err != nil {
			return err
		}
		return s.store.LogOrderStatus(ctx, o.ID, o.Status, req.CancelledBy, req.Reason)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Emit(models.AuditEvent{
		Actor:      req.CancelledBy,
		Action:     models.AuditOrderCancelled,
		EntityType: "order",
		EntityID:   number,
		Payload:    map[string]interface{}{"reason": req.Reason},
	})

	return o, nil
}

// CreateBill freezes the order's totals into an immutable bill. The order
// must be fully served and have no other active bill.
func (s *Service) CreateBill(ctx context.Context, number, createdBy string) (*models.Bill, error) {
	if createdBy == "" {
		return nil, fmt.Errorf("created_by: %w", models.ErrMissingReference)
	}

	var bill *models.Bill
	_, err := s.withOrder(ctx, number, func(o *models.Order) error {
		if o.Status != models.OrderServed {
			return models.ErrOrderNotReady
		}

		if _, err := s.store.GetActiveBillByOrder(ctx, o.ID); err == nil {
			return models.ErrBillAlreadyExists
		} else if !errors.Is(err, models.ErrNotFound) {
			return err
		}

		bill = models.NewBillFromOrder(uuid.New().String(), o, createdBy)
		if err := o.AdvanceTo(models.OrderBilled); err != nil {
			return err
		}
		return s.store.CreateBill(ctx, bill, o, createdBy)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Emit(models.AuditEvent{
		Actor:      createdBy,
		Action:     models.AuditBillCreated,
		EntityType: "bill",
		EntityID:   bill.ID,
		Payload:    map[string]interface{}{"order_number": number, "grand_total": bill.GrandTotal},
	})

	return bill, nil
}

// GetBill returns a bill with its payments.
func (s *Service) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	return s.store.GetBill(ctx, billID)
}

// RecordPayment appends a payment to an unpaid bill. The running sum may
// exceed the grand total only within the configured tolerance; reaching the
// grand total settles the bill and moves the order to PAID.
func (s *Service) RecordPayment(ctx context.Context, billID string, req *models.PaymentRequest) (*models.Bill, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ref, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}

	var (
		bill    *models.Bill
		settled bool
	)
	_, err = s.withOrder(ctx, ref.OrderNumber, func(o *models.Order) error {
		bill, err = s.store.GetBill(ctx, billID)
		if err != nil {
			return err
		}
		if bill.Status != models.BillUnpaid {
			return models.ErrBillNotPayable
		}

		newSum := bill.PaidSum().Add(req.Amount)
		if newSum.GreaterThan(bill.GrandTotal.Add(s.billing.PaymentTolerance)) {
			return models.ErrOverpaymentNotAllowed
		}

		payment := models.Payment{
			ID:        uuid.New().String(),
			BillID:    bill.ID,
			Method:    req.Method,
			Amount:    req.Amount,
			Reference: req.Reference,
			CreatedBy: req.ReceivedBy,
		}
		if err := s.store.InsertPayment(ctx, &payment); err != nil {
			return err
		}
		bill.Payments = append(bill.Payments, payment)

		if newSum.GreaterThanOrEqual(bill.GrandTotal) {
			now := time.Now().UTC()
			bill.Status = models.BillPaid
			bill.PaidAt = &now
			if err := o.AdvanceTo(models.OrderPaid); err != nil {
				return err
			}
			if err := s.store.UpdateBill(ctx, bill, o, req.ReceivedBy); err != nil {
				return err
			}
			settled = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.PaymentsRecorded.WithLabelValues(string(req.Method)).Inc()
	s.audit.Emit(models.AuditEvent{
		Actor:      req.ReceivedBy,
		Action:     models.AuditPaymentRecorded,
		EntityType: "bill",
		EntityID:   billID,
		Payload:    map[string]interface{}{"method": req.Method, "amount": req.Amount},
	})
	if settled {
		metrics.BillsSettled.Inc()
		s.audit.Emit(models.AuditEvent{
			Actor:      req.ReceivedBy,
			Action:     models.AuditBillSettled,
			EntityType: "bill",
			EntityID:   billID,
			Payload:    map[string]interface{}{"grand_total": bill.GrandTotal},
		})
	}

	return bill, nil
}

// VoidBill voids an unpaid bill with no recorded payments and reopens the
// order for correction at SERVED.
func (s *Service) VoidBill(ctx context.Context, billID string, req *models.VoidItemRequest) (*models.Bill, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ref, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}

	var bill *models.Bill
	_, err = s.withOrder(ctx, ref.OrderNumber, func(o *models.Order) error {
		bill, err = s.store.GetBill(ctx, billID)
		if err != nil {
			return err
		}
		if bill.Status != models.BillUnpaid {
			return models.ErrBillNotPayable
		}
		if !bill.PaidSum().IsZero() {
			return models.ErrBillHasPayments
		}

		bill.Status = models.BillVoid
		bill.VoidReason = &req.Reason
		if err := o.AdvanceTo(models.OrderServed); err != nil {
			return err
		}
		return s.store.UpdateBill(ctx, bill, o, req.VoidedBy)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Emit(models.AuditEvent{
		Actor:      req.VoidedBy,
		Action:     models.AuditBillVoided,
		EntityType: "bill",
		EntityID:   billID,
		Payload:    map[string]interface{}{"reason": req.Reason},
	})

	return bill, nil
}

// SalesReport returns settled-bill aggregates.
func (s *Service) SalesReport(ctx context.Context) (SalesReport, error) {
	return s.store.SalesTotals(ctx)
}
