package database

// Order queries
const (
	InsertOrderSQL = `
		INSERT INTO orders (number, table_id, channel, status, subtotal, service_charge_pct, service_charge_amt,
			vat_pct, vat_amt, discount_amt, grand_total, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at`

	UpdateOrderSQL = `
		UPDATE orders SET status = $1, subtotal = $2, service_charge_amt = $3, vat_amt = $4,
			discount_amt = $5, grand_total = $6, cancel_reason = $7, updated_at = NOW()
		WHERE id = $8`

	GetOrderByNumberSQL = `
		SELECT id, number, table_id, channel, status, subtotal, service_charge_pct, service_charge_amt,
			vat_pct, vat_amt, discount_amt, grand_total, created_by, cancel_reason, created_at, updated_at
		FROM orders WHERE number = $1`

	GetOrderByIDSQL = `
		SELECT id, number, table_id, channel, status, subtotal, service_charge_pct, service_charge_amt,
			vat_pct, vat_amt, discount_amt, grand_total, created_by, cancel_reason, created_at, updated_at
		FROM orders WHERE id = $1`

	GetNextOrderSequenceSQL = `
		SELECT COALESCE(MAX(CAST(SUBSTRING(number FROM 'ORD_[0-9]{8}_([0-9]{3})') AS INTEGER)), 0) + 1
		FROM orders
		WHERE number LIKE $1`

	InsertOrderStatusLogSQL = `
		INSERT INTO order_status_log (order_id, status, changed_by, notes)
		VALUES ($1, $2, $3, $4)`
)

// Order item queries
const (
	InsertOrderItemSQL = `
		INSERT INTO order_items (order_id, menu_item_id, name, quantity, unit_price, options, notes, status, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	UpdateOrderItemSQL = `
		UPDATE order_items SET status = $1, line_total = $2, printed = $3, void_reason = $4
		WHERE id = $5`

	GetOrderItemsSQL = `
		SELECT id, order_id, menu_item_id, name, quantity, unit_price, options, notes, status, line_total, printed, void_reason
		FROM order_items WHERE order_id = $1
		ORDER BY id ASC`
)

// Bill and payment queries
const (
	InsertBillSQL = `
		INSERT INTO bills (id, order_id, subtotal, service_charge_amt, vat_amt, discount_amt, grand_total, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`

	UpdateBillStatusSQL = `
		UPDATE bills SET status = $1, void_reason = $2, paid_at = $3
		WHERE id = $4`

	GetBillSQL = `
		SELECT b.id, b.order_id, o.number, b.subtotal, b.service_charge_amt, b.vat_amt, b.discount_amt,
			b.grand_total, b.status, b.void_reason, b.created_by, b.created_at, b.paid_at
		FROM bills b JOIN orders o ON o.id = b.order_id
		WHERE b.id = $1`

	GetActiveBillByOrderSQL = `
		SELECT b.id, b.order_id, o.number, b.subtotal, b.service_charge_amt, b.vat_amt, b.discount_amt,
			b.grand_total, b.status, b.void_reason, b.created_by, b.created_at, b.paid_at
		FROM bills b JOIN orders o ON o.id = b.order_id
		WHERE b.order_id = $1 AND b.status <> 'void'`

	InsertPaymentSQL = `
		INSERT INTO payments (id, bill_id, method, amount, reference, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	GetPaymentsByBillSQL = `
		SELECT id, bill_id, method, amount, reference, voided, created_by, created_at
		FROM payments WHERE bill_id = $1
		ORDER BY created_at ASC`

	SalesTotalsSQL = `
		SELECT COALESCE(SUM(grand_total), 0),
			COALESCE(SUM(grand_total) FILTER (WHERE paid_at::date = CURRENT_DATE), 0)
		FROM bills WHERE status = 'paid'`
)

// Table and session queries
const (
	GetTableByCodeSQL = `
		SELECT id, code, name, status FROM dining_tables WHERE code = $1`

	UpdateTableStatusSQL = `
		UPDATE dining_tables SET status = $1 WHERE id = $2`

	InsertSessionSQL = `
		INSERT INTO table_sessions (id, table_id, opened_by)
		VALUES ($1, $2, $3)
		RETURNING opened_at`

	GetSessionSQL = `
		SELECT id, table_id, order_id, opened_by, opened_at, closed_at
		FROM table_sessions WHERE id = $1`

	GetOpenSessionByTableSQL = `
		SELECT id, table_id, order_id, opened_by, opened_at, closed_at
		FROM table_sessions WHERE table_id = $1 AND closed_at IS NULL`

	AttachSessionOrderSQL = `
		UPDATE table_sessions SET order_id = $1 WHERE id = $2`

	CloseSessionSQL = `
		UPDATE table_sessions SET closed_at = NOW() WHERE id = $1`
)

// Catalog queries
const (
	GetMenuItemSQL = `
		SELECT id, name, price, options, available
		FROM menu_items WHERE id = $1`
)

// Audit queries
const (
	InsertAuditEventSQL = `
		INSERT INTO audit_log (actor, action, entity_type, entity_id, payload, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
)
