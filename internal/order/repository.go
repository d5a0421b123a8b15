package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"socialmart-be/internal/db"
	"socialmart-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	// Checkout turns the buyer's cart into an order in one transaction. build
	// prices the locked cart lines and returns the order to insert.
	Checkout(ctx context.Context, buyerID string, build func(lines []CartLine) (*Order, error)) (*Order, error)
	GetByID(ctx context.Context, orderID string) (*Order, error)
	ListByBuyer(ctx context.Context, buyerID string, opts ListOptions) ([]Order, int, error)
	StatusHistory(ctx context.Context, orderID string) ([]StatusLog, error)
	// UpdateStatus applies a buyer transition and returns the updated order
	// together with the status it moved from.
	UpdateStatus(ctx context.Context, ch StatusChange) (*Order, Status, error)
}

type repository struct {
	db    *sql.DB
	newID func() string
}

func NewRepository(conn *sql.DB, newID func() string) Repository {
	return &repository{db: conn, newID: newID}
}

const orderColumns = `id, order_number, buyer_id, seller_id, items, subtotal,
	shipping_cost, tax_amount, discount_amount, discount_code, total_amount,
	platform_fee, payment_method, payment_currency, payment_status, status,
	fulfillment_status, shipping_address, billing_address, notes,
	created_at, updated_at, delivered_at, completed_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (*Order, error) {
	var (
		o                    Order
		items, shipping      []byte
		billing              []byte
		code, notes          sql.NullString
		delivered, completed sql.NullTime
	)
	err := s.Scan(
		&o.ID, &o.OrderNumber, &o.BuyerID, &o.SellerID, &items, &o.Subtotal,
		&o.ShippingCost, &o.TaxAmount, &o.DiscountAmount, &code, &o.TotalAmount,
		&o.PlatformFee, &o.PaymentMethod, &o.PaymentCurrency, &o.PaymentStatus, &o.Status,
		&o.FulfillmentStatus, &shipping, &billing, &notes,
		&o.CreatedAt, &o.UpdatedAt, &delivered, &completed,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode order items: %w", err)
	}
	if err := json.Unmarshal(shipping, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("decode shipping address: %w", err)
	}
	if len(billing) > 0 {
		var a Address
		if err := json.Unmarshal(billing, &a); err != nil {
			return nil, fmt.Errorf("decode billing address: %w", err)
		}
		o.BillingAddress = &a
	}
	if code.Valid {
		o.DiscountCode = &code.String
	}
	if notes.Valid {
		o.Notes = &notes.String
	}
	if delivered.Valid {
		o.DeliveredAt = &delivered.Time
	}
	if completed.Valid {
		o.CompletedAt = &completed.Time
	}
	return &o, nil
}

func (r *repository) Checkout(ctx context.Context, buyerID string, build func([]CartLine) (*Order, error)) (*Order, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Checkout"),
		zap.String("buyer_id", buyerID),
	)
	start := time.Now()

	var created *Order
	err := db.RunInTx(ctx, r.db, func(tx *sql.Tx) error {
		// 1. Lock the cart row; a concurrent checkout waits here and then
		// finds the cart already emptied.
		var cartID string
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM carts WHERE user_id = $1 FOR UPDATE`, buyerID,
		).Scan(&cartID)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCartNotFound
		}
		if err != nil {
			log.Error("failed to lock cart", zap.Error(err))
			return err
		}

		// 2. Read and lock the lines with their frozen prices. Concurrent
		// merges or quantity edits wait for this transaction.
		lines, err := cartLines(ctx, tx, cartID)
		if err != nil {
			log.Error("failed to load cart lines", zap.Error(err))
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		// 3. Price
		o, err := build(lines)
		if err != nil {
			return err
		}
		if o.ID == "" {
			o.ID = r.newID()
		}

		// 4. Insert order
		if err := insertOrder(ctx, tx, o); err != nil {
			log.Error("failed to insert order", zap.Error(err))
			return err
		}

		// 5. Clear exactly the lines that were priced, the cart row stays
		ids := make([]string, len(lines))
		for i, l := range lines {
			ids[i] = l.ItemID
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM cart_items WHERE cart_id = $1 AND id = ANY($2)`, cartID, pq.Array(ids),
		); err != nil {
			log.Error("failed to clear cart", zap.Error(err))
			return err
		}

		// 6. Initial audit row
		reason := "order created"
		if err := insertLog(ctx, tx, StatusLog{
			ID:            r.newID(),
			OrderID:       o.ID,
			ToStatus:      StatusPending,
			Reason:        &reason,
			ChangedBy:     buyerID,
			ChangedByType: ChangedByBuyer,
			CreatedAt:     o.CreatedAt,
		}); err != nil {
			log.Error("failed to insert status log", zap.Error(err))
			return err
		}

		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("order created",
		zap.String("order_id", created.ID),
		zap.String("order_number", created.OrderNumber),
		zap.Int("lines", len(created.Items)),
		zap.Duration("duration", time.Since(start)),
	)
	return created, nil
}

func cartLines(ctx context.Context, tx *sql.Tx, cartID string) ([]CartLine, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT ci.id, ci.product_id, ci.variant_id, ci.quantity, ci.price_snapshot,
			p.seller_id, p.name, COALESCE(p.images[1], '')
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.added_at ASC, ci.id ASC
		FOR UPDATE OF ci
	`, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []CartLine
	for rows.Next() {
		var l CartLine
		if err := rows.Scan(&l.ItemID, &l.ProductID, &l.VariantID, &l.Quantity, &l.UnitPrice, &l.SellerID, &l.Name, &l.Image); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func insertOrder(ctx context.Context, tx *sql.Tx, o *Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	shipping, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return err
	}
	var billing any
	if o.BillingAddress != nil {
		b, err := json.Marshal(o.BillingAddress)
		if err != nil {
			return err
		}
		billing = string(b)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (
			id, order_number, buyer_id, seller_id, items, subtotal,
			shipping_cost, tax_amount, discount_amount, discount_code, total_amount,
			platform_fee, payment_method, payment_currency, payment_status, status,
			fulfillment_status, shipping_address, billing_address, notes,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $21
		)`,
		o.ID, o.OrderNumber, o.BuyerID, o.SellerID, string(items), o.Subtotal,
		o.ShippingCost, o.TaxAmount, o.DiscountAmount, o.DiscountCode, o.TotalAmount,
		o.PlatformFee, o.PaymentMethod, o.PaymentCurrency, o.PaymentStatus, o.Status,
		o.FulfillmentStatus, string(shipping), billing, o.Notes,
		o.CreatedAt,
	)
	return err
}

func insertLog(ctx context.Context, tx *sql.Tx, l StatusLog) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO order_status_logs (
			id, order_id, from_status, to_status, reason, changed_by, changed_by_type, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		l.ID, l.OrderID, l.FromStatus, l.ToStatus, l.Reason, l.ChangedBy, l.ChangedByType, l.CreatedAt,
	)
	return err
}

func (r *repository) GetByID(ctx context.Context, orderID string) (*Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to get order",
			zap.String("layer", "repository"),
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return nil, err
	}
	return o, nil
}

func (r *repository) ListByBuyer(ctx context.Context, buyerID string, opts ListOptions) ([]Order, int, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "ListByBuyer"),
		zap.String("buyer_id", buyerID),
	)

	where := "WHERE buyer_id = $1"
	args := []any{buyerID}
	if opts.Status != nil {
		args = append(args, *opts.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders `+where, args...).Scan(&total); err != nil {
		log.Error("count query failed", zap.Error(err))
		return nil, 0, err
	}

	args = append(args, opts.Limit, opts.Offset)
	query := fmt.Sprintf(`SELECT %s FROM orders %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("list query failed", zap.Error(err))
		return nil, 0, err
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			log.Error("row scan failed", zap.Error(err))
			return nil, 0, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *repository) StatusHistory(ctx context.Context, orderID string) ([]StatusLog, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, from_status, to_status, reason, changed_by, changed_by_type, created_at
		FROM order_status_logs
		WHERE order_id = $1
		ORDER BY created_at ASC, id ASC
	`, orderID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to load status history",
			zap.String("layer", "repository"),
			zap.String("order_id", orderID),
			zap.Error(err),
		)
		return nil, err
	}
	defer rows.Close()

	logs := make([]StatusLog, 0)
	for rows.Next() {
		var (
			l      StatusLog
			from   sql.NullString
			reason sql.NullString
		)
		if err := rows.Scan(&l.ID, &l.OrderID, &from, &l.ToStatus, &reason, &l.ChangedBy, &l.ChangedByType, &l.CreatedAt); err != nil {
			return nil, err
		}
		if from.Valid {
			s := Status(from.String)
			l.FromStatus = &s
		}
		if reason.Valid {
			l.Reason = &reason.String
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (r *repository) UpdateStatus(ctx context.Context, ch StatusChange) (*Order, Status, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "UpdateStatus"),
		zap.String("order_id", ch.OrderID),
		zap.String("to", string(ch.To)),
	)

	var (
		updated *Order
		from    Status
	)
	err := db.RunInTx(ctx, r.db, func(tx *sql.Tx) error {
		var buyerID string
		err := tx.QueryRowContext(ctx,
			`SELECT buyer_id, status FROM orders WHERE id = $1 FOR UPDATE`, ch.OrderID,
		).Scan(&buyerID, &from)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		if err != nil {
			log.Error("failed to lock order", zap.Error(err))
			return err
		}
		if buyerID != ch.ActorID {
			return ErrOrderNotFound
		}
		if !CanTransition(from, ch.To) {
			return ErrInvalidTransition
		}

		set := "status = $1, updated_at = $2"
		switch ch.To {
		case StatusDelivered:
			set += ", delivered_at = $2"
		case StatusCompleted:
			set += ", completed_at = $2"
		}
		o, err := scanOrder(tx.QueryRowContext(ctx,
			`UPDATE orders SET `+set+` WHERE id = $3 RETURNING `+orderColumns,
			ch.To, ch.At, ch.OrderID,
		))
		if err != nil {
			log.Error("failed to update order", zap.Error(err))
			return err
		}

		if ch.To == StatusCompleted {
			for _, it := range o.Items {
				if _, err := tx.ExecContext(ctx,
					`UPDATE products SET total_sales = total_sales + $1 WHERE id = $2`,
					it.Quantity, it.ProductID,
				); err != nil {
					log.Error("failed to increment total sales", zap.String("product_id", it.ProductID), zap.Error(err))
					return err
				}
			}
		}

		prev := from
		if err := insertLog(ctx, tx, StatusLog{
			ID:            r.newID(),
			OrderID:       o.ID,
			FromStatus:    &prev,
			ToStatus:      ch.To,
			Reason:        ch.Reason,
			ChangedBy:     ch.ActorID,
			ChangedByType: ChangedByBuyer,
			CreatedAt:     ch.At,
		}); err != nil {
			log.Error("failed to insert status log", zap.Error(err))
			return err
		}

		updated = o
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	return updated, from, nil
}
