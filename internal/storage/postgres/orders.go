package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/routeshop/internal/domain/errors"
	"github.com/polkiloo/routeshop/internal/domain/model"
)

const orderColumns = `id, buyer_id, buyer_name, card_hash, card_last4, amount, products, referral_code,
                      status, reject_reason, external_ref, fulfillment, created_at, resolved_at`

type orderRepository struct {
	storage *Storage
}

func scanOrder(row pgx.Row) (*model.Order, error) {
	var (
		o         model.Order
		buyerName *string
		cardHash  *string
	)
	err := row.Scan(&o.ID, &o.BuyerID, &buyerName, &cardHash, &o.Proof.Last4, &o.Amount, &o.Products, &o.ReferralCode,
		&o.Status, &o.RejectReason, &o.ExternalRef, &o.Fulfillment, &o.CreatedAt, &o.ResolvedAt)
	if err != nil {
		return nil, err
	}
	if buyerName != nil {
		o.BuyerName = *buyerName
	}
	if cardHash != nil {
		o.Proof.Hash = *cardHash
	}
	return &o, nil
}

func collectOrders(rows pgx.Rows) ([]model.Order, error) {
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *orderRepository) CreatePending(ctx context.Context, n model.NewOrder) (*model.Order, error) {
	const query = `INSERT INTO orders (buyer_id, buyer_name, card_hash, card_last4, amount, products, referral_code, status)
                   VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending')
                   RETURNING ` + orderColumns
	row := r.storage.pool.QueryRow(ctx, query, n.BuyerID, nullable(n.BuyerName), nullable(n.Proof.Hash), n.Proof.Last4,
		n.Amount, n.Products, n.ReferralCode)
	order, err := scanOrder(row)
	if err != nil {
		switch pgCode(err) {
		case pgerrcode.UniqueViolation:
			return nil, fmt.Errorf("%w: buyer %d already has a pending order", domainErrors.ErrConflict, n.BuyerID)
		case pgerrcode.ForeignKeyViolation:
			return nil, fmt.Errorf("%w: unknown referral code", domainErrors.ErrValidation)
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) HasPending(ctx context.Context, buyerID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM orders WHERE buyer_id=$1 AND status='pending')`
	var exists bool
	if err := r.storage.pool.QueryRow(ctx, query, buyerID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	return r.getOne(ctx, query, id)
}

func (r *orderRepository) GetByExternalRef(ctx context.Context, ref string) (*model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE external_ref=$1`
	return r.getOne(ctx, query, ref)
}

func (r *orderRepository) getOne(ctx context.Context, query string, arg any) (*model.Order, error) {
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) SetExternalRef(ctx context.Context, id int64, ref string) error {
	const query = `UPDATE orders SET external_ref=$2 WHERE id=$1`
	tag, err := r.storage.pool.Exec(ctx, query, id, ref)
	if err != nil {
		if pgCode(err) == pgerrcode.UniqueViolation {
			return domainErrors.ErrAlreadyExists
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrNotFound
	}
	return nil
}

func (r *orderRepository) ListByBuyer(ctx context.Context, buyerID int64, status model.OrderStatus) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders
                   WHERE buyer_id=$1 AND status=$2 ORDER BY created_at DESC, id DESC`
	rows, err := r.storage.pool.Query(ctx, query, buyerID, status)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

func (r *orderRepository) ListPendingByAmount(ctx context.Context, amount int64, from, to time.Time) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders
                   WHERE status='pending' AND amount=$1 AND created_at BETWEEN $2 AND $3
                   ORDER BY created_at, id`
	rows, err := r.storage.pool.Query(ctx, query, amount, from, to)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

func (r *orderRepository) Transition(ctx context.Context, t model.Transition) (*model.Order, error) {
	if t.Status == model.OrderStatusSuccess || t.Status == model.OrderStatusPending {
		return nil, fmt.Errorf("transition to %s is not supported", t.Status)
	}

	const query = `UPDATE orders SET status=$2, reject_reason=$3, resolved_at=NOW()
                   WHERE id=$1 AND status='pending' AND ($4::BIGINT IS NULL OR amount=$4)
                   RETURNING ` + orderColumns
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, t.OrderID, t.Status, t.Reason, t.ExpectedAmount))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: order %d is not pending with expected amount", domainErrors.ErrStaleAction, t.OrderID)
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) Complete(ctx context.Context, t model.Transition, commission int64) (*model.Completion, error) {
	const completeOrder = `UPDATE orders SET status='success', fulfillment=$2, resolved_at=NOW()
                           WHERE id=$1 AND status='pending' AND ($3::BIGINT IS NULL OR amount=$3)
                           RETURNING ` + orderColumns
	const creditInstructor = `UPDATE instructors SET balance = balance + $2 WHERE code=$1
                              RETURNING ` + instructorColumns

	var result *model.Completion
	err := r.storage.withRetry(ctx, func() error {
		return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
			order, err := scanOrder(tx.QueryRow(ctx, completeOrder, t.OrderID, t.Fulfillment, t.ExpectedAmount))
			if err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return fmt.Errorf("%w: order %d is not pending with expected amount", domainErrors.ErrStaleAction, t.OrderID)
				}
				return err
			}

			completion := &model.Completion{Order: order}
			if order.ReferralCode != nil && commission > 0 {
				instructor, err := scanInstructor(tx.QueryRow(ctx, creditInstructor, *order.ReferralCode, commission))
				switch {
				case errors.Is(err, pgx.ErrNoRows):
				case err != nil:
					return err
				default:
					completion.Instructor = instructor
					completion.Commission = commission
				}
			}

			result = completion
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) CancelPending(ctx context.Context) ([]model.Order, error) {
	const query = `UPDATE orders SET status='cancelled', resolved_at=NOW()
                   WHERE status='pending'
                   RETURNING ` + orderColumns
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return collectOrders(rows)
}

func (r *orderRepository) Stats(ctx context.Context) (*model.Stats, error) {
	const query = `SELECT status, COUNT(*), COALESCE(SUM(amount), 0) FROM orders GROUP BY status`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := &model.Stats{ByStatus: make(map[model.OrderStatus]model.StatusStats)}
	for rows.Next() {
		var (
			status model.OrderStatus
			s      model.StatusStats
		)
		if err := rows.Scan(&status, &s.Count, &s.Sum); err != nil {
			return nil, err
		}
		stats.ByStatus[status] = s
		stats.Total += s.Count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}
