package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/routeshop/internal/domain/errors"
	"github.com/polkiloo/routeshop/internal/domain/model"
)

const instructorColumns = `code, contact, card_last4, card_hash, balance, created_at`

type instructorRepository struct {
	storage *Storage
}

func scanInstructor(row pgx.Row) (*model.Instructor, error) {
	var i model.Instructor
	if err := row.Scan(&i.Code, &i.Contact, &i.CardLast4, &i.CardHash, &i.Balance, &i.CreatedAt); err != nil {
		return nil, err
	}
	return &i, nil
}

// Upsert keeps the accrued balance when an instructor is re-registered.
func (r *instructorRepository) Upsert(ctx context.Context, in model.Instructor) (*model.Instructor, error) {
	const query = `INSERT INTO instructors (code, contact, card_last4, card_hash) VALUES ($1, $2, $3, $4)
                   ON CONFLICT (code) DO UPDATE
                   SET contact=EXCLUDED.contact, card_last4=EXCLUDED.card_last4, card_hash=EXCLUDED.card_hash
                   RETURNING ` + instructorColumns
	return scanInstructor(r.storage.pool.QueryRow(ctx, query, in.Code, in.Contact, in.CardLast4, in.CardHash))
}

func (r *instructorRepository) GetByCode(ctx context.Context, code string) (*model.Instructor, error) {
	const query = `SELECT ` + instructorColumns + ` FROM instructors WHERE code=$1`
	instructor, err := scanInstructor(r.storage.pool.QueryRow(ctx, query, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return instructor, nil
}

func (r *instructorRepository) ListWithBalance(ctx context.Context) ([]model.Instructor, error) {
	const query = `SELECT ` + instructorColumns + ` FROM instructors WHERE balance > 0 ORDER BY balance DESC, code`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Instructor
	for rows.Next() {
		i, err := scanInstructor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Settle zeroes the balance when it reached the threshold and returns the settled amount.
func (r *instructorRepository) Settle(ctx context.Context, code string, threshold int64) (int64, error) {
	var settled int64
	err := r.storage.withRetry(ctx, func() error {
		return r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
			const balanceQuery = `SELECT balance FROM instructors WHERE code=$1 FOR UPDATE`
			var balance int64
			if err := tx.QueryRow(ctx, balanceQuery, code).Scan(&balance); err != nil {
				if errors.Is(err, pgx.ErrNoRows) {
					return domainErrors.ErrNotFound
				}
				return err
			}
			if balance < threshold {
				return fmt.Errorf("%w: balance %d, threshold %d", domainErrors.ErrBelowThreshold, balance, threshold)
			}

			const resetQuery = `UPDATE instructors SET balance=0 WHERE code=$1`
			if _, err := tx.Exec(ctx, resetQuery, code); err != nil {
				return err
			}
			settled = balance
			return nil
		})
	})
	if err != nil {
		return 0, err
	}
	return settled, nil
}
