package repository

import (
	"context"

	"github.com/polkiloo/routeshop/internal/domain/model"
)

// InstructorRepository describes persistence of referrers and their balances.
type InstructorRepository interface {
	Upsert(ctx context.Context, instructor model.Instructor) (*model.Instructor, error)
	GetByCode(ctx context.Context, code string) (*model.Instructor, error)
	ListWithBalance(ctx context.Context) ([]model.Instructor, error)
	Settle(ctx context.Context, code string, threshold int64) (int64, error)
}
