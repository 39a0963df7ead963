package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"

	domainErrors "github.com/polkiloo/routeshop/internal/domain/errors"
	"github.com/polkiloo/routeshop/internal/domain/model"
)

var instructorCols = []string{"code", "contact", "card_last4", "card_hash", "balance", "created_at"}

func TestInstructorRepositoryUpsertAndGet(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &instructorRepository{storage: storage}

	in := model.Instructor{Code: "00007", Contact: "olena", CardLast4: "4321", CardHash: "h"}
	mock.ExpectQuery("INSERT INTO instructors").WithArgs("00007", "olena", "4321", "h").WillReturnRows(
		pgxmockv3.NewRows(instructorCols).AddRow("00007", "olena", "4321", "h", int64(5000), time.Now()))
	got, err := repo.Upsert(context.Background(), in)
	if err != nil || got.Balance != 5000 {
		t.Fatalf("expected balance to survive upsert, got %+v err=%v", got, err)
	}

	mock.ExpectQuery("SELECT .* FROM instructors WHERE code=").WithArgs("00007").WillReturnRows(
		pgxmockv3.NewRows(instructorCols).AddRow("00007", "olena", "4321", "h", int64(5000), time.Now()))
	if got, err := repo.GetByCode(context.Background(), "00007"); err != nil || got.Contact != "olena" {
		t.Fatalf("unexpected instructor: %+v err=%v", got, err)
	}

	mock.ExpectQuery("SELECT .* FROM instructors WHERE code=").WithArgs("99999").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.GetByCode(context.Background(), "99999"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("SELECT .* FROM instructors WHERE code=").WithArgs("11111").WillReturnError(errors.New("boom"))
	if _, err := repo.GetByCode(context.Background(), "11111"); err == nil || errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected raw error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestInstructorRepositoryListWithBalance(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &instructorRepository{storage: storage}

	mock.ExpectQuery("SELECT .* FROM instructors WHERE balance > 0").WillReturnRows(
		pgxmockv3.NewRows(instructorCols).
			AddRow("00007", "a", "1111", "h", int64(12000), time.Now()).
			AddRow("00008", "b", "2222", "h", int64(500), time.Now()))
	list, err := repo.ListWithBalance(context.Background())
	if err != nil || len(list) != 2 || list[0].Balance != 12000 {
		t.Fatalf("unexpected list: %+v err=%v", list, err)
	}

	mock.ExpectQuery("SELECT .* FROM instructors WHERE balance > 0").WillReturnError(errors.New("boom"))
	if _, err := repo.ListWithBalance(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	mock.ExpectQuery("SELECT .* FROM instructors WHERE balance > 0").WillReturnRows(
		pgxmockv3.NewRows(instructorCols).AddRow("00007", "a", "1111", "h", "bad", time.Now()))
	if _, err := repo.ListWithBalance(context.Background()); err == nil {
		t.Fatal("expected scan error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}

	rowsErr := &Storage{pool: &rowsErrorPool{rows: &errorRows{err: errors.New("rows err")}}}
	if _, err := (&instructorRepository{storage: rowsErr}).ListWithBalance(context.Background()); err == nil || err.Error() != "rows err" {
		t.Fatalf("expected rows err, got %v", err)
	}
}

func TestInstructorRepositorySettle(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &instructorRepository{storage: storage}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT balance FROM instructors").WithArgs("00007").WillReturnRows(pgxmockv3.NewRows([]string{"balance"}).AddRow(int64(12000)))
	mock.ExpectExec("UPDATE instructors SET balance=0").WithArgs("00007").WillReturnResult(pgxmockv3.NewResult("UPDATE", 1))
	mock.ExpectCommit()
	settled, err := repo.Settle(context.Background(), "00007", 10000)
	if err != nil || settled != 12000 {
		t.Fatalf("expected settled 12000, got %d err=%v", settled, err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT balance FROM instructors").WithArgs("00007").WillReturnRows(pgxmockv3.NewRows([]string{"balance"}).AddRow(int64(9999)))
	mock.ExpectRollback()
	if _, err := repo.Settle(context.Background(), "00007", 10000); !errors.Is(err, domainErrors.ErrBelowThreshold) {
		t.Fatalf("expected below threshold, got %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT balance FROM instructors").WithArgs("99999").WillReturnError(pgx.ErrNoRows)
	mock.ExpectRollback()
	if _, err := repo.Settle(context.Background(), "99999", 10000); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT balance FROM instructors").WithArgs("00007").WillReturnRows(pgxmockv3.NewRows([]string{"balance"}).AddRow(int64(12000)))
	mock.ExpectExec("UPDATE instructors SET balance=0").WithArgs("00007").WillReturnError(errors.New("update"))
	mock.ExpectRollback()
	if _, err := repo.Settle(context.Background(), "00007", 10000); err == nil {
		t.Fatal("expected update error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}
