package booking

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/braincreator/flow-masters-commerce/api/weberr"
	"github.com/braincreator/flow-masters-commerce/core/product"
	"github.com/braincreator/flow-masters-commerce/validate"
	"github.com/jmoiron/sqlx"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("creating mock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return sqlx.NewDb(db, "postgres"), mock
}

func testCourse(capacity int) product.Product {
	now := time.Now().UTC()
	return product.Product{
		ID:        validate.GenerateID(),
		Kind:      product.KindCourse,
		Title:     "Marketing Automation",
		Active:    true,
		Capacity:  capacity,
		StartTime: &now,
	}
}

func forbiddenMessage(t *testing.T, err error) string {
	t.Helper()

	if err == nil {
		t.Fatal("expected a refusal, got nil")
	}

	body, status, ok := weberr.Response(err)
	if !ok {
		t.Fatalf("refusal %v carries no response", err)
	}
	if status != 403 {
		t.Fatalf("refusal status %d, want 403", status)
	}

	resp, ok := body.(*weberr.ErrorResponse)
	if !ok {
		t.Fatalf("unexpected response body %T", body)
	}
	return resp.Error
}

func TestReserveUnlimitedConfirms(t *testing.T) {
	db, mock := newMockDB(t)

	// Capacity 0 means unlimited: no count query, straight to the upsert.
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(0, 1))

	prd := testCourse(0)
	if err := Reserve(context.Background(), db, prd, validate.GenerateID(), validate.GenerateID()); err != nil {
		t.Fatalf("unlimited resource must confirm: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestReserveRepeatUpdatesInPlace(t *testing.T) {
	db, mock := newMockDB(t)

	prd := testCourse(0)
	orderID := validate.GenerateID()
	userID := validate.GenerateID()

	// Confirming the same order twice hits the order-keyed upsert both
	// times: the second run updates the existing row, no duplicate path.
	const upsert = `INSERT INTO bookings (.+) ON CONFLICT \(order_id\) DO UPDATE`
	for i := 0; i < 2; i++ {
		mock.ExpectExec(upsert).
			WithArgs(
				sqlmock.AnyArg(), orderID, prd.ID, prd.Title, string(prd.Kind),
				StatusConfirmed, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}

	if err := Reserve(context.Background(), db, prd, orderID, userID); err != nil {
		t.Fatalf("first confirmation: %v", err)
	}
	if err := Reserve(context.Background(), db, prd, orderID, userID); err != nil {
		t.Fatalf("repeated confirmation must update in place: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestReserveBelowCapacityConfirms(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec("INSERT INTO bookings").WillReturnResult(sqlmock.NewResult(0, 1))

	prd := testCourse(2)
	if err := Reserve(context.Background(), db, prd, validate.GenerateID(), validate.GenerateID()); err != nil {
		t.Fatalf("one free seat left, must confirm: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestReserveFullWaitlists(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec("INSERT INTO waitlist").WillReturnResult(sqlmock.NewResult(0, 1))

	prd := testCourse(2)
	err := Reserve(context.Background(), db, prd, validate.GenerateID(), validate.GenerateID())

	if msg := forbiddenMessage(t, err); msg != MsgWaitlisted {
		t.Fatalf("message %q, want %q", msg, MsgWaitlisted)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestReserveFullDuplicateWaitlist(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	// The unique key swallows the second insert: zero rows affected.
	mock.ExpectExec("INSERT INTO waitlist").WillReturnResult(sqlmock.NewResult(0, 0))

	prd := testCourse(2)
	err := Reserve(context.Background(), db, prd, validate.GenerateID(), validate.GenerateID())

	if msg := forbiddenMessage(t, err); msg != MsgDuplicate {
		t.Fatalf("message %q, want %q", msg, MsgDuplicate)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestReserveFullInsertFailureStillRefuses(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectExec("INSERT INTO waitlist").WillReturnError(context.DeadlineExceeded)

	prd := testCourse(2)
	err := Reserve(context.Background(), db, prd, validate.GenerateID(), validate.GenerateID())

	if msg := forbiddenMessage(t, err); msg != MsgFailed {
		t.Fatalf("message %q, want %q", msg, MsgFailed)
	}
}

func TestReserveFullAnonymousRefuses(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	prd := testCourse(2)
	err := Reserve(context.Background(), db, prd, validate.GenerateID(), "")

	if msg := forbiddenMessage(t, err); msg != MsgFailed {
		t.Fatalf("message %q, want %q", msg, MsgFailed)
	}
}
