package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
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

func cartRow(cartID, userID string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"cart_id", "user_id", "session_id", "converted", "created_at", "updated_at",
	}).AddRow(cartID, userID, nil, false, now, now)
}

func emptyItems() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"cart_id", "product_id", "quantity", "unit_price", "currency", "created_at", "updated_at",
	})
}

func TestEnsureReturnsExisting(t *testing.T) {
	db, mock := newMockDB(t)

	cartID := validate.GenerateID()
	userID := validate.GenerateID()

	mock.ExpectQuery(`SELECT \* FROM carts WHERE user_id`).
		WithArgs(userID).
		WillReturnRows(cartRow(cartID, userID))
	mock.ExpectQuery(`SELECT \* FROM cart_items`).
		WithArgs(cartID).
		WillReturnRows(emptyItems())

	crt, err := Ensure(context.Background(), db, Owner{UserID: userID})
	if err != nil {
		t.Fatal(err)
	}
	if crt.ID != cartID {
		t.Fatalf("cart %q, want the existing cart %q", crt.ID, cartID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestEnsureCreatesWhenAbsent(t *testing.T) {
	db, mock := newMockDB(t)

	cartID := validate.GenerateID()
	sessionID := "aaaabbbbccccddddaaaabbbbccccdddd"

	// No open cart yet: the fetch misses, the insert runs with the
	// conflict guard, and the re-fetch resolves whichever insert won.
	mock.ExpectQuery(`SELECT \* FROM carts WHERE session_id`).
		WithArgs(sessionID).
		WillReturnRows(sqlmock.NewRows([]string{
			"cart_id", "user_id", "session_id", "converted", "created_at", "updated_at",
		}))
	mock.ExpectExec(`INSERT INTO carts (.+) ON CONFLICT \(session_id\) WHERE NOT converted`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM carts WHERE session_id`).
		WithArgs(sessionID).
		WillReturnRows(cartRow(cartID, ""))
	mock.ExpectQuery(`SELECT \* FROM cart_items`).
		WithArgs(cartID).
		WillReturnRows(emptyItems())

	crt, err := Ensure(context.Background(), db, Owner{SessionID: sessionID})
	if err != nil {
		t.Fatal(err)
	}
	if crt.ID != cartID {
		t.Fatalf("cart %q, want %q", crt.ID, cartID)
	}
}

func TestEnsureEmptyOwner(t *testing.T) {
	db, _ := newMockDB(t)

	if _, err := Ensure(context.Background(), db, Owner{}); !errors.Is(err, ErrNoCart) {
		t.Fatalf("an empty owner has no cart to ensure, got %v", err)
	}
}

func TestUpsertItemMergesByProduct(t *testing.T) {
	db, mock := newMockDB(t)

	cartID := validate.GenerateID()

	// The merge is a single statement: same product lines collapse with
	// quantity accumulation and a refreshed price snapshot.
	mock.ExpectExec(`INSERT INTO cart_items (.+) ON CONFLICT \(cart_id, product_id\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE carts SET updated_at`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	now := time.Now().UTC()
	it := Item{
		CartID:    cartID,
		ProductID: validate.GenerateID(),
		Quantity:  2,
		UnitPrice: 1500,
		Currency:  "RUB",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := UpsertItem(context.Background(), db, it); err != nil {
		t.Fatal(err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestMarkConvertedOnce(t *testing.T) {
	db, mock := newMockDB(t)

	cartID := validate.GenerateID()

	mock.ExpectExec(`UPDATE carts SET converted = TRUE(.+)AND NOT converted`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE carts SET converted = TRUE(.+)AND NOT converted`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := MarkConverted(context.Background(), db, cartID); err != nil {
		t.Fatal(err)
	}

	// The guard makes conversion one-shot: a second attempt hits no rows.
	if err := MarkConverted(context.Background(), db, cartID); !errors.Is(err, ErrNoCart) {
		t.Fatalf("a converted cart must not convert again, got %v", err)
	}
}
