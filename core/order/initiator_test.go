package order

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/braincreator/flow-masters-commerce/config"
	"github.com/braincreator/flow-masters-commerce/core/cart"
	"github.com/braincreator/flow-masters-commerce/core/product"
	"github.com/braincreator/flow-masters-commerce/validate"
	"github.com/google/go-cmp/cmp"
	"github.com/jmoiron/sqlx"
)

var testLocales = config.Locale{Default: "ru", Supported: "ru;en"}

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("creating mock database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return sqlx.NewDb(db, "postgres"), mock
}

func expectProduct(mock sqlmock.Sqlmock, id string, kind product.Kind, active bool) {
	created := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT \* FROM products`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{
			"product_id", "kind", "title", "description", "active",
			"capacity", "start_time", "created_at", "updated_at", "version",
		}).AddRow(id, string(kind), "Telegram Bot Setup", "", active, 0, nil, created, created, 1))

	mock.ExpectQuery(`SELECT \* FROM product_prices`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"product_id", "locale", "amount", "currency"}).
			AddRow(id, "ru", 500000, "RUB"))
}

func priceRow(id string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"product_id", "locale", "amount", "currency"}).
		AddRow(id, "ru", 500000, "RUB")
}

func TestFromService(t *testing.T) {
	db, mock := newMockDB(t)

	serviceID := validate.GenerateID()
	userID := validate.GenerateID()

	expectProduct(mock, serviceID, product.KindService, true)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM product_prices`).
		WithArgs(serviceID, "ru", "ru").
		WillReturnRows(priceRow(serviceID))
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_totals").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ord, err := FromService(context.Background(), db, testLocales, serviceID, "ru", userID, "")
	if err != nil {
		t.Fatalf("creating service order: %v", err)
	}

	if !strings.HasPrefix(ord.Number, PrefixService+"-") {
		t.Fatalf("order number %q, want the %s prefix", ord.Number, PrefixService)
	}
	if ord.Status != Pending {
		t.Fatalf("status %q, want %q", ord.Status, Pending)
	}
	if !ord.UserID.Valid || ord.UserID.String != userID {
		t.Fatalf("customer %v, want user %q", ord.UserID, userID)
	}
	wantItems := []Item{{
		OrderID:   ord.ID,
		ProductID: serviceID,
		Title:     "Telegram Bot Setup",
		Quantity:  1,
		UnitPrice: 500000,
		Currency:  "RUB",
	}}
	if diff := cmp.Diff(wantItems, ord.Items); diff != "" {
		t.Fatalf("items mismatch (-want +got):\n%s", diff)
	}

	wantTotals := []Total{{
		OrderID:  ord.ID,
		Locale:   "ru",
		Subtotal: 500000,
		Total:    500000,
		Currency: "RUB",
	}}
	if diff := cmp.Diff(wantTotals, ord.Totals); diff != "" {
		t.Fatalf("totals mismatch (-want +got):\n%s", diff)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestFromServiceRejectsInactive(t *testing.T) {
	db, mock := newMockDB(t)

	serviceID := validate.GenerateID()
	expectProduct(mock, serviceID, product.KindService, false)

	_, err := FromService(context.Background(), db, testLocales, serviceID, "ru", validate.GenerateID(), "")
	if !errors.Is(err, product.ErrNotFound) {
		t.Fatalf("inactive service must not be orderable, got %v", err)
	}
}

func TestFromServiceRejectsNonBookable(t *testing.T) {
	db, mock := newMockDB(t)

	serviceID := validate.GenerateID()
	expectProduct(mock, serviceID, product.KindProduct, true)

	_, err := FromService(context.Background(), db, testLocales, serviceID, "ru", validate.GenerateID(), "")
	if !errors.Is(err, product.ErrNotFound) {
		t.Fatalf("a plain product has no direct service order, got %v", err)
	}
}

func TestFromServiceRequiresCustomer(t *testing.T) {
	db, mock := newMockDB(t)

	serviceID := validate.GenerateID()
	expectProduct(mock, serviceID, product.KindService, true)

	_, err := FromService(context.Background(), db, testLocales, serviceID, "ru", "", "")
	if !errors.Is(err, ErrCustomerRequired) {
		t.Fatalf("bookable order without an identity must be refused, got %v", err)
	}
}

func expectCart(mock sqlmock.Sqlmock, cartID string, userID, sessionID interface{}, item Item) {
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT \* FROM carts`).
		WillReturnRows(sqlmock.NewRows([]string{
			"cart_id", "user_id", "session_id", "converted", "created_at", "updated_at",
		}).AddRow(cartID, userID, sessionID, false, now, now))

	mock.ExpectQuery(`SELECT \* FROM cart_items`).
		WithArgs(cartID).
		WillReturnRows(sqlmock.NewRows([]string{
			"cart_id", "product_id", "quantity", "unit_price", "currency", "created_at", "updated_at",
		}).AddRow(cartID, item.ProductID, item.Quantity, item.UnitPrice, item.Currency, now, now))
}

func TestFromCartTotalsUseLineSnapshots(t *testing.T) {
	db, mock := newMockDB(t)

	cartID := validate.GenerateID()
	userID := validate.GenerateID()
	courseID := validate.GenerateID()

	// The cart captured 100000 at add time; the catalog has since moved
	// to 500000. The order must total its own snapshots.
	expectCart(mock, cartID, userID, nil, Item{
		ProductID: courseID,
		Quantity:  1,
		UnitPrice: 100000,
		Currency:  "RUB",
	})
	expectProduct(mock, courseID, product.KindCourse, true)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_items").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO order_totals").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE carts SET converted").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ord, err := FromCart(context.Background(), db, testLocales, cart.Owner{UserID: userID}, "ru", "")
	if err != nil {
		t.Fatalf("checking out cart: %v", err)
	}

	if !strings.HasPrefix(ord.Number, PrefixCourse+"-") {
		t.Fatalf("order number %q, want the %s prefix", ord.Number, PrefixCourse)
	}

	wantTotals := []Total{{
		OrderID:  ord.ID,
		Locale:   "ru",
		Subtotal: 100000,
		Total:    100000,
		Currency: "RUB",
	}}
	if diff := cmp.Diff(wantTotals, ord.Totals); diff != "" {
		t.Fatalf("totals mismatch (-want +got):\n%s", diff)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestFromCartBookableRequiresCustomer(t *testing.T) {
	db, mock := newMockDB(t)

	cartID := validate.GenerateID()
	courseID := validate.GenerateID()

	expectCart(mock, cartID, nil, "aaaabbbbccccddddaaaabbbbccccdddd", Item{
		ProductID: courseID,
		Quantity:  1,
		UnitPrice: 100000,
		Currency:  "RUB",
	})
	expectProduct(mock, courseID, product.KindCourse, true)

	owner := cart.Owner{SessionID: "aaaabbbbccccddddaaaabbbbccccdddd"}
	_, err := FromCart(context.Background(), db, testLocales, owner, "ru", "")
	if !errors.Is(err, ErrCustomerRequired) {
		t.Fatalf("anonymous checkout of a bookable item must be refused, got %v", err)
	}

	// The refusal happens before any order state is written.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestFromCartRejectsEmpty(t *testing.T) {
	db, mock := newMockDB(t)

	cartID := validate.GenerateID()
	userID := validate.GenerateID()
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT \* FROM carts`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{
			"cart_id", "user_id", "session_id", "converted", "created_at", "updated_at",
		}).AddRow(cartID, userID, nil, false, now, now))

	mock.ExpectQuery(`SELECT \* FROM cart_items`).
		WithArgs(cartID).
		WillReturnRows(sqlmock.NewRows([]string{
			"cart_id", "product_id", "quantity", "unit_price", "currency", "created_at", "updated_at",
		}))

	_, err := FromCart(context.Background(), db, testLocales, cart.Owner{UserID: userID}, "ru", "")
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("an empty cart must not check out, got %v", err)
	}
}

func TestFromCartRejectsMissing(t *testing.T) {
	db, mock := newMockDB(t)

	userID := validate.GenerateID()
	mock.ExpectQuery(`SELECT \* FROM carts`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{
			"cart_id", "user_id", "session_id", "converted", "created_at", "updated_at",
		}))

	_, err := FromCart(context.Background(), db, testLocales, cart.Owner{UserID: userID}, "ru", "")
	if !errors.Is(err, cart.ErrNoCart) {
		t.Fatalf("a missing cart must not check out, got %v", err)
	}
}
