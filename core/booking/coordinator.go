package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/braincreator/flow-masters-commerce/api/weberr"
	"github.com/braincreator/flow-masters-commerce/core/product"
	"github.com/braincreator/flow-masters-commerce/validate"
	"github.com/jmoiron/sqlx"
)

// Distinct user-visible refusal messages, one per outcome.
const (
	MsgWaitlisted = "the course is full, you have been added to the waiting list"
	MsgDuplicate  = "the course is full and you are already on the waiting list"
	MsgFailed     = "the course is full and we could not add you to the waiting list, please contact support"
)

// Reserve decides whether an order for a capacity-limited resource gets a
// confirmed booking or lands on the waiting list.
//
// An unlimited resource (capacity 0) always confirms. Otherwise confirmed
// reservations are counted live against the capacity; when full, the
// requester goes onto the waiting list exactly once and the refusal comes
// back as a Forbidden error so callers can tell business rules from
// system failures.
func Reserve(ctx context.Context, db sqlx.ExtContext, prd product.Product, orderID string, userID string) error {
	if prd.Capacity > 0 {
		n, err := CountConfirmed(ctx, db, prd.ID)
		if err != nil {
			return fmt.Errorf("checking capacity of product[%s]: %w", prd.ID, err)
		}

		if n >= prd.Capacity {
			return waitlist(ctx, db, prd, userID)
		}
	}

	now := time.Now().UTC()
	bk := Booking{
		ID:        validate.GenerateID(),
		OrderID:   orderID,
		ProductID: prd.ID,
		Title:     prd.Title,
		Type:      string(prd.Kind),
		Status:    StatusConfirmed,
		StartTime: prd.StartTime,
		CreatedAt: now,
		UpdatedAt: now,
	}

	return Upsert(ctx, db, bk)
}

// waitlist refuses the enrollment, attempting the waiting-list insert
// first so the refusal message reflects the final state. Insert failures
// still refuse (fail-closed) with their own message.
func waitlist(ctx context.Context, db sqlx.ExtContext, prd product.Product, userID string) error {
	if userID == "" {
		err := errors.New("cannot waitlist an unidentified requester")
		return weberr.Forbidden(err, MsgFailed)
	}

	entry := WaitlistEntry{
		ID:        validate.GenerateID(),
		UserID:    userID,
		ProductID: prd.ID,
		CreatedAt: time.Now().UTC(),
	}

	created, err := AddWaitlist(ctx, db, entry)
	if err != nil {
		return weberr.Forbidden(fmt.Errorf("waitlisting user[%s]: %w", userID, err), MsgFailed)
	}

	if !created {
		err := fmt.Errorf("user[%s] already waitlisted for product[%s]", userID, prd.ID)
		return weberr.Forbidden(err, MsgDuplicate)
	}

	err = fmt.Errorf("product[%s] is full, user[%s] waitlisted", prd.ID, userID)
	return weberr.Forbidden(err, MsgWaitlisted)
}
