package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/braincreator/flow-masters-commerce/validate"
	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("user not found")

func Create(ctx context.Context, db sqlx.ExtContext, usr User) error {
	const q = `
	INSERT INTO users (user_id, name, email, role, guest, password_hash, created_at, updated_at)
	VALUES (:user_id, :name, :email, :role, :guest, :password_hash, :created_at, :updated_at)`

	if _, err := sqlx.NamedExecContext(ctx, db, q, usr); err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

func Fetch(ctx context.Context, db sqlx.ExtContext, userID string) (User, error) {
	const q = `SELECT * FROM users WHERE user_id = $1`

	var usr User
	if err := sqlx.GetContext(ctx, db, &usr, q, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("selecting user[%s]: %w", userID, err)
	}

	return usr, nil
}

func FetchByEmail(ctx context.Context, db sqlx.ExtContext, email string) (User, error) {
	const q = `SELECT * FROM users WHERE email = $1`

	var usr User
	if err := sqlx.GetContext(ctx, db, &usr, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("selecting user by email: %w", err)
	}

	return usr, nil
}

// FindOrCreateGuest resolves a customer by email, creating a guest record
// when none exists. The guest's name defaults to the email local-part.
func FindOrCreateGuest(ctx context.Context, db sqlx.ExtContext, email string) (User, error) {
	usr, err := FetchByEmail(ctx, db, email)
	if err == nil {
		return usr, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return User{}, err
	}

	name := email
	if at := strings.Index(email, "@"); at > 0 {
		name = email[:at]
	}

	now := time.Now().UTC()
	usr = User{
		ID:        validate.GenerateID(),
		Name:      name,
		Email:     email,
		Role:      "USER",
		Guest:     true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := Create(ctx, db, usr); err != nil {
		// A concurrent request may have created the same guest. The email
		// unique key makes the insert fail, so fall back to the lookup.
		if existing, ferr := FetchByEmail(ctx, db, email); ferr == nil {
			return existing, nil
		}
		return User{}, err
	}

	return usr, nil
}
