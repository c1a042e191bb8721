package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolationNil(t *testing.T) {
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error must not match")
	}
}

func TestIsUniqueViolationPgError(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "idx_ratings_user_store"}

	if !IsUniqueViolation(err, "") {
		t.Fatal("expected unique violation match")
	}
	if !IsUniqueViolation(err, "idx_ratings_user_store") {
		t.Fatal("expected constraint-scoped match")
	}
	if IsUniqueViolation(err, "users_email_key") {
		t.Fatal("expected mismatch for different constraint")
	}
}

func TestIsUniqueViolationPgErrorOtherCode(t *testing.T) {
	err := &pgconn.PgError{Code: "23503", ConstraintName: "ratings_store_id_fkey"}
	if IsUniqueViolation(err, "") {
		t.Fatal("foreign key violation must not match")
	}
}

func TestIsUniqueViolationWrapped(t *testing.T) {
	inner := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	wrapped := fmt.Errorf("create user: %w", inner)
	if !IsUniqueViolation(wrapped, "users_email_key") {
		t.Fatal("expected wrapped pg error to match")
	}
}

func TestIsUniqueViolationSQLiteMessage(t *testing.T) {
	err := errors.New("UNIQUE constraint failed: ratings.user_id, ratings.store_id")
	if !IsUniqueViolation(err, "") {
		t.Fatal("expected sqlite message to match")
	}
}

func TestIsUniqueViolationPlainError(t *testing.T) {
	if IsUniqueViolation(errors.New("connection refused"), "") {
		t.Fatal("unrelated error must not match")
	}
}
