package postgres

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	if !isNotFound(sql.ErrNoRows) {
		t.Fatal("sql.ErrNoRows should be not-found")
	}
	if !isNotFound(fmt.Errorf("get lot: %w", sql.ErrNoRows)) {
		t.Fatal("wrapped sql.ErrNoRows should be not-found")
	}
	if isNotFound(fmt.Errorf("connection refused")) {
		t.Fatal("arbitrary error should not be not-found")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	unique := &pq.Error{Code: "23505"}
	if !isUniqueViolation(unique) {
		t.Fatal("code 23505 should be a unique violation")
	}
	if !isUniqueViolation(fmt.Errorf("create settlement: %w", unique)) {
		t.Fatal("wrapped 23505 should be a unique violation")
	}

	if isUniqueViolation(&pq.Error{Code: "23503"}) {
		t.Fatal("foreign key violation should not count")
	}
	if isUniqueViolation(fmt.Errorf("plain error")) {
		t.Fatal("non-pq error should not count")
	}
}
