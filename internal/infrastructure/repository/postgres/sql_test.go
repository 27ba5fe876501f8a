package postgres

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Parallel()

	dup := &pq.Error{Code: "23505", Constraint: activeListingIndex}

	if !isUniqueViolation(dup, activeListingIndex) {
		t.Fatalf("expected unique violation on %s", activeListingIndex)
	}
	if !isUniqueViolation(fmt.Errorf("insert listing: %w", dup), "") {
		t.Fatalf("expected wrapped unique violation to match")
	}
	if isUniqueViolation(dup, pendingOfferIndex) {
		t.Fatalf("expected constraint mismatch to be rejected")
	}
	if isUniqueViolation(&pq.Error{Code: "23503"}, "") {
		t.Fatalf("expected foreign key violation to be rejected")
	}
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	if !isNotFound(fmt.Errorf("select: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped no rows to match")
	}
	if isNotFound(sql.ErrConnDone) {
		t.Fatalf("expected other errors to be rejected")
	}
}
