package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rajeshtiwari2503/spareflow-sub005/internal/models"
)

func TestMemoryStoreAppendAndList(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := s.AppendAttempt(ctx, models.AttemptLogEntry{
			ShipmentRef:  fmt.Sprintf("SHIP-%d", i%2),
			Success:      true,
			AWBNumber:    fmt.Sprintf("D700%04d", i),
			TimestampUTC: time.Now().UTC(),
		})
		if err != nil {
			t.Fatalf("append failed: %v", err)
		}
	}

	all, err := s.ListAttempts(ctx, "", 0, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(all))
	}
	// Newest first.
	if all[0].AWBNumber != "D7000004" {
		t.Errorf("expected newest entry first, got %q", all[0].AWBNumber)
	}

	filtered, err := s.ListAttempts(ctx, "SHIP-1", 0, 0)
	if err != nil {
		t.Fatalf("filtered list failed: %v", err)
	}
	if len(filtered) != 2 {
		t.Errorf("expected 2 entries for SHIP-1, got %d", len(filtered))
	}

	paged, err := s.ListAttempts(ctx, "", 2, 1)
	if err != nil {
		t.Fatalf("paged list failed: %v", err)
	}
	if len(paged) != 2 || paged[0].AWBNumber != "D7000003" {
		t.Errorf("pagination off: %+v", paged)
	}
}

func TestMemoryStoreRespectsContext(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.AppendAttempt(ctx, models.AttemptLogEntry{ShipmentRef: "SHIP-X"}); err == nil {
		t.Fatal("expected a context error on append")
	}
	if _, err := s.ListAttempts(ctx, "", 0, 0); err == nil {
		t.Fatal("expected a context error on list")
	}
}
