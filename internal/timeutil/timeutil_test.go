package timeutil

import (
	"testing"
	"time"
)

func TestParseDurationDaysAndWeeks(t *testing.T) {
	d, err := ParseDuration("3d")
	if err != nil {
		t.Fatal(err)
	}
	if d != 72*time.Hour {
		t.Fatalf("expected 72h, got %v", d)
	}

	d, err = ParseDuration("2w")
	if err != nil {
		t.Fatal(err)
	}
	if d != 14*24*time.Hour {
		t.Fatalf("expected 336h, got %v", d)
	}

	if _, err := ParseDuration("5x"); err == nil {
		t.Fatal("expected error for unknown unit")
	}
}

func TestParseBound(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	got, err := ParseBound("-30d", now)
	if err != nil {
		t.Fatal(err)
	}
	if want := now.Add(-30 * 24 * time.Hour); !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	got, err = ParseBound("2024-02-29", now)
	if err != nil {
		t.Fatal(err)
	}
	if got.Year() != 2024 || got.Month() != time.February || got.Day() != 29 {
		t.Fatalf("unexpected date: %v", got)
	}

	got, err = ParseBound("2024-01-02T03:04:05Z", now)
	if err != nil {
		t.Fatal(err)
	}
	if got.Hour() != 3 || got.Minute() != 4 {
		t.Fatalf("unexpected timestamp: %v", got)
	}

	if _, err := ParseBound("yesterday", now); err == nil {
		t.Fatal("expected error for unparseable bound")
	}
}
