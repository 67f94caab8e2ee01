package time

import (
	"testing"
	"time"
)

func TestDayHelpers(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	late := time.Date(2024, 3, 1, 22, 30, 0, 0, loc) // already March 2 in UTC
	if got := FormatDay(UTCDay(late)); got != "2024-03-02" {
		t.Fatalf("UTCDay = %s", got)
	}

	d, err := ParseDay("2024-02-29")
	if err != nil {
		t.Fatalf("ParseDay: %v", err)
	}
	if got := FormatDay(AddDays(d, 1)); got != "2024-03-01" {
		t.Fatalf("AddDays leap = %s", got)
	}
	if _, err := ParseDay("2024-02-30"); err == nil {
		t.Fatalf("expected error for invalid date")
	}
}
