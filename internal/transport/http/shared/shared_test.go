package shared

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseRunPage(t *testing.T) {
	cases := []struct {
		name   string
		query  string
		limit  int
		offset int
	}{
		{"defaults", "", 20, 0},
		{"explicit", "?limit=5&offset=40", 5, 40},
		{"capped", "?limit=500", 100, 0},
		{"garbage", "?limit=lots&offset=-3", 20, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/payroll/runs"+tc.query, nil)
			page := ParseRunPage(req)
			if page.Limit != tc.limit || page.Offset != tc.offset {
				t.Fatalf("expected limit=%d offset=%d, got %+v", tc.limit, tc.offset, page)
			}
		})
	}
}

func TestParseDateFormats(t *testing.T) {
	day, err := ParseDate("2025-06-01")
	if err != nil {
		t.Fatalf("day parse failed: %v", err)
	}
	if !day.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected day: %s", day)
	}

	stamp, err := ParseDate("2025-06-01T09:30:00Z")
	if err != nil {
		t.Fatalf("timestamp parse failed: %v", err)
	}
	if stamp.Hour() != 9 {
		t.Fatalf("unexpected timestamp: %s", stamp)
	}

	if _, err := ParseDate("June 1st"); err == nil {
		t.Fatal("expected error for unparseable date")
	}
	if _, err := ParseDate(""); err == nil {
		t.Fatal("expected error for empty date")
	}
}
