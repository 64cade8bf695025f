package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pkordes/driver-compliance/backend/internal/domain"
)

func intPtr(v int) *int { return &v }

func TestNewPaginationParams(t *testing.T) {
	tests := []struct {
		name        string
		page, limit *int
		want        domain.PaginationParams
	}{
		{"defaults", nil, nil, domain.PaginationParams{Page: 1, Limit: 20}},
		{"explicit", intPtr(3), intPtr(50), domain.PaginationParams{Page: 3, Limit: 50}},
		{"limit capped", intPtr(1), intPtr(500), domain.PaginationParams{Page: 1, Limit: 100}},
		{"non-positive ignored", intPtr(0), intPtr(-2), domain.PaginationParams{Page: 1, Limit: 20}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.NewPaginationParams(tt.page, tt.limit))
		})
	}
}

func TestPaginationParams_OffsetAndTotalPages(t *testing.T) {
	p := domain.PaginationParams{Page: 3, Limit: 20}

	assert.Equal(t, 40, p.Offset())
	assert.Equal(t, 0, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(20))
	assert.Equal(t, 3, p.TotalPages(41))
}

func TestDateOf(t *testing.T) {
	late := mustParse(t, "2025-03-10T23:30:00-05:00")
	early := mustParse(t, "2025-03-10T01:30:00+02:00")

	// The calendar date is always the UTC one, whatever zone t carries.
	assert.Equal(t, "2025-03-11T00:00:00Z", domain.DateOf(late).Format(time.RFC3339))
	assert.Equal(t, "2025-03-09T00:00:00Z", domain.DateOf(early).Format(time.RFC3339))
	assert.Equal(t, domain.DateOf(late), domain.DateOf(late.UTC()))
}

func TestEventType_Valid(t *testing.T) {
	assert.True(t, domain.EventMovement.Valid())
	assert.True(t, domain.EventJourneyStart.Valid())
	assert.False(t, domain.EventType("coffee").Valid())
	assert.False(t, domain.EventType("").Valid())
}

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return ts
}
