package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextOccurrenceOn(t *testing.T) {
	tests := []struct {
		from   string
		freq   Frequency
		anchor int
		want   string
	}{
		{"2024-01-31", FrequencyMonthly, 31, "2024-02-29"},
		{"2024-02-29", FrequencyMonthly, 31, "2024-03-31"},
		{"2024-03-31", FrequencyMonthly, 31, "2024-04-30"},
		{"2024-02-29", FrequencyMonthly, 0, "2024-03-29"},
		{"2024-12-15", FrequencyMonthly, 15, "2025-01-15"},
		{"2025-02-28", FrequencyYearly, 29, "2026-02-28"},
		{"2027-02-28", FrequencyYearly, 29, "2028-02-29"},
		{"2024-12-31", FrequencyDaily, 31, "2025-01-01"},
		{"2024-12-28", FrequencyWeekly, 28, "2025-01-04"},
	}

	for _, tt := range tests {
		from, err := ParseDate(tt.from)
		require.NoError(t, err)
		got := NextOccurrenceOn(from, tt.freq, tt.anchor)
		assert.Equal(t, tt.want, FormatDate(got), "%s %s anchor %d", tt.from, tt.freq, tt.anchor)
	}
}

func TestSubscriptionAnchor(t *testing.T) {
	due := time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 29, Subscription{NextDue: due}.Anchor())
	assert.Equal(t, 31, Subscription{NextDue: due, AnchorDay: 31}.Anchor())
	assert.Equal(t, "2024-03-29", FormatDate(NextOccurrence(due, FrequencyMonthly)))
}
