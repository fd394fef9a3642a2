package quotaperiod

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCurrent(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		wantMonth int
		wantYear  int
	}{
		{
			name:      "обычный месяц",
			now:       time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
			wantMonth: 3,
			wantYear:  2026,
		},
		{
			name:      "конец года",
			now:       time.Date(2025, 12, 31, 23, 59, 59, 0, time.UTC),
			wantMonth: 12,
			wantYear:  2025,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			month, year := Current(tt.now)
			assert.Equal(t, tt.wantMonth, month)
			assert.Equal(t, tt.wantYear, year)
		})
	}
}

func TestNextReset(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "середина месяца",
			now:  time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
			want: time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "декабрь переходит на следующий год",
			now:  time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "первое число месяца",
			now:  time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
			want: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextReset(tt.now))
		})
	}
}

func TestMinuteKey(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 34, 56, 0, time.UTC)
	assert.Equal(t, "2026-03-15-12-34", MinuteKey(now))
}
