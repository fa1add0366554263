package model

import (
	"fmt"
	"time"

	"meal-subscriptions/internal/domain"
)

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ExpandDeliveryDates walks forward from start (inclusive) one calendar day at a
// time and returns the first count dates whose weekday is in days.
// The result is strictly increasing and has exactly count elements.
func ExpandDeliveryDates(start time.Time, days WeekdaySet, count int) ([]time.Time, error) {
	if days.Empty() {
		return nil, fmt.Errorf("no delivery weekdays selected: %w", domain.ErrInvalidPlanConfiguration)
	}
	if count <= 0 || count > MaxMealCount {
		return nil, fmt.Errorf("meal count must be in 1..%d, got %d: %w", MaxMealCount, count, domain.ErrInvalidPlanConfiguration)
	}
	out := make([]time.Time, 0, count)
	for d := DateOnly(start); len(out) < count; d = d.AddDate(0, 0, 1) {
		if days.Has(d.Weekday()) {
			out = append(out, d)
		}
	}
	return out, nil
}
