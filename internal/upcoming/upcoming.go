// Package upcoming selects the next pending items from a list: vaccination
// doses by age, appointments and reminders by date.
package upcoming

import (
	"cmp"
	"slices"
	"time"
)

// Selector extracts a trigger and a completion flag from items of type T.
// Triggers are ordered with Compare.
type Selector[T any, K any] struct {
	Trigger   func(T) K
	Completed func(T) bool
	Compare   func(a, b K) int
}

// Upcoming returns at most n items that are not completed and whose trigger
// is at or after ref, sorted ascending by trigger. Items with equal triggers
// keep their input order.
func (s Selector[T, K]) Upcoming(items []T, ref K, n int) []T {
	if n <= 0 {
		return nil
	}

	pending := make([]T, 0, len(items))
	for _, item := range items {
		if s.Completed(item) {
			continue
		}
		if s.Compare(s.Trigger(item), ref) < 0 {
			continue
		}
		pending = append(pending, item)
	}

	slices.SortStableFunc(pending, func(a, b T) int {
		return s.Compare(s.Trigger(a), s.Trigger(b))
	})

	if len(pending) > n {
		pending = pending[:n]
	}
	return pending
}

// ByTime builds a selector for items triggered at a point in time
func ByTime[T any](trigger func(T) time.Time, completed func(T) bool) Selector[T, time.Time] {
	return Selector[T, time.Time]{
		Trigger:   trigger,
		Completed: completed,
		Compare:   func(a, b time.Time) int { return a.Compare(b) },
	}
}

// ByAge builds a selector for items triggered at an age in months
func ByAge[T any](trigger func(T) int, completed func(T) bool) Selector[T, int] {
	return Selector[T, int]{
		Trigger:   trigger,
		Completed: completed,
		Compare:   cmp.Compare[int],
	}
}
