package date

import (
	"iter"
	"slices"
)

// History is a chronological series holding at most one value per day.
type History[T any] struct {
	days   []Date
	values []T
}

func (h *History[T]) search(day Date) (int, bool) {
	return slices.BinarySearchFunc(h.days, day, Date.Compare)
}

// Set records v on day, replacing the value already recorded that day.
func (h *History[T]) Set(day Date, v T) *History[T] {
	if n := len(h.days); n == 0 || h.days[n-1].Before(day) {
		// points usually come in chronological order
		h.days, h.values = append(h.days, day), append(h.values, v)
		return h
	}
	i, found := h.search(day)
	if found {
		h.values[i] = v
		return h
	}
	h.days = slices.Insert(h.days, i, day)
	h.values = slices.Insert(h.values, i, v)
	return h
}

// Len returns the number of days with a value.
func (h *History[T]) Len() int { return len(h.days) }

// Values iterates over the series in chronological order.
func (h *History[T]) Values() iter.Seq2[Date, T] {
	return func(yield func(Date, T) bool) {
		for i, on := range h.days {
			if !yield(on, h.values[i]) {
				return
			}
		}
	}
}

// AsOf returns the value recorded on day, or the last one before it. It
// returns false when nothing was recorded on or before day.
func (h *History[T]) AsOf(day Date) (T, bool) {
	i, found := h.search(day)
	if found {
		return h.values[i], true
	}
	if i == 0 {
		var zero T
		return zero, false
	}
	return h.values[i-1], true
}

// Latest returns the last day and its value, false for an empty series.
func (h *History[T]) Latest() (Date, T, bool) {
	n := len(h.days)
	if n == 0 {
		var zero T
		return Date{}, zero, false
	}
	return h.days[n-1], h.values[n-1], true
}
