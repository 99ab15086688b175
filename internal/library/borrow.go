// Package library holds the borrow bookkeeping rules shared by the
// borrow handlers and the reminder sweep.
package library

import (
	"math"
	"time"
)

// DueDate returns when a book checked out now has to be back.
func DueDate(from time.Time, periodDays int) time.Time {
	return from.Add(time.Duration(periodDays) * 24 * time.Hour)
}

// FineFor charges perDay for every started day past the due date.
// Returning on time costs nothing.
func FineFor(due, returned time.Time, perDay float64) float64 {
	if !returned.After(due) {
		return 0
	}

	overdueDays := math.Ceil(returned.Sub(due).Hours() / 24)
	return overdueDays * perDay
}
