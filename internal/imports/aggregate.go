package imports

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"
)

// AggregateDaily reduces normalized rows into per-date totals, ascending by
// date. It is pure and order-insensitive: the same multiset of rows always
// yields the same totals.
//
// Dates produced by Normalize share a common location, so they are usable as
// map keys directly.
func AggregateDaily(rows []NormalizedRow) []DailyTotal {
	byDate := make(map[time.Time]float64, len(rows))
	for _, row := range rows {
		byDate[row.Date] += row.Amount
	}

	totals := make([]DailyTotal, 0, len(byDate))
	for date, amount := range byDate {
		totals = append(totals, DailyTotal{Date: date, TotalAmount: amount})
	}
	sort.Slice(totals, func(i, j int) bool {
		return totals[i].Date.Before(totals[j].Date)
	})
	return totals
}

// GrandTotal sums the per-day totals into the import's total amount.
func GrandTotal(totals []DailyTotal) float64 {
	var sum float64
	for _, t := range totals {
		sum += t.TotalAmount
	}
	return sum
}

// SHA256Hex returns the hex-encoded SHA-256 digest of the raw upload bytes.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
