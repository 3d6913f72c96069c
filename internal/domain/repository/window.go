package repository

import "time"

// Window represents a lookback window for index and summary queries.
type Window string

const (
	Win7d  Window = "7d"
	Win30d Window = "30d"
	Win90d Window = "90d"
	WinYTD Window = "ytd"
	WinMax Window = "max"
)

// IsValidWindow returns true if w is a supported window.
func IsValidWindow(w Window) bool {
	switch w {
	case Win7d, Win30d, Win90d, WinYTD, WinMax:
		return true
	default:
		return false
	}
}

// DefaultWindow returns the default lookback window.
func DefaultWindow() Window { return Win90d }

// NormalizeWindow converts a raw string to a valid window (or default).
func NormalizeWindow(s string) Window {
	if s == "" {
		return DefaultWindow()
	}
	w := Window(s)
	if IsValidWindow(w) {
		return w
	}
	return DefaultWindow()
}

// Cutoff returns the inclusive lower bound for a window relative to asOf.
// The zero time means unbounded.
func (w Window) Cutoff(asOf time.Time) time.Time {
	switch w {
	case Win7d:
		return asOf.AddDate(0, 0, -7)
	case Win30d:
		return asOf.AddDate(0, 0, -30)
	case Win90d:
		return asOf.AddDate(0, 0, -90)
	case WinYTD:
		return time.Date(asOf.Year(), time.January, 1, 0, 0, 0, 0, asOf.Location())
	default:
		return time.Time{}
	}
}
