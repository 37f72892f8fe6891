package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// BookingSlots is the fixed list of times offered to customers.
// Nine slots between 8:00 AM and 5:00 PM; the shop closes over lunch.
var BookingSlots = []string{
	"8:00 AM",
	"9:00 AM",
	"10:00 AM",
	"11:00 AM",
	"1:00 PM",
	"2:00 PM",
	"3:00 PM",
	"4:00 PM",
	"5:00 PM",
}

// NormalizeTime converts a human 12-hour time like "9:00 AM" or "12:30 pm"
// into 24-hour "HH:MM" form. Seconds are always zero and never stored.
func NormalizeTime(value string) (string, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(value))

	// Already 24-hour "HH:MM"?
	if t, err := time.Parse("15:04", trimmed); err == nil {
		return t.Format("15:04"), nil
	}

	for _, layout := range []string{"3:04 PM", "3:04PM"} {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format("15:04"), nil
		}
	}

	return "", fmt.Errorf("invalid time %q: expected formats like \"9:00 AM\" or \"14:30\"", value)
}

// IsBookingSlot reports whether a time, in either 12-hour or 24-hour form,
// is one of the offered booking slots.
func IsBookingSlot(value string) bool {
	normalized, err := NormalizeTime(value)
	if err != nil {
		return false
	}
	for _, slot := range BookingSlots {
		if s, err := NormalizeTime(slot); err == nil && s == normalized {
			return true
		}
	}
	return false
}

// FormatTime12 renders a 24-hour "HH:MM" time back into the 12-hour form
// shown to customers and recorded in admin notes.
func FormatTime12(value string) string {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return value
	}
	return t.Format("3:04 PM")
}

// ValidateDate checks that value is a calendar date in "YYYY-MM-DD" form and
// returns it normalized.
func ValidateDate(value string) (string, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(value))
	if err != nil {
		return "", fmt.Errorf("invalid date %q: expected YYYY-MM-DD", value)
	}
	return t.Format("2006-01-02"), nil
}

// AddMinutes advances a 24-hour "HH:MM" time by the given number of minutes.
func AddMinutes(value string, minutes int) (string, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return "", fmt.Errorf("invalid time %q", value)
	}
	return t.Add(time.Duration(minutes) * time.Minute).Format("15:04"), nil
}

// HourOf returns the hour component (0-23) of a 24-hour "HH:MM" time.
func HourOf(value string) (int, error) {
	parts := strings.SplitN(value, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid time %q", value)
	}
	return hour, nil
}
