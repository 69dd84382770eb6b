package helper

import (
	"strings"
	"time"
)

// IsClinicOpen checks whether the OPD is open right now, given the
// configured opening/closing times (Asia/Karachi).
func IsClinicOpen(openingTime, closingTime string) bool {
	loc, err := time.LoadLocation("Asia/Karachi")
	if err != nil {
		return false
	}
	return isClinicOpenAt(time.Now().In(loc), openingTime, closingTime, loc)
}

func isClinicOpenAt(now time.Time, openingTime, closingTime string, loc *time.Location) bool {
	// TIME columns come back as HH:MM:SS or HH:MM
	layout := "15:04:05"

	if strings.Count(openingTime, ":") == 1 {
		openingTime += ":00"
	}
	if strings.Count(closingTime, ":") == 1 {
		closingTime += ":00"
	}

	openTime, err := time.ParseInLocation(layout, openingTime, loc)
	if err != nil {
		return false
	}

	closeTime, err := time.ParseInLocation(layout, closingTime, loc)
	if err != nil {
		return false
	}

	// Pin both to today's date
	openTime = time.Date(
		now.Year(), now.Month(), now.Day(),
		openTime.Hour(), openTime.Minute(), openTime.Second(),
		0, loc,
	)

	closeTime = time.Date(
		now.Year(), now.Month(), now.Day(),
		closeTime.Hour(), closeTime.Minute(), closeTime.Second(),
		0, loc,
	)

	// Closing past midnight, e.g. open 20:00 close 02:00
	if closeTime.Before(openTime) {
		closeTime = closeTime.Add(24 * time.Hour)

		// Before today's opening means we may still be in yesterday's window
		if now.Before(openTime) {
			openTime = openTime.Add(-24 * time.Hour)
			closeTime = closeTime.Add(-24 * time.Hour)
		}
	}

	return now.After(openTime) && now.Before(closeTime)
}
