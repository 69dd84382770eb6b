package models

// Setting holds the single-row OPD configuration. Opening and closing
// times are TIME columns in HH:MM:SS.
type Setting struct {
	ID          int64  `json:"id"`
	OpeningTime string `json:"opening_time"`
	ClosingTime string `json:"closing_time"`
}
