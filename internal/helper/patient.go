package helper

import (
	"fmt"
	"regexp"
	"time"
)

// CNIC format: #####-#######-#
var cnicRegex = regexp.MustCompile(`^[0-9]{5}-[0-9]{7}-[0-9]$`)

func ValidCNIC(cnic string) bool {
	return cnicRegex.MatchString(cnic)
}

// FormatMRNumber builds the medical-record number handed out at
// registration: MR-YYYY-NNNNNN, NNNNNN from the yearly registration
// count. Same count-then-format pattern as token numbering.
func FormatMRNumber(year int, yearCount int) string {
	return fmt.Sprintf("MR-%d-%06d", year, yearCount+1)
}

func CurrentMRYear() int {
	loc, err := time.LoadLocation("Asia/Karachi")
	if err != nil {
		return time.Now().Year()
	}
	return time.Now().In(loc).Year()
}
