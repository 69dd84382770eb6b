package helper

import (
	"sort"
	"strings"

	"backend-hms/internal/models"
)

// NextTokenNumber computes the display number for a fresh token given the
// count of tokens already issued for (doctor, day). Count-then-increment
// with no lock: two callers reading the same count will produce the same
// number. Single front desk in practice, so the window is accepted.
func NextTokenNumber(todayCount int) int {
	if todayCount < 0 {
		todayCount = 0
	}
	return todayCount + 1
}

// SortQueue orders tokens by token_number ascending, created_at as the
// tiebreak, so numbering gaps and duplicates show up directly in display
// order.
func SortQueue(rows []models.QueueRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].TokenNumber != rows[j].TokenNumber {
			return rows[i].TokenNumber < rows[j].TokenNumber
		}
		return rows[i].CreatedAt.Before(rows[j].CreatedAt)
	})
}

// CountByStatus partitions a doctor's queue into per-status counts.
func CountByStatus(rows []models.QueueRow) models.DoctorQueueSummary {
	var s models.DoctorQueueSummary
	s.Total = len(rows)
	for _, row := range rows {
		switch row.Status {
		case models.StatusWaiting:
			s.Waiting++
		case models.StatusInConsultation:
			s.InConsultation++
		case models.StatusCompleted:
			s.Completed++
		case models.StatusCancelled:
			s.Cancelled++
		}
	}
	return s
}

// MatchDoctorSelf resolves the signed-in doctor's own queue entry from
// their display name: the doctor whose name is a case-insensitive
// substring of the actor's full name (or vice versa). Returns nil when
// nothing matches, in which case the caller falls back to the overview.
func MatchDoctorSelf(actorName string, doctors []models.Doctor) *models.Doctor {
	actor := strings.ToLower(strings.TrimSpace(actorName))
	if actor == "" {
		return nil
	}
	for i := range doctors {
		name := strings.ToLower(strings.TrimSpace(doctors[i].Name))
		if name == "" {
			continue
		}
		if strings.Contains(actor, name) || strings.Contains(name, actor) {
			return &doctors[i]
		}
	}
	return nil
}
