package helper

import (
	"testing"
	"time"

	"backend-hms/internal/models"

	"github.com/stretchr/testify/assert"
)

func row(number int, status string, createdAt time.Time) models.QueueRow {
	return models.QueueRow{
		Token: models.Token{
			TokenNumber: number,
			Status:      status,
			CreatedAt:   createdAt,
		},
	}
}

func TestNextTokenNumber(t *testing.T) {
	assert.Equal(t, 1, NextTokenNumber(0))
	assert.Equal(t, 5, NextTokenNumber(4))
	// a failed count read leaves the caller with the zero value
	assert.Equal(t, 1, NextTokenNumber(-1))
}

func TestNextTokenNumberSequentialNoGaps(t *testing.T) {
	count := 0
	for want := 1; want <= 50; want++ {
		got := NextTokenNumber(count)
		assert.Equal(t, want, got)
		count++
	}
}

func TestSortQueueByNumberThenCreatedAt(t *testing.T) {
	base := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC)
	rows := []models.QueueRow{
		row(3, models.StatusWaiting, base.Add(3*time.Minute)),
		row(1, models.StatusCompleted, base),
		// duplicate numbers from the issuance race keep insertion order
		row(2, models.StatusWaiting, base.Add(2*time.Minute)),
		row(2, models.StatusWaiting, base.Add(1*time.Minute)),
	}

	SortQueue(rows)

	assert.Equal(t, []int{1, 2, 2, 3}, []int{
		rows[0].TokenNumber, rows[1].TokenNumber, rows[2].TokenNumber, rows[3].TokenNumber,
	})
	assert.True(t, rows[1].CreatedAt.Before(rows[2].CreatedAt))
}

func TestCountByStatus(t *testing.T) {
	now := time.Now()
	rows := []models.QueueRow{
		row(1, models.StatusCompleted, now),
		row(2, models.StatusWaiting, now),
		row(3, models.StatusWaiting, now),
		row(4, models.StatusInConsultation, now),
		row(5, models.StatusCancelled, now),
	}

	s := CountByStatus(rows)

	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 2, s.Waiting)
	assert.Equal(t, 1, s.InConsultation)
	assert.Equal(t, 1, s.Completed)
	assert.Equal(t, 1, s.Cancelled)
}

func TestCountByStatusEmptyQueue(t *testing.T) {
	s := CountByStatus(nil)
	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 0, s.Waiting)
}

func TestMatchDoctorSelf(t *testing.T) {
	doctors := []models.Doctor{
		{ID: 1, Name: "Dr. Ahmed Raza"},
		{ID: 2, Name: "Sara Khan"},
		{ID: 3, Name: "Dr. Bilal Hussain"},
	}

	matched := MatchDoctorSelf("Dr. Sara Khan", doctors)
	if assert.NotNil(t, matched) {
		assert.Equal(t, int64(2), matched.ID)
	}

	// case-insensitive
	matched = MatchDoctorSelf("dr. SARA khan", doctors)
	if assert.NotNil(t, matched) {
		assert.Equal(t, int64(2), matched.ID)
	}

	// actor name shorter than the doctor record still matches
	matched = MatchDoctorSelf("Bilal Hussain", doctors)
	if assert.NotNil(t, matched) {
		assert.Equal(t, int64(3), matched.ID)
	}

	// no match falls back to the overview
	assert.Nil(t, MatchDoctorSelf("Dr. Nadia Iqbal", doctors))
	assert.Nil(t, MatchDoctorSelf("", doctors))
	assert.Nil(t, MatchDoctorSelf("Dr. Sara Khan", nil))
}
