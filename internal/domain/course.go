package domain

import (
	"time"

	"github.com/google/uuid"
)

type Course struct {
	ID             uuid.UUID
	Title          string
	Description    string
	Content        string
	InstructorID   uuid.UUID
	InstructorName string

	// Инвариант: владелец курса никогда не входит в это множество
	EnrolledUserIDs []uuid.UUID

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CourseFields — то, что приходит из формы создания/редактирования.
type CourseFields struct {
	Title       string
	Description string
	Content     string
}

func (c *Course) IsEnrolled(userID uuid.UUID) bool {
	for _, id := range c.EnrolledUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (c *Course) IsOwnedBy(userID uuid.UUID) bool {
	return c.InstructorID == userID
}
