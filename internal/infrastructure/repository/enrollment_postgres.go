package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EnrollmentGorm struct {
	CourseID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
}

func (EnrollmentGorm) TableName() string {
	return "enrollments"
}

type EnrollmentRepository struct {
	db *gorm.DB
}

func NewEnrollmentRepository(db *gorm.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Enroll идемпотентен: FirstOrCreate, чтобы двойной клик или гонка
// двух вкладок не дали дубликата строки.
func (r *EnrollmentRepository) Enroll(ctx context.Context, courseID, userID uuid.UUID) error {
	row := EnrollmentGorm{CourseID: courseID, UserID: userID}
	return r.db.WithContext(ctx).
		Where(EnrollmentGorm{CourseID: courseID, UserID: userID}).
		Attrs(EnrollmentGorm{CreatedAt: time.Now()}).
		FirstOrCreate(&row).Error
}

func (r *EnrollmentRepository) UserIDs(ctx context.Context, courseID uuid.UUID) ([]uuid.UUID, error) {
	var rows []EnrollmentGorm
	err := r.db.WithContext(ctx).
		Where("course_id = ?", courseID).
		Order("created_at asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.UserID)
	}
	return ids, nil
}
