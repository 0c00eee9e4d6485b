package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"coursehub/internal/domain"
)

type CourseGorm struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title          string    `gorm:"index;not null"`
	Description    string
	Content        string
	InstructorID   uuid.UUID `gorm:"type:uuid;index;not null"`
	InstructorName string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (CourseGorm) TableName() string {
	return "courses"
}

func (cg *CourseGorm) ToDomain() *domain.Course {
	return &domain.Course{
		ID:             cg.ID,
		Title:          cg.Title,
		Description:    cg.Description,
		Content:        cg.Content,
		InstructorID:   cg.InstructorID,
		InstructorName: cg.InstructorName,
		CreatedAt:      cg.CreatedAt,
		UpdatedAt:      cg.UpdatedAt,
	}
}

type CourseRepository struct {
	db *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) Create(ctx context.Context, course *domain.Course) error {
	model := &CourseGorm{
		ID:             course.ID,
		Title:          course.Title,
		Description:    course.Description,
		Content:        course.Content,
		InstructorID:   course.InstructorID,
		InstructorName: course.InstructorName,
	}
	return r.db.WithContext(ctx).Create(model).Error
}

func (r *CourseRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	var model CourseGorm
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

func (r *CourseRepository) List(ctx context.Context) ([]domain.Course, error) {
	var models []CourseGorm
	err := r.db.WithContext(ctx).Order("created_at desc").Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toDomainCourses(models), nil
}

func (r *CourseRepository) Update(ctx context.Context, id uuid.UUID, fields domain.CourseFields) error {
	result := r.db.WithContext(ctx).Model(&CourseGorm{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"title":       fields.Title,
			"description": fields.Description,
			"content":     fields.Content,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete убирает курс вместе с записями студентов одной транзакцией.
func (r *CourseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("course_id = ?", id).Delete(&EnrollmentGorm{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&CourseGorm{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *CourseRepository) ListByInstructor(ctx context.Context, instructorID uuid.UUID) ([]domain.Course, error) {
	var models []CourseGorm
	err := r.db.WithContext(ctx).
		Where("instructor_id = ?", instructorID).
		Order("created_at desc").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toDomainCourses(models), nil
}

// ListEnrolled — курсы, на которые записан студент.
func (r *CourseRepository) ListEnrolled(ctx context.Context, userID uuid.UUID) ([]domain.Course, error) {
	var models []CourseGorm
	err := r.db.WithContext(ctx).
		Joins("JOIN enrollments ON enrollments.course_id = courses.id").
		Where("enrollments.user_id = ?", userID).
		Order("enrollments.created_at desc").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return toDomainCourses(models), nil
}

func toDomainCourses(models []CourseGorm) []domain.Course {
	courses := make([]domain.Course, 0, len(models))
	for i := range models {
		courses = append(courses, *models[i].ToDomain())
	}
	return courses
}
