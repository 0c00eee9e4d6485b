package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"coursehub/internal/application/usecase"
	"coursehub/internal/domain"
)

type CourseHandler struct {
	courses *usecase.CourseUseCase
}

func NewCourseHandler(courses *usecase.CourseUseCase) *CourseHandler {
	return &CourseHandler{courses: courses}
}

type courseFieldsReq struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"required,max=2000"`
	Content     string `json:"content"`
}

type courseResp struct {
	ID              uuid.UUID   `json:"id"`
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	Content         string      `json:"content"`
	InstructorID    uuid.UUID   `json:"instructor_id"`
	InstructorName  string      `json:"instructor_name"`
	EnrolledUserIDs []uuid.UUID `json:"enrolled_user_ids"`
}

func toCourseResp(c *domain.Course) courseResp {
	ids := c.EnrolledUserIDs
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return courseResp{
		ID:              c.ID,
		Title:           c.Title,
		Description:     c.Description,
		Content:         c.Content,
		InstructorID:    c.InstructorID,
		InstructorName:  c.InstructorName,
		EnrolledUserIDs: ids,
	}
}

func toCourseRespList(courses []domain.Course) []courseResp {
	out := make([]courseResp, 0, len(courses))
	for i := range courses {
		out = append(out, toCourseResp(&courses[i]))
	}
	return out
}

func actorFrom(c *gin.Context) (usecase.Actor, bool) {
	id, err := uuid.Parse(c.GetString("userId"))
	if err != nil {
		return usecase.Actor{}, false
	}
	role, ok := domain.ParseRole(c.GetString("userRole"))
	if !ok {
		return usecase.Actor{}, false
	}
	return usecase.Actor{ID: id, Role: role}, true
}

func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Course not found"})
	case errors.Is(err, domain.ErrOwnEnroll):
		c.JSON(http.StatusForbidden, gin.H{"error": "Instructors cannot enroll in their own course"})
	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// GET /api/v1/courses
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courses.List(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toCourseRespList(courses))
}

// GET /api/v1/courses/:id
func (h *CourseHandler) GetOne(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course id"})
		return
	}

	course, err := h.courses.Get(c, id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCourseResp(course))
}

// POST /api/v1/courses
func (h *CourseHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req courseFieldsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	course, err := h.courses.Create(c, actor, domain.CourseFields{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCourseResp(course))
}

// PUT /api/v1/courses/:id
func (h *CourseHandler) Update(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course id"})
		return
	}

	var req courseFieldsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	course, err := h.courses.Update(c, actor, id, domain.CourseFields{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCourseResp(course))
}

// DELETE /api/v1/courses/:id
func (h *CourseHandler) Delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course id"})
		return
	}

	if err := h.courses.Delete(c, actor, id); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// PUT /api/v1/courses/enroll/:id
func (h *CourseHandler) Enroll(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course id"})
		return
	}

	if err := h.courses.Enroll(c, actor, id); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GET /api/v1/courses/enrolled
func (h *CourseHandler) ListEnrolled(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	courses, err := h.courses.ListEnrolled(c, actor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toCourseRespList(courses))
}

// GET /api/v1/courses/instructor
func (h *CourseHandler) ListOwned(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	courses, err := h.courses.ListOwned(c, actor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toCourseRespList(courses))
}

// GET /api/v1/courses/:id/roster
func (h *CourseHandler) Roster(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid course id"})
		return
	}

	students, err := h.courses.Roster(c, actor, id)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	type rosterEntry struct {
		ID       uuid.UUID `json:"id"`
		Username string    `json:"username"`
	}
	out := make([]rosterEntry, 0, len(students))
	for _, s := range students {
		out = append(out, rosterEntry{ID: s.ID, Username: s.Username})
	}
	c.JSON(http.StatusOK, out)
}
