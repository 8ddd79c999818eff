package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/masterproject/course-platform/internal/models"
	"github.com/masterproject/course-platform/internal/repositories"
)

// mockRepository is an in-memory Repository for service tests.
type mockRepository struct {
	mu sync.Mutex

	courses     map[uint]*models.Course
	lessons     map[uint]*models.Lesson
	materials   map[uint]*models.CourseMaterial
	enrollments map[string]*models.Enrollment // key: userID:courseID
	completions map[string]time.Time          // key: userID:lessonID
	users       map[string]*models.User

	nextCourseID     uint
	nextLessonID     uint
	nextMaterialID   uint
	nextEnrollmentID uint

	failNext error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		courses:     make(map[uint]*models.Course),
		lessons:     make(map[uint]*models.Lesson),
		materials:   make(map[uint]*models.CourseMaterial),
		enrollments: make(map[string]*models.Enrollment),
		completions: make(map[string]time.Time),
		users:       make(map[string]*models.User),
	}
}

func enrollmentKey(userID string, courseID uint) string {
	return fmt.Sprintf("%s:%d", userID, courseID)
}

func completionKey(userID string, lessonID uint) string {
	return fmt.Sprintf("%s:%d", userID, lessonID)
}

// checkFailure pops the injected error, if any.
func (m *mockRepository) checkFailure() error {
	if m.failNext != nil {
		err := m.failNext
		m.failNext = nil
		return err
	}
	return nil
}

// ===== test seeding helpers =====

func (m *mockRepository) addCourse(course *models.Course) *models.Course {
	m.mu.Lock()
	defer m.mu.Unlock()
	if course.ID == 0 {
		m.nextCourseID++
		course.ID = m.nextCourseID
	} else if course.ID > m.nextCourseID {
		m.nextCourseID = course.ID
	}
	m.courses[course.ID] = course
	return course
}

func (m *mockRepository) addLesson(lesson *models.Lesson) *models.Lesson {
	m.mu.Lock()
	defer m.mu.Unlock()
	if lesson.ID == 0 {
		m.nextLessonID++
		lesson.ID = m.nextLessonID
	} else if lesson.ID > m.nextLessonID {
		m.nextLessonID = lesson.ID
	}
	m.lessons[lesson.ID] = lesson
	return lesson
}

func (m *mockRepository) addEnrollment(userID string, courseID uint) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextEnrollmentID++
	m.enrollments[enrollmentKey(userID, courseID)] = &models.Enrollment{
		ID:         m.nextEnrollmentID,
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now().UTC(),
	}
}

// ===== Repository =====

func (m *mockRepository) Course() repositories.CourseRepository     { return &mockCourseRepo{m} }
func (m *mockRepository) Lesson() repositories.LessonRepository     { return &mockLessonRepo{m} }
func (m *mockRepository) Material() repositories.MaterialRepository { return &mockMaterialRepo{m} }
func (m *mockRepository) Enrollment() repositories.EnrollmentRepository {
	return &mockEnrollmentRepo{m}
}
func (m *mockRepository) LessonProgress() repositories.LessonProgressRepository {
	return &mockLessonProgressRepo{m}
}
func (m *mockRepository) User() repositories.UserRepository           { return &mockUserRepo{m} }
func (m *mockRepository) LocalUser() repositories.LocalUserRepository { return &mockLocalUserRepo{m} }

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}

func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

// ===== CourseRepository =====

type mockCourseRepo struct{ m *mockRepository }

func (r *mockCourseRepo) Create(ctx context.Context, course *models.Course) error {
	if err := r.m.checkFailure(); err != nil {
		return err
	}
	r.m.addCourse(course)
	return nil
}

func (r *mockCourseRepo) GetByID(ctx context.Context, id uint) (*models.Course, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.checkFailure(); err != nil {
		return nil, err
	}
	course, ok := r.m.courses[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *course
	return &copied, nil
}

func (r *mockCourseRepo) GetByIDWithLessons(ctx context.Context, id uint) (*models.Course, error) {
	course, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	course.Lessons = nil
	for _, lesson := range r.m.lessons {
		if lesson.CourseID == id {
			course.Lessons = append(course.Lessons, *lesson)
		}
	}
	// order by lesson_order asc like the real repository
	for i := 0; i < len(course.Lessons); i++ {
		for j := i + 1; j < len(course.Lessons); j++ {
			if course.Lessons[j].LessonOrder < course.Lessons[i].LessonOrder {
				course.Lessons[i], course.Lessons[j] = course.Lessons[j], course.Lessons[i]
			}
		}
	}
	return course, nil
}

func (r *mockCourseRepo) Update(ctx context.Context, course *models.Course) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.courses[course.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.m.courses[course.ID] = course
	return nil
}

func (r *mockCourseRepo) Delete(ctx context.Context, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.courses[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.m.courses, id)
	return nil
}

func (r *mockCourseRepo) List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Course
	for _, course := range r.m.courses {
		if filters.IsActive != nil && course.IsActive != *filters.IsActive {
			continue
		}
		out = append(out, course)
	}
	return out, int64(len(out)), nil
}

func (r *mockCourseRepo) GetRecommended(ctx context.Context, userID string, limit int) ([]*models.Course, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Course
	for _, course := range r.m.courses {
		if !course.IsActive || course.IsRestricted {
			continue
		}
		if _, enrolled := r.m.enrollments[enrollmentKey(userID, course.ID)]; enrolled {
			continue
		}
		out = append(out, course)
	}
	return out, nil
}

func (r *mockCourseRepo) GetLeadMagnet(ctx context.Context) (*models.Course, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, course := range r.m.courses {
		if course.IsLeadMagnet {
			copied := *course
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *mockCourseRepo) ExistsByID(ctx context.Context, id uint) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	_, ok := r.m.courses[id]
	return ok, nil
}

// ===== LessonRepository =====

type mockLessonRepo struct{ m *mockRepository }

func (r *mockLessonRepo) Create(ctx context.Context, lesson *models.Lesson) error {
	r.m.addLesson(lesson)
	return nil
}

func (r *mockLessonRepo) GetByID(ctx context.Context, id uint) (*models.Lesson, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.checkFailure(); err != nil {
		return nil, err
	}
	lesson, ok := r.m.lessons[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *lesson
	return &copied, nil
}

func (r *mockLessonRepo) Update(ctx context.Context, lesson *models.Lesson) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.lessons[lesson.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.m.lessons[lesson.ID] = lesson
	return nil
}

func (r *mockLessonRepo) Delete(ctx context.Context, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.lessons[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.m.lessons, id)
	return nil
}

func (r *mockLessonRepo) ListByCourse(ctx context.Context, courseID uint) ([]*models.Lesson, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Lesson
	for _, lesson := range r.m.lessons {
		if lesson.CourseID == courseID {
			out = append(out, lesson)
		}
	}
	return out, nil
}

func (r *mockLessonRepo) CountByCourse(ctx context.Context, courseID uint) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var count int64
	for _, lesson := range r.m.lessons {
		if lesson.CourseID == courseID {
			count++
		}
	}
	return count, nil
}

// ===== EnrollmentRepository =====

type mockEnrollmentRepo struct{ m *mockRepository }

func (r *mockEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.checkFailure(); err != nil {
		return err
	}
	key := enrollmentKey(enrollment.UserID, enrollment.CourseID)
	if _, ok := r.m.enrollments[key]; ok {
		return fmt.Errorf("duplicate key value violates unique constraint")
	}
	r.m.nextEnrollmentID++
	enrollment.ID = r.m.nextEnrollmentID
	r.m.enrollments[key] = enrollment
	return nil
}

func (r *mockEnrollmentRepo) GetByUserAndCourse(ctx context.Context, userID string, courseID uint) (*models.Enrollment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	enrollment, ok := r.m.enrollments[enrollmentKey(userID, courseID)]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *enrollment
	return &copied, nil
}

func (r *mockEnrollmentRepo) ExistsByUserAndCourse(ctx context.Context, userID string, courseID uint) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.checkFailure(); err != nil {
		return false, err
	}
	_, ok := r.m.enrollments[enrollmentKey(userID, courseID)]
	return ok, nil
}

func (r *mockEnrollmentRepo) ListByUser(ctx context.Context, userID string) ([]*models.Enrollment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.Enrollment
	for _, enrollment := range r.m.enrollments {
		if enrollment.UserID == userID {
			copied := *enrollment
			if course, ok := r.m.courses[enrollment.CourseID]; ok {
				copied.Course = *course
			}
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *mockEnrollmentRepo) ListByCourse(ctx context.Context, courseID uint, filters repositories.EnrollmentFilters) ([]*models.Enrollment, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var all []*models.Enrollment
	for _, enrollment := range r.m.enrollments {
		if enrollment.CourseID == courseID {
			all = append(all, enrollment)
		}
	}
	total := int64(len(all))
	if filters.Offset >= len(all) {
		return nil, total, nil
	}
	all = all[filters.Offset:]
	if filters.Limit > 0 && filters.Limit < len(all) {
		all = all[:filters.Limit]
	}
	return all, total, nil
}

func (r *mockEnrollmentRepo) UpdateProgress(ctx context.Context, userID string, courseID uint, progress int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	enrollment, ok := r.m.enrollments[enrollmentKey(userID, courseID)]
	if !ok {
		return repositories.ErrNotFound
	}
	enrollment.Progress = progress
	return nil
}

// ===== LessonProgressRepository =====

type mockLessonProgressRepo struct{ m *mockRepository }

func (r *mockLessonProgressRepo) Upsert(ctx context.Context, userID string, lessonID uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.checkFailure(); err != nil {
		return err
	}
	r.m.completions[completionKey(userID, lessonID)] = time.Now().UTC()
	return nil
}

func (r *mockLessonProgressRepo) IsCompleted(ctx context.Context, userID string, lessonID uint) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	_, ok := r.m.completions[completionKey(userID, lessonID)]
	return ok, nil
}

func (r *mockLessonProgressRepo) CountCompletedByCourse(ctx context.Context, userID string, courseID uint) (int64, error) {
	ids, err := r.ListCompletedLessonIDs(ctx, userID, courseID)
	if err != nil {
		return 0, err
	}
	return int64(len(ids)), nil
}

func (r *mockLessonProgressRepo) ListCompletedLessonIDs(ctx context.Context, userID string, courseID uint) ([]uint, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []uint
	for _, lesson := range r.m.lessons {
		if lesson.CourseID != courseID {
			continue
		}
		if _, ok := r.m.completions[completionKey(userID, lesson.ID)]; ok {
			out = append(out, lesson.ID)
		}
	}
	return out, nil
}

// ===== MaterialRepository =====

type mockMaterialRepo struct{ m *mockRepository }

func (r *mockMaterialRepo) Create(ctx context.Context, material *models.CourseMaterial) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.nextMaterialID++
	material.ID = r.m.nextMaterialID
	r.m.materials[material.ID] = material
	return nil
}

func (r *mockMaterialRepo) GetByID(ctx context.Context, id uint) (*models.CourseMaterial, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	material, ok := r.m.materials[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *material
	return &copied, nil
}

func (r *mockMaterialRepo) Delete(ctx context.Context, id uint) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if _, ok := r.m.materials[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.m.materials, id)
	return nil
}

func (r *mockMaterialRepo) ListByCourse(ctx context.Context, courseID uint) ([]*models.CourseMaterial, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.CourseMaterial
	for _, material := range r.m.materials {
		if material.CourseID == courseID {
			out = append(out, material)
		}
	}
	return out, nil
}

// ===== UserRepository (identity provider) =====

type mockUserRepo struct{ m *mockRepository }

func (r *mockUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	user, ok := r.m.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return user, nil
}

func (r *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, user := range r.m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *mockUserRepo) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.User
	for _, id := range ids {
		if user, ok := r.m.users[id]; ok {
			out = append(out, user)
		}
	}
	return out, nil
}

func (r *mockUserRepo) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var out []*models.User
	for _, user := range r.m.users {
		out = append(out, user)
	}
	return out, int64(len(out)), nil
}

func (r *mockUserRepo) Search(ctx context.Context, query string, filters repositories.UserFilters) ([]*models.User, int64, error) {
	return r.List(ctx, filters)
}

func (r *mockUserRepo) ExistsByID(ctx context.Context, id string) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	_, ok := r.m.users[id]
	return ok, nil
}

func (r *mockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *mockUserRepo) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	user, ok := r.m.users[id]
	if !ok {
		return false, nil
	}
	return user.Role == role, nil
}

// ===== LocalUserRepository =====

type mockLocalUserRepo struct{ m *mockRepository }

func (r *mockLocalUserRepo) Upsert(ctx context.Context, user *models.User) (bool, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if err := r.m.checkFailure(); err != nil {
		return false, err
	}
	_, existed := r.m.users[user.ID]
	r.m.users[user.ID] = user
	return !existed, nil
}

func (r *mockLocalUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	user, ok := r.m.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return user, nil
}
