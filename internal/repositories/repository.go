package repositories

import "context"

// Repository aggregates all repository interfaces behind one entry point.
type Repository interface {
	// Catalog domain
	Course() CourseRepository
	Lesson() LessonRepository
	Material() MaterialRepository

	// Enrollment domain
	Enrollment() EnrollmentRepository
	LessonProgress() LessonProgressRepository

	// User domain; reads go to the identity provider, the local mirror only
	// keeps the rows other tables reference.
	User() UserRepository
	LocalUser() LocalUserRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
