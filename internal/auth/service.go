package auth

import (
	"errors"
	"fmt"
	"log"
	"regexp"

	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/entities"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var (
	ErrUserNotFound     = errors.New("user not found with this role")
	ErrEmailExists      = errors.New("email already registered")
	ErrInvalidRole      = errors.New("invalid role")
	ErrNameRequired     = errors.New("name is required")
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrNameTooShort     = errors.New("name must be at least 3 characters")
	ErrEmailInvalid     = errors.New("invalid email format")
)

// StatsCreator creates the per-user reading-stats row at registration time.
// Implemented by the stats repository.
type StatsCreator interface {
	CreateForUser(userID uint) (*entities.ReadingStats, error)
}

// Service handles authentication and account management.
type Service struct {
	db     *gorm.DB
	stats  StatsCreator
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(db *gorm.DB, stats StatsCreator, cfg config.Auth) *Service {
	return &Service{
		db:     db,
		stats:  stats,
		config: cfg,
	}
}

// Register creates a new account. Unknown roles fall back to student, and a
// student account gets its reading-stats row created alongside; a stats
// failure is logged but does not fail registration.
func (s *Service) Register(name, email, password string, role entities.UserRole) (*entities.User, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}
	if len(name) < 3 {
		return nil, ErrNameTooShort
	}
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return nil, ErrEmailInvalid
	}
	if !role.IsValid() {
		role = entities.UserRoleStudent
	}

	var existing entities.User
	err := s.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrEmailExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if role == entities.UserRoleStudent {
		if _, err := s.stats.CreateForUser(user.ID); err != nil {
			log.Printf("Failed to create reading stats for user %d: %v", user.ID, err)
		}
	}

	return user, nil
}

// Authenticate validates credentials for the given role and returns the
// user. The role is part of the lookup: a student cannot log in through the
// admin form and vice versa.
func (s *Service) Authenticate(email, password string, role entities.UserRole) (*entities.User, error) {
	var user entities.User
	err := s.db.Where("email = ? AND role = ?", email, role).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		return nil, err
	}

	return &user, nil
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	err := s.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// HasUsers reports whether any account exists yet.
func (s *Service) HasUsers() (bool, error) {
	var count int64
	err := s.db.Model(&entities.User{}).Count(&count).Error
	return count > 0, err
}
