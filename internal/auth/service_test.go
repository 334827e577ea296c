package auth

import (
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/openshelf/openshelf/internal/config"
	"github.com/openshelf/openshelf/internal/database/stats"
	"github.com/openshelf/openshelf/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.AutoMigrate(&entities.User{}, &entities.ReadingStats{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func newTestService(db *gorm.DB) *Service {
	return NewService(db, stats.NewRepository(db), config.Auth{BcryptCost: 10})
}

func TestService_Register(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)

	tests := []struct {
		name     string
		userName string
		email    string
		password string
		role     entities.UserRole
		wantErr  error
	}{
		{
			name:     "valid student",
			userName: "Alice Reader",
			email:    "alice@example.com",
			password: "password12345",
			role:     entities.UserRoleStudent,
			wantErr:  nil,
		},
		{
			name:     "valid admin",
			userName: "Librarian",
			email:    "admin@example.com",
			password: "password12345",
			role:     entities.UserRoleAdmin,
			wantErr:  nil,
		},
		{
			name:     "missing name",
			userName: "",
			email:    "noname@example.com",
			password: "password12345",
			role:     entities.UserRoleStudent,
			wantErr:  ErrNameRequired,
		},
		{
			name:     "missing email",
			userName: "No Email",
			email:    "",
			password: "password12345",
			role:     entities.UserRoleStudent,
			wantErr:  ErrEmailRequired,
		},
		{
			name:     "missing password",
			userName: "No Password",
			email:    "nopass@example.com",
			password: "",
			role:     entities.UserRoleStudent,
			wantErr:  ErrPasswordRequired,
		},
		{
			name:     "name too short",
			userName: "Al",
			email:    "al@example.com",
			password: "password12345",
			role:     entities.UserRoleStudent,
			wantErr:  ErrNameTooShort,
		},
		{
			name:     "malformed email",
			userName: "Bad Email",
			email:    "not-an-email",
			password: "password12345",
			role:     entities.UserRoleStudent,
			wantErr:  ErrEmailInvalid,
		},
		{
			name:     "password too short",
			userName: "Short Pass",
			email:    "shortpass@example.com",
			password: "abc",
			role:     entities.UserRoleStudent,
			wantErr:  ErrPasswordTooShort,
		},
		{
			name:     "duplicate email",
			userName: "Alice Again",
			email:    "alice@example.com",
			password: "password12345",
			role:     entities.UserRoleStudent,
			wantErr:  ErrEmailExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Register(tt.userName, tt.email, tt.password, tt.role)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Register() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr == nil {
				if user.ID == 0 {
					t.Error("Register() returned user with zero ID")
				}
				if user.PasswordHash == tt.password {
					t.Error("Register() stored the plaintext password")
				}
			}
		})
	}
}

func TestService_RegisterUnknownRoleBecomesStudent(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)

	user, err := svc.Register("Mystery Role", "mystery@example.com", "password12345", "superuser")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if user.Role != entities.UserRoleStudent {
		t.Errorf("Register() role = %s, want student", user.Role)
	}
}

func TestService_RegisterCreatesStatsRowForStudents(t *testing.T) {
	db := setupTestDB(t)
	statsRepo := stats.NewRepository(db)
	svc := NewService(db, statsRepo, config.Auth{BcryptCost: 10})

	student, err := svc.Register("Alice Reader", "alice@example.com", "password12345", entities.UserRoleStudent)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := statsRepo.GetForUser(student.ID); err != nil {
		t.Errorf("expected stats row for student, got %v", err)
	}

	admin, err := svc.Register("Librarian", "admin@example.com", "password12345", entities.UserRoleAdmin)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := statsRepo.GetForUser(admin.ID); !errors.Is(err, stats.ErrStatsNotFound) {
		t.Errorf("expected no stats row for admin, got %v", err)
	}
}

func TestService_Authenticate(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)

	if _, err := svc.Register("Alice Reader", "alice@example.com", "password12345", entities.UserRoleStudent); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	t.Run("valid credentials", func(t *testing.T) {
		user, err := svc.Authenticate("alice@example.com", "password12345", entities.UserRoleStudent)
		if err != nil {
			t.Fatalf("Authenticate() error = %v", err)
		}
		if user.Email != "alice@example.com" {
			t.Errorf("Authenticate() email = %s", user.Email)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate("alice@example.com", "wrongpassword", entities.UserRoleStudent)
		if !errors.Is(err, ErrInvalidPassword) {
			t.Errorf("Authenticate() error = %v, want ErrInvalidPassword", err)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Authenticate("nobody@example.com", "password12345", entities.UserRoleStudent)
		if !errors.Is(err, ErrUserNotFound) {
			t.Errorf("Authenticate() error = %v, want ErrUserNotFound", err)
		}
	})

	t.Run("wrong role", func(t *testing.T) {
		_, err := svc.Authenticate("alice@example.com", "password12345", entities.UserRoleAdmin)
		if !errors.Is(err, ErrUserNotFound) {
			t.Errorf("Authenticate() error = %v, want ErrUserNotFound", err)
		}
	})
}

func TestService_HasUsers(t *testing.T) {
	db := setupTestDB(t)
	svc := newTestService(db)

	hasUsers, err := svc.HasUsers()
	if err != nil {
		t.Fatalf("HasUsers() error = %v", err)
	}
	if hasUsers {
		t.Error("HasUsers() = true for empty database")
	}

	if _, err := svc.Register("Alice Reader", "alice@example.com", "password12345", entities.UserRoleStudent); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	hasUsers, err = svc.HasUsers()
	if err != nil {
		t.Fatalf("HasUsers() error = %v", err)
	}
	if !hasUsers {
		t.Error("HasUsers() = false after registration")
	}
}
