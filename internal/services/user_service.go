package services

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/maxxlamenaace/roomio-be/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// usernamePattern mirrors the characters a well-formed username may use.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9@.+_-]+$`)

var allDigits = regexp.MustCompile(`^[0-9]+$`)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	GetUserByID(id string) (models.User, error)
	GetUserByUsername(username string) (models.User, error)
	RegisterUser(username, password, passwordConfirm string) (models.User, error)
	AuthenticateUser(username, password string) (models.User, error)
}

// UserService provides business logic for user accounts.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, username, created_at FROM users WHERE id = ?", id)
	err := row.Scan(&user.ID, &user.Username, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// GetUserByUsername retrieves a single user by their case-normalized
// username, including the password hash.
func (s *UserService) GetUserByUsername(username string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow(
		"SELECT id, username, password_hash, created_at FROM users WHERE username = ?",
		strings.ToLower(username),
	)
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// validateRegistration applies the user-creation validation rules:
// username well-formedness, minimum password complexity, and the
// password confirmation match.
func validateRegistration(username, password, passwordConfirm string) *ValidationError {
	fields := make(map[string]string)

	if username == "" {
		fields["username"] = "Username is required"
	} else if !usernamePattern.MatchString(username) {
		fields["username"] = "Username may only contain letters, digits and @/./+/-/_"
	}

	if len(password) < 8 {
		fields["password"] = "Password must be at least 8 characters"
	} else if allDigits.MatchString(password) {
		fields["password"] = "Password cannot be entirely numeric"
	}

	if password != passwordConfirm {
		fields["passwordConfirm"] = "Passwords do not match"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// RegisterUser validates the registration form, hashes the password and
// stores the user with a lowercased username.
func (s *UserService) RegisterUser(username, password, passwordConfirm string) (models.User, error) {
	if verr := validateRegistration(username, password, passwordConfirm); verr != nil {
		return models.User{}, verr
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Username:     strings.ToLower(username),
		PasswordHash: string(hashedPassword),
	}

	stmt, err := s.db.Prepare("INSERT INTO users(id, username, password_hash) VALUES(?, ?, ?)")
	if err != nil {
		return models.User{}, err
	}
	defer stmt.Close()

	if _, err = stmt.Exec(user.ID, user.Username, user.PasswordHash); err != nil {
		// The UNIQUE constraint on username is the source of truth.
		if strings.Contains(err.Error(), "UNIQUE") {
			return models.User{}, ErrUsernameTaken
		}
		return models.User{}, err
	}

	// Return user without password hash
	user.PasswordHash = ""
	return user, nil
}

// AuthenticateUser verifies a user's credentials. The username is
// case-normalized the same way registration normalizes it, so login is
// case-insensitive with respect to how the user registered.
func (s *UserService) AuthenticateUser(username, password string) (models.User, error) {
	user, err := s.GetUserByUsername(username)
	if err != nil {
		if err == ErrNotFound {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrInvalidCredentials
	}

	// Don't send the password hash to the client
	user.PasswordHash = ""
	return user, nil
}
