// Package service contains the business logic layer.
//
// Handlers parse HTTP and write responses; services validate input, enforce
// the business rules, and orchestrate repositories; repositories talk to
// the database. Services receive repository interfaces (not *sqlite.DB), so
// tests inject in-memory mocks.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/ydahmen/student-records/internal/apperror"
	"github.com/ydahmen/student-records/internal/auth"
	"github.com/ydahmen/student-records/internal/mail"
	"github.com/ydahmen/student-records/internal/model"
	"github.com/ydahmen/student-records/internal/repository"
)

const (
	MinUsernameLength = 3
	MinPasswordLength = 6
)

// Placeholder profile values for self-registered students, until an admin
// fills in the real profile.
const (
	placeholderAge   = 18
	placeholderMajor = "Undeclared"
	placeholderGrade = "F"
)

// emailPattern is a light sanity check, not RFC 5322 — it catches the
// typos worth catching (missing @, missing domain) without rejecting
// legitimate addresses.
var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// AuthService handles registration, login, and admin seeding.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	mailer    *mail.Mailer
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all dependencies injected.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	mailer *mail.Mailer,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		mailer:    mailer,
		logger:    logger,
	}
}

// RegisterInput is the self-registration request.
type RegisterInput struct {
	Username        string
	Password        string
	ConfirmPassword string
	Email           string // optional; validated and emailed when present
}

// RegisterResult reports what registration produced. EmailSent is false
// both when no email was given and when delivery failed — the StudentID in
// the response body is the fallback delivery channel either way.
type RegisterResult struct {
	StudentID string `json:"studentId"`
	EmailSent bool   `json:"emailSent"`
}

// Register creates a student account: a placeholder student profile row and
// a student-role user row linked to it, committed as one transaction. On
// success a best-effort notification email carries the generated student ID
// to the registrant; delivery failure does not roll anything back.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	// All validation happens before the store is touched.
	if len(username) < MinUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be at least %d characters", MinUsernameLength))
	}
	if len(in.Password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if in.Password != in.ConfirmPassword {
		return nil, apperror.ValidationFailed("confirmPassword", "passwords do not match")
	}
	if email != "" && !emailPattern.MatchString(email) {
		return nil, apperror.ValidationFailed("email", "email address is not valid")
	}

	// Friendly conflict check up front; the UNIQUE constraint inside the
	// registration transaction is the authoritative backstop against races.
	if _, err := s.users.GetUserByUsername(ctx, username); err == nil {
		return nil, apperror.Conflict("user", fmt.Sprintf("username %q is already taken", username))
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("service/auth: checking username %q: %w", username, err)
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	studentID, err := auth.NewStudentID()
	if err != nil {
		return nil, fmt.Errorf("service/auth: %w", err)
	}

	student := &model.Student{
		ID:    studentID,
		Name:  username,
		Age:   placeholderAge,
		Major: placeholderMajor,
		Grade: placeholderGrade,
	}
	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		Email:        email,
		Role:         model.RoleStudent,
	}

	if err := s.users.CreateAccount(ctx, student, user); err != nil {
		return nil, err
	}

	s.logger.Info("student registered",
		slog.String("username", username),
		slog.String("studentID", studentID),
	)

	result := &RegisterResult{StudentID: studentID}
	if email != "" {
		if err := s.mailer.SendStudentID(email, username, studentID); err != nil {
			// Non-fatal: the account exists, the ID is in the response.
			s.logger.Warn("student ID email delivery failed",
				slog.String("email", email),
				slog.String("error", err.Error()),
			)
		} else {
			result.EmailSent = true
		}
	}

	return result, nil
}

// AuthResult bundles the issued token with the authenticated user so the
// handler can respond in one step.
type AuthResult struct {
	Token string
	User  *model.User
}

// Login validates credentials and issues a signed 24-hour token embedding
// the caller's identity claims.
//
// Unknown usernames and wrong passwords produce the same error — don't
// give enumeration attacks a username oracle.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if password == "" {
		return nil, apperror.ValidationFailed("password", "password is required")
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthenticated("invalid username or password")
		}
		return nil, fmt.Errorf("service/auth: fetching user %q: %w", username, err)
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthenticated("invalid username or password")
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for %q: %w", username, err)
	}

	s.logger.Info("user logged in",
		slog.String("username", user.Username),
		slog.String("role", string(user.Role)),
	)

	return &AuthResult{Token: token, User: user}, nil
}

// EnsureDefaultAdmin seeds an admin account at startup when none exists.
// Runs once per process start; a no-op when any admin-role user is present.
func (s *AuthService) EnsureDefaultAdmin(ctx context.Context, username, password string) error {
	count, err := s.users.CountByRole(ctx, model.RoleAdmin)
	if err != nil {
		return fmt.Errorf("service/auth: counting admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return fmt.Errorf("service/auth: hashing admin password: %w", err)
	}

	admin := &model.User{
		Username:     username,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}
	if err := s.users.CreateUser(ctx, admin); err != nil {
		return fmt.Errorf("service/auth: seeding default admin: %w", err)
	}

	s.logger.Info("default admin account created", slog.String("username", username))
	return nil
}
