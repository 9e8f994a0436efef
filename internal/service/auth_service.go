package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"greenmarket/internal/auth"
	apperrors "greenmarket/internal/errors"
	"greenmarket/internal/model"
	"greenmarket/internal/repository"
)

// RegisterInput carries a registration request into the service layer.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     string
	StudentID string
	Role      string
}

// AuthService handles registration and credential verification.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*model.User, string, error)
	Login(ctx context.Context, email, password string) (*model.User, string, error)
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	emailRe    *regexp.Regexp
}

// NewAuthService creates a new authentication service. emailPattern is the
// institutional email regexp enforced at registration.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, emailPattern string) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		emailRe:    regexp.MustCompile(emailPattern),
	}
}

// Register validates the payload, hashes the password and persists the user.
// Nothing is persisted when any field is invalid.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*model.User, string, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	var fields []apperrors.FieldError
	if !s.emailRe.MatchString(input.Email) {
		fields = append(fields, apperrors.FieldError{
			Field:   "email",
			Message: "email must be a valid institutional address",
		})
	}
	role := model.Role(input.Role)
	if input.Role == "" {
		role = model.RoleStudent
	} else if role != model.RoleStudent && role != model.RoleFaculty && role != model.RoleStaff {
		// Admin accounts are provisioned by the seed command, never self-registered.
		fields = append(fields, apperrors.FieldError{
			Field:   "role",
			Message: "role must be one of student, faculty, staff",
		})
	}
	if len(fields) > 0 {
		return nil, "", apperrors.NewValidationError(fields...)
	}

	existing, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err == nil && existing != nil {
		return nil, "", apperrors.ErrEmailTaken
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, "", fmt.Errorf("check user existence: %w", err)
	}

	if input.StudentID != "" {
		taken, err := s.userRepo.FindByStudentID(ctx, input.StudentID)
		if err == nil && taken != nil {
			return nil, "", apperrors.ErrStudentIDTaken
		}
		if err != nil && err != gorm.ErrRecordNotFound {
			return nil, "", fmt.Errorf("check student id: %w", err)
		}
	}

	hashed, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: hashed,
		Phone:        input.Phone,
		Role:         role,
		IsActive:     true,
	}
	if input.StudentID != "" {
		user.StudentID = &input.StudentID
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}
	return user, token, nil
}

// Login verifies credentials, stamps the last-login time and issues a token.
// Deactivated users cannot log in.
func (s *authService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	if !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, "", apperrors.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, "", apperrors.ErrUserInactive
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, "", fmt.Errorf("stamp last login: %w", err)
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}
	return user, token, nil
}
