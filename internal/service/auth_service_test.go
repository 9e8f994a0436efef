package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"greenmarket/internal/auth"
	apperrors "greenmarket/internal/errors"
	"greenmarket/internal/model"
	"greenmarket/internal/repository"
)

const testEmailPattern = `^[a-zA-Z0-9._%+-]+@(crk\.)?umn\.edu$`

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByStudentID(ctx context.Context, studentID string) (*model.User, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, filter repository.UserFilter, offset, limit int) ([]model.User, int64, error) {
	args := m.Called(ctx, filter, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]model.User), args.Get(1).(int64), args.Error(2)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		input         RegisterInput
		setupMock     func(*MockUserRepository)
		expectedError error
		wantRole      model.Role
	}{
		{
			name: "successful registration defaults to student",
			input: RegisterInput{
				FirstName: "Jane",
				LastName:  "Doe",
				Email:     "jane.doe@umn.edu",
				Password:  "SecurePass123!",
			},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "jane.doe@umn.edu").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			wantRole: model.RoleStudent,
		},
		{
			name: "email is normalized before lookup",
			input: RegisterInput{
				FirstName: "Jane",
				LastName:  "Doe",
				Email:     "  Jane.Doe@Crk.UMN.edu  ",
				Password:  "SecurePass123!",
				Role:      "faculty",
			},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "jane.doe@crk.umn.edu").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			wantRole: model.RoleFaculty,
		},
		{
			name: "non-institutional email is rejected before any lookup",
			input: RegisterInput{
				FirstName: "Jane",
				LastName:  "Doe",
				Email:     "jane@gmail.com",
				Password:  "SecurePass123!",
			},
			setupMock:     func(m *MockUserRepository) {},
			expectedError: &apperrors.ValidationError{},
		},
		{
			name: "admin role cannot be self-registered",
			input: RegisterInput{
				FirstName: "Jane",
				LastName:  "Doe",
				Email:     "jane.doe@umn.edu",
				Password:  "SecurePass123!",
				Role:      "admin",
			},
			setupMock:     func(m *MockUserRepository) {},
			expectedError: &apperrors.ValidationError{},
		},
		{
			name: "duplicate email",
			input: RegisterInput{
				FirstName: "Jane",
				LastName:  "Doe",
				Email:     "taken@umn.edu",
				Password:  "SecurePass123!",
			},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "taken@umn.edu").Return(&model.User{Email: "taken@umn.edu"}, nil)
			},
			expectedError: apperrors.ErrEmailTaken,
		},
		{
			name: "duplicate student id",
			input: RegisterInput{
				FirstName: "Jane",
				LastName:  "Doe",
				Email:     "jane.doe@umn.edu",
				Password:  "SecurePass123!",
				StudentID: "stu-001",
			},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "jane.doe@umn.edu").Return(nil, gorm.ErrRecordNotFound)
				m.On("FindByStudentID", mock.Anything, "stu-001").Return(&model.User{ID: 9}, nil)
			},
			expectedError: apperrors.ErrStudentIDTaken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			jwtService := auth.NewJWTService("test-secret", time.Hour)
			service := NewAuthService(mockRepo, jwtService, testEmailPattern)

			user, token, err := service.Register(context.Background(), tt.input)

			if tt.expectedError != nil {
				assert.Error(t, err)
				if _, ok := tt.expectedError.(*apperrors.ValidationError); ok {
					var verr *apperrors.ValidationError
					assert.ErrorAs(t, err, &verr)
				} else {
					assert.ErrorIs(t, err, tt.expectedError)
				}
				assert.Nil(t, user)
				assert.Empty(t, token)
				mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.NotEmpty(t, token)
				assert.Equal(t, tt.wantRole, user.Role)
				assert.True(t, user.IsActive)
				assert.NotEmpty(t, user.PasswordHash)
				assert.NotEqual(t, tt.input.Password, user.PasswordHash)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hashed, _ := bcrypt.GenerateFromPassword([]byte("SecurePass123!"), bcrypt.MinCost)

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful login stamps last login",
			email:    "jane.doe@umn.edu",
			password: "SecurePass123!",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "jane.doe@umn.edu").Return(&model.User{
					ID:           7,
					Email:        "jane.doe@umn.edu",
					PasswordHash: string(hashed),
					IsActive:     true,
				}, nil)
				m.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
					return u.LastLogin != nil
				})).Return(nil)
			},
		},
		{
			name:     "unknown email",
			email:    "nobody@umn.edu",
			password: "SecurePass123!",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "nobody@umn.edu").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "wrong password",
			email:    "jane.doe@umn.edu",
			password: "wrong-password",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "jane.doe@umn.edu").Return(&model.User{
					ID:           7,
					Email:        "jane.doe@umn.edu",
					PasswordHash: string(hashed),
					IsActive:     true,
				}, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "deactivated user is rejected",
			email:    "jane.doe@umn.edu",
			password: "SecurePass123!",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByEmail", mock.Anything, "jane.doe@umn.edu").Return(&model.User{
					ID:           7,
					Email:        "jane.doe@umn.edu",
					PasswordHash: string(hashed),
					IsActive:     false,
				}, nil)
			},
			expectedError: apperrors.ErrUserInactive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			jwtService := auth.NewJWTService("test-secret", time.Hour)
			service := NewAuthService(mockRepo, jwtService, testEmailPattern)

			user, token, err := service.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
				assert.Empty(t, token)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.NotEmpty(t, token)
				assert.NotNil(t, user.LastLogin)

				claims, err := jwtService.ValidateToken(token)
				assert.NoError(t, err)
				assert.Equal(t, user.ID, claims.UserID)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}
