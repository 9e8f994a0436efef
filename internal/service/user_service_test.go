package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "greenmarket/internal/errors"
	"greenmarket/internal/model"
	"greenmarket/internal/repository"
)

func strPtr(s string) *string { return &s }

func TestUserService_GetUser(t *testing.T) {
	tests := []struct {
		name          string
		id            uint
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name: "found",
			id:   3,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(3)).Return(&model.User{ID: 3, Email: "jane.doe@umn.edu"}, nil)
			},
		},
		{
			name: "not found",
			id:   99,
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			service := NewUserService(mockRepo, nil)
			user, err := service.GetUser(context.Background(), tt.id)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.id, user.ID)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_UpdateProfile(t *testing.T) {
	tests := []struct {
		name          string
		userID        uint
		update        ProfileUpdate
		setupMock     func(*MockUserRepository)
		check         func(*testing.T, *model.User)
		expectedError error
	}{
		{
			name:   "updates only the present fields",
			userID: 3,
			update: ProfileUpdate{FirstName: strPtr("Janet"), Phone: strPtr("+16125550100")},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(3)).Return(&model.User{
					ID: 3, FirstName: "Jane", LastName: "Doe", Phone: "+16125550199",
				}, nil)
				m.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			check: func(t *testing.T, u *model.User) {
				assert.Equal(t, "Janet", u.FirstName)
				assert.Equal(t, "Doe", u.LastName)
				assert.Equal(t, "+16125550100", u.Phone)
			},
		},
		{
			name:   "unchanged student id skips the uniqueness lookup",
			userID: 3,
			update: ProfileUpdate{StudentID: strPtr("stu-001")},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(3)).Return(&model.User{
					ID: 3, StudentID: strPtr("stu-001"),
				}, nil)
				m.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			check: func(t *testing.T, u *model.User) {
				assert.Equal(t, "stu-001", *u.StudentID)
			},
		},
		{
			name:   "student id taken by another user",
			userID: 3,
			update: ProfileUpdate{StudentID: strPtr("stu-002")},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(3)).Return(&model.User{ID: 3}, nil)
				m.On("FindByStudentID", mock.Anything, "stu-002").Return(&model.User{ID: 4}, nil)
			},
			expectedError: apperrors.ErrStudentIDTaken,
		},
		{
			name:   "empty student id clears the field",
			userID: 3,
			update: ProfileUpdate{StudentID: strPtr("")},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByID", mock.Anything, uint(3)).Return(&model.User{
					ID: 3, StudentID: strPtr("stu-001"),
				}, nil)
				m.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			check: func(t *testing.T, u *model.User) {
				assert.Nil(t, u.StudentID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			service := NewUserService(mockRepo, nil)
			user, err := service.UpdateProfile(context.Background(), tt.userID, tt.update)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
				mockRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
				tt.check(t, user)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestUserService_UpdateStatus(t *testing.T) {
	t.Run("admin cannot change own status", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		service := NewUserService(mockRepo, nil)

		user, err := service.UpdateStatus(context.Background(), 1, 1, false)
		assert.ErrorIs(t, err, apperrors.ErrSelfDeactivation)
		assert.Nil(t, user)
		mockRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("deactivates another user", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(2)).Return(&model.User{ID: 2, IsActive: true}, nil)
		mockRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
			return u.ID == 2 && !u.IsActive
		})).Return(nil)

		service := NewUserService(mockRepo, nil)
		user, err := service.UpdateStatus(context.Background(), 1, 2, false)
		assert.NoError(t, err)
		assert.False(t, user.IsActive)
		mockRepo.AssertExpectations(t)
	})

	t.Run("target not found", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByID", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)

		service := NewUserService(mockRepo, nil)
		user, err := service.UpdateStatus(context.Background(), 1, 99, true)
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
		assert.Nil(t, user)
	})
}

func TestUserService_ListUsers(t *testing.T) {
	mockRepo := new(MockUserRepository)
	filter := repository.UserFilter{Role: "student"}
	mockRepo.On("List", mock.Anything, filter, 10, 10).Return([]model.User{{ID: 1}, {ID: 2}}, int64(25), nil)

	service := NewUserService(mockRepo, nil)
	users, pagination, err := service.ListUsers(context.Background(), filter, 2, 10)

	assert.NoError(t, err)
	assert.Len(t, users, 2)
	assert.Equal(t, 2, pagination.Current)
	assert.Equal(t, 3, pagination.Total)
	assert.Equal(t, int64(25), pagination.Count)
	assert.Equal(t, 10, pagination.Limit)
	mockRepo.AssertExpectations(t)
}

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name      string
		count     int64
		page      int
		limit     int
		wantTotal int
	}{
		{name: "partial last page", count: 25, page: 1, limit: 12, wantTotal: 3},
		{name: "exact fit", count: 24, page: 2, limit: 12, wantTotal: 2},
		{name: "empty", count: 0, page: 1, limit: 12, wantTotal: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.count, tt.page, tt.limit)
			assert.Equal(t, tt.wantTotal, p.Total)
			assert.Equal(t, tt.page, p.Current)
			assert.Equal(t, tt.count, p.Count)
		})
	}
}
