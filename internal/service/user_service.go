package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"

	"greenmarket/internal/cache"
	apperrors "greenmarket/internal/errors"
	"greenmarket/internal/model"
	"greenmarket/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// Pagination mirrors the listing envelope the frontend consumes: current page,
// total pages (ceil of count/limit), total row count and the page size used.
type Pagination struct {
	Current int   `json:"current"`
	Total   int   `json:"total"`
	Count   int64 `json:"count"`
	Limit   int   `json:"limit"`
}

// NewPagination derives the pagination envelope from a count and page request.
func NewPagination(count int64, page, limit int) Pagination {
	return Pagination{
		Current: page,
		Total:   int(math.Ceil(float64(count) / float64(limit))),
		Count:   count,
		Limit:   limit,
	}
}

// ProfileUpdate is the statically typed partial update for a user profile.
// Nil fields are left untouched.
type ProfileUpdate struct {
	FirstName    *string
	LastName     *string
	Phone        *string
	StudentID    *string
	ProfileImage *string
}

// UserService exposes profile and admin user-management operations.
type UserService interface {
	GetUser(ctx context.Context, id uint) (*model.User, error)
	UpdateProfile(ctx context.Context, userID uint, update ProfileUpdate) (*model.User, error)
	ListUsers(ctx context.Context, filter repository.UserFilter, page, limit int) ([]model.User, Pagination, error)
	UpdateStatus(ctx context.Context, adminID, targetID uint, isActive bool) (*model.User, error)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

func (s *userService) cacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

// GetUser retrieves a user by ID with cache-aside. The middleware resolves the
// request user through this path on every authenticated call.
func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}

// UpdateProfile applies the present fields of the update after re-checking
// student ID uniqueness, then invalidates the cache entry.
func (s *userService) UpdateProfile(ctx context.Context, userID uint, update ProfileUpdate) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	if update.StudentID != nil && *update.StudentID != "" {
		if user.StudentID == nil || *user.StudentID != *update.StudentID {
			existing, err := s.repo.FindByStudentID(ctx, *update.StudentID)
			if err == nil && existing != nil && existing.ID != userID {
				return nil, apperrors.ErrStudentIDTaken
			}
			if err != nil && err != gorm.ErrRecordNotFound {
				return nil, fmt.Errorf("check student id: %w", err)
			}
		}
	}

	if update.FirstName != nil {
		user.FirstName = *update.FirstName
	}
	if update.LastName != nil {
		user.LastName = *update.LastName
	}
	if update.Phone != nil {
		user.Phone = *update.Phone
	}
	if update.StudentID != nil {
		if *update.StudentID == "" {
			user.StudentID = nil
		} else {
			user.StudentID = update.StudentID
		}
	}
	if update.ProfileImage != nil {
		user.ProfileImage = *update.ProfileImage
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(userID))
	return user, nil
}

// ListUsers returns a page of users for the admin dashboard.
func (s *userService) ListUsers(ctx context.Context, filter repository.UserFilter, page, limit int) ([]model.User, Pagination, error) {
	users, total, err := s.repo.List(ctx, filter, (page-1)*limit, limit)
	if err != nil {
		return nil, Pagination{}, err
	}
	return users, NewPagination(total, page, limit), nil
}

// UpdateStatus activates or deactivates a user. Admins cannot change their own
// status. The cache entry is dropped so the next authenticated request from a
// deactivated user is rejected immediately.
func (s *userService) UpdateStatus(ctx context.Context, adminID, targetID uint, isActive bool) (*model.User, error) {
	if adminID == targetID {
		return nil, apperrors.ErrSelfDeactivation
	}

	user, err := s.repo.FindByID(ctx, targetID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}

	user.IsActive = isActive
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(targetID))
	return user, nil
}
