package service

import (
	"context"
	"strings"

	"donation-api/internal/apperror"
	"donation-api/internal/model"
	"donation-api/internal/repository"
	"donation-api/internal/validation"

	"github.com/google/uuid"
)

// UpdateProfileRequest only exposes the columns a user may change about themselves.
type UpdateProfileRequest struct {
	Name      *string `json:"name" binding:"omitempty,min=2,max=255"`
	Gender    *string `json:"gender" binding:"omitempty,oneof=male female"`
	BirthDate *string `json:"birth_date" binding:"omitempty,isodate"`
	Phone     *string `json:"phone" binding:"omitempty,min=10,max=20,phone"`
	Address   *string `json:"address" binding:"omitempty,max=500"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=NewPassword"`
}

type UserService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*model.User, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error
	GetStats(ctx context.Context, userID uuid.UUID) (*repository.UserActivity, error)
}

type userService struct {
	userRepo  repository.UserRepository
	statsRepo repository.StatsRepository
	hasher    *PasswordHasher
}

func NewUserService(userRepo repository.UserRepository, statsRepo repository.StatsRepository, hasher *PasswordHasher) UserService {
	return &userService{userRepo: userRepo, statsRepo: statsRepo, hasher: hasher}
}

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.FromDB(err, "User not found")
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*model.User, error) {
	patch := model.UserProfilePatch{
		Name:    trimmed(req.Name),
		Gender:  req.Gender,
		Phone:   trimmed(req.Phone),
		Address: req.Address,
	}
	if req.BirthDate != nil {
		birth, err := validation.ParseTime(*req.BirthDate)
		if err != nil {
			return nil, apperror.Validation("Validation Error", []string{"birth_date must be a valid date (YYYY-MM-DD)"})
		}
		patch.BirthDate = &birth
	}
	if len(patch.Columns()) == 0 {
		return nil, apperror.BadRequest("No fields to update")
	}

	if patch.Phone != nil {
		taken, err := s.userRepo.PhoneTaken(ctx, *patch.Phone, userID)
		if err != nil {
			return nil, apperror.Internal("Internal server error", err)
		}
		if taken {
			return nil, apperror.Conflict("Phone number already in use")
		}
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, patch); err != nil {
		if apperror.IsDuplicateKey(err) {
			return nil, apperror.Conflict("Phone number already in use")
		}
		return nil, apperror.FromDB(err, "User not found")
	}
	return s.GetProfile(ctx, userID)
}

func (s *userService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return apperror.FromDB(err, "User not found")
	}
	if !s.hasher.Matches(user.Password, req.CurrentPassword) {
		return apperror.BadRequest("Current password is incorrect")
	}
	hashed, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return apperror.Internal("Failed to hash password", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hashed); err != nil {
		return apperror.FromDB(err, "User not found")
	}
	return nil
}

func (s *userService) GetStats(ctx context.Context, userID uuid.UUID) (*repository.UserActivity, error) {
	activity, err := s.statsRepo.UserActivity(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("Internal server error", err)
	}
	return &activity, nil
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}
