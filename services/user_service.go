package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/senshuken/championship-system/models"
	"github.com/senshuken/championship-system/repositories"
)

const (
	maxDisplayNameLength = 30
	maxBioLength         = 200

	// Имя по умолчанию для пользователей, чей провайдер не отдал имя.
	defaultDisplayName = "user"
)

type UpdateProfileInput struct {
	DisplayName models.Patch[string] `json:"displayName"`
	Bio         models.Patch[string] `json:"bio"`
	AvatarURL   models.Patch[string] `json:"avatarUrl"`
	TwitterURL  models.Patch[string] `json:"twitterUrl"`
}

type UserService interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
	UpdateProfile(ctx context.Context, callerID int, input UpdateProfileInput) (*models.User, error)
	// FindOrCreateByExternalUID — first-seen provisioning: локальная
	// запись заводится при первом появлении субъекта токена.
	FindOrCreateByExternalUID(ctx context.Context, uid, displayName string) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) GetByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, callerID int, input UpdateProfileInput) (*models.User, error) {
	verr := newValidationError()
	if input.DisplayName.Set {
		if !input.DisplayName.Valid || input.DisplayName.Value == "" {
			verr.add("displayName", "must not be empty")
		} else if len([]rune(input.DisplayName.Value)) > maxDisplayNameLength {
			verr.add("displayName", fmt.Sprintf("must be at most %d characters", maxDisplayNameLength))
		}
	}
	if input.Bio.Set {
		if !input.Bio.Valid {
			verr.add("bio", "must not be null")
		} else if len([]rune(input.Bio.Value)) > maxBioLength {
			verr.add("bio", fmt.Sprintf("must be at most %d characters", maxBioLength))
		}
	}
	if input.AvatarURL.Set && input.AvatarURL.Valid {
		validateURLField(verr, "avatarUrl", input.AvatarURL.Value)
	}
	if input.TwitterURL.Set && input.TwitterURL.Valid {
		validateURLField(verr, "twitterUrl", input.TwitterURL.Value)
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	user, err := s.userRepo.UpdateProfile(ctx, callerID, repositories.UserProfileUpdate{
		DisplayName: input.DisplayName,
		Bio:         input.Bio,
		AvatarURL:   input.AvatarURL,
		TwitterURL:  input.TwitterURL,
	})
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) FindOrCreateByExternalUID(ctx context.Context, uid, displayName string) (*models.User, error) {
	user, err := s.userRepo.GetByExternalUID(ctx, uid)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, err
	}

	if displayName == "" {
		displayName = defaultDisplayName
	}
	user = &models.User{ExternalUID: uid, DisplayName: displayName}
	err = s.userRepo.Create(ctx, user)
	if err == nil {
		return user, nil
	}
	// Гонка двух первых запросов одного пользователя: запись уже
	// создана конкурентом, перечитываем.
	if errors.Is(err, repositories.ErrUserUIDConflict) {
		return s.userRepo.GetByExternalUID(ctx, uid)
	}
	return nil, err
}
