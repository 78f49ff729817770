package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/identity"
	"github.com/groupbuy/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProfileService handles profile views and edits
type ProfileService struct {
	profileRepo identity.ProfileRepository
	logger      *zap.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(profileRepo identity.ProfileRepository, logger *zap.Logger) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		logger:      logger,
	}
}

// GetUserProfile returns the public view of any user
func (s *ProfileService) GetUserProfile(ctx context.Context, id uuid.UUID) (*PublicProfile, error) {
	profile, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToPublicProfile(profile), nil
}

// UpdateProfile edits the caller's own profile. A new username must still be unique.
func (s *ProfileService) UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*UserProfile, error) {
	profile, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Username != nil && strings.TrimSpace(*input.Username) != profile.Username {
		taken, err := s.profileRepo.ExistsByUsername(ctx, strings.TrimSpace(*input.Username), &id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, ErrUsernameTaken
		}
	}

	err = profile.ApplyUpdate(identity.ProfileUpdate{
		Username:  input.Username,
		FullName:  input.FullName,
		AvatarURL: input.AvatarURL,
		Phone:     input.Phone,
	})
	if err != nil {
		return nil, err
	}
	if err := s.profileRepo.Update(ctx, profile); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	s.logger.Info("Profile updated", zap.String("user_id", id.String()))
	return ToUserProfile(profile), nil
}

func (s *ProfileService) find(ctx context.Context, id uuid.UUID) (*identity.Profile, error) {
	profile, err := s.profileRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, identity.ErrProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}
