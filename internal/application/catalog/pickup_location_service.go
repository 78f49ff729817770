package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/groupbuy/backend/internal/domain/catalog"
	"github.com/groupbuy/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// PickupLocationService manages campus pickup locations
type PickupLocationService struct {
	locationRepo catalog.PickupLocationRepository
	logger       *zap.Logger
}

// NewPickupLocationService creates a new PickupLocationService
func NewPickupLocationService(locationRepo catalog.PickupLocationRepository, logger *zap.Logger) *PickupLocationService {
	return &PickupLocationService{
		locationRepo: locationRepo,
		logger:       logger,
	}
}

// ListPickupLocations lists locations by name, optionally only the active ones
func (s *PickupLocationService) ListPickupLocations(ctx context.Context, activeOnly bool) ([]PickupLocationResponse, error) {
	locations, err := s.locationRepo.FindAll(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	out := make([]PickupLocationResponse, len(locations))
	for i, l := range locations {
		out[i] = ToPickupLocationResponse(l)
	}
	return out, nil
}

// CreatePickupLocation adds an active pickup location
func (s *PickupLocationService) CreatePickupLocation(ctx context.Context, req CreatePickupLocationRequest) (*PickupLocationResponse, error) {
	location, err := catalog.NewPickupLocation(req.Name, req.Address)
	if err != nil {
		return nil, err
	}
	if err := s.locationRepo.Create(ctx, location); err != nil {
		return nil, err
	}
	s.logger.Info("Pickup location created", zap.String("location_id", location.ID.String()))
	resp := ToPickupLocationResponse(location)
	return &resp, nil
}

// SetPickupLocationActive enables or retires a location.
// Existing group buys keep their location either way.
func (s *PickupLocationService) SetPickupLocationActive(ctx context.Context, id uuid.UUID, active bool) (*PickupLocationResponse, error) {
	location, err := s.locationRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("PICKUP_LOCATION_NOT_FOUND", "Pickup location not found")
		}
		return nil, err
	}
	location.SetActive(active)
	if err := s.locationRepo.Update(ctx, location); err != nil {
		return nil, err
	}
	s.logger.Info("Pickup location updated",
		zap.String("location_id", id.String()),
		zap.Bool("is_active", active),
	)
	resp := ToPickupLocationResponse(location)
	return &resp, nil
}
