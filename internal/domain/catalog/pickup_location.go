package catalog

import (
	"strings"

	"github.com/groupbuy/backend/internal/domain/shared"
)

// PickupLocation is a campus spot where goods are collected after a group buy succeeds
type PickupLocation struct {
	shared.BaseEntity
	Name     string
	Address  string
	IsActive bool
}

// NewPickupLocation creates an active pickup location
func NewPickupLocation(name, address string) (*PickupLocation, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_LOCATION_NAME", "Location name must be 1 to 100 characters")
	}
	address = strings.TrimSpace(address)
	if len(address) > 300 {
		return nil, shared.NewDomainError("INVALID_LOCATION_ADDRESS", "Address cannot exceed 300 characters")
	}
	return &PickupLocation{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Address:    address,
		IsActive:   true,
	}, nil
}

// SetActive toggles whether new group buys may use this location
func (l *PickupLocation) SetActive(active bool) {
	l.IsActive = active
	l.Touch()
}
