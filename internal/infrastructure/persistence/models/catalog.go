package models

import (
	"github.com/groupbuy/backend/internal/domain/catalog"
)

// CategoryModel is the persistence model for categories
type CategoryModel struct {
	BaseModel
	Code      string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name      string `gorm:"type:varchar(100);not null"`
	NameEn    string `gorm:"type:varchar(100)"`
	Icon      string `gorm:"type:varchar(50)"`
	Color     string `gorm:"type:varchar(7)"`
	SortOrder int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		BaseEntity: m.Entity(),
		Code:       m.Code,
		Name:       m.Name,
		NameEn:     m.NameEn,
		Icon:       m.Icon,
		Color:      m.Color,
		SortOrder:  m.SortOrder,
	}
}

// CategoryModelFromDomain creates a new persistence model from a domain Category
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{
		Code:      c.Code,
		Name:      c.Name,
		NameEn:    c.NameEn,
		Icon:      c.Icon,
		Color:     c.Color,
		SortOrder: c.SortOrder,
	}
	m.SetEntity(c.BaseEntity)
	return m
}

// PickupLocationModel is the persistence model for pickup locations
type PickupLocationModel struct {
	BaseModel
	Name     string `gorm:"type:varchar(100);not null"`
	Address  string `gorm:"type:varchar(300)"`
	IsActive bool   `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (PickupLocationModel) TableName() string {
	return "pickup_locations"
}

// ToDomain converts the persistence model to a domain PickupLocation
func (m *PickupLocationModel) ToDomain() *catalog.PickupLocation {
	return &catalog.PickupLocation{
		BaseEntity: m.Entity(),
		Name:       m.Name,
		Address:    m.Address,
		IsActive:   m.IsActive,
	}
}

// PickupLocationModelFromDomain creates a new persistence model from a domain PickupLocation
func PickupLocationModelFromDomain(l *catalog.PickupLocation) *PickupLocationModel {
	m := &PickupLocationModel{
		Name:     l.Name,
		Address:  l.Address,
		IsActive: l.IsActive,
	}
	m.SetEntity(l.BaseEntity)
	return m
}
