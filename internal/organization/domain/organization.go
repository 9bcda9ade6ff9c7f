package domain

import (
	"time"

	"gorm.io/gorm"
)

// Organization represents a tenant. Every product, operation and
// forecast run is scoped to one organization.
type Organization struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	Name      string         `json:"name" gorm:"not null"`
	INN       string         `json:"inn" gorm:"uniqueIndex"` // Russian tax id
	Address   string         `json:"address"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name for GORM
func (Organization) TableName() string {
	return "organizations"
}

// Location is a sales point belonging to an organization. Operations
// and forecast events reference it by address.
type Location struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	OrganizationID uint           `json:"organization_id" gorm:"not null;index"`
	Name           string         `json:"name" gorm:"not null"`
	Address        string         `json:"address" gorm:"not null"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name for GORM
func (Location) TableName() string {
	return "locations"
}

// OrganizationRepository defines the interface for organization data access
type OrganizationRepository interface {
	Create(org *Organization) error
	FindByID(id uint) (*Organization, error)
	FindByINN(inn string) (*Organization, error)
	FindAll(limit, offset int) ([]Organization, error)
	Update(org *Organization) error
	Delete(id uint) error
	Count() (int64, error)
}

// LocationRepository defines the interface for location data access
type LocationRepository interface {
	Create(loc *Location) error
	FindByID(orgID, id uint) (*Location, error)
	FindAllByOrganization(orgID uint) ([]Location, error)
	Update(loc *Location) error
	Delete(orgID, id uint) error
}
