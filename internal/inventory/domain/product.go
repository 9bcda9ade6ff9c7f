package domain

import (
	"time"

	"gorm.io/gorm"
)

// Product represents an organization-scoped catalog entry.
type Product struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	OrganizationID uint           `json:"organization_id" gorm:"not null;index;uniqueIndex:idx_products_org_code"`
	Name           string         `json:"name" gorm:"not null"`
	Code           string         `json:"code" gorm:"not null;uniqueIndex:idx_products_org_code"`
	Category       string         `json:"category" gorm:"not null;default:'Прочее'"`
	Price          float64        `json:"price" gorm:"not null;default:0"`
	Quantity       int            `json:"quantity" gorm:"not null;default:0"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Product) TableName() string {
	return "products"
}

// ProductRepository defines the contract for product data access. Every
// method is scoped to an organization; cross-tenant reads are not
// expressible through this interface.
type ProductRepository interface {
	Create(product *Product) error
	FindByID(orgID, id uint) (*Product, error)
	FindByCode(orgID uint, code string) (*Product, error)
	FindAll(orgID uint, limit, offset int) ([]Product, error)
	Update(product *Product) error
	UpdateQuantity(orgID, id uint, quantity int) (*Product, error)
	Delete(orgID, id uint) error
	Count(orgID uint) (int64, error)
}
