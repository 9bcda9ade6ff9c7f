package domain

import (
	"time"

	"gorm.io/gorm"
)

// Operation kinds
const (
	OperationSale   = "sale"
	OperationSupply = "supply"
)

// Operation is one historical sale or supply event. Rows are written by
// data entry and file import and are read-only afterwards.
type Operation struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	OrganizationID uint           `json:"organization_id" gorm:"not null;index"`
	ProductID      uint           `json:"product_id" gorm:"not null;index"`
	LocationID     uint           `json:"location_id"`
	Kind           string         `json:"operation_type" gorm:"column:operation_type;not null"`
	Quantity       float64        `json:"quantity" gorm:"not null"`
	Date           *time.Time     `json:"operation_date" gorm:"column:operation_date;index"`
	CostPrice      *float64       `json:"cost_price"`
	TotalAmount    *float64       `json:"total_amount"`
	CreatedAt      time.Time      `json:"created_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name
func (Operation) TableName() string {
	return "operations"
}

// IsSale reports whether the operation is a sale event.
func (o *Operation) IsSale() bool {
	return o.Kind == OperationSale
}

// OperationRepository defines the contract for operation data access,
// organization-scoped like ProductRepository.
type OperationRepository interface {
	Create(op *Operation) error
	CreateBatch(ops []Operation) error
	// FindAllByOrganization returns operations newest-first.
	FindAllByOrganization(orgID uint) ([]Operation, error)
	FindByProduct(orgID, productID uint, limit, offset int) ([]Operation, error)
	Count(orgID uint) (int64, error)
}
