package repository

import (
	"github.com/prognoza/forecast-platform/internal/inventory/domain"
	"gorm.io/gorm"
)

type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Product{}, &domain.Operation{})
}

func (r *GormProductRepository) Create(product *domain.Product) error {
	return r.db.Create(product).Error
}

func (r *GormProductRepository) FindByID(orgID, id uint) (*domain.Product, error) {
	var product domain.Product
	err := r.db.Where("organization_id = ?", orgID).First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormProductRepository) FindByCode(orgID uint, code string) (*domain.Product, error) {
	var product domain.Product
	err := r.db.Where("organization_id = ? AND code = ?", orgID, code).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormProductRepository) FindAll(orgID uint, limit, offset int) ([]domain.Product, error) {
	var products []domain.Product
	err := r.db.Where("organization_id = ?", orgID).Limit(limit).Offset(offset).Find(&products).Error
	return products, err
}

func (r *GormProductRepository) Update(product *domain.Product) error {
	return r.db.Save(product).Error
}

func (r *GormProductRepository) UpdateQuantity(orgID, id uint, quantity int) (*domain.Product, error) {
	var product domain.Product
	err := r.db.Where("organization_id = ?", orgID).First(&product, id).Error
	if err != nil {
		return nil, err
	}
	if err := r.db.Model(&product).Update("quantity", quantity).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *GormProductRepository) Delete(orgID, id uint) error {
	return r.db.Where("organization_id = ?", orgID).Delete(&domain.Product{}, id).Error
}

func (r *GormProductRepository) Count(orgID uint) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Product{}).Where("organization_id = ?", orgID).Count(&count).Error
	return count, err
}

type GormOperationRepository struct {
	db *gorm.DB
}

func NewGormOperationRepository(db *gorm.DB) *GormOperationRepository {
	return &GormOperationRepository{db: db}
}

func (r *GormOperationRepository) Create(op *domain.Operation) error {
	return r.db.Create(op).Error
}

func (r *GormOperationRepository) CreateBatch(ops []domain.Operation) error {
	if len(ops) == 0 {
		return nil
	}
	return r.db.CreateInBatches(ops, 500).Error
}

func (r *GormOperationRepository) FindAllByOrganization(orgID uint) ([]domain.Operation, error) {
	var ops []domain.Operation
	err := r.db.Where("organization_id = ?", orgID).
		Order("operation_date DESC").
		Find(&ops).Error
	return ops, err
}

func (r *GormOperationRepository) FindByProduct(orgID, productID uint, limit, offset int) ([]domain.Operation, error) {
	var ops []domain.Operation
	err := r.db.Where("organization_id = ? AND product_id = ?", orgID, productID).
		Order("operation_date DESC").
		Limit(limit).Offset(offset).
		Find(&ops).Error
	return ops, err
}

func (r *GormOperationRepository) Count(orgID uint) (int64, error) {
	var count int64
	err := r.db.Model(&domain.Operation{}).Where("organization_id = ?", orgID).Count(&count).Error
	return count, err
}
