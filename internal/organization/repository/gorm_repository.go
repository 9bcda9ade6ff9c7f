package repository

import (
	"gorm.io/gorm"

	"github.com/prognoza/forecast-platform/internal/organization/domain"
)

// GormOrganizationRepository implements domain.OrganizationRepository using GORM
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewGormOrganizationRepository creates a new GORM organization repository
func NewGormOrganizationRepository(db *gorm.DB) *GormOrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// AutoMigrate runs database migrations
func (r *GormOrganizationRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&domain.Organization{}, &domain.Location{})
}

// Create inserts a new organization
func (r *GormOrganizationRepository) Create(org *domain.Organization) error {
	return r.db.Create(org).Error
}

// FindByID retrieves an organization by ID
func (r *GormOrganizationRepository) FindByID(id uint) (*domain.Organization, error) {
	var org domain.Organization
	if err := r.db.First(&org, id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// FindByINN retrieves an organization by tax id
func (r *GormOrganizationRepository) FindByINN(inn string) (*domain.Organization, error) {
	var org domain.Organization
	if err := r.db.Where("inn = ?", inn).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// FindAll retrieves organizations with pagination
func (r *GormOrganizationRepository) FindAll(limit, offset int) ([]domain.Organization, error) {
	var orgs []domain.Organization
	if err := r.db.Limit(limit).Offset(offset).Find(&orgs).Error; err != nil {
		return nil, err
	}
	return orgs, nil
}

// Update saves changes to an existing organization
func (r *GormOrganizationRepository) Update(org *domain.Organization) error {
	return r.db.Save(org).Error
}

// Delete soft deletes an organization
func (r *GormOrganizationRepository) Delete(id uint) error {
	return r.db.Delete(&domain.Organization{}, id).Error
}

// Count returns the total number of organizations
func (r *GormOrganizationRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&domain.Organization{}).Count(&count).Error
	return count, err
}

// GormLocationRepository implements domain.LocationRepository using GORM
type GormLocationRepository struct {
	db *gorm.DB
}

// NewGormLocationRepository creates a new GORM location repository
func NewGormLocationRepository(db *gorm.DB) *GormLocationRepository {
	return &GormLocationRepository{db: db}
}

// Create inserts a new location
func (r *GormLocationRepository) Create(loc *domain.Location) error {
	return r.db.Create(loc).Error
}

// FindByID retrieves a location scoped to an organization
func (r *GormLocationRepository) FindByID(orgID, id uint) (*domain.Location, error) {
	var loc domain.Location
	if err := r.db.Where("organization_id = ? AND id = ?", orgID, id).First(&loc).Error; err != nil {
		return nil, err
	}
	return &loc, nil
}

// FindAllByOrganization retrieves all locations of an organization
func (r *GormLocationRepository) FindAllByOrganization(orgID uint) ([]domain.Location, error) {
	var locs []domain.Location
	if err := r.db.Where("organization_id = ?", orgID).Find(&locs).Error; err != nil {
		return nil, err
	}
	return locs, nil
}

// Update saves changes to an existing location
func (r *GormLocationRepository) Update(loc *domain.Location) error {
	return r.db.Save(loc).Error
}

// Delete soft deletes a location scoped to an organization
func (r *GormLocationRepository) Delete(orgID, id uint) error {
	return r.db.Where("organization_id = ?", orgID).Delete(&domain.Location{}, id).Error
}
