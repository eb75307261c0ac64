package repository

import (
	"errors"

	"github.com/fitmarket-next/internal/models"

	"gorm.io/gorm"
)

// ManagerRepository 管理员数据访问接口
type ManagerRepository interface {
	GetByUsername(username string) (*models.Manager, error)
	GetByID(id uint) (*models.Manager, error)
	List() ([]models.Manager, error)
	Count() (int64, error)
	Create(manager *models.Manager) error
	Update(manager *models.Manager) error
}

// GormManagerRepository GORM 实现
type GormManagerRepository struct {
	db *gorm.DB
}

// NewManagerRepository 创建管理员仓库
func NewManagerRepository(db *gorm.DB) *GormManagerRepository {
	return &GormManagerRepository{db: db}
}

// GetByUsername 根据用户名获取管理员
func (r *GormManagerRepository) GetByUsername(username string) (*models.Manager, error) {
	var manager models.Manager
	if err := r.db.Where("username = ?", username).First(&manager).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &manager, nil
}

// GetByID 根据 ID 获取管理员
func (r *GormManagerRepository) GetByID(id uint) (*models.Manager, error) {
	var manager models.Manager
	if err := r.db.First(&manager, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &manager, nil
}

// List 获取管理员列表
func (r *GormManagerRepository) List() ([]models.Manager, error) {
	managers := make([]models.Manager, 0)
	err := r.db.
		Select("id", "username", "is_super", "last_login_at", "created_at").
		Order("id ASC").
		Find(&managers).Error
	if err != nil {
		return nil, err
	}
	return managers, nil
}

// Count 统计管理员数量
func (r *GormManagerRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Manager{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create 创建管理员
func (r *GormManagerRepository) Create(manager *models.Manager) error {
	return r.db.Create(manager).Error
}

// Update 更新管理员
func (r *GormManagerRepository) Update(manager *models.Manager) error {
	return r.db.Save(manager).Error
}
