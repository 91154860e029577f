package repository

import (
	"errors"

	"github.com/ashwinyue/procure-ai/internal/model"
	"gorm.io/gorm"
)

// authRepositoryImpl 用户与令牌数据访问
type authRepositoryImpl struct {
	db *gorm.DB
}

// NewAuthRepository 创建认证仓库
func NewAuthRepository(db *gorm.DB) AuthRepository {
	return &authRepositoryImpl{db: db}
}

// CreateUser 创建用户
func (r *authRepositoryImpl) CreateUser(user *model.User) error {
	return r.db.Create(user).Error
}

// GetUserByEmail 按邮箱查找用户，未命中时返回 (nil, nil)
func (r *authRepositoryImpl) GetUserByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.db.Where("LOWER(email) = LOWER(?)", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByID 按 ID 查找用户，未命中时返回 (nil, nil)
func (r *authRepositoryImpl) GetUserByID(id string) (*model.User, error) {
	var user model.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser 更新用户
func (r *authRepositoryImpl) UpdateUser(user *model.User) error {
	return r.db.Save(user).Error
}

// CreateToken 保存令牌记录
func (r *authRepositoryImpl) CreateToken(token *model.AuthToken) error {
	return r.db.Create(token).Error
}

// GetTokenByValue 按令牌值查找记录，未命中时返回 (nil, nil)
func (r *authRepositoryImpl) GetTokenByValue(token string) (*model.AuthToken, error) {
	var record model.AuthToken
	err := r.db.Where("token = ?", token).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// RevokeToken 撤销令牌
func (r *authRepositoryImpl) RevokeToken(id string) error {
	return r.db.Model(&model.AuthToken{}).Where("id = ?", id).Update("is_revoked", true).Error
}
