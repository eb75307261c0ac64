package models

import (
	"strings"

	"github.com/fitmarket-next/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

// InitDefaultManager 初始化默认管理员账号
func InitDefaultManager(username, password string) error {
	var count int64
	DB.Model(&Manager{}).Count(&count)

	// 如果已有管理员，确保默认 manager 拥有超级管理员权限
	if count > 0 {
		if err := DB.Model(&Manager{}).Where("username = ?", "manager").Update("is_super", true).Error; err != nil {
			logger.Warnw("ensure_default_manager_super_failed", "error", err)
		}
		return nil
	}

	// 创建默认管理员
	if username == "" {
		username = "manager"
	}
	if password == "" {
		password = "manager123"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	manager := Manager{
		Username:     username,
		PasswordHash: string(hash),
		IsSuper:      strings.EqualFold(strings.TrimSpace(username), "manager"),
	}

	if err := DB.Create(&manager).Error; err != nil {
		return err
	}

	if password == "manager123" {
		logger.Warnw("default_manager_created_with_default_password", "username", username, "password", password)
		logger.Warnw("default_manager_password_change_required", "username", username)
	} else {
		logger.Warnw("default_manager_created", "username", username, "password_hidden", true)
	}

	return nil
}
