package database

import (
	"engage/internal/models"
	"engage/pkg/logger"
)

// Migrate 执行数据库迁移
func Migrate() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting database migration...")

	err := DB.AutoMigrate(
		&models.Organization{},
		&models.User{},
		&models.Permission{},
		&models.Role{},
		&models.RolePermission{},
		&models.UserRole{},
		&models.PermissionOverride{},
		&models.Segment{},
		&models.Contact{},
		&models.Campaign{},
		&models.SyncJob{},
	)
	if err != nil {
		return err
	}

	appLogger.Info("Database migration completed")
	return nil
}
