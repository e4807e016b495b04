package bootstrap

import (
	"anoa.com/gooddeeds/internal/entity"
	"anoa.com/gooddeeds/pkg/logger"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.Group{},
		&entity.GroupMember{},
		&entity.Campaign{},
		&entity.Deed{},
		&entity.Act{},
		&entity.Comment{},
		&entity.Like{},
		&entity.SalvationTestimony{},
		&entity.FeedItem{},
	)
}

func SeedRoles(db *gorm.DB) error {
	defaultRoles := []entity.Role{
		{Name: entity.RoleSuperAdmin, Description: "Platform administrator"},
		{Name: entity.RoleUser, Description: "Member"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&entity.Role{}).
			Where("name = ?", role.Name).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// SeedSuperAdmin creates the development super-admin account if it is missing.
func SeedSuperAdmin(db *gorm.DB, email, password string) error {
	var role entity.Role
	if err := db.Where("name = ?", entity.RoleSuperAdmin).First(&role).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info("super admin already exists, skipping seed")
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := entity.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: string(hashed),
		RoleID:       &role.ID,
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	logger.Info("super admin seeded", zap.String("email", email))
	return nil
}
