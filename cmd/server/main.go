package main

import (
	"log"

	"anoa.com/nawhoknow/internal/config"
	"anoa.com/nawhoknow/internal/entity"
	category "anoa.com/nawhoknow/internal/modules/category/service"
	"anoa.com/nawhoknow/internal/server"
	"anoa.com/nawhoknow/pkg/database"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	db := database.Connect()
	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if err := seedRoles(db); err != nil {
		log.Fatalf("failed to seed roles: %v", err)
	}
	if err := seedCategories(db); err != nil {
		log.Fatalf("failed to seed categories: %v", err)
	}
	if err := seedRewards(db); err != nil {
		log.Fatalf("failed to seed rewards: %v", err)
	}

	if cfg.AppEnv == "development" {
		if err := seedAdminUser(db); err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
	} else {
		log.Println("⚠️ REDIS_URL not set, running without cache and realtime notifications")
	}

	srv := server.NewServer(db, redisClient, cfg)
	defer srv.Stop()

	if err := srv.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Role{},
		&entity.User{},
		&entity.Category{},
		&entity.Prediction{},
		&entity.Vote{},
		&entity.PointsHistory{},
		&entity.Reward{},
		&entity.Redemption{},
		&entity.Notification{},
		&entity.Activity{},
	)
}

func seedRoles(db *gorm.DB) error {
	defaultRoles := []entity.Role{
		{Name: entity.RoleAdmin, Description: "Moderates predictions and manages the platform"},
		{Name: entity.RoleMember, Description: "Casts votes and submits predictions"},
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

func seedCategories(db *gorm.DB) error {
	for _, cat := range category.DefaultSet() {
		var count int64
		if err := db.Model(&entity.Category{}).
			Where("slug = ?", cat.Slug).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&cat).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func seedRewards(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.Reward{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []entity.Reward{
		{Name: "₦100 Airtime", Description: "Mobile top-up for any network", PointsCost: 200, RewardType: entity.RewardTypeAirtime, Stock: 100},
		{Name: "₦500 Airtime", Description: "Mobile top-up for any network", PointsCost: 900, RewardType: entity.RewardTypeAirtime, Stock: 50},
		{Name: "1GB Data", Description: "Data bundle voucher", PointsCost: 500, RewardType: entity.RewardTypeData, Stock: 100},
		{Name: "Founding Oracle Badge", Description: "Exclusive profile badge", PointsCost: 1000, RewardType: entity.RewardTypeBadge, Stock: 25},
	}

	for _, reward := range defaults {
		if err := db.Create(&reward).Error; err != nil {
			return err
		}
	}

	log.Println("✅ Reward catalog seeded")
	return nil
}

func seedAdminUser(db *gorm.DB) error {
	var adminRole entity.Role
	if err := db.Where("name = ?", entity.RoleAdmin).First(&adminRole).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", "admin@nawhoknow.app").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	password := "admin123"
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := entity.User{
		Username:     "admin",
		Email:        "admin@nawhoknow.app",
		PasswordHash: string(hashedPasswordBytes),
		RoleID:       &adminRole.ID,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	log.Println("✅ Admin user seeded successfully")
	log.Println("   Email: admin@nawhoknow.app")
	log.Println("   Password: admin123")

	return nil
}
