package db

import (
	"fmt"
	"log"
	"os"

	"slidelab/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
	)

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("Failed to connect to database: ", err)
	}

	err = Migrate(DB)
	if err != nil {
		log.Fatal("Failed to migrate models: ", err)
	}
	log.Println("Database connected")
	return DB
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Plate{}, &models.CartItem{}, &models.Loan{}, &models.ScanLog{}, &models.Invite{}); err != nil {
		return err
	}

	// 同一块片最多一条未归还 Loan
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_open_per_plate
	  ON %s (plate_id)
	  WHERE returned_at IS NULL;
	`, models.LoanTable, models.LoanTable)).Error; err != nil {
		return err
	}

	// 同一块片最多一条 active 购物车行（预检之外的兜底，关掉并发竞争）
	if err := db.Exec(fmt.Sprintf(`
	  CREATE UNIQUE INDEX IF NOT EXISTS %s_one_active_per_plate
	  ON %s (plate_id)
	  WHERE status = 'active';
	`, models.CartTable, models.CartTable)).Error; err != nil {
		return err
	}

	// 清扫任务按 (status, expires_at) 扫
	if err := db.Exec(fmt.Sprintf(`
	  CREATE INDEX IF NOT EXISTS %s_active_expires
	  ON %s (expires_at)
	  WHERE status = 'active';
	`, models.CartTable, models.CartTable)).Error; err != nil {
		return err
	}

	return nil
}
