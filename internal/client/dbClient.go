package client

import (
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"wompi-harness/internal/model"
)

func InitSqliteClient(path string) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to open profile database:", err)
	}

	if err := db.AutoMigrate(
		&model.CustomerProfile{},
	); err != nil {
		log.Fatal(err)
	}

	return db
}
