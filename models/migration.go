package models

import (
	"log"

	"github.com/mmdatafocus/kvk_backend/config"
)

func MigrateTable() {
	if err := AutoMigrate(); err != nil {
		log.Fatal(err)
	}
}

func AutoMigrate() error {
	return config.GetDB().AutoMigrate(
		&User{},
		&Report{},
		&AuditLog{},
	)
}
