package database

import (
	"gorm.io/gorm"

	convrepo "github.com/kolshuk/kolshuk/internal/repository/conversation"
)

func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&convrepo.MessageEntity{},
	)
}
