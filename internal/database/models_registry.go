package database

import "sublet/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Order matters only for readability; the snapshot tables carry no foreign keys.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Listing{},
		&models.Application{},
		&models.Favorite{},
		&models.Message{},
		&models.Review{},
		&models.Report{},
	}
}
