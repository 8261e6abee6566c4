package database

import "github.com/Arafahmed1314/Full-Stack-Project-E-ComTrade-sub000/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models,
// parents before children.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.TradePost{},
		&models.TradeRequest{},
	}
}
