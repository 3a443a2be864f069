package helpers

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/andrescamacho/neonrails-go/internal/adapters/persistence"
	"github.com/andrescamacho/neonrails-go/internal/infrastructure/database"
)

// SharedTestDB is the database shared by every BDD scenario
var SharedTestDB *gorm.DB

// InitializeSharedTestDB creates and migrates the shared test database.
// Called once in TestMain before running any scenario.
func InitializeSharedTestDB() error {
	db, err := database.NewTestConnection()
	if err != nil {
		return fmt.Errorf("failed to open shared test database: %w", err)
	}
	SharedTestDB = db
	return nil
}

// TruncateAllTables clears every table between scenarios
func TruncateAllTables() error {
	if SharedTestDB == nil {
		return fmt.Errorf("shared test database not initialized")
	}

	for _, model := range persistence.AllModels() {
		if err := SharedTestDB.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("failed to truncate %T: %w", model, err)
		}
	}
	return nil
}

// CloseSharedTestDB closes the shared test database
func CloseSharedTestDB() {
	if SharedTestDB != nil {
		_ = database.Close(SharedTestDB)
		SharedTestDB = nil
	}
}
