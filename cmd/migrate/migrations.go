package main

import (
	"gorm.io/gorm"

	"github.com/erd-studio/engine/internal/diagram"
	"github.com/erd-studio/engine/internal/repository"
)

// runMigrations executes all database migrations
func runMigrations(db *gorm.DB) error {
	if err := repository.Migrate(db); err != nil {
		return err
	}
	return runCustomMigrations(db)
}

// runCustomMigrations handles data fixes AutoMigrate can't express
func runCustomMigrations(db *gorm.DB) error {
	migrations := []func(*gorm.DB) error{
		backfillProjectNames,
	}

	for _, migration := range migrations {
		if err := migration(db); err != nil {
			return err
		}
	}

	return nil
}

// backfillProjectNames names projects saved before names were required.
func backfillProjectNames(db *gorm.DB) error {
	return db.Exec(`UPDATE projects SET name = ? WHERE name IS NULL OR name = ''`, diagram.DefaultProjectName).Error
}
