package database

import (
	"errors"
	"time"

	"github.com/MarcoPoloResearchLab/filmfolio/internal/store"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const migrationRepairBlankRecordValues = "2024-06-01_repair_blank_record_values"

type migrationRecord struct {
	Name             string `gorm:"column:name;primaryKey;size:190;not null"`
	AppliedAtSeconds int64  `gorm:"column:applied_at_s;not null"`
}

func (migrationRecord) TableName() string {
	return "db_migrations"
}

type migrationDefinition struct {
	name  string
	apply func(*gorm.DB) error
}

func applyMigrations(db *gorm.DB, logger *zap.Logger) error {
	migrations := []migrationDefinition{
		{name: migrationRepairBlankRecordValues, apply: repairBlankRecordValues},
	}

	for _, migration := range migrations {
		var record migrationRecord
		err := db.Where("name = ?", migration.name).Take(&record).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := migration.apply(db); err != nil {
			return err
		}
		appliedAt := time.Now().UTC().Unix()
		if err := db.Create(&migrationRecord{Name: migration.name, AppliedAtSeconds: appliedAt}).Error; err != nil {
			return err
		}
		if logger != nil {
			logger.Info("database migration applied", zap.String("migration", migration.name))
		}
	}
	return nil
}

// repairBlankRecordValues rewrites empty payloads to an empty JSON array so
// every stored record is valid JSON.
func repairBlankRecordValues(db *gorm.DB) error {
	return db.Model(&store.Record{}).
		Where("TRIM(record_value) = ''").
		Update("record_value", "[]").Error
}
