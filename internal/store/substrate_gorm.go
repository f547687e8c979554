package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	columnRecordKey   = "record_key"
	columnRecordValue = "record_value"
	columnUpdatedAt   = "updated_at_s"
	queryRecordKey    = columnRecordKey + " = ?"
)

// Record is a single named JSON document persisted by the SQL substrate.
type Record struct {
	Key              string `gorm:"column:record_key;primaryKey;size:190;not null"`
	Value            string `gorm:"column:record_value;type:text;not null"`
	UpdatedAtSeconds int64  `gorm:"column:updated_at_s;not null"`
}

// TableName provides the explicit table binding for GORM.
func (Record) TableName() string {
	return "store_records"
}

// GormSubstrate persists records as rows of the store_records table.
type GormSubstrate struct {
	db    *gorm.DB
	clock func() time.Time
}

// NewGormSubstrate wraps an opened and migrated database handle.
func NewGormSubstrate(db *gorm.DB, clock func() time.Time) (*GormSubstrate, error) {
	if db == nil {
		return nil, errors.New("store: database handle is required")
	}
	if clock == nil {
		clock = time.Now
	}
	return &GormSubstrate{db: db, clock: clock}, nil
}

func (g *GormSubstrate) Load(ctx context.Context, key string) ([]byte, bool, error) {
	var record Record
	err := g.db.WithContext(ctx).Where(queryRecordKey, key).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(record.Value), true, nil
}

func (g *GormSubstrate) Save(ctx context.Context, key string, value []byte) error {
	record := Record{
		Key:              key,
		Value:            string(value),
		UpdatedAtSeconds: g.clock().UTC().Unix(),
	}
	return g.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: columnRecordKey}},
			DoUpdates: clause.AssignmentColumns([]string{columnRecordValue, columnUpdatedAt}),
		}).
		Create(&record).Error
}
