package domain

import (
	"context"

	"gorm.io/gorm"
)

// SchemaVersion gates any future destructive migration. Additive column
// migrations do not bump it.
const SchemaVersion = "1"

const (
	KeySchemaVersion = "schema_version"
	KeyLastSyncUTC   = "last_sync_utc"
)

// Meta is a process-wide key/value record set (schema version, sync stamps).
type Meta struct {
	Key   string `gorm:"primaryKey;type:text"`
	Value string `gorm:"type:text"`
}

func (Meta) TableName() string { return "meta" }

type Repository interface {
	Set(ctx context.Context, db *gorm.DB, key, value string) error
	SetIfAbsent(ctx context.Context, db *gorm.DB, key, value string) error
	All(ctx context.Context, db *gorm.DB) (map[string]string, error)
}
