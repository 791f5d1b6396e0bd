package persist

import (
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EntityRecord is the durable form of a scene entity. Kinematic state
// (velocity, acceleration) is deliberately not stored; entities come back
// at rest.
type EntityRecord struct {
	ID     string `gorm:"primaryKey;size:36"`
	Handle uint32 `gorm:"not null"`
	Name   string `gorm:"size:64"`

	ParentID string `gorm:"size:36"`

	PositionX float64
	PositionY float64
	PositionZ float64

	RotationX float64
	RotationY float64
	RotationZ float64
	RotationW float64

	ScaleX float64
	ScaleY float64
	ScaleZ float64

	CollisionsEnabled bool
	DynamicsEnabled   bool
	Frozen            bool

	Density   float64
	Proxy     uint8
	MeshAsset string `gorm:"size:36"`

	UpdatedAt time.Time
}

func InitDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	db.AutoMigrate(&EntityRecord{})

	return db, nil
}

func upsertRecords(db *gorm.DB, records []EntityRecord) error {
	if len(records) == 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{
		UpdateAll: true,
	}).Create(&records).Error
}

func deleteRecord(db *gorm.DB, id string) error {
	return db.Delete(&EntityRecord{}, "id = ?", id).Error
}

func loadRecords(db *gorm.DB) ([]EntityRecord, error) {
	var records []EntityRecord
	if err := db.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
