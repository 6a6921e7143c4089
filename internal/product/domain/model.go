package domain

import (
	"gorm.io/datatypes"
)

// Product is one cached OpenFoodFacts record, keyed by barcode. Scalar
// columns are promoted from the payload for querying; the blobs keep the
// structured remainder for best-effort extraction.
type Product struct {
	Code            string `gorm:"primaryKey;type:text"`
	LastModifiedT   *int64 `gorm:"column:last_modified_t;index"`
	ProductName     string `gorm:"type:text"`
	Brands          string `gorm:"type:text"`
	Categories      string `gorm:"type:text"`
	Countries       string `gorm:"type:text"`
	NutriscoreGrade string `gorm:"type:text"`
	EcoscoreGrade   string `gorm:"type:text"`
	NovaGroup       *int64

	EcoscoreData datatypes.JSON `gorm:"column:ecoscore_data_json"`
	Nutriments   datatypes.JSON `gorm:"column:nutriments_json"`
	Raw          datatypes.JSON `gorm:"column:raw_json"`
}

func (Product) TableName() string { return "products" }
