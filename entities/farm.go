package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var SoilTypes = []string{"clay", "sandy", "loamy", "silt", "peaty", "chalky"}

func ValidSoilType(s string) bool {
	for _, v := range SoilTypes {
		if v == s {
			return true
		}
	}
	return false
}

type Farm struct {
	ID          string                      `gorm:"type:varchar(36);primaryKey" json:"id"`
	FarmerID    string                      `gorm:"type:varchar(36);not null;index" json:"farmer_id"`
	FarmName    string                      `gorm:"not null" json:"farm_name"`
	Size        *float64                    `json:"size"` // hectares
	Crops       datatypes.JSONSlice[string] `json:"crops"`
	SoilType    *string                     `gorm:"type:varchar(16)" json:"soil_type"`
	Location    *string                     `json:"location"`
	GeoJSON     datatypes.JSON              `gorm:"column:geojson" json:"geojson"`
	Description *string                     `json:"description"`
	CreatedAt   time.Time                   `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

func (f *Farm) BeforeCreate(*gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
