package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ConsultationStatus string

const (
	StatusPending ConsultationStatus = "pending"
	StatusActive  ConsultationStatus = "active"
	StatusClosed  ConsultationStatus = "closed"
)

func (s ConsultationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusClosed:
		return true
	}
	return false
}

type Consultation struct {
	ID               string             `gorm:"type:varchar(36);primaryKey" json:"id"`
	FarmerID         string             `gorm:"type:varchar(36);not null;index" json:"farmer_id"`
	ConsultantID     *string            `gorm:"type:varchar(36);index" json:"consultant_id"`
	FarmID           *string            `gorm:"type:varchar(36);index" json:"farm_id"`
	IssueDescription string             `gorm:"type:text;not null" json:"issue_description"`
	Recommendation   *string            `gorm:"type:text" json:"recommendation"`
	Status           ConsultationStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	CreatedAt        time.Time          `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time          `gorm:"index" json:"updated_at"`

	Farmer *Profile `gorm:"foreignKey:FarmerID" json:"farmer,omitempty"`
	Farm   *Farm    `gorm:"foreignKey:FarmID" json:"farm,omitempty"`
}

func (c *Consultation) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
