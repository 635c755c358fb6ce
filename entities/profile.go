package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleFarmer     Role = "farmer"
	RoleConsultant Role = "consultant"
	RoleAdmin      Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleFarmer, RoleConsultant, RoleAdmin:
		return true
	}
	return false
}

// Home is the landing route for the role.
func (r Role) Home() string {
	switch r {
	case RoleAdmin:
		return "/admin"
	case RoleConsultant:
		return "/consultant"
	}
	return "/dashboard"
}

// Profile shares its id with the Account it belongs to.
type Profile struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	Email      string    `gorm:"index" json:"email"`
	Phone      *string   `json:"phone"`
	Role       Role      `gorm:"type:varchar(16);not null;index" json:"role"`
	IsApproved bool      `gorm:"not null;default:false" json:"is_approved"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (p *Profile) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// Account holds sign-in credentials. One Account, one Profile.
type Account struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

func (a *Account) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
