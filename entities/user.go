package entities

import "time"

// User is a row of the legacy users table served by the lookup service.
type User struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	Deleted   bool      `gorm:"not null;default:false" json:"-"`
}
