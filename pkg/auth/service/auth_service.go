package service

import (
	"context"
	"time"

	"mlimi/entities"
)

type SignUpInput struct {
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Password string        `json:"password"`
	Phone    string        `json:"phone"`
	Role     entities.Role `json:"role"`
}

// Result is returned by sign-up and sign-in. Redirect is the landing route
// for the profile's role.
type Result struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	Profile   *entities.Profile `json:"profile"`
	Redirect  string            `json:"redirect"`
}

type AuthService interface {
	SignUp(ctx context.Context, in SignUpInput) (*Result, error)
	SignIn(ctx context.Context, email, password string) (*Result, error)
	SignOut(token string)
	// CreateAdmin seeds an approved admin; used by the CLI.
	CreateAdmin(ctx context.Context, name, email, password string) (*entities.Profile, error)
}
