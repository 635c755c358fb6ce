package serviceImp

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"mlimi/entities"
	"mlimi/pkg/apperr"
	repo "mlimi/pkg/auth/repository"
	"mlimi/pkg/auth/service"
	profileRepo "mlimi/pkg/profile/repository"
)

const minPasswordLen = 6

// Sessions is the part of the session store the auth service needs.
type Sessions interface {
	Issue(accountID string) (string, time.Time, error)
	Revoke(token string)
}

type authSvc struct {
	accounts         repo.AccountRepository
	profiles         profileRepo.ProfileRepository
	sessions         Sessions
	allowAdminSignup bool
	log              *zap.Logger
}

func NewAuthService(a repo.AccountRepository, p profileRepo.ProfileRepository, s Sessions, allowAdminSignup bool, log *zap.Logger) service.AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &authSvc{accounts: a, profiles: p, sessions: s, allowAdminSignup: allowAdminSignup, log: log}
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (s *authSvc) SignUp(ctx context.Context, in service.SignUpInput) (*service.Result, error) {
	if in.Role == "" {
		in.Role = entities.RoleFarmer
	}
	if !in.Role.Valid() {
		return nil, apperr.Validation("Invalid role")
	}
	if in.Role == entities.RoleAdmin && !s.allowAdminSignup {
		return nil, apperr.Forbidden("Admin accounts cannot be self-registered")
	}
	p, err := s.register(ctx, in, in.Role == entities.RoleFarmer)
	if err != nil {
		return nil, err
	}
	return s.issue(p)
}

func (s *authSvc) CreateAdmin(ctx context.Context, name, email, password string) (*entities.Profile, error) {
	return s.register(ctx, service.SignUpInput{Name: name, Email: email, Password: password, Role: entities.RoleAdmin}, true)
}

// register creates the account and its profile. Farmers are approved at
// once, consultants wait for an admin.
func (s *authSvc) register(ctx context.Context, in service.SignUpInput, approved bool) (*entities.Profile, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" {
		return nil, apperr.Validation("Name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperr.Validation("A valid email is required")
	}
	if len(in.Password) < minPasswordLen {
		return nil, apperr.Validation("Password must be at least 6 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	acc := &entities.Account{Email: email, PasswordHash: string(hash)}
	p := &entities.Profile{Name: name, Email: email, Role: in.Role, IsApproved: approved}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		p.Phone = &phone
	}
	if err := s.accounts.CreateWithProfile(ctx, acc, p); err != nil {
		s.log.Error("Failed creating account", zap.String("email", email), zap.Error(err))
		return nil, err
	}
	s.log.Info("Account created", zap.String("userId", acc.ID), zap.String("role", string(p.Role)))
	return p, nil
}

func (s *authSvc) SignIn(ctx context.Context, email, password string) (*service.Result, error) {
	acc, err := s.accounts.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)) != nil {
		return nil, apperr.ErrInvalidCredentials
	}
	p, err := s.profiles.FindByID(ctx, acc.ID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil, apperr.NotFound("User profile not found. Please contact support.")
		}
		return nil, err
	}
	return s.issue(p)
}

func (s *authSvc) SignOut(token string) { s.sessions.Revoke(token) }

func (s *authSvc) issue(p *entities.Profile) (*service.Result, error) {
	tok, exp, err := s.sessions.Issue(p.ID)
	if err != nil {
		return nil, err
	}
	return &service.Result{Token: tok, ExpiresAt: exp, Profile: p, Redirect: p.Role.Home()}, nil
}
