package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"mlimi/entities"
	"mlimi/pkg/apperr"
	"mlimi/pkg/session"
)

const (
	CookieName = "session"

	ctxUID     = "uid"
	ctxProfile = "profile"
	ctxToken   = "token"
)

// TokenFrom reads a bearer token, falling back to the session cookie.
func TokenFrom(c echo.Context) string {
	if h := c.Request().Header.Get(echo.HeaderAuthorization); h != "" {
		if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
			return strings.TrimSpace(h[7:])
		}
	}
	if ck, err := c.Cookie(CookieName); err == nil {
		return ck.Value
	}
	return ""
}

// RequireSession rejects requests without a live session with 401 and a
// redirect to the login route.
func RequireSession(store *session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tok := TokenFrom(c)
			if tok == "" {
				return unauthorized(c, session.ErrUnauthenticated)
			}
			sess, err := store.Resolve(c.Request().Context(), tok)
			if errors.Is(err, session.ErrUnauthenticated) || errors.Is(err, session.ErrProfileMissing) {
				return unauthorized(c, err)
			}
			if err != nil {
				return apperr.Respond(c, err)
			}
			p := sess.Profile
			c.Set(ctxUID, sess.AccountID)
			c.Set(ctxProfile, &p)
			c.Set(ctxToken, tok)
			return next(c)
		}
	}
}

func unauthorized(c echo.Context, err error) error {
	msg := session.ErrUnauthenticated.Error()
	if errors.Is(err, session.ErrProfileMissing) {
		msg = err.Error()
	}
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": msg, "redirect": "/login"})
}

// RequireRole must run after RequireSession.
func RequireRole(roles ...entities.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := Profile(c)
			if p == nil {
				return unauthorized(c, session.ErrUnauthenticated)
			}
			for _, r := range roles {
				if p.Role == r {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, echo.Map{
				"error":    deniedMessage(roles),
				"redirect": p.Role.Home(),
			})
		}
	}
}

// deniedMessage names the first accepted role.
func deniedMessage(roles []entities.Role) string {
	if len(roles) > 0 {
		switch roles[0] {
		case entities.RoleAdmin:
			return "Access denied. Admin privileges required."
		case entities.RoleConsultant:
			return "Access denied. Consultant role required."
		case entities.RoleFarmer:
			return "Access denied. Farmer role required."
		}
	}
	return "Access denied."
}

// RequireApproved blocks consultants the admin has not approved yet.
func RequireApproved() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := Profile(c)
			if p != nil && p.Role == entities.RoleConsultant && !p.IsApproved {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "account pending approval"})
			}
			return next(c)
		}
	}
}

func Profile(c echo.Context) *entities.Profile {
	p, _ := c.Get(ctxProfile).(*entities.Profile)
	return p
}

func UID(c echo.Context) string {
	uid, _ := c.Get(ctxUID).(string)
	return uid
}

func Token(c echo.Context) string {
	tok, _ := c.Get(ctxToken).(string)
	return tok
}
