// Package userapi serves the legacy single-user lookup endpoint.
package userapi

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"mlimi/entities"
)

const maxUserID = 999999999

var digits = regexp.MustCompile(`^\d+$`)

type UserDTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Store finds one non-deleted user. It returns (nil, nil) when none matches.
type Store interface {
	FindActive(ctx context.Context, id int64) (*UserDTO, error)
}

type gormStore struct{ db *gorm.DB }

func NewStore(db *gorm.DB) Store { return &gormStore{db} }

func (s *gormStore) FindActive(ctx context.Context, id int64) (*UserDTO, error) {
	var u UserDTO
	err := s.db.WithContext(ctx).Model(&entities.User{}).
		Select("id", "name", "email", "created_at").
		Where("id = ? AND deleted = ?", id, false).
		Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

type Handler struct {
	store Store
	log   *zap.Logger
}

func NewHandler(store Store, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{store: store, log: log}
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid user ID", "message": msg})
}

func (h *Handler) GetUser(c echo.Context) error {
	raw := c.Param("id")
	if !digits.MatchString(raw) {
		return badRequest(c, "User ID must be a positive integer")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 || id > maxUserID {
		return badRequest(c, "User ID out of valid range")
	}

	u, err := h.store.FindActive(c.Request().Context(), id)
	if err != nil {
		h.log.Error("Failed loading user", zap.Int64("userId", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error":   "Database error",
			"message": "Failed to retrieve user data",
		})
	}
	if u == nil {
		return c.JSON(http.StatusNotFound, echo.Map{
			"error":   "User not found",
			"message": "No user found with the specified ID",
		})
	}
	return c.JSON(http.StatusOK, u)
}
