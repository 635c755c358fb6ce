package weather

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"mlimi/pkg/metrics"
)

// Result is a reading plus a user-facing warning when the fallback was used.
type Result struct {
	Location string  `json:"location"`
	Reading  Reading `json:"reading"`
	Warning  string  `json:"warning,omitempty"`
	Fallback bool    `json:"fallback"`
}

type Service struct {
	c               Client
	defaultLocation string
	log             *zap.Logger
}

func NewService(c Client, defaultLocation string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if defaultLocation == "" {
		defaultLocation = "Zomba, Malawi"
	}
	return &Service{c: c, defaultLocation: defaultLocation, log: log}
}

// Current never fails: provider errors turn into FallbackReading and a
// warning.
func (s *Service) Current(ctx context.Context, location string) Result {
	location = strings.TrimSpace(location)
	if location == "" {
		location = s.defaultLocation
	}
	r, err := s.c.Current(ctx, location)
	if err == nil {
		return Result{Location: location, Reading: r}
	}

	warning, reason := describe(err)
	metrics.WeatherFallbacks.WithLabelValues(reason).Inc()
	s.log.Warn("weather lookup failed", zap.String("location", location), zap.Error(err))
	return Result{Location: location, Reading: FallbackReading, Warning: warning, Fallback: true}
}

func describe(err error) (warning, reason string) {
	var se *StatusError
	if !errors.As(err, &se) {
		return "Failed to load weather data. Using mock data.", "network"
	}
	switch se.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return "Weather API key is invalid. Using mock data.", "auth"
	case http.StatusBadRequest:
		return "Invalid location for weather data. Using mock data.", "location"
	}
	return fmt.Sprintf("Weather service unavailable (%d). Using mock data.", se.Code), "status"
}
