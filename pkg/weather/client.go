package weather

import (
	"context"
	"fmt"
)

// Reading is the current weather at one place.
type Reading struct {
	Temperature float64 `json:"temperature"` // °C
	Humidity    float64 `json:"humidity"`    // %
	WindSpeed   float64 `json:"wind_speed"`  // km/h
	Description string  `json:"description"`
	Icon        string  `json:"icon"`
}

type Client interface {
	Current(ctx context.Context, query string) (Reading, error)
}

// StatusError is returned when the provider answers with a non-2xx code.
type StatusError struct{ Code int }

func (e *StatusError) Error() string { return fmt.Sprintf("weather provider returned %d", e.Code) }
