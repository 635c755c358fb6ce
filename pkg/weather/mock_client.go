package weather

import "context"

const defaultIcon = "//cdn.weatherapi.com/weather/64x64/day/116.png"

// MockReading is served when no API key is configured.
var MockReading = Reading{
	Temperature: 25,
	Humidity:    65,
	WindSpeed:   12,
	Description: "Partly cloudy",
	Icon:        defaultIcon,
}

// FallbackReading replaces a failed lookup.
var FallbackReading = Reading{
	Temperature: 25,
	Humidity:    65,
	WindSpeed:   12,
	Description: "Weather data unavailable",
	Icon:        defaultIcon,
}

type mockClient struct{}

func NewMock() Client { return &mockClient{} }

func (m *mockClient) Current(context.Context, string) (Reading, error) { return MockReading, nil }
