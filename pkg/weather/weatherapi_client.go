package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

type weatherAPI struct {
	endpoint string
	key      string
	httpc    *http.Client
}

// NewWeatherAPI talks to weatherapi.com's current conditions endpoint.
func NewWeatherAPI(endpoint, key string) Client {
	return &weatherAPI{
		endpoint: strings.TrimRight(endpoint, "/"),
		key:      key,
		httpc:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *weatherAPI) Current(ctx context.Context, query string) (Reading, error) {
	q := url.Values{}
	q.Set("key", c.key)
	q.Set("q", query)
	q.Set("aqi", "no")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"/v1/current.json?"+q.Encode(), nil)
	if err != nil {
		return Reading{}, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return Reading{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Reading{}, &StatusError{Code: resp.StatusCode}
	}

	var out struct {
		Current struct {
			TempC     float64 `json:"temp_c"`
			Humidity  float64 `json:"humidity"`
			WindKph   float64 `json:"wind_kph"`
			Condition struct {
				Text string `json:"text"`
				Icon string `json:"icon"`
			} `json:"condition"`
		} `json:"current"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Reading{}, fmt.Errorf("decode weather: %w", err)
	}
	return Reading{
		Temperature: out.Current.TempC,
		Humidity:    out.Current.Humidity,
		WindSpeed:   out.Current.WindKph,
		Description: out.Current.Condition.Text,
		Icon:        out.Current.Condition.Icon,
	}, nil
}
