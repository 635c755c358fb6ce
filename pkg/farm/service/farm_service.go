package service

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"mlimi/entities"
)

// Size accepts a JSON number, a numeric string or null. Text that does not
// parse becomes null. Set reports whether the key was present at all.
type Size struct {
	Value *float64
	Set   bool
}

func (s *Size) UnmarshalJSON(b []byte) error {
	s.Set = true
	s.Value = nil
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] != '"' {
		v, err := strconv.ParseFloat(string(b), 64)
		if err == nil {
			s.Value = &v
		}
		return nil
	}
	var raw string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	s.Value = ParseSize(raw)
	return nil
}

// ParseSize reads the longest leading decimal number the way a lenient form
// field would: "2.5 ha" gives 2.5, "1e3" gives 1000, "abc" gives nil.
func ParseSize(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	i := 0
	if i < len(raw) && (raw[i] == '+' || raw[i] == '-') {
		i++
	}
	digits := 0
	for ; i < len(raw) && isDigit(raw[i]); i++ {
		digits++
	}
	if i < len(raw) && raw[i] == '.' {
		i++
		for ; i < len(raw) && isDigit(raw[i]); i++ {
			digits++
		}
	}
	if digits == 0 {
		return nil
	}
	end := i
	if i < len(raw) && (raw[i] == 'e' || raw[i] == 'E') {
		j := i + 1
		if j < len(raw) && (raw[j] == '+' || raw[j] == '-') {
			j++
		}
		k := j
		for ; k < len(raw) && isDigit(raw[k]); k++ {
		}
		if k > j {
			end = k
		}
	}
	v, err := strconv.ParseFloat(raw[:end], 64)
	if err != nil {
		return nil
	}
	return &v
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// Nullable tells an absent key apart from an explicit null. Set is true
// when the key was present; Value is nil for null.
type Nullable[T any] struct {
	Value *T
	Set   bool
}

func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	n.Value = nil
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

type FarmInput struct {
	FarmName    string          `json:"farm_name"`
	Size        Size            `json:"size"`
	Crops       []string        `json:"crops"`
	SoilType    *string         `json:"soil_type"`
	Location    *string         `json:"location"`
	GeoJSON     json.RawMessage `json:"geojson"`
	Description *string         `json:"description"`
}

// FarmPatch applies only the fields that are present. An explicit null
// clears the optional ones.
type FarmPatch struct {
	FarmName    *string                   `json:"farm_name"`
	Size        Size                      `json:"size"`
	Crops       *[]string                 `json:"crops"`
	SoilType    Nullable[string]          `json:"soil_type"`
	Location    Nullable[string]          `json:"location"`
	GeoJSON     Nullable[json.RawMessage] `json:"geojson"`
	Description Nullable[string]          `json:"description"`
}

type FarmService interface {
	Create(ctx context.Context, farmerID string, in FarmInput) (*entities.Farm, error)
	List(ctx context.Context, farmerID string) ([]entities.Farm, error)
	Get(ctx context.Context, id, farmerID string) (*entities.Farm, error)
	UpdatePartial(ctx context.Context, id, farmerID string, patch FarmPatch) (*entities.Farm, error)
}
