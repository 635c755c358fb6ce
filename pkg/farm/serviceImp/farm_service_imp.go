package serviceImp

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"mlimi/entities"
	"mlimi/pkg/apperr"
	repo "mlimi/pkg/farm/repository"
	"mlimi/pkg/farm/service"
)

type farmSvc struct {
	r   repo.FarmRepository
	log *zap.Logger
}

func NewFarmService(r repo.FarmRepository, log *zap.Logger) service.FarmService {
	if log == nil {
		log = zap.NewNop()
	}
	return &farmSvc{r: r, log: log}
}

func (s *farmSvc) Create(ctx context.Context, farmerID string, in service.FarmInput) (*entities.Farm, error) {
	name := strings.TrimSpace(in.FarmName)
	if name == "" {
		return nil, apperr.Validation("Farm name is required")
	}
	if err := checkSize(in.Size.Value); err != nil {
		return nil, err
	}
	soil, err := soilType(in.SoilType)
	if err != nil {
		return nil, err
	}
	geo, err := geoJSON(in.GeoJSON)
	if err != nil {
		return nil, err
	}
	f := &entities.Farm{
		FarmerID:    farmerID,
		FarmName:    name,
		Size:        in.Size.Value,
		Crops:       NormalizeCrops(in.Crops),
		SoilType:    soil,
		Location:    optional(in.Location),
		GeoJSON:     geo,
		Description: optional(in.Description),
	}
	if err := s.r.Create(ctx, f); err != nil {
		s.log.Error("Failed creating farm", zap.String("farmerId", farmerID), zap.Error(err))
		return nil, err
	}
	return f, nil
}

func (s *farmSvc) List(ctx context.Context, farmerID string) ([]entities.Farm, error) {
	return s.r.ListByOwner(ctx, farmerID)
}

func (s *farmSvc) Get(ctx context.Context, id, farmerID string) (*entities.Farm, error) {
	return s.r.FindOwned(ctx, id, farmerID)
}

// UpdatePartial merges the present fields into the stored farm and returns
// the merged record.
func (s *farmSvc) UpdatePartial(ctx context.Context, id, farmerID string, p service.FarmPatch) (*entities.Farm, error) {
	cur, err := s.r.FindOwned(ctx, id, farmerID)
	if err != nil {
		return nil, err
	}
	if p.FarmName != nil {
		name := strings.TrimSpace(*p.FarmName)
		if name == "" {
			return nil, apperr.Validation("Farm name is required")
		}
		cur.FarmName = name
	}
	if p.Size.Set {
		if err := checkSize(p.Size.Value); err != nil {
			return nil, err
		}
		cur.Size = p.Size.Value
	}
	if p.Crops != nil {
		cur.Crops = NormalizeCrops(*p.Crops)
	}
	if p.SoilType.Set {
		soil, err := soilType(p.SoilType.Value)
		if err != nil {
			return nil, err
		}
		cur.SoilType = soil
	}
	if p.Location.Set {
		cur.Location = optional(p.Location.Value)
	}
	if p.Description.Set {
		cur.Description = optional(p.Description.Value)
	}
	if p.GeoJSON.Set {
		var raw json.RawMessage
		if p.GeoJSON.Value != nil {
			raw = *p.GeoJSON.Value
		}
		geo, err := geoJSON(raw)
		if err != nil {
			return nil, err
		}
		cur.GeoJSON = geo
	}
	if err := s.r.Save(ctx, cur); err != nil {
		s.log.Error("Failed updating farm", zap.String("farmId", id), zap.Error(err))
		return nil, err
	}
	return cur, nil
}

// NormalizeCrops trims, drops blanks and duplicates, keeps first-seen order.
// An empty result is stored as null.
func NormalizeCrops(in []string) datatypes.JSONSlice[string] {
	seen := make(map[string]bool, len(in))
	var out datatypes.JSONSlice[string]
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func checkSize(v *float64) error {
	if v != nil && *v < 0 {
		return apperr.Validation("Farm size cannot be negative")
	}
	return nil
}

func soilType(v *string) (*string, error) {
	s := optional(v)
	if s == nil {
		return nil, nil
	}
	lower := strings.ToLower(*s)
	if !entities.ValidSoilType(lower) {
		return nil, apperr.Validation("Invalid soil type")
	}
	return &lower, nil
}

func geoJSON(raw json.RawMessage) (datatypes.JSON, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if !json.Valid(raw) {
		return nil, apperr.Validation("Invalid geojson")
	}
	return datatypes.JSON(raw), nil
}

func optional(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}
