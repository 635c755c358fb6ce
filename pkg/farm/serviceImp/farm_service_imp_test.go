package serviceImp

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"mlimi/database"
	"mlimi/entities"
	"mlimi/pkg/apperr"
	repoImp "mlimi/pkg/farm/repositoryImp"
	"mlimi/pkg/farm/service"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite", filepath.Join(t.TempDir(), "farm.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func strp(s string) *string { return &s }

func decodeInput(t *testing.T, body string) service.FarmInput {
	t.Helper()
	var in service.FarmInput
	require.NoError(t, json.Unmarshal([]byte(body), &in))
	return in
}

func TestCreateNormalizesInput(t *testing.T) {
	svc := NewFarmService(repoImp.New(newTestDB(t)), nil)
	ctx := context.Background()

	in := decodeInput(t, `{
		"farm_name": "  Nsanje Plot ",
		"size": "not a number",
		"crops": ["Maize", " Maize", "", "Cassava", "Maize"],
		"soil_type": "Loamy",
		"location": "  ",
		"geojson": {"type":"Polygon","coordinates":[[[35.3,-15.4],[35.4,-15.4],[35.4,-15.3],[35.3,-15.4]]]}
	}`)
	f, err := svc.Create(ctx, "farmer-1", in)
	require.NoError(t, err)

	assert.NotEmpty(t, f.ID)
	assert.Equal(t, "Nsanje Plot", f.FarmName)
	assert.Nil(t, f.Size)
	assert.Equal(t, []string{"Maize", "Cassava"}, []string(f.Crops))
	require.NotNil(t, f.SoilType)
	assert.Equal(t, "loamy", *f.SoilType)
	assert.Nil(t, f.Location)
	assert.JSONEq(t, `{"type":"Polygon","coordinates":[[[35.3,-15.4],[35.4,-15.4],[35.4,-15.3],[35.3,-15.4]]]}`, string(f.GeoJSON))

	got, err := svc.Get(ctx, f.ID, "farmer-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Maize", "Cassava"}, []string(got.Crops))
}

func TestCreateValidation(t *testing.T) {
	svc := NewFarmService(repoImp.New(newTestDB(t)), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "farmer-1", service.FarmInput{FarmName: " "})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Create(ctx, "farmer-1", service.FarmInput{FarmName: "A", SoilType: strp("volcanic")})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Create(ctx, "farmer-1", service.FarmInput{FarmName: "A", GeoJSON: json.RawMessage(`{bad`)})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	f, err := svc.Create(ctx, "farmer-1", service.FarmInput{FarmName: "A", Crops: []string{" ", ""}})
	require.NoError(t, err)
	assert.Nil(t, f.Crops)
}

func TestListIsOwnerScopedNewestFirst(t *testing.T) {
	db := newTestDB(t)
	svc := NewFarmService(repoImp.New(db), nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, "farmer-1", service.FarmInput{FarmName: "First"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, "farmer-1", service.FarmInput{FarmName: "Second"})
	require.NoError(t, err)
	require.NoError(t, db.Model(&entities.Farm{}).Where("id = ?", first.ID).
		Update("created_at", second.CreatedAt.Add(-1e9)).Error)
	_, err = svc.Create(ctx, "farmer-2", service.FarmInput{FarmName: "Other"})
	require.NoError(t, err)

	list, err := svc.List(ctx, "farmer-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Second", list[0].FarmName)
	assert.Equal(t, "First", list[1].FarmName)

	empty, err := svc.List(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestGetOtherOwnersFarmIsNotFound(t *testing.T) {
	svc := NewFarmService(repoImp.New(newTestDB(t)), nil)
	ctx := context.Background()
	f, err := svc.Create(ctx, "farmer-1", service.FarmInput{FarmName: "Mine"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, f.ID, "farmer-2")
	assert.True(t, errors.Is(err, apperr.ErrNotFound))

	_, err = svc.UpdatePartial(ctx, f.ID, "farmer-2", service.FarmPatch{FarmName: strp("Stolen")})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdatePartialMergesPresentFields(t *testing.T) {
	svc := NewFarmService(repoImp.New(newTestDB(t)), nil)
	ctx := context.Background()
	f, err := svc.Create(ctx, "farmer-1", decodeInput(t, `{"farm_name":"Dedza","size":"3","crops":["Maize"],"location":"Dedza"}`))
	require.NoError(t, err)

	var patch service.FarmPatch
	require.NoError(t, json.Unmarshal([]byte(`{"size":"4.5 ha","crops":["Rice","Rice","Beans"],"soil_type":"clay"}`), &patch))
	out, err := svc.UpdatePartial(ctx, f.ID, "farmer-1", patch)
	require.NoError(t, err)

	assert.Equal(t, "Dedza", out.FarmName)
	require.NotNil(t, out.Size)
	assert.InDelta(t, 4.5, *out.Size, 1e-9)
	assert.Equal(t, []string{"Rice", "Beans"}, []string(out.Crops))
	assert.Equal(t, "clay", *out.SoilType)
	assert.Equal(t, "Dedza", *out.Location)

	reloaded, err := svc.Get(ctx, f.ID, "farmer-1")
	require.NoError(t, err)
	assert.InDelta(t, 4.5, *reloaded.Size, 1e-9)

	patch = service.FarmPatch{}
	require.NoError(t, json.Unmarshal([]byte(`{"size":"unknown"}`), &patch))
	out, err = svc.UpdatePartial(ctx, f.ID, "farmer-1", patch)
	require.NoError(t, err)
	assert.Nil(t, out.Size)
}

func TestUpdatePartialNullClearsOptionalFields(t *testing.T) {
	svc := NewFarmService(repoImp.New(newTestDB(t)), nil)
	ctx := context.Background()
	f, err := svc.Create(ctx, "farmer-1", decodeInput(t,
		`{"farm_name":"Dedza","soil_type":"loamy","location":"Dedza","description":"hillside","geojson":{"type":"Point"}}`))
	require.NoError(t, err)

	var patch service.FarmPatch
	require.NoError(t, json.Unmarshal([]byte(`{"soil_type":null,"location":null,"description":null,"geojson":null}`), &patch))
	out, err := svc.UpdatePartial(ctx, f.ID, "farmer-1", patch)
	require.NoError(t, err)
	assert.Nil(t, out.SoilType)
	assert.Nil(t, out.Location)
	assert.Nil(t, out.Description)
	assert.Empty(t, out.GeoJSON)

	reloaded, err := svc.Get(ctx, f.ID, "farmer-1")
	require.NoError(t, err)
	assert.Nil(t, reloaded.Location)
	assert.Equal(t, "Dedza", reloaded.FarmName)
}

func TestNegativeSizeIsRejected(t *testing.T) {
	svc := NewFarmService(repoImp.New(newTestDB(t)), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, "farmer-1", decodeInput(t, `{"farm_name":"A","size":"-2"}`))
	assert.ErrorIs(t, err, apperr.ErrValidation)

	f, err := svc.Create(ctx, "farmer-1", decodeInput(t, `{"farm_name":"A","size":"1e1"}`))
	require.NoError(t, err)
	assert.InDelta(t, 10.0, *f.Size, 1e-9)

	var patch service.FarmPatch
	require.NoError(t, json.Unmarshal([]byte(`{"size":-1}`), &patch))
	_, err = svc.UpdatePartial(ctx, f.ID, "farmer-1", patch)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
