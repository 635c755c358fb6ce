package dashboard

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"mlimi/entities"
	consultation "mlimi/pkg/consultation/service"
	"mlimi/pkg/weather"
)

const (
	recentLimit    = 5
	activityLimit  = 5
	farmActivities = 3

	ActivityFarmAdded = "farm_added"
)

type FarmLister interface {
	List(ctx context.Context, farmerID string) ([]entities.Farm, error)
}

type ConsultationReader interface {
	List(ctx context.Context, viewer *entities.Profile, f consultation.ListFilter) (*consultation.ListResult, error)
	Recent(ctx context.Context, farmerID string, limit int) ([]consultation.View, error)
	Activity(ctx context.Context, farmerID string, limit int) ([]consultation.Activity, error)
}

type WeatherSource interface {
	Current(ctx context.Context, location string) weather.Result
}

type Stats struct {
	Farms         int     `json:"farms"`
	TotalHectares float64 `json:"total_hectares"`
	Consultations int64   `json:"consultations"`
	Pending       int64   `json:"pending"`
	Active        int64   `json:"active"`
	Closed        int64   `json:"closed"`
}

// Summary is everything the farmer's home screen shows.
type Summary struct {
	Profile       *entities.Profile       `json:"profile"`
	Stats         Stats                   `json:"stats"`
	Farms         []entities.Farm         `json:"farms"`
	Consultations []consultation.View     `json:"consultations"`
	Activities    []consultation.Activity `json:"activities"`
	Weather       weather.Result          `json:"weather"`
}

type Service struct {
	farms         FarmLister
	consultations ConsultationReader
	weather       WeatherSource
}

func NewService(f FarmLister, c ConsultationReader, w WeatherSource) *Service {
	return &Service{farms: f, consultations: c, weather: w}
}

func (s *Service) Summary(ctx context.Context, viewer *entities.Profile) (*Summary, error) {
	out := &Summary{Profile: viewer}
	var all *consultation.ListResult
	var acts []consultation.Activity

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.Farms, err = s.farms.List(gctx, viewer.ID)
		return err
	})
	g.Go(func() error {
		var err error
		out.Consultations, err = s.consultations.Recent(gctx, viewer.ID, recentLimit)
		return err
	})
	g.Go(func() error {
		var err error
		acts, err = s.consultations.Activity(gctx, viewer.ID, activityLimit)
		return err
	})
	g.Go(func() error {
		var err error
		all, err = s.consultations.List(gctx, viewer, consultation.ListFilter{})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.Stats = Stats{
		Farms:         len(out.Farms),
		Consultations: all.Stats.Total,
		Pending:       all.Stats.Pending,
		Active:        all.Stats.Active,
		Closed:        all.Stats.Closed,
	}
	for _, f := range out.Farms {
		if f.Size != nil {
			out.Stats.TotalHectares += *f.Size
		}
	}
	out.Activities = mergeActivities(acts, out.Farms)
	out.Weather = s.weather.Current(ctx, PreferredLocation(out.Farms))
	return out, nil
}

// PreferredLocation is the location of the newest farm that has one.
func PreferredLocation(farms []entities.Farm) string {
	for _, f := range farms {
		if f.Location != nil && *f.Location != "" {
			return *f.Location
		}
	}
	return ""
}

func mergeActivities(acts []consultation.Activity, farms []entities.Farm) []consultation.Activity {
	out := append([]consultation.Activity{}, acts...)
	for i, f := range farms {
		if i == farmActivities {
			break
		}
		out = append(out, consultation.Activity{
			ID:        f.ID,
			Type:      ActivityFarmAdded,
			Title:     "New farm added: " + f.FarmName,
			Timestamp: f.CreatedAt,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > activityLimit {
		out = out[:activityLimit]
	}
	return out
}

