package service

import (
	"time"

	"github.com/jinzhu/copier"

	"mlimi/entities"
)

type Action string

const (
	ActionMarkActive        Action = "mark_active"
	ActionAddRecommendation Action = "add_recommendation"
)

// transitions lists the writes the lifecycle allows from each status.
var transitions = map[entities.ConsultationStatus][]entities.ConsultationStatus{
	entities.StatusPending: {entities.StatusActive, entities.StatusClosed},
	entities.StatusActive:  {entities.StatusClosed},
	entities.StatusClosed:  nil,
}

func CanTransition(from, to entities.ConsultationStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Sources returns every status from which to may be reached.
func Sources(to entities.ConsultationStatus) []entities.ConsultationStatus {
	var out []entities.ConsultationStatus
	for _, from := range []entities.ConsultationStatus{entities.StatusPending, entities.StatusActive, entities.StatusClosed} {
		if CanTransition(from, to) {
			out = append(out, from)
		}
	}
	return out
}

// Actions is what a viewer with role may do to a consultation in status.
func Actions(status entities.ConsultationStatus, role entities.Role) []Action {
	out := []Action{}
	if role != entities.RoleConsultant && role != entities.RoleAdmin {
		return out
	}
	if CanTransition(status, entities.StatusActive) {
		out = append(out, ActionMarkActive)
	}
	if CanTransition(status, entities.StatusClosed) {
		out = append(out, ActionAddRecommendation)
	}
	return out
}

type PartySummary struct {
	Name  string  `json:"name"`
	Phone *string `json:"phone"`
	Email string  `json:"email"`
}

type FarmSummary struct {
	FarmName string   `json:"farm_name"`
	Location *string  `json:"location"`
	Crops    []string `json:"crops"`
}

type View struct {
	ID               string                      `json:"id"`
	FarmerID         string                      `json:"farmer_id"`
	ConsultantID     *string                     `json:"consultant_id"`
	FarmID           *string                     `json:"farm_id"`
	IssueDescription string                      `json:"issue_description"`
	Recommendation   *string                     `json:"recommendation"`
	Status           entities.ConsultationStatus `json:"status"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`

	FarmerSummary *PartySummary `json:"farmer"`
	FarmSummary   *FarmSummary  `json:"farm"`
	Actions       []Action      `json:"actions"`
}

func NewView(c *entities.Consultation, role entities.Role) View {
	var v View
	_ = copier.CopyWithOption(&v, c, copier.Option{DeepCopy: true})
	if c.Farmer != nil {
		v.FarmerSummary = &PartySummary{}
		_ = copier.Copy(v.FarmerSummary, c.Farmer)
	}
	if c.Farm != nil {
		v.FarmSummary = &FarmSummary{FarmName: c.Farm.FarmName, Location: c.Farm.Location}
		if len(c.Farm.Crops) > 0 {
			v.FarmSummary.Crops = append([]string(nil), c.Farm.Crops...)
		}
	}
	v.Actions = Actions(c.Status, role)
	return v
}

func NewViews(list []entities.Consultation, role entities.Role) []View {
	out := make([]View, 0, len(list))
	for i := range list {
		out = append(out, NewView(&list[i], role))
	}
	return out
}
