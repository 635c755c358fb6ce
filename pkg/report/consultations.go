// Package report builds spreadsheet exports for admins.
package report

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"

	"mlimi/entities"
	consultation "mlimi/pkg/consultation/service"
)

const (
	sheetConsultations = "Consultations"
	sheetSummary       = "Summary"
	xlsxMIME           = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var header = []any{"ID", "Farmer", "Farm", "Status", "Issue", "Recommendation", "Created", "Updated"}

type Lister interface {
	List(ctx context.Context, viewer *entities.Profile, f consultation.ListFilter) (*consultation.ListResult, error)
}

// Consultations renders res as a workbook with a detail and a summary sheet.
func Consultations(res *consultation.ListResult) (*bytes.Buffer, error) {
	x := excelize.NewFile()
	defer x.Close()

	if err := x.SetSheetName("Sheet1", sheetConsultations); err != nil {
		return nil, err
	}
	if err := x.SetSheetRow(sheetConsultations, "A1", &header); err != nil {
		return nil, err
	}
	for i, v := range res.Items {
		row := []any{
			v.ID,
			farmerName(v),
			farmName(v),
			string(v.Status),
			v.IssueDescription,
			deref(v.Recommendation),
			v.CreatedAt.UTC().Format(time.RFC3339),
			v.UpdatedAt.UTC().Format(time.RFC3339),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := x.SetSheetRow(sheetConsultations, cell, &row); err != nil {
			return nil, err
		}
	}

	if _, err := x.NewSheet(sheetSummary); err != nil {
		return nil, err
	}
	summary := [][]any{
		{"Status", "Count"},
		{"Total", res.Stats.Total},
		{"Pending", res.Stats.Pending},
		{"Active", res.Stats.Active},
		{"Closed", res.Stats.Closed},
	}
	for i, row := range summary {
		r := row
		if err := x.SetSheetRow(sheetSummary, fmt.Sprintf("A%d", i+1), &r); err != nil {
			return nil, err
		}
	}
	return x.WriteToBuffer()
}

func farmerName(v consultation.View) string {
	if v.FarmerSummary == nil {
		return ""
	}
	return v.FarmerSummary.Name
}

func farmName(v consultation.View) string {
	if v.FarmSummary == nil {
		return ""
	}
	return v.FarmSummary.FarmName
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type Ctrl struct {
	l     Lister
	viewer func(echo.Context) *entities.Profile
}

func NewCtrl(l Lister, viewer func(echo.Context) *entities.Profile) *Ctrl {
	return &Ctrl{l: l, viewer: viewer}
}

func (h *Ctrl) Consultations(c echo.Context) error {
	res, err := h.l.List(c.Request().Context(), h.viewer(c), consultation.ListFilter{
		Status: c.QueryParam("status"),
		Query:  c.QueryParam("q"),
	})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	buf, err := Consultations(res)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="consultations-%s.xlsx"`, time.Now().UTC().Format("20060102")))
	return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}
