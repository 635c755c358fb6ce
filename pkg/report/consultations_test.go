package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"mlimi/entities"
	"mlimi/pkg/consultation/repository"
	consultation "mlimi/pkg/consultation/service"
)

func TestConsultationsWorkbook(t *testing.T) {
	rec := "Rotate with legumes"
	at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	res := &consultation.ListResult{
		Items: []consultation.View{
			{
				ID: "c1", Status: entities.StatusClosed, IssueDescription: "Poor yield",
				Recommendation: &rec, CreatedAt: at, UpdatedAt: at,
				FarmerSummary: &consultation.PartySummary{Name: "Thoko"},
				FarmSummary:   &consultation.FarmSummary{FarmName: "Chingale"},
			},
			{ID: "c2", Status: entities.StatusPending, IssueDescription: "Pests", CreatedAt: at, UpdatedAt: at},
		},
		Stats: repository.StatusCounts{Total: 2, Pending: 1, Closed: 1},
	}

	buf, err := Consultations(res)
	require.NoError(t, err)

	x, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer x.Close()

	rows, err := x.GetRows(sheetConsultations)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Farmer", rows[0][1])
	assert.Equal(t, []string{"c1", "Thoko", "Chingale", "closed", "Poor yield", "Rotate with legumes",
		"2026-02-03T04:05:06Z", "2026-02-03T04:05:06Z"}, rows[1])
	assert.Equal(t, "pending", rows[2][3])

	total, err := x.GetCellValue(sheetSummary, "B2")
	require.NoError(t, err)
	assert.Equal(t, "2", total)
}
