package payment

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statsFixture() []Payment {
	jan := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 3, 9, 0, 0, 0, time.UTC)
	return []Payment{
		{ID: 1, FullName: "Ada Obi", MatricNumber: "210012", Level: 200, TotalAmount: 8000, Status: StatusApproved, CreatedAt: jan},
		{ID: 2, FullName: "Bayo Ade", MatricNumber: "200101", Level: 400, TotalAmount: 16500, Status: StatusPending, CreatedAt: jan},
		{ID: 3, FullName: "Chi, Eze", MatricNumber: "190555", Level: 200, TotalAmount: 9500, Status: StatusRejected, CreatedAt: feb},
		{ID: 4, FullName: "Dupe Ola", MatricNumber: "180321", Level: 500, TotalAmount: 20000, Status: StatusApproved, CreatedAt: feb},
	}
}

func TestComputeStats(t *testing.T) {
	st := ComputeStats(statsFixture())

	assert.Equal(t, 4, st.Count)
	assert.Equal(t, 54000, st.TotalAmount)
	assert.Equal(t, 28000, st.ApprovedAmount)
	assert.Equal(t, []LevelStat{
		{Level: 200, Count: 2, TotalAmount: 17500},
		{Level: 400, Count: 1, TotalAmount: 16500},
		{Level: 500, Count: 1, TotalAmount: 20000},
	}, st.ByLevel)
	assert.Equal(t, []StatusStat{
		{Status: StatusPending, Count: 1},
		{Status: StatusApproved, Count: 2},
		{Status: StatusRejected, Count: 1},
	}, st.ByStatus)
	assert.Equal(t, []MonthStat{
		{Month: "2025-02", Count: 2, TotalAmount: 29500},
		{Month: "2025-01", Count: 2, TotalAmount: 24500},
	}, st.ByMonth)
}

func TestComputeStats_empty(t *testing.T) {
	st := ComputeStats(nil)
	assert.Zero(t, st.Count)
	assert.NotNil(t, st.ByLevel)
	assert.NotNil(t, st.ByMonth)
	assert.Len(t, st.ByStatus, len(Statuses))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, statsFixture()[2:3]))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{
		"3", "Chi, Eze", "190555", "200", "", "", "9500", "rejected", "", "2025-02-03T09:00:00Z",
	}, records[1])
}
