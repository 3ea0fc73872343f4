package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/insurecare/feedback-portal/internal/access"
	"github.com/insurecare/feedback-portal/internal/domain"
	apperrors "github.com/insurecare/feedback-portal/pkg/util/errorutil"
)

func TestExportAgentsCSV(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.export.now = func() time.Time { return time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC) }
	zed := f.agent(t, "Zed, Jr.")
	f.agent(t, "Amy")
	q := f.question(t, domain.KindAgent)
	f.rate(t, zed.Target(), q.ID, 5, 4)

	file, err := f.export.Agents(ctx, admin, FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "agents-export-2024-05-02.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	records, err := csv.NewReader(bytes.NewReader(file.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Total Ratings", records[0][9])
	assert.Equal(t, "Amy", records[1][1])
	assert.Equal(t, "0", records[1][9])
	assert.Equal(t, "0.00", records[1][10])
	assert.Equal(t, "Zed, Jr.", records[2][1])
	assert.Equal(t, "2", records[2][9])
	assert.Equal(t, "4.50", records[2][10])
	assert.Equal(t, "Offline", records[2][8])
}

func TestExportEmployeesXLSX(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.employee(t, "Eve")

	file, err := f.export.Employees(ctx, admin, FormatXLSX)
	require.NoError(t, err)
	assert.Contains(t, file.Filename, ".xlsx")

	book, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows("Employees")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Department", rows[0][4])
	assert.Equal(t, "Eve", rows[1][1])
}

func TestExportFormatAndAccess(t *testing.T) {
	format, err := ParseExportFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, format)
	format, err = ParseExportFormat("Excel")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, format)
	_, err = ParseExportFormat("pdf")
	requireCode(t, err, apperrors.CodeValidation)

	f := newFixture(t)
	_, err = f.export.Agents(context.Background(), access.Agent(1, 1), FormatCSV)
	requireCode(t, err, apperrors.CodeForbidden)
}
