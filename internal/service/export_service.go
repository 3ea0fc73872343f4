package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/insurecare/feedback-portal/internal/access"
	"github.com/insurecare/feedback-portal/internal/domain"
	"github.com/insurecare/feedback-portal/internal/repository"
	apperrors "github.com/insurecare/feedback-portal/pkg/util/errorutil"
)

// ExportFormat selects the file type of a profile export.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatXLSX ExportFormat = "xlsx"
)

const (
	contentTypeCSV  = "text/csv"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ParseExportFormat accepts csv (the default when empty), xlsx or excel.
func ParseExportFormat(s string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	}
	return "", apperrors.NewValidationError("validation failed", map[string]any{"format": "must be one of csv xlsx"})
}

// ExportFile is a rendered export ready for download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders admin profile exports with derived rating columns.
type ExportService struct {
	agents    repository.AgentRepository
	employees repository.EmployeeRepository
	ratings   repository.RatingRepository
	now       func() time.Time
}

// NewExportService constructs the service.
func NewExportService(agents repository.AgentRepository, employees repository.EmployeeRepository, ratings repository.RatingRepository) *ExportService {
	return &ExportService{
		agents:    agents,
		employees: employees,
		ratings:   ratings,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type table struct {
	sheet  string
	header []string
	rows   [][]any
}

// Agents exports every agent ordered by name.
func (s *ExportService) Agents(ctx context.Context, caller access.Caller, format ExportFormat) (*ExportFile, error) {
	if err := access.Authorize(caller, access.ExportProfiles); err != nil {
		return nil, err
	}
	agents, err := s.agents.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(agents))
	for i, a := range agents {
		ids[i] = a.ID
	}
	stats, err := s.ratings.StatsByProfile(ctx, domain.KindAgent, ids)
	if err != nil {
		return nil, err
	}

	t := table{
		sheet: "Agents",
		header: []string{"ID", "Name", "Email", "Phone", "Location", "Branch", "Latitude", "Longitude",
			"Online Status", "Total Ratings", "Average Rating", "Created Date"},
	}
	for _, a := range agents {
		st := stats[a.ID]
		online := "Offline"
		if a.IsOnline {
			online = "Online"
		}
		t.rows = append(t.rows, []any{
			a.ID, a.Name, a.Email, a.Phone, a.Location, a.Branch,
			formatCoordinate(a.Latitude), formatCoordinate(a.Longitude),
			online, st.Count, formatAverage(st.Average), a.CreatedAt.Format(time.DateOnly),
		})
	}
	return s.render(t, "agents", format)
}

// Employees exports every employee ordered by name.
func (s *ExportService) Employees(ctx context.Context, caller access.Caller, format ExportFormat) (*ExportFile, error) {
	if err := access.Authorize(caller, access.ExportProfiles); err != nil {
		return nil, err
	}
	employees, err := s.employees.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, len(employees))
	for i, e := range employees {
		ids[i] = e.ID
	}
	stats, err := s.ratings.StatsByProfile(ctx, domain.KindEmployee, ids)
	if err != nil {
		return nil, err
	}

	t := table{
		sheet: "Employees",
		header: []string{"ID", "Name", "Email", "Phone", "Department", "Position", "Branch",
			"Total Ratings", "Average Rating", "Created Date"},
	}
	for _, e := range employees {
		st := stats[e.ID]
		t.rows = append(t.rows, []any{
			e.ID, e.Name, e.Email, e.Phone, e.Department, e.Position, e.Branch,
			st.Count, formatAverage(st.Average), e.CreatedAt.Format(time.DateOnly),
		})
	}
	return s.render(t, "employees", format)
}

func (s *ExportService) render(t table, prefix string, format ExportFormat) (*ExportFile, error) {
	stamp := s.now().Format(time.DateOnly)
	switch format {
	case FormatXLSX:
		data, err := writeXLSX(t)
		if err != nil {
			return nil, apperrors.NewInternalError(fmt.Errorf("write xlsx: %w", err))
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("%s-export-%s.xlsx", prefix, stamp),
			ContentType: contentTypeXLSX,
			Data:        data,
		}, nil
	default:
		data, err := writeCSV(t)
		if err != nil {
			return nil, apperrors.NewInternalError(fmt.Errorf("write csv: %w", err))
		}
		return &ExportFile{
			Filename:    fmt.Sprintf("%s-export-%s.csv", prefix, stamp),
			ContentType: contentTypeCSV,
			Data:        data,
		}, nil
	}
}

func writeCSV(t table) ([]byte, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	if err := w.Write(t.header); err != nil {
		return nil, err
	}
	for _, row := range t.rows {
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = fmt.Sprint(v)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeXLSX(t table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(t.sheet)
	if err != nil {
		return nil, err
	}
	_ = f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	for c, v := range t.header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(t.sheet, cell, v)
	}
	for r, row := range t.rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			_ = f.SetCellValue(t.sheet, cell, v)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(t.header))
	_ = f.SetColWidth(t.sheet, "A", lastCol, 18)
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E5E7EB"}, Pattern: 1},
	})
	if err == nil {
		_ = f.SetCellStyle(t.sheet, "A1", lastCol+"1", style)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatAverage(avg *float64) string {
	if avg == nil {
		return "0.00"
	}
	return strconv.FormatFloat(*avg, 'f', 2, 64)
}

func formatCoordinate(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
