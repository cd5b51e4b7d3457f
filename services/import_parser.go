package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/agentdouble/kpix/engine"
	"github.com/agentdouble/kpix/models"

	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	columnKPIID       = "kpi_id"
	columnPeriodStart = "period_start"
	columnPeriodEnd   = "period_end"
	columnValue       = "value"
	columnComment     = "comment"
)

var requiredColumns = []string{columnKPIID, columnPeriodStart, columnValue}

// ImportRow is one data line of an uploaded file, still as text. Line is the
// 1-based line in the file, header included.
type ImportRow struct {
	Line        int
	KPIID       string
	PeriodStart string
	PeriodEnd   string
	Value       string
	Comment     string
}

// DetectImportType picks the parser from the file extension.
func DetectImportType(filename string) (models.ImportType, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return models.ImportCSV, nil
	case ".xlsx":
		return models.ImportExcel, nil
	default:
		return "", engine.NewValidationError("file", "unsupported file type, expected .csv or .xlsx")
	}
}

func ParseImport(typ models.ImportType, content []byte) ([]ImportRow, error) {
	switch typ {
	case models.ImportCSV:
		return ParseCSV(bytes.NewReader(content))
	case models.ImportExcel:
		return ParseXLSX(bytes.NewReader(content))
	default:
		return nil, engine.NewValidationError("file", fmt.Sprintf("unsupported import type %q", typ))
	}
}

func ParseCSV(r io.Reader) ([]ImportRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, engine.NewValidationError("file", "CSV file is empty")
	}
	if err != nil {
		return nil, engine.NewValidationError("file", fmt.Sprintf("malformed CSV: %v", err))
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	var rows []ImportRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, engine.NewValidationError("file", fmt.Sprintf("malformed CSV: %v", err))
		}
		if blank(record) {
			continue
		}
		line, _ := reader.FieldPos(0)
		rows = append(rows, index.row(line, record))
	}
	if len(rows) == 0 {
		return nil, engine.NewValidationError("file", "CSV file is empty")
	}
	return rows, nil
}

// ParseXLSX reads the active sheet. Cells are read raw so date cells arrive as
// Excel serial numbers and are converted here.
func ParseXLSX(r io.Reader) ([]ImportRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, engine.NewValidationError("file", fmt.Sprintf("unreadable spreadsheet: %v", err))
	}
	defer f.Close()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	records, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, engine.NewValidationError("file", fmt.Sprintf("unreadable sheet %q: %v", sheet, err))
	}
	if len(records) == 0 {
		return nil, engine.NewValidationError("file", "Excel file is empty")
	}

	index, err := columnIndex(records[0])
	if err != nil {
		return nil, err
	}

	var rows []ImportRow
	for i, record := range records[1:] {
		if blank(record) {
			continue
		}
		row := index.row(i+2, record)
		row.PeriodStart = excelDate(row.PeriodStart)
		row.PeriodEnd = excelDate(row.PeriodEnd)
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, engine.NewValidationError("file", "Excel file contains only headers")
	}
	return rows, nil
}

// excelDate turns an Excel serial day number into 2006-01-02 and leaves any
// other text untouched.
func excelDate(raw string) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return raw
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return raw
	}
	return t.Format(time.DateOnly)
}

type headerIndex map[string]int

func columnIndex(header []string) (headerIndex, error) {
	index := headerIndex{}
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, seen := index[key]; !seen && key != "" {
			index[key] = i
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, &engine.ValidationError{
			Field:   "file",
			Message: "Missing required columns: " + strings.Join(missing, ", "),
			Details: map[string]interface{}{"missing_columns": missing},
		}
	}
	return index, nil
}

func (h headerIndex) cell(record []string, column string) string {
	i, ok := h[column]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (h headerIndex) row(line int, record []string) ImportRow {
	return ImportRow{
		Line:        line,
		KPIID:       h.cell(record, columnKPIID),
		PeriodStart: h.cell(record, columnPeriodStart),
		PeriodEnd:   h.cell(record, columnPeriodEnd),
		Value:       h.cell(record, columnValue),
		Comment:     h.cell(record, columnComment),
	}
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

type parsedRow struct {
	kpiID   primitive.ObjectID
	start   time.Time
	end     *time.Time
	value   float64
	comment string
}

// parse converts the text cells. Errors name the offending line.
func (r ImportRow) parse() (parsedRow, error) {
	kpiID, err := primitive.ObjectIDFromHex(r.KPIID)
	if err != nil {
		return parsedRow{}, r.invalid(columnKPIID, fmt.Sprintf("invalid kpi id %q", r.KPIID))
	}
	start, err := engine.ParseDate(columnPeriodStart, r.PeriodStart)
	if err != nil {
		return parsedRow{}, r.wrap(err)
	}
	end, err := engine.ParseOptionalDate(columnPeriodEnd, r.PeriodEnd)
	if err != nil {
		return parsedRow{}, r.wrap(err)
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(r.Value, ",", "."), 64)
	if err != nil || isNonFinite(value) {
		return parsedRow{}, r.invalid(columnValue, fmt.Sprintf("invalid number %q", r.Value))
	}
	return parsedRow{kpiID: kpiID, start: start, end: end, value: value, comment: r.Comment}, nil
}

func (r ImportRow) invalid(field, message string) error {
	return &engine.ValidationError{
		Field:   field,
		Message: fmt.Sprintf("line %d: %s", r.Line, message),
		Details: map[string]interface{}{"line": r.Line},
	}
}

// wrap prefixes engine errors with the line number, keeping their type.
func (r ImportRow) wrap(err error) error {
	var verr *engine.ValidationError
	if errors.As(err, &verr) {
		details := map[string]interface{}{"line": r.Line}
		for k, v := range verr.Details {
			details[k] = v
		}
		return &engine.ValidationError{
			Field:   verr.Field,
			Message: fmt.Sprintf("line %d: %s", r.Line, verr.Message),
			Details: details,
		}
	}
	var conflict *engine.ConflictError
	if errors.As(err, &conflict) {
		return &engine.ConflictError{
			Resource: conflict.Resource,
			Message:  fmt.Sprintf("line %d: %s", r.Line, conflict.Message),
		}
	}
	return fmt.Errorf("line %d: %w", r.Line, err)
}
