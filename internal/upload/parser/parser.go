package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"

	inventory "github.com/prognoza/forecast-platform/internal/inventory/domain"
)

// Record is one parsed operation row from an uploaded file.
type Record struct {
	Line        int
	Date        *time.Time
	ProductName string
	ProductCode string
	Quantity    float64
	Kind        string
	Price       *float64
}

// RowError describes why a row was skipped.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Column aliases accepted in headers. Uploads come both from 1C
// exports (Russian) and from spreadsheet templates (English).
var (
	dateAliases     = []string{"период", "дата", "date", "operation_date"}
	nameAliases     = []string{"номенклатура", "товар", "product", "product_name", "name"}
	codeAliases     = []string{"код", "code", "product_code"}
	quantityAliases = []string{"количество", "quantity", "qty"}
	typeAliases     = []string{"type", "тип", "операция", "operation_type"}
	priceAliases    = []string{"цена", "price", "cost_price"}
)

var dateLayouts = []string{"2006-01-02", "02.01.2006", "2006-01-02T15:04:05Z07:00", "02.01.2006 15:04:05"}

// ReadRows extracts the raw cell grid from a .csv or .xlsx upload.
func ReadRows(r io.Reader, filename string) ([][]string, error) {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".xlsx"):
		f, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to open xlsx file: %w", err)
		}
		defer f.Close()
		rows, err := f.GetRows(f.GetSheetName(0))
		if err != nil {
			return nil, fmt.Errorf("failed to read xlsx rows: %w", err)
		}
		return rows, nil
	case strings.HasSuffix(lower, ".csv"):
		reader := csv.NewReader(r)
		reader.FieldsPerRecord = -1
		rows, err := reader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to parse csv file: %w", err)
		}
		return rows, nil
	default:
		return nil, fmt.Errorf("unsupported file format: %s", filename)
	}
}

// Parse turns an uploaded file into operation records. Rows that
// cannot be parsed are reported, not fatal.
func Parse(r io.Reader, filename string) ([]Record, []RowError, error) {
	rows, err := ReadRows(r, filename)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("file must contain a header row and at least one data row")
	}

	header := rows[0]
	nameIdx := findColumn(header, nameAliases)
	quantityIdx := findColumn(header, quantityAliases)
	if nameIdx == -1 && findColumn(header, codeAliases) == -1 {
		return nil, nil, fmt.Errorf("file must contain a product name or code column")
	}
	if quantityIdx == -1 {
		return nil, nil, fmt.Errorf("file must contain a quantity column")
	}

	dateIdx := findColumn(header, dateAliases)
	codeIdx := findColumn(header, codeAliases)
	typeIdx := findColumn(header, typeAliases)
	priceIdx := findColumn(header, priceAliases)

	var records []Record
	var rowErrors []RowError
	for i, row := range rows[1:] {
		line := i + 2

		name := CleanProductName(cell(row, nameIdx))
		code := strings.TrimSpace(cell(row, codeIdx))
		if name == "" && code == "" {
			rowErrors = append(rowErrors, RowError{Line: line, Message: "missing product name and code"})
			continue
		}

		quantity, err := parseNumber(cell(row, quantityIdx))
		if err != nil {
			rowErrors = append(rowErrors, RowError{Line: line, Message: "invalid quantity"})
			continue
		}
		if quantity <= 0 {
			rowErrors = append(rowErrors, RowError{Line: line, Message: "quantity must be positive"})
			continue
		}

		record := Record{
			Line:        line,
			ProductName: name,
			ProductCode: code,
			Quantity:    quantity,
			Kind:        parseKind(cell(row, typeIdx)),
		}

		if raw := cell(row, dateIdx); raw != "" {
			date, err := parseDate(raw)
			if err != nil {
				rowErrors = append(rowErrors, RowError{Line: line, Message: "invalid date"})
				continue
			}
			record.Date = &date
		}

		if raw := cell(row, priceIdx); raw != "" {
			if price, err := parseNumber(raw); err == nil {
				record.Price = &price
			}
		}

		records = append(records, record)
	}

	return records, rowErrors, nil
}

func findColumn(header []string, aliases []string) int {
	for i, col := range header {
		normalized := strings.ToLower(strings.TrimSpace(col))
		for _, alias := range aliases {
			if normalized == alias {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	return strconv.ParseFloat(s, 64)
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format: %s", s)
}

func parseKind(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "поставка", "supply", "приход":
		return inventory.OperationSupply
	default:
		return inventory.OperationSale
	}
}

var parenPrefix = regexp.MustCompile(`^\([^)]+\)\s*`)

// CleanProductName strips service prefixes like "(Х5)" or "(не_исп)"
// and leading non-cyrillic junk from 1C export names. Falls back to
// the original when cleaning leaves nothing.
func CleanProductName(name string) string {
	cleaned := parenPrefix.ReplaceAllString(name, "")
	cleaned = strings.TrimLeftFunc(cleaned, func(r rune) bool {
		return !unicode.Is(unicode.Cyrillic, r)
	})
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return strings.TrimSpace(name)
	}
	return cleaned
}
