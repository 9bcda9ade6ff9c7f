package parser

import (
	"strings"
	"testing"
	"time"

	inventory "github.com/prognoza/forecast-platform/internal/inventory/domain"
)

func TestParseCSVRussianHeaders(t *testing.T) {
	csvData := strings.Join([]string{
		"Период,Номенклатура,Код,Количество,Тип,Цена",
		"2025-03-10,Молоко 3.2%,MLK-1,12,Продажа,",
		"10.03.2025,Хлеб,BRD-1,\"3,5\",Поставка,45.90",
	}, "\n")

	records, rowErrors, err := Parse(strings.NewReader(csvData), "operations.csv")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(rowErrors) != 0 {
		t.Fatalf("expected no row errors, got %+v", rowErrors)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	first := records[0]
	if first.ProductName != "Молоко 3.2%" || first.ProductCode != "MLK-1" {
		t.Errorf("unexpected first record: %+v", first)
	}
	if first.Kind != inventory.OperationSale {
		t.Errorf("expected sale, got %q", first.Kind)
	}
	if first.Date == nil || !first.Date.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected date %v", first.Date)
	}

	second := records[1]
	if second.Quantity != 3.5 {
		t.Errorf("expected comma decimal parsed as 3.5, got %v", second.Quantity)
	}
	if second.Kind != inventory.OperationSupply {
		t.Errorf("expected supply, got %q", second.Kind)
	}
	if second.Price == nil || *second.Price != 45.90 {
		t.Errorf("expected price 45.90, got %v", second.Price)
	}
	if second.Date == nil || !second.Date.Equal(time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected dotted date parsed, got %v", second.Date)
	}
}

func TestParseCSVEnglishHeaders(t *testing.T) {
	csvData := strings.Join([]string{
		"date,product_name,quantity,operation_type",
		"2025-01-15,Bread,4,supply",
	}, "\n")

	records, rowErrors, err := Parse(strings.NewReader(csvData), "operations.csv")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(rowErrors) != 0 || len(records) != 1 {
		t.Fatalf("expected one clean record, got %d records, %d errors", len(records), len(rowErrors))
	}
	if records[0].Kind != inventory.OperationSupply {
		t.Errorf("expected supply kind, got %q", records[0].Kind)
	}
}

func TestParseRowErrors(t *testing.T) {
	csvData := strings.Join([]string{
		"Номенклатура,Количество,Период",
		",5,",
		"Молоко,abc,",
		"Молоко,-2,",
		"Молоко,3,31/12/2025",
		"Молоко,3,2025-03-10",
	}, "\n")

	records, rowErrors, err := Parse(strings.NewReader(csvData), "operations.csv")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("expected only the last row to pass, got %d records", len(records))
	}
	if records[0].Line != 6 {
		t.Errorf("expected surviving row on line 6, got %d", records[0].Line)
	}

	if len(rowErrors) != 4 {
		t.Fatalf("expected 4 row errors, got %+v", rowErrors)
	}
	wantMessages := []string{
		"missing product name and code",
		"invalid quantity",
		"quantity must be positive",
		"invalid date",
	}
	for i, want := range wantMessages {
		if rowErrors[i].Message != want {
			t.Errorf("row error %d: got %q, want %q", i, rowErrors[i].Message, want)
		}
	}
}

func TestParseRejectsHeaderOnlyFile(t *testing.T) {
	if _, _, err := Parse(strings.NewReader("Номенклатура,Количество\n"), "operations.csv"); err == nil {
		t.Error("expected error for file without data rows")
	}
}

func TestParseRequiresProductAndQuantityColumns(t *testing.T) {
	noProduct := "Количество,Период\n5,2025-03-10\n"
	if _, _, err := Parse(strings.NewReader(noProduct), "operations.csv"); err == nil {
		t.Error("expected error when product columns are missing")
	}

	noQuantity := "Номенклатура,Период\nМолоко,2025-03-10\n"
	if _, _, err := Parse(strings.NewReader(noQuantity), "operations.csv"); err == nil {
		t.Error("expected error when quantity column is missing")
	}
}

func TestReadRowsRejectsUnknownExtension(t *testing.T) {
	if _, err := ReadRows(strings.NewReader("data"), "operations.pdf"); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestCleanProductName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"(Х5) Молоко 3.2%", "Молоко 3.2%"},
		{"(не_исп) Сыр", "Сыр"},
		{"123 Хлеб", "Хлеб"},
		{"Молоко", "Молоко"},
		{"(X5) Milk", "(X5) Milk"},
		{"  Кефир  ", "Кефир"},
	}

	for _, tt := range tests {
		if got := CleanProductName(tt.in); got != tt.want {
			t.Errorf("CleanProductName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
